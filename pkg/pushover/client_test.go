package pushover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPush(t *testing.T) {
	var gotForm map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages.json" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		r.ParseForm()
		gotForm = map[string]string{
			"token":   r.PostFormValue("token"),
			"user":    r.PostFormValue("user"),
			"title":   r.PostFormValue("title"),
			"message": r.PostFormValue("message"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":1,"request":"abc123"}`))
	}))
	defer server.Close()

	client := NewClient(Config{
		Token:   "app-token",
		User:    "user-key",
		BaseURL: server.URL,
	})

	err := client.Push(context.Background(), "Appointment reminder", "See you at 9:00 AM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotForm["token"] != "app-token" || gotForm["user"] != "user-key" {
		t.Errorf("credentials: got %v", gotForm)
	}
	if gotForm["title"] != "Appointment reminder" {
		t.Errorf("title: got %q", gotForm["title"])
	}
}

func TestPushRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":0,"errors":["user key is invalid"]}`))
	}))
	defer server.Close()

	client := NewClient(Config{Token: "t", User: "u", BaseURL: server.URL})

	err := client.Push(context.Background(), "title", "body")
	if err == nil {
		t.Fatal("expected error for rejected message")
	}
}

func TestPushHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(Config{Token: "t", User: "u", BaseURL: server.URL})

	if err := client.Push(context.Background(), "title", "body"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

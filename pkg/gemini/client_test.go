package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/carebridge/carebridge-be/pkg/llm"
)

func TestChatCompletion(t *testing.T) {
	var captured geminiRequest
	var capturedPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("expected key=test-key, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]string{{"text": "Hello from the model"}},
					},
					"finishReason": "STOP",
				},
			},
			"usageMetadata": map[string]int{
				"promptTokenCount":     12,
				"candidatesTokenCount": 5,
				"totalTokenCount":      17,
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gemini-2.0-flash",
	})

	resp, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.ChatMessage{
			{Role: "system", Content: "You are a medical assistant."},
			{Role: "user", Content: "I have a headache."},
			{Role: "assistant", Content: "How long has it lasted?"},
		},
		Temperature: 0.2,
		MaxTokens:   256,
	})
	if err != nil {
		t.Fatalf("ChatCompletion returned error: %v", err)
	}

	if !strings.HasSuffix(capturedPath, "/gemini-2.0-flash:generateContent") {
		t.Errorf("unexpected request path %q", capturedPath)
	}

	// Gemini has no system/assistant roles: system becomes user, assistant becomes model.
	wantRoles := []string{"user", "user", "model"}
	if len(captured.Contents) != len(wantRoles) {
		t.Fatalf("expected %d contents, got %d", len(wantRoles), len(captured.Contents))
	}
	for i, want := range wantRoles {
		if captured.Contents[i].Role != want {
			t.Errorf("content %d: expected role %q, got %q", i, want, captured.Contents[i].Role)
		}
	}
	if captured.GenerationConfig.Temperature != 0.2 {
		t.Errorf("expected temperature 0.2, got %v", captured.GenerationConfig.Temperature)
	}
	if captured.GenerationConfig.MaxOutputTokens != 256 {
		t.Errorf("expected maxOutputTokens 256, got %d", captured.GenerationConfig.MaxOutputTokens)
	}

	if len(resp.Choices) != 1 {
		t.Fatalf("expected 1 choice, got %d", len(resp.Choices))
	}
	choice := resp.Choices[0]
	if choice.Message.Role != "assistant" {
		t.Errorf("expected assistant role, got %q", choice.Message.Role)
	}
	if choice.Message.Content != "Hello from the model" {
		t.Errorf("unexpected content %q", choice.Message.Content)
	}
	if choice.FinishReason != "STOP" {
		t.Errorf("expected finish reason STOP, got %q", choice.FinishReason)
	}
	if resp.Usage.TotalTokens != 17 {
		t.Errorf("expected 17 total tokens, got %d", resp.Usage.TotalTokens)
	}
}

func TestChatCompletionAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
	}))
	defer server.Close()

	client := NewHTTPClient(Config{APIKey: "test-key", BaseURL: server.URL})

	_, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.ChatMessage{{Role: "user", Content: "hello"}},
	})
	if err == nil {
		t.Fatal("expected error on 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status code in error, got %q", err.Error())
	}
}

func TestChatCompletionEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer server.Close()

	client := NewHTTPClient(Config{APIKey: "test-key", BaseURL: server.URL})

	resp, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.ChatMessage{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("ChatCompletion returned error: %v", err)
	}
	if got := resp.Choices[0].Message.Content; got != "" {
		t.Errorf("expected empty content, got %q", got)
	}
}

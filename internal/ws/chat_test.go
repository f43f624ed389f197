package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"github.com/carebridge/carebridge-be/internal/api/middleware"
	"github.com/carebridge/carebridge-be/internal/chat"
)

const testSecret = "test-secret"

func signToken(t *testing.T) string {
	t.Helper()
	claims := &middleware.JWTClaims{
		UserID: "u-1",
		Email:  "priya@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func newChatServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := chat.NewEngine(nil, nil, nil, nil, nil)
	handler := NewChatHandler(engine, testSecret)

	r := gin.New()
	r.GET("/ws/chat", handler.HandleChat)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleChatGreeting(t *testing.T) {
	srv := newChatServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat?token=" + signToken(t)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var greeting OutgoingMessage
	if err := conn.ReadJSON(&greeting); err != nil {
		t.Fatalf("failed to read greeting: %v", err)
	}
	if greeting.Type != "message" {
		t.Errorf("first frame type: got %q, want %q", greeting.Type, "message")
	}

	var question OutgoingMessage
	if err := conn.ReadJSON(&question); err != nil {
		t.Fatalf("failed to read question: %v", err)
	}
	if question.Type != "question" {
		t.Errorf("second frame type: got %q, want %q", question.Type, "question")
	}
	if question.Stage == "" {
		t.Error("expected a stage on the opening question")
	}
}

func TestHandleChatRejectsMissingToken(t *testing.T) {
	srv := newChatServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		conn.Close()
		t.Fatal("expected handshake to fail without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("handshake status: got %+v, want %d", resp, http.StatusUnauthorized)
	}
}

func TestHandleChatRejectsBadToken(t *testing.T) {
	srv := newChatServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat?token=not-a-token"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		conn.Close()
		t.Fatal("expected handshake to fail with a bad token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("handshake status: got %+v, want %d", resp, http.StatusUnauthorized)
	}
}

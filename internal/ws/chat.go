package ws

import (
	"context"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/carebridge/carebridge-be/internal/api/middleware"
	"github.com/carebridge/carebridge-be/internal/chat"
	"github.com/carebridge/carebridge-be/internal/emergency"
	"github.com/carebridge/carebridge-be/internal/recommend"
	"github.com/carebridge/carebridge-be/internal/session"
	"github.com/carebridge/carebridge-be/internal/triage"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// One interview answer at a time; anything faster is a runaway client.
const messagesPerMinute = 30

// ChatHandler handles WebSocket chat connections
type ChatHandler struct {
	engine    *chat.Engine
	jwtSecret string
}

// NewChatHandler creates a new chat handler
func NewChatHandler(engine *chat.Engine, jwtSecret string) *ChatHandler {
	return &ChatHandler{
		engine:    engine,
		jwtSecret: jwtSecret,
	}
}

// IncomingMessage represents a message from the client
type IncomingMessage struct {
	Content string `json:"content"`
}

// OutgoingMessage represents a message to the client
type OutgoingMessage struct {
	Type    string      `json:"type"` // "message", "question", "assessment", "emergency", "emergency_update", "recommendations", "error", "done"
	Stage   string      `json:"stage,omitempty"`
	Content string      `json:"content,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// HandleChat handles WebSocket chat connections
func (h *ChatHandler) HandleChat(c *gin.Context) {
	// Validate JWT from query parameter or header
	token := c.Query("token")
	if token == "" {
		token = c.GetHeader("Authorization")
		if strings.HasPrefix(token, "Bearer ") {
			token = strings.TrimPrefix(token, "Bearer ")
		}
	}

	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}

	claims, err := middleware.ParseToken(token, h.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	conversationID := uuid.New().String()
	log.Printf("WebSocket connected: user=%s, conversation=%s", claims.UserID, conversationID)

	// Cancelled on disconnect so background emergency updates stop
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	defer h.engine.EndConversation(conversationID)

	responder := &wsResponder{conn: conn}

	if err := h.engine.Greet(conversationID, responder); err != nil {
		log.Printf("Failed to greet: %v", err)
		return
	}

	msgLimiter := middleware.NewMessageLimiter(messagesPerMinute)

	for {
		var msg IncomingMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		if !msgLimiter.Allow() {
			responder.SendError("You're sending messages too quickly. Please slow down.")
			continue
		}

		req := chat.ProcessRequest{
			UserID:         claims.UserID,
			ConversationID: conversationID,
			Message:        msg.Content,
			Responder:      responder,
		}
		if err := h.engine.ProcessMessage(ctx, req); err != nil {
			log.Printf("Error processing message: %v", err)
			responder.SendError("Something went wrong. Please try again.")
		}
	}

	log.Printf("WebSocket disconnected: conversation=%s", conversationID)
}

// wsResponder adapts a websocket connection to the engine's Responder.
// Gorilla connections do not allow concurrent writes, and emergency
// updates arrive from a background goroutine, so every write holds the
// mutex.
type wsResponder struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (r *wsResponder) write(msg OutgoingMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn.WriteJSON(msg)
}

func (r *wsResponder) SendQuestion(stage session.Stage, text string) error {
	return r.write(OutgoingMessage{Type: "question", Stage: string(stage), Content: text})
}

func (r *wsResponder) SendAssessment(assessment *triage.Assessment) error {
	return r.write(OutgoingMessage{Type: "assessment", Data: assessment})
}

func (r *wsResponder) SendEmergency(resp *emergency.Response) error {
	return r.write(OutgoingMessage{Type: "emergency", Data: resp})
}

func (r *wsResponder) SendEmergencyUpdate(update string) error {
	return r.write(OutgoingMessage{Type: "emergency_update", Content: update})
}

func (r *wsResponder) SendRecommendations(result recommend.Result) error {
	return r.write(OutgoingMessage{Type: "recommendations", Data: result})
}

func (r *wsResponder) SendMessage(content string) error {
	return r.write(OutgoingMessage{Type: "message", Content: content})
}

func (r *wsResponder) SendError(message string) error {
	return r.write(OutgoingMessage{Type: "error", Content: message})
}

func (r *wsResponder) SendDone() error {
	return r.write(OutgoingMessage{Type: "done"})
}

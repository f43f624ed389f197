package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const staleAfter = 5 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool keeps one token bucket per identifier (IP or user ID) and
// evicts buckets that have been idle longer than staleAfter.
type limiterPool struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rate    rate.Limit
	burst   int
}

func newLimiterPool(r rate.Limit, burst int) *limiterPool {
	p := &limiterPool{
		clients: make(map[string]*clientLimiter),
		rate:    r,
		burst:   burst,
	}
	go p.evictStale()
	return p
}

func (p *limiterPool) allow(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	client, ok := p.clients[id]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(p.rate, p.burst)}
		p.clients[id] = client
	}
	client.lastSeen = time.Now()
	return client.limiter.Allow()
}

func (p *limiterPool) evictStale() {
	ticker := time.NewTicker(staleAfter)
	defer ticker.Stop()

	for range ticker.C {
		p.mu.Lock()
		for id, client := range p.clients {
			if time.Since(client.lastSeen) > staleAfter {
				delete(p.clients, id)
			}
		}
		p.mu.Unlock()
	}
}

// PerIP rate limits requests by client IP
func PerIP(requestsPerSecond float64, burst int) gin.HandlerFunc {
	pool := newLimiterPool(rate.Limit(requestsPerSecond), burst)

	return func(c *gin.Context) {
		if !pool.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// PerUser rate limits requests by authenticated user ID. Unauthenticated
// requests pass through; PerIP covers those.
func PerUser(requestsPerSecond float64, burst int) gin.HandlerFunc {
	pool := newLimiterPool(rate.Limit(requestsPerSecond), burst)

	return func(c *gin.Context) {
		userID, ok := c.Get(userIDKey)
		if !ok {
			c.Next()
			return
		}

		if !pool.allow(userID.(string)) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please slow down.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// MessageLimiter throttles chat messages on a single WebSocket connection.
type MessageLimiter struct {
	limiter *rate.Limiter
}

// NewMessageLimiter allows messagesPerMinute with a burst of the same size
func NewMessageLimiter(messagesPerMinute int) *MessageLimiter {
	return &MessageLimiter{
		limiter: rate.NewLimiter(rate.Limit(messagesPerMinute)/60.0, messagesPerMinute),
	}
}

// Allow reports whether another message may be processed now
func (m *MessageLimiter) Allow() bool {
	return m.limiter.Allow()
}

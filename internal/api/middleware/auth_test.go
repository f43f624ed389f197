package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, expiresIn time.Duration) string {
	t.Helper()
	claims := &JWTClaims{
		UserID: "u-1",
		Email:  "priya@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUserID string
	}{
		{
			name:       "valid bearer token",
			header:     "Bearer " + signToken(t, testSecret, time.Hour),
			wantStatus: http.StatusOK,
			wantUserID: "u-1",
		},
		{
			name:       "missing token",
			header:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong signing secret",
			header:     "Bearer " + signToken(t, "other-secret", time.Hour),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			header:     "Bearer " + signToken(t, testSecret, -time.Hour),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(Auth(testSecret))

			var gotUserID string
			r.GET("/protected", func(c *gin.Context) {
				gotUserID = GetUserID(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotUserID != tt.wantUserID {
				t.Errorf("user id: got %q, want %q", gotUserID, tt.wantUserID)
			}
		})
	}
}

func TestParseToken(t *testing.T) {
	token := signToken(t, testSecret, time.Hour)

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "priya@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	if _, err := ParseToken(token, "other-secret"); err == nil {
		t.Error("expected error for wrong secret")
	}
	if _, err := ParseToken("not-a-token", testSecret); err == nil {
		t.Error("expected error for malformed token")
	}
}

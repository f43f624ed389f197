package pushover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client sends push notifications through the Pushover messages API.
type Client struct {
	token      string
	user       string
	baseURL    string
	httpClient *http.Client
}

// Config holds configuration for the Pushover client
type Config struct {
	Token   string
	User    string
	BaseURL string        // Default: https://api.pushover.net/1
	Timeout time.Duration // Default: 10s
}

// NewClient creates a new Pushover client
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.pushover.net/1"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &Client{
		token:   config.Token,
		user:    config.User,
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type apiResponse struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors"`
}

// Push sends a message with the given title to the configured user.
func (c *Client) Push(ctx context.Context, title, message string) error {
	form := url.Values{}
	form.Set("token", c.token)
	form.Set("user", c.user)
	form.Set("title", title)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/messages.json",
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if apiResp.Status != 1 {
		return fmt.Errorf("pushover rejected message: %s", strings.Join(apiResp.Errors, "; "))
	}

	return nil
}

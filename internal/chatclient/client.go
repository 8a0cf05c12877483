// Package chatclient talks to the chatbot service on behalf of the terminal UI.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/acornak/healthcare-chatbot/internal/conversation"
	"github.com/acornak/healthcare-chatbot/internal/observability"
)

// ErrNoMessage is returned when the service answers without a message field
var ErrNoMessage = errors.New("response has no message")

type request struct {
	Message      string                  `json:"message"`
	Conversation conversation.Transcript `json:"conversation,omitempty"`
}

type response struct {
	Message *string `json:"message"`
}

// Answer is the service's reply to one message
type Answer struct {
	Message       string
	StatusCode    int
	CorrelationID string
}

// OK reports a 2xx status
func (a *Answer) OK() bool {
	return a.StatusCode >= 200 && a.StatusCode < 300
}

// Client posts chat messages to the service
type Client struct {
	url        string
	httpClient *http.Client
}

// New creates a client for the chat endpoint at url
func New(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Send posts message with the prior history. The service reports errors as
// {message} bodies too, so any status carrying a message is returned as an Answer.
func (c *Client) Send(ctx context.Context, message string, history conversation.Transcript) (*Answer, error) {
	body, err := json.Marshal(request{Message: message, Conversation: history})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	correlationID := observability.NewCorrelationID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(observability.CorrelationIDHeader, correlationID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var decoded response
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded.Message == nil {
		return nil, fmt.Errorf("%w (status %d)", ErrNoMessage, resp.StatusCode)
	}

	return &Answer{
		Message:       *decoded.Message,
		StatusCode:    resp.StatusCode,
		CorrelationID: correlationID,
	}, nil
}

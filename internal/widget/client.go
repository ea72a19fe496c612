package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/aurion-studio/aurion-web/backend/internal/model/chat"
)

// LimitError is returned when the relay answers 429.
type LimitError struct {
	Message string
}

func (e *LimitError) Error() string {
	return "conversation limit reached"
}

// StatusError is returned for any other non-2xx answer.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay returned %d: %s", e.StatusCode, e.Message)
}

// Client calls the relay endpoint with the single-turn payload.
type Client struct {
	endpoint       string
	conversationID string
	http           *http.Client
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithConversationID attaches a conversation id to every request so that a
// relay with a server-side counter can track the conversation.
func WithConversationID(id string) ClientOption {
	return func(c *Client) {
		c.conversationID = id
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a relay client for endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 90 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type sendPayload struct {
	Message        string `json:"message"`
	Count          int    `json:"count"`
	ConversationID string `json:"conversationId,omitempty"`
}

// Send posts one user turn and returns the reply text.
func (c *Client) Send(ctx context.Context, text string, count int) (string, error) {
	data, err := json.Marshal(sendPayload{Message: text, Count: count, ConversationID: c.conversationID})
	if err != nil {
		return "", errors.Wrap(err, "encode relay request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrap(err, "build relay request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "call relay")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read relay response")
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		var notice chat.LimitNotice
		_ = json.Unmarshal(body, &notice)
		return "", &LimitError{Message: notice.Message}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var failure chat.ErrorBody
		if json.Unmarshal(body, &failure) != nil || failure.Error == "" {
			failure.Error = string(body)
		}
		return "", &StatusError{StatusCode: resp.StatusCode, Message: failure.Error}
	}

	var reply chat.Reply
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", errors.Wrap(err, "decode relay reply")
	}
	return reply.Reply, nil
}

package chat

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Request is the payload accepted by the relay endpoint. Exactly one of the
// two shapes is used: the single-turn form (Message + Count) or the raw form
// (Messages).
type Request struct {
	Message        *string         `json:"message,omitempty"`
	Count          int             `json:"count"`
	Messages       json.RawMessage `json:"messages,omitempty"`
	ConversationID string          `json:"conversationId,omitempty"`
}

// ParseRequest decodes a relay payload. Bodies that are not a JSON object are
// treated as an empty request so that validation reports the missing field.
func ParseRequest(body []byte) Request {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return Request{}
	}

	var req Request
	if v, ok := raw["message"]; ok {
		var s string
		if json.Unmarshal(v, &s) == nil {
			req.Message = &s
		}
	}
	if v, ok := raw["count"]; ok {
		req.Count = parseCount(v)
	}
	if v, ok := raw["messages"]; ok {
		req.Messages = v
	}
	if v, ok := raw["conversationId"]; ok {
		var id string
		if json.Unmarshal(v, &id) == nil {
			req.ConversationID = strings.TrimSpace(id)
		}
	}
	return req
}

// parseCount accepts JSON numbers and numeric strings; anything else counts
// as zero.
func parseCount(v json.RawMessage) int {
	var n float64
	if err := json.Unmarshal(v, &n); err != nil {
		var s string
		if json.Unmarshal(v, &s) != nil {
			return 0
		}
		if n, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0
		}
	}
	if n <= 0 || math.IsNaN(n) {
		return 0
	}
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// RawMessages returns the raw-form message list when the payload carries a
// non-empty JSON array under "messages". ok is false when the field is absent,
// not an array, or empty.
func (r Request) RawMessages() (msgs []Message, ok bool, err error) {
	if len(r.Messages) == 0 {
		return nil, false, nil
	}
	var items []json.RawMessage
	if json.Unmarshal(r.Messages, &items) != nil || len(items) == 0 {
		return nil, false, nil
	}

	msgs = make([]Message, 0, len(items))
	for _, item := range items {
		var m Message
		if err := json.Unmarshal(item, &m); err != nil {
			return nil, true, ErrMalformed
		}
		if err := m.Validate(); err != nil {
			return nil, true, err
		}
		msgs = append(msgs, m)
	}
	return msgs, true, nil
}

// SingleMessage returns the single-turn text when it is a non-empty string.
func (r Request) SingleMessage() (string, bool) {
	if r.Message == nil || *r.Message == "" {
		return "", false
	}
	return *r.Message, true
}

// Reply is the 200 response body.
type Reply struct {
	Reply string `json:"reply"`
}

// LimitNotice is the 429 response body.
type LimitNotice struct {
	Message string `json:"message"`
}

// ErrorBody is the body of every JSON error response.
type ErrorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

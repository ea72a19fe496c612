package chat

import (
	"errors"
	"strings"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

var (
	ErrUnknownRole  = errors.New("unknown message role")
	ErrEmptyContent = errors.New("message content is empty")
	ErrMalformed    = errors.New("message is not a role/content object")
)

// Message is a single role/content pair forwarded to the completion provider.
// Order within a conversation is significant.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Valid reports whether the role is one of the three accepted roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Validate checks role and content of a single message.
func (m Message) Validate() error {
	if !m.Role.Valid() {
		return ErrUnknownRole
	}
	if strings.TrimSpace(m.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// SystemMessage builds a system turn.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user turn.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

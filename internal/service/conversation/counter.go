// Package conversation keeps server-held message counters keyed by a
// conversation identifier.
package conversation

import (
	"context"
	"errors"
)

// ErrConversationRequired is returned for an empty conversation id.
var ErrConversationRequired = errors.New("conversation id is required")

// Counter tracks how many completions a conversation has consumed.
type Counter interface {
	// Current returns the number of recorded turns, 0 for unknown ids.
	Current(ctx context.Context, conversationID string) (int, error)
	// Admit records one more turn unless the effective count reaches limit.
	// The effective count is the larger of claimed and the stored count plus
	// one. Check and increment happen atomically.
	Admit(ctx context.Context, conversationID string, claimed, limit int) (count int, admitted bool, err error)
}

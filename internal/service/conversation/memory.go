package conversation

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count     int
	expiresAt time.Time
}

// MemoryCounter is an in-process Counter. Entries expire ttl after their last
// admitted turn.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCounter creates an empty counter.
func NewMemoryCounter(ttl time.Duration) *MemoryCounter {
	return &MemoryCounter{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Current implements Counter.
func (c *MemoryCounter) Current(_ context.Context, conversationID string) (int, error) {
	if conversationID == "" {
		return 0, ErrConversationRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lookup(conversationID)
	if !ok {
		return 0, nil
	}
	return e.count, nil
}

// Admit implements Counter.
func (c *MemoryCounter) Admit(_ context.Context, conversationID string, claimed, limit int) (int, bool, error) {
	if conversationID == "" {
		return 0, false, ErrConversationRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, _ := c.lookup(conversationID)
	next := e.count + 1
	effective := max(claimed, next)
	if effective >= limit {
		return effective, false, nil
	}

	e.count = next
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.entries[conversationID] = e
	return effective, true, nil
}

// Prune drops expired entries and returns how many were removed.
func (c *MemoryCounter) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id := range c.entries {
		if _, ok := c.lookup(id); !ok {
			removed++
		}
	}
	return removed
}

// lookup must be called with mu held; it evicts an expired entry.
func (c *MemoryCounter) lookup(id string) (entry, bool) {
	e, ok := c.entries[id]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.entries, id)
		return entry{}, false
	}
	return e, true
}

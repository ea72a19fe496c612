package conversation

import "time"

// SetClock replaces the time source in tests.
func (c *MemoryCounter) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

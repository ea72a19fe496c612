// Package widget implements the client side of the relay contract: a
// conversation controller that renders bubbles, tracks the local message
// count and stops sending once the cap is reached.
package widget

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/aurion-studio/aurion-web/backend/internal/model/profile"
)

// State is the controller's conversation state.
type State int

const (
	StateIdle State = iota
	StateAwaitingReply
	StateLimitReached
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingReply:
		return "awaiting-reply"
	case StateLimitReached:
		return "limit-reached"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("a reply is still pending")
	ErrLimitReached = errors.New("conversation limit reached")
)

// BubbleKind distinguishes rendered bubbles.
type BubbleKind string

const (
	BubbleUser      BubbleKind = "user"
	BubbleAssistant BubbleKind = "assistant"
	BubbleNotice    BubbleKind = "notice"
)

// Bubble is one rendered chat entry. Pending marks the placeholder shown
// while a reply is outstanding.
type Bubble struct {
	ID      int
	Kind    BubbleKind
	Text    string
	Pending bool
}

// Renderer draws the conversation. Calls are made in order and must not
// call back into the Controller.
type Renderer interface {
	Append(b Bubble)
	Update(b Bubble)
	DisableInput()
}

// Relay sends one user turn together with the current count.
type Relay interface {
	Send(ctx context.Context, text string, count int) (string, error)
}

// ConversationState is a point-in-time copy of the controller's state.
type ConversationState struct {
	Messages     []Bubble
	Count        int
	LimitReached bool
}

// Controller drives one conversation. Count lives only in memory and starts
// at zero for every new Controller.
type Controller struct {
	relay    Relay
	renderer Renderer
	cap      int
	texts    Texts

	mu      sync.Mutex
	state   State
	count   int
	bubbles []Bubble
	nextID  int
}

// Option customises a Controller.
type Option func(*Controller)

// WithCap overrides the local message cap.
func WithCap(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.cap = n
		}
	}
}

// WithTexts overrides the built-in copy.
func WithTexts(t Texts) Option {
	return func(c *Controller) {
		c.texts = t
	}
}

// NewController creates an idle controller.
func NewController(relay Relay, renderer Renderer, opts ...Option) *Controller {
	c := &Controller{
		relay:    relay,
		renderer: renderer,
		cap:      profile.DefaultCap,
		texts:    DefaultTexts(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send submits text as the next user turn and blocks until the reply, the
// limit notice or the failure message has been rendered. It returns an error
// only when the turn was not sent at all.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	switch c.state {
	case StateLimitReached:
		c.mu.Unlock()
		return ErrLimitReached
	case StateAwaitingReply:
		c.mu.Unlock()
		return ErrBusy
	}
	if c.count >= c.cap {
		c.enterLimitLocked()
		c.mu.Unlock()
		return ErrLimitReached
	}

	c.count++
	count := c.count
	c.appendLocked(BubbleUser, text, false)
	placeholder := c.appendLocked(BubbleAssistant, c.texts.Thinking, true)
	c.state = StateAwaitingReply
	c.mu.Unlock()

	reply, err := c.relay.Send(ctx, text, count)

	c.mu.Lock()
	defer c.mu.Unlock()

	var limitErr *LimitError
	switch {
	case err == nil:
		reply = strings.TrimSpace(reply)
		if reply == "" {
			reply = c.texts.NoResponse
		}
		c.resolveLocked(placeholder, reply)
		c.state = StateIdle
		if c.count >= c.cap {
			c.enterLimitLocked()
		}
	case errors.As(err, &limitErr):
		message := limitErr.Message
		if message == "" {
			message = c.texts.LimitFallback
		}
		c.resolveLocked(placeholder, message)
		c.enterLimitLocked()
	default:
		log.Warn().Err(err).Int("count", count).Msg("[widget] relay call failed")
		c.resolveLocked(placeholder, c.texts.Failure)
		c.state = StateIdle
	}
	return nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Count returns the number of turns sent so far.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Snapshot copies the conversation state.
func (c *Controller) Snapshot() ConversationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConversationState{
		Messages:     append([]Bubble(nil), c.bubbles...),
		Count:        c.count,
		LimitReached: c.state == StateLimitReached,
	}
}

func (c *Controller) appendLocked(kind BubbleKind, text string, pending bool) int {
	c.nextID++
	b := Bubble{ID: c.nextID, Kind: kind, Text: text, Pending: pending}
	c.bubbles = append(c.bubbles, b)
	c.renderer.Append(b)
	return b.ID
}

func (c *Controller) resolveLocked(id int, text string) {
	for i := range c.bubbles {
		if c.bubbles[i].ID == id {
			c.bubbles[i].Text = text
			c.bubbles[i].Pending = false
			c.renderer.Update(c.bubbles[i])
			return
		}
	}
}

func (c *Controller) enterLimitLocked() {
	if c.state == StateLimitReached {
		return
	}
	c.appendLocked(BubbleNotice, c.texts.LimitNotice, false)
	c.renderer.DisableInput()
	c.state = StateLimitReached
}

// Package relay resolves a relay request into a provider call: input shape
// selection, cap enforcement and prompt assembly.
package relay

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/aurion-studio/aurion-web/backend/internal/model/chat"
	"github.com/aurion-studio/aurion-web/backend/internal/model/profile"
	"github.com/aurion-studio/aurion-web/backend/internal/service/conversation"
)

// Completer talks to the completion provider. Complete forwards an ordered
// message list as is; Reply runs the system prompt + user message template.
type Completer interface {
	Complete(ctx context.Context, messages []chat.Message) (string, error)
	Reply(ctx context.Context, systemPrompt, query string) (string, error)
}

// turn is a resolved request: either raw messages or a prompted query.
type turn struct {
	raw    []chat.Message
	system string
	query  string
}

// Service is safe for concurrent use; it keeps no per-request state.
type Service struct {
	completer Completer
	counter   conversation.Counter
}

// Option customises a Service.
type Option func(*Service)

// WithCounter enables the server-held conversation counter.
func WithCounter(counter conversation.Counter) Option {
	return func(s *Service) {
		s.counter = counter
	}
}

// NewService creates a relay service. A nil completer means the provider
// credential is missing and every call fails with ErrNotConnected.
func NewService(completer Completer, opts ...Option) *Service {
	s := &Service{completer: completer}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connected reports whether a completion provider is configured.
func (s *Service) Connected() bool {
	return s.completer != nil
}

// Relay validates req against p, enforces the cap for single-turn requests
// and returns the trimmed reply.
func (s *Service) Relay(ctx context.Context, p profile.Profile, req chat.Request) (string, error) {
	if !s.Connected() {
		log.Error().Str("profile", p.ID).Msg("[relay] completion provider credential is not configured")
		return "", ErrNotConnected
	}

	t, err := s.resolve(ctx, p, req)
	if err != nil {
		return "", err
	}

	var reply string
	switch {
	case t.raw != nil:
		reply, err = s.completer.Complete(ctx, t.raw)
	case t.system == "":
		reply, err = s.completer.Complete(ctx, []chat.Message{chat.UserMessage(t.query)})
	default:
		reply, err = s.completer.Reply(ctx, t.system, t.query)
	}
	if err != nil {
		return "", errors.Wrapf(err, "relay profile %s", p.ID)
	}
	return strings.TrimSpace(reply), nil
}

func (s *Service) resolve(ctx context.Context, p profile.Profile, req chat.Request) (turn, error) {
	if p.AcceptsRaw() {
		raw, present, err := req.RawMessages()
		if err != nil {
			return turn{}, &ValidationError{Reason: reasonInvalidMessages}
		}
		if present {
			// Raw form is forwarded verbatim: no prompt, no cap.
			return turn{raw: raw}, nil
		}
	}

	if !p.AcceptsSingle() {
		return turn{}, &ValidationError{Reason: reasonMissingMessages}
	}

	text, ok := req.SingleMessage()
	if !ok {
		return turn{}, &ValidationError{Reason: reasonMissingMessage}
	}

	if err := s.enforceCap(ctx, p, req); err != nil {
		return turn{}, err
	}
	return turn{system: p.SystemPrompt, query: text}, nil
}

func (s *Service) enforceCap(ctx context.Context, p profile.Profile, req chat.Request) error {
	limit := p.CapOrDefault()
	count := req.Count
	admitted := count < limit

	if s.counter != nil && req.ConversationID != "" {
		var err error
		count, admitted, err = s.counter.Admit(ctx, req.ConversationID, req.Count, limit)
		if err != nil {
			return errors.Wrap(err, "admit conversation turn")
		}
	}

	if !admitted {
		log.Info().
			Str("profile", p.ID).
			Int("count", count).
			Int("cap", limit).
			Msg("[relay] conversation cap reached")
		message := p.LimitMessage
		if message == "" {
			message = profile.LimitMessage
		}
		return &RateLimitError{Message: message, Count: count, Cap: limit}
	}
	return nil
}

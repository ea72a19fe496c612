package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/aurion-studio/aurion-web/backend/internal/config"
	"github.com/aurion-studio/aurion-web/backend/internal/model/chat"
	"github.com/aurion-studio/aurion-web/backend/internal/service/ai/openai"
)

// UpstreamError reports a non-success answer from the completion provider.
// Detail carries the provider's diagnostic text unfiltered.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("completion provider error: %s", e.Detail)
	}
	return fmt.Sprintf("completion provider returned %d: %s", e.Status, e.Detail)
}

// Service sends assembled conversations to the configured chat model.
type Service struct {
	chatModel   model.BaseChatModel
	chain       compose.Runnable[map[string]any, *schema.Message]
	provider    string
	model       string
	temperature float32
	timeout     time.Duration
}

// NewService builds the chat model selected by cfg.Provider.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	var (
		chatModel model.BaseChatModel
		err       error
	)

	switch cfg.Provider {
	case config.ProviderArk:
		chatModel, err = cfg.NewArkChatModel(ctx)
	default:
		temperature := float32(cfg.Temperature)
		chatModel, err = openai.NewChatModel(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: &temperature,
		})
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s chat model", cfg.Provider)
	}

	return NewServiceWithModel(ctx, chatModel, cfg)
}

// NewServiceWithModel wraps an existing chat model and compiles the
// system + user prompt chain in front of it.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, cfg config.AIConfig) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compile chat chain")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = config.ProviderOpenAI
	}
	return &Service{
		chatModel:   chatModel,
		chain:       runnable,
		provider:    provider,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.Timeout,
	}, nil
}

// Provider names the backing provider.
func (s *Service) Provider() string {
	return s.provider
}

// GetChatModel returns the underlying chat model.
func (s *Service) GetChatModel() model.BaseChatModel {
	return s.chatModel
}

// Complete sends messages in order and returns the raw reply content.
func (s *Service) Complete(ctx context.Context, messages []chat.Message) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	reply, err := s.chatModel.Generate(ctx, toSchemaMessages(messages), s.options()...)
	if err != nil {
		return "", s.classify(err)
	}
	return s.content(reply, len(messages), start), nil
}

// Reply renders systemPrompt and query through the prompt chain and returns
// the raw reply content.
func (s *Service) Reply(ctx context.Context, systemPrompt, query string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	input := map[string]any{
		"system": systemPrompt,
		"query":  query,
	}

	start := time.Now()
	reply, err := s.chain.Invoke(ctx, input, compose.WithChatModelOption(s.options()...))
	if err != nil {
		return "", s.classify(err)
	}
	return s.content(reply, 2, start), nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return ctx, func() {}
}

func (s *Service) options() []model.Option {
	opts := []model.Option{model.WithTemperature(s.temperature)}
	if s.model != "" {
		opts = append(opts, model.WithModel(s.model))
	}
	return opts
}

func (s *Service) content(reply *schema.Message, messages int, start time.Time) string {
	if reply == nil {
		return ""
	}
	log.Debug().
		Str("provider", s.provider).
		Int("messages", messages).
		Int("length", len(reply.Content)).
		Dur("latency", time.Since(start)).
		Msg("[ai] generated response")
	return reply.Content
}

func (s *Service) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Status: apiErr.StatusCode, Detail: apiErr.Body}
	}
	if s.provider == config.ProviderArk && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		// The Ark SDK reports provider refusals as plain errors.
		return &UpstreamError{Detail: err.Error()}
	}
	return errors.Wrap(err, "failed to call completion provider")
}

func toSchemaMessages(messages []chat.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		out = append(out, &schema.Message{
			Role:    schema.RoleType(msg.Role),
			Content: msg.Content,
		})
	}
	return out
}

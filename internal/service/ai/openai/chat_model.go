// Package openai adapts the go-openai client to eino's chat model interface.
// Any OpenAI-compatible endpoint works.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"
	goopenai "github.com/sashabaranov/go-openai"
)

// APIError is returned when the provider answers with a non-2xx status.
// Body holds the provider's diagnostic text.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai: status %d: %s", e.StatusCode, e.Body)
}

// Config configures a ChatModel.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float32
	HTTPClient  *http.Client
}

// ChatModel is a non-streaming chat-completions model.
type ChatModel struct {
	client      *goopenai.Client
	model       string
	temperature *float32
}

var _ model.BaseChatModel = (*ChatModel)(nil)

// NewChatModel creates a ChatModel. Calls are bounded by the caller's context.
func NewChatModel(cfg Config) (*ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai: model is required")
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if baseURL := strings.TrimSuffix(cfg.BaseURL, "/"); baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	return &ChatModel{
		client:      goopenai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// Generate sends the conversation and returns the first choice as an
// assistant message. A missing choice yields empty content.
func (c *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{
		Model:       &c.model,
		Temperature: c.temperature,
	}, opts...)

	req := goopenai.ChatCompletionRequest{
		Model:    c.model,
		Messages: make([]goopenai.ChatCompletionMessage, 0, len(input)),
	}
	if options.Model != nil && *options.Model != "" {
		req.Model = *options.Model
	}
	if options.Temperature != nil {
		req.Temperature = *options.Temperature
	}
	for _, msg := range input {
		if msg == nil {
			continue
		}
		req.Messages = append(req.Messages, goopenai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, toAPIError(err)
	}

	content, finish := "", ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		finish = string(resp.Choices[0].FinishReason)
	}

	reply := schema.AssistantMessage(content, nil)
	reply.ResponseMeta = &schema.ResponseMeta{
		FinishReason: finish,
		Usage: &schema.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	return reply, nil
}

// Stream delivers the complete reply as a single chunk.
func (c *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := c.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// toAPIError maps go-openai status errors to APIError. A structured error
// body is re-encoded in the provider's {"error": {...}} shape; anything else
// is passed through as received.
func toAPIError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		body, marshalErr := json.Marshal(goopenai.ErrorResponse{Error: apiErr})
		if marshalErr != nil {
			body = []byte(apiErr.Message)
		}
		return &APIError{StatusCode: apiErr.HTTPStatusCode, Body: string(body)}
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{StatusCode: reqErr.HTTPStatusCode, Body: string(reqErr.Body)}
	}
	return errors.Wrap(err, "openai: chat completion")
}

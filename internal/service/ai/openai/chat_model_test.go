package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, handler http.HandlerFunc) *ChatModel {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	temperature := float32(0.6)
	cm, err := NewChatModel(Config{
		APIKey:      "sk-test",
		BaseURL:     srv.URL + "/",
		Model:       "gpt-4o-mini",
		Temperature: &temperature,
	})
	require.NoError(t, err)
	return cm
}

func TestGenerateSendsContract(t *testing.T) {
	var got map[string]any
	cm := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":" hello "},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
	})

	msg, err := cm.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("be brief"),
		schema.UserMessage("hi"),
	})
	require.NoError(t, err)

	assert.Equal(t, " hello ", msg.Content)
	assert.Equal(t, schema.Assistant, msg.Role)
	require.NotNil(t, msg.ResponseMeta)
	assert.Equal(t, "stop", msg.ResponseMeta.FinishReason)
	assert.Equal(t, 4, msg.ResponseMeta.Usage.TotalTokens)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.InDelta(t, 0.6, got["temperature"], 1e-6)
	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "hi", messages[1].(map[string]any)["content"])
}

func TestGenerateOptionOverridesModel(t *testing.T) {
	var got map[string]any
	cm := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	msg, err := cm.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")},
		model.WithModel("gpt-4o"), model.WithTemperature(0.2))
	require.NoError(t, err)

	assert.Equal(t, "", msg.Content)
	assert.Equal(t, "gpt-4o", got["model"])
	assert.InDelta(t, 0.2, got["temperature"], 1e-6)
}

func TestGenerateNonSuccessStatus(t *testing.T) {
	cm := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("rate limited"))
	})

	_, err := cm.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "rate limited", apiErr.Body)
}

func TestGenerateStructuredErrorKeepsProviderMessage(t *testing.T) {
	cm := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached for gpt-4o-mini","type":"requests","code":"rate_limit_exceeded"}}`))
	})

	_, err := cm.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(apiErr.Body), &body))
	assert.Equal(t, "Rate limit reached for gpt-4o-mini", body["error"]["message"])
	assert.Equal(t, "rate_limit_exceeded", body["error"]["code"])
}

func TestGenerateMalformedBody(t *testing.T) {
	cm := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	_, err := cm.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestStreamWrapsSingleChunk(t *testing.T) {
	cm := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"chunk"}}]}`))
	})

	sr, err := cm.Stream(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	defer sr.Close()

	msg, err := sr.Recv()
	require.NoError(t, err)
	assert.Equal(t, "chunk", msg.Content)

	_, err = sr.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestNewChatModelRequiresCredential(t *testing.T) {
	_, err := NewChatModel(Config{Model: "gpt-4o-mini"})
	assert.Error(t, err)
}

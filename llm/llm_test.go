package llm

import (
	"context"
	"errors"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// recordingModel returns a fixed answer and records what it was asked.
type recordingModel struct {
	answer   string
	err      error
	calls    int
	messages []llms.MessageContent
	options  llms.CallOptions
}

func (m *recordingModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.calls++
	m.messages = messages
	m.options = llms.CallOptions{}
	for _, opt := range options {
		opt(&m.options)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.answer}},
	}, nil
}

func (m *recordingModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

type fakeChatClient struct {
	req  goopenai.ChatCompletionRequest
	resp goopenai.ChatCompletionResponse
	err  error
}

func (c *fakeChatClient) CreateChatCompletion(_ context.Context, req goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error) {
	c.req = req
	return c.resp, c.err
}

func TestProviderFor(t *testing.T) {
	assert.Equal(t, ProviderAnthropic, ProviderFor("claude-3-haiku-20240307"))
	assert.Equal(t, ProviderAnthropic, ProviderFor("Claude-3-5-sonnet"))
	assert.Equal(t, ProviderEcho, ProviderFor("echo"))
	assert.Equal(t, ProviderOpenAI, ProviderFor("gpt-4o-mini"))
	assert.Equal(t, ProviderOpenAI, ProviderFor(""))
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	m, err := New(ctx, Options{Model: "echo"})
	require.NoError(t, err)
	assert.IsType(t, &EchoModel{}, m)

	m, err = New(ctx, Options{Model: "gpt-4o-mini", APIKey: "test-key"})
	require.NoError(t, err)
	assert.NotNil(t, m)

	m, err = New(ctx, Options{Model: "claude-3-haiku-20240307", APIKey: "test-key"})
	require.NoError(t, err)
	assert.NotNil(t, m)

	m, err = New(ctx, Options{Provider: ProviderAzure, Model: "gpt4", APIKey: "k", BaseURL: "https://example.openai.azure.com"})
	require.NoError(t, err)
	assert.IsType(t, &ChatModel{}, m)

	_, err = New(ctx, Options{Provider: ProviderAzure, Model: "gpt4"})
	assert.Error(t, err)

	_, err = New(ctx, Options{Provider: "mystery"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestEchoModel(t *testing.T) {
	ctx := context.Background()
	m := NewEchoModel()

	out, err := Complete(ctx, m, "Answer with one word only", "Paris", nil)
	require.NoError(t, err)
	assert.Equal(t, "Paris", out)

	out, err = m.Call(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

func TestComplete(t *testing.T) {
	m := &recordingModel{answer: "  Paris \n"}

	out, err := Complete(context.Background(), m, "Answer with one word only", "Capital of France?", map[string]any{
		"temperature": 0.2,
		"max_tokens":  "64",
		"stop":        []any{"\n"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris", out)

	require.Len(t, m.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, m.messages[0].Role)
	assert.Equal(t, "Answer with one word only", textOf(m.messages[0]))
	assert.Equal(t, llms.ChatMessageTypeHuman, m.messages[1].Role)
	assert.Equal(t, "Capital of France?", textOf(m.messages[1]))
	assert.Equal(t, 0.2, m.options.Temperature)
	assert.Equal(t, 64, m.options.MaxTokens)
	assert.Equal(t, []string{"\n"}, m.options.StopWords)
}

func TestCompleteWithoutSystem(t *testing.T) {
	m := &recordingModel{answer: "ok"}
	_, err := Complete(context.Background(), m, "", "ping", nil)
	require.NoError(t, err)
	require.Len(t, m.messages, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, m.messages[0].Role)
}

func TestCompleteErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Complete(ctx, &recordingModel{}, "", "q", map[string]any{"temperature": "hot"})
	assert.Error(t, err)

	_, err = Complete(ctx, &recordingModel{}, "", "q", map[string]any{"max_tokens": []string{"x"}})
	assert.Error(t, err)

	boom := errors.New("rate limited")
	_, err = Complete(ctx, &recordingModel{err: boom}, "", "q", nil)
	assert.ErrorIs(t, err, boom)
}

func TestChatModel(t *testing.T) {
	client := &fakeChatClient{
		resp: goopenai.ChatCompletionResponse{
			Choices: []goopenai.ChatCompletionChoice{{
				Message:      goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleAssistant, Content: "Paris"},
				FinishReason: goopenai.FinishReasonStop,
			}},
			Usage: goopenai.Usage{PromptTokens: 10, CompletionTokens: 1, TotalTokens: 11},
		},
	}
	m := NewChatModel(client, "gpt4-deployment")

	out, err := Complete(context.Background(), m, "Be brief", "Capital of France?", map[string]any{
		"temperature": 0.5,
		"max_tokens":  8,
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris", out)

	assert.Equal(t, "gpt4-deployment", client.req.Model)
	assert.Equal(t, float32(0.5), client.req.Temperature)
	assert.Equal(t, 8, client.req.MaxTokens)
	require.Len(t, client.req.Messages, 2)
	assert.Equal(t, goopenai.ChatMessageRoleSystem, client.req.Messages[0].Role)
	assert.Equal(t, goopenai.ChatMessageRoleUser, client.req.Messages[1].Role)
	assert.Equal(t, "Capital of France?", client.req.Messages[1].Content)
}

func TestChatModelErrors(t *testing.T) {
	m := NewChatModel(&fakeChatClient{}, "gpt4")
	_, err := m.Call(context.Background(), "q")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	boom := errors.New("unauthorized")
	m = NewChatModel(&fakeChatClient{err: boom}, "gpt4")
	_, err = m.Call(context.Background(), "q")
	assert.ErrorIs(t, err, boom)
}

func TestLazyModel(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache()
	m := NewLazyModel(Options{Model: "echo"}, func(inner llms.Model) llms.Model {
		return NewCachedModel(inner, cache)
	})
	assert.Equal(t, "echo", m.Options().Model)

	out, err := m.Call(ctx, "ping")
	require.NoError(t, err)
	assert.Equal(t, "ping", out)
	assert.Equal(t, 1, cache.Len())

	bad := NewLazyModel(Options{Provider: "mystery"}, nil)
	_, err = bad.Call(ctx, "ping")
	assert.ErrorIs(t, err, ErrUnknownProvider)
	_, err = bad.Call(ctx, "again")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

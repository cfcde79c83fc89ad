package llm

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// EchoModel answers with the text of the last human message. It needs no
// network access.
type EchoModel struct{}

// NewEchoModel creates an echo model.
func NewEchoModel() *EchoModel {
	return &EchoModel{}
}

func (m *EchoModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	var answer string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llms.ChatMessageTypeHuman {
			answer = textOf(messages[i])
			break
		}
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: answer, StopReason: "stop"}},
	}, nil
}

func (m *EchoModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func textOf(msg llms.MessageContent) string {
	var parts []string
	for _, p := range msg.Parts {
		if t, ok := p.(llms.TextContent); ok {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, "\n")
}

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/tmc/langchaingo/llms"
)

// CallOptions converts a configuration map into call options. Recognized
// keys are temperature, max_tokens, top_p and stop.
func CallOptions(cfg map[string]any) ([]llms.CallOption, error) {
	var opts []llms.CallOption
	if v, ok := cfg["temperature"]; ok && v != nil {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("invalid temperature %v: %w", v, err)
		}
		opts = append(opts, llms.WithTemperature(f))
	}
	if v, ok := cfg["max_tokens"]; ok && v != nil {
		n, err := cast.ToIntE(v)
		if err != nil {
			return nil, fmt.Errorf("invalid max_tokens %v: %w", v, err)
		}
		opts = append(opts, llms.WithMaxTokens(n))
	}
	if v, ok := cfg["top_p"]; ok && v != nil {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("invalid top_p %v: %w", v, err)
		}
		opts = append(opts, llms.WithTopP(f))
	}
	if v, ok := cfg["stop"]; ok && v != nil {
		words, err := cast.ToStringSliceE(v)
		if err != nil {
			return nil, fmt.Errorf("invalid stop %v: %w", v, err)
		}
		opts = append(opts, llms.WithStopWords(words))
	}
	return opts, nil
}

// Complete sends a system and a human message to model and returns the text
// of the first choice.
func Complete(ctx context.Context, model llms.Model, system, prompt string, cfg map[string]any) (string, error) {
	opts, err := CallOptions(cfg)
	if err != nil {
		return "", err
	}

	var messages []llms.MessageContent
	if system != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	resp, err := model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

// Providers understood by New.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderAzure     = "azure"
	ProviderEcho      = "echo"
)

var (
	// ErrUnknownProvider is returned for a provider New cannot build.
	ErrUnknownProvider = errors.New("unknown llm provider")

	// ErrEmptyResponse is returned when a model produces no choices.
	ErrEmptyResponse = errors.New("empty llm response")
)

// Options selects and configures a model.
type Options struct {
	// Provider is one of openai, anthropic, azure or echo. Empty infers it
	// from Model.
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	// APIVersion is only used by azure deployments.
	APIVersion string
}

// ProviderFor infers the provider from a model name.
func ProviderFor(model string) string {
	m := strings.ToLower(model)
	switch {
	case m == ProviderEcho:
		return ProviderEcho
	case strings.HasPrefix(m, "claude"):
		return ProviderAnthropic
	default:
		return ProviderOpenAI
	}
}

// New creates a model. Credentials not set in opts are read by the
// underlying SDK from its usual environment variables.
func New(_ context.Context, opts Options) (llms.Model, error) {
	provider := opts.Provider
	if provider == "" {
		provider = ProviderFor(opts.Model)
	}

	switch provider {
	case ProviderEcho:
		return NewEchoModel(), nil

	case ProviderOpenAI:
		var o []openai.Option
		if opts.Model != "" {
			o = append(o, openai.WithModel(opts.Model))
		}
		if opts.APIKey != "" {
			o = append(o, openai.WithToken(opts.APIKey))
		}
		if opts.BaseURL != "" {
			o = append(o, openai.WithBaseURL(opts.BaseURL))
		}
		m, err := openai.New(o...)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai model: %w", err)
		}
		return m, nil

	case ProviderAnthropic:
		var o []anthropic.Option
		if opts.Model != "" {
			o = append(o, anthropic.WithModel(opts.Model))
		}
		if opts.APIKey != "" {
			o = append(o, anthropic.WithToken(opts.APIKey))
		}
		if opts.BaseURL != "" {
			o = append(o, anthropic.WithBaseURL(opts.BaseURL))
		}
		m, err := anthropic.New(o...)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic model: %w", err)
		}
		return m, nil

	case ProviderAzure:
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("azure model %q requires a base url", opts.Model)
		}
		cfg := goopenai.DefaultAzureConfig(opts.APIKey, opts.BaseURL)
		if opts.APIVersion != "" {
			cfg.APIVersion = opts.APIVersion
		}
		return NewChatModel(goopenai.NewClientWithConfig(cfg), opts.Model), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
}

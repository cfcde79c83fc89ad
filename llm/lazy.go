package llm

import (
	"context"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// LazyModel creates its model on first use, so configurations naming a
// hosted model can be instantiated without credentials.
type LazyModel struct {
	opts Options
	wrap func(llms.Model) llms.Model

	once  sync.Once
	model llms.Model
	err   error
}

// NewLazyModel returns a model built by New on first use. wrap, when not
// nil, decorates the created model (for example with a cache).
func NewLazyModel(opts Options, wrap func(llms.Model) llms.Model) *LazyModel {
	return &LazyModel{opts: opts, wrap: wrap}
}

// Options returns the options the model is created with.
func (m *LazyModel) Options() Options {
	return m.opts
}

func (m *LazyModel) get(ctx context.Context) (llms.Model, error) {
	m.once.Do(func() {
		m.model, m.err = New(ctx, m.opts)
		if m.err == nil && m.wrap != nil {
			m.model = m.wrap(m.model)
		}
	})
	return m.model, m.err
}

func (m *LazyModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	model, err := m.get(ctx)
	if err != nil {
		return nil, err
	}
	return model.GenerateContent(ctx, messages, options...)
}

func (m *LazyModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

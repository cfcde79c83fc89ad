package ragqa_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/hp"
	"github.com/smallnest/hypernodes/hypernode"
	"github.com/smallnest/hypernodes/llm"
	"github.com/smallnest/hypernodes/pipelines/ragqa"
	"github.com/smallnest/hypernodes/pipelines/tfidfranker"
)

// firstWordModel answers with the first word of the best ranked chunk.
type firstWordModel struct {
	system string
	prompt string
	opts   llms.CallOptions
}

func (m *firstWordModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, o := range options {
		o(&m.opts)
	}
	for _, msg := range messages {
		text := msg.Parts[0].(llms.TextContent).Text
		switch msg.Role {
		case llms.ChatMessageTypeSystem:
			m.system = text
		case llms.ChatMessageTypeHuman:
			m.prompt = text
		}
	}
	_, chunks, _ := strings.Cut(m.prompt, "top k chunks: \n")
	answer := strings.Fields(chunks + " none")[0]
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: answer}}}, nil
}

func (m *firstWordModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func writeTexts(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"france.txt":  "Paris is the capital of France.\n\nFrance is famous for wine and cheese.",
		"germany.txt": "Berlin is the capital of Germany.\n\nGermany is known for its beer.",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func newLibrary(t *testing.T, model llms.Model) *hypernode.Library {
	t.Helper()
	reg := dataflow.NewModuleRegistry()
	require.NoError(t, reg.Register(tfidfranker.Module(), ragqa.Module()))

	factories := hp.Factories{
		tfidfranker.FactoryKind: tfidfranker.VectorizerFactory,
		ragqa.FactoryKind: func(context.Context, map[string]any) (any, error) {
			return model, nil
		},
	}
	lib := hypernode.NewLibrary(t.TempDir(), reg, hypernode.WithFactories(factories))
	require.NoError(t, lib.Save(tfidfranker.Node()))
	require.NoError(t, lib.Save(ragqa.Node()))
	return lib
}

func TestConfigDefaults(t *testing.T) {
	res, err := hp.Evaluate(context.Background(), ragqa.Config(), hp.WithResolver(staticResolver{}), hp.WithDryRun())
	require.NoError(t, err)

	byName := map[string]hp.ParamSpec{}
	for _, p := range res.Params {
		byName[p.Name] = p
	}
	assert.Equal(t, "paragraph", byName["chunker"].Value)
	assert.Equal(t, "gpt-4o-mini", byName["llm_model"].Value)
	assert.Equal(t, []any{"mini", "haiku", "sonnet", "echo"}, byName["llm_model"].Options)
	assert.Equal(t, 0.0, byName["temperature"].Value)
	assert.Equal(t, 64, byName["max_tokens"].Value)
	assert.Equal(t, "Answer with one word only", byName["system_prompt"].Value)
	assert.Equal(t, 20, byName["ranker.top_k"].Value)
	assert.Nil(t, res.Values["llm"])
}

type staticResolver struct{}

func (staticResolver) Resolve(context.Context, string) (hp.NodeRef, error) {
	return tfidfranker.Node(), nil
}

func TestAnswerQuestion(t *testing.T) {
	ctx := context.Background()
	model := &firstWordModel{}
	lib := newLibrary(t, model)

	node, err := lib.Load(ragqa.Name)
	require.NoError(t, err)
	require.NoError(t, node.InstantiateInputs(ctx, nil, map[string]any{
		"texts_path":   writeTexts(t),
		"query":        "What is the capital of Germany?",
		"ranker.top_k": 1,
	}, false))

	out, err := node.Execute(ctx, []string{"llm_response", "top_k_chunks"}, node.Inputs())
	require.NoError(t, err)
	assert.Equal(t, "Berlin", out["llm_response"])
	assert.Equal(t, []string{"Berlin is the capital of Germany."}, out["top_k_chunks"])

	assert.Equal(t, "Answer with one word only", model.system)
	assert.Equal(t, "Here's the user query: \nWhat is the capital of Germany?\n and here are the top k chunks: \nBerlin is the capital of Germany.", model.prompt)
	assert.Equal(t, 64, model.opts.MaxTokens)
	assert.Equal(t, 0.0, model.opts.Temperature)
}

func TestTextChunksByChunker(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t, &firstWordModel{})
	dir := writeTexts(t)

	for chunker, want := range map[string]int{"paragraph": 4, "semantic": 4, "text": 2} {
		t.Run(chunker, func(t *testing.T) {
			node, err := lib.Load(ragqa.Name)
			require.NoError(t, err)
			require.NoError(t, node.InstantiateInputs(ctx, map[string]any{"chunker": chunker}, map[string]any{"texts_path": dir}, false))

			out, err := node.Execute(ctx, []string{"text_chunks"}, node.Inputs())
			require.NoError(t, err)
			assert.Len(t, out["text_chunks"], want)
		})
	}
}

func TestNodeInputsOfLLMResponse(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t, &firstWordModel{})

	node, err := lib.Load(ragqa.Name)
	require.NoError(t, err)
	require.NoError(t, node.InstantiateInputs(ctx, nil, map[string]any{
		"texts_path": writeTexts(t),
		"query":      "capital of France",
	}, false))

	in, err := node.NodeInputs(ctx, "llm_response")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"query_with_context", "llm", "llm_config", "system_prompt"}, keys(in))
	assert.Contains(t, in["query_with_context"], "Paris is the capital of France.")
}

func TestMissingTexts(t *testing.T) {
	ctx := context.Background()
	lib := newLibrary(t, &firstWordModel{})

	node, err := lib.Load(ragqa.Name)
	require.NoError(t, err)
	require.NoError(t, node.InstantiateInputs(ctx, nil, map[string]any{"texts_path": filepath.Join(t.TempDir(), "missing")}, false))

	_, err = node.Execute(ctx, []string{"llm_response"}, node.Inputs())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "error in node texts")
}

func TestLLMFactory(t *testing.T) {
	ctx := context.Background()
	providers := map[string]llm.Options{
		llm.ProviderOpenAI:    {APIKey: "openai-key"},
		llm.ProviderAnthropic: {APIKey: "anthropic-key", BaseURL: "https://anthropic.example"},
	}
	factory := ragqa.LLMFactory(providers, llm.NewMemoryCache())

	v, err := factory(ctx, map[string]any{"model": "claude-3-haiku-20240307"})
	require.NoError(t, err)
	m, ok := v.(*llm.LazyModel)
	require.True(t, ok)
	assert.Equal(t, llm.Options{
		Provider: llm.ProviderAnthropic,
		Model:    "claude-3-haiku-20240307",
		APIKey:   "anthropic-key",
		BaseURL:  "https://anthropic.example",
	}, m.Options())

	v, err = factory(ctx, map[string]any{"model": "gpt-4o-mini", "base_url": "http://localhost:8080/v1"})
	require.NoError(t, err)
	assert.Equal(t, llm.Options{
		Provider: llm.ProviderOpenAI,
		Model:    "gpt-4o-mini",
		APIKey:   "openai-key",
		BaseURL:  "http://localhost:8080/v1",
	}, v.(*llm.LazyModel).Options())

	v, err = factory(ctx, map[string]any{"model": "echo"})
	require.NoError(t, err)
	answer, err := llm.Complete(ctx, v.(llms.Model), "sys", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", answer)

	_, err = factory(ctx, map[string]any{})
	assert.Error(t, err)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

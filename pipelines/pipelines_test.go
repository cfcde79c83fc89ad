package pipelines_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/hypernodes/hp"
	"github.com/smallnest/hypernodes/hypernode"
	"github.com/smallnest/hypernodes/llm"
	"github.com/smallnest/hypernodes/log"
	"github.com/smallnest/hypernodes/pipelines"
	"github.com/smallnest/hypernodes/pipelines/ragqa"
	"github.com/smallnest/hypernodes/tracking/memory"
)

// firstWordModel answers with the first word of the best ranked chunk.
type firstWordModel struct{}

func (firstWordModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	prompt := messages[len(messages)-1].Parts[0].(llms.TextContent).Text
	_, chunks, _ := strings.Cut(prompt, "top k chunks: \n")
	answer := strings.Fields(chunks + " none")[0]
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: answer}}}, nil
}

func (m firstWordModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func writeData(t *testing.T) (textsPath, queriesPath string) {
	t.Helper()
	dir := t.TempDir()
	textsPath = filepath.Join(dir, "raw")
	require.NoError(t, os.Mkdir(textsPath, 0o755))
	files := map[string]string{
		"france.txt":  "Paris is the capital of France.\n\nFrance is famous for wine and cheese.",
		"germany.txt": "Berlin is the capital of Germany.\n\nGermany is known for its beer.",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(textsPath, name), []byte(content), 0o644))
	}
	queriesPath = filepath.Join(dir, "qa.csv")
	csv := "question,answer\nWhat is the capital of France?,paris\nWhat is the capital of Germany?,Berlin\n"
	require.NoError(t, os.WriteFile(queriesPath, []byte(csv), 0o644))
	return textsPath, queriesPath
}

func TestRegistry(t *testing.T) {
	reg, err := pipelines.Registry()
	require.NoError(t, err)
	for _, name := range []string{"tfidf_ranker", "rag_qa", "batch_qa"} {
		_, err := reg.Get(name)
		assert.NoError(t, err, name)
	}

	f := pipelines.Factories(pipelines.Deps{})
	assert.Len(t, f, 3)
	assert.Contains(t, f, "tfidf")
	assert.Contains(t, f, "llm")
	assert.Contains(t, f, "builder")
}

func TestBatchQA(t *testing.T) {
	textsPath, queriesPath := writeData(t)
	store := memory.NewMemoryRunStore()

	reg, err := pipelines.Registry()
	require.NoError(t, err)
	factories := pipelines.Factories(pipelines.Deps{Store: store, Logger: &log.NoOpLogger{}})
	factories[ragqa.FactoryKind] = func(context.Context, map[string]any) (any, error) {
		return firstWordModel{}, nil
	}

	lib := hypernode.NewLibrary(t.TempDir(), reg, hypernode.WithFactories(factories))
	require.NoError(t, pipelines.Export(lib))

	names, err := lib.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"batch_qa", "rag_qa", "tfidf_ranker"}, names)

	node, err := lib.Load("batch_qa")
	require.NoError(t, err)
	require.NoError(t, node.InstantiateInputs(context.Background(), nil, map[string]any{
		"queries_path":        queriesPath,
		"texts_path":          textsPath,
		"experiment":          "capitals",
		"rag_qa.ranker.top_k": 1,
	}, false))

	out, err := node.Execute(context.Background(), []string{"accuracy"}, node.Inputs())
	require.NoError(t, err)
	assert.Equal(t, 1.0, out["accuracy"])

	runs, err := store.List(context.Background(), "capitals")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "batch_qa", runs[0].Node)
	assert.Equal(t, 1.0, runs[0].Metrics["accuracy"])
	assert.Equal(t, queriesPath, runs[0].Params["queries_path"])
}

func TestBatchQAWithoutTracking(t *testing.T) {
	textsPath, queriesPath := writeData(t)
	store := memory.NewMemoryRunStore()

	reg, err := pipelines.Registry()
	require.NoError(t, err)
	factories := pipelines.Factories(pipelines.Deps{Store: store})
	factories[ragqa.FactoryKind] = func(context.Context, map[string]any) (any, error) {
		return firstWordModel{}, nil
	}
	lib := hypernode.NewLibrary(t.TempDir(), reg, hypernode.WithFactories(factories))
	require.NoError(t, pipelines.Export(lib))

	node, err := lib.Load("batch_qa")
	require.NoError(t, err)
	require.NoError(t, node.InstantiateInputs(context.Background(),
		map[string]any{"use_tracking": false},
		map[string]any{"queries_path": queriesPath, "texts_path": textsPath, "rag_qa.ranker.top_k": 1},
		false))

	out, err := node.Execute(context.Background(), []string{"accuracy"}, node.Inputs())
	require.NoError(t, err)
	assert.Equal(t, 1.0, out["accuracy"])

	runs, err := store.List(context.Background(), "hypernodes")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestNestedParams(t *testing.T) {
	reg, err := pipelines.Registry()
	require.NoError(t, err)
	lib := hypernode.NewLibrary(t.TempDir(), reg)
	require.NoError(t, pipelines.Export(lib))

	node, err := lib.Load("batch_qa")
	require.NoError(t, err)
	params, err := hp.Params(context.Background(), node.Config(), hp.WithResolver(lib))
	require.NoError(t, err)

	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	assert.Contains(t, names, "queries_path")
	assert.Contains(t, names, "rag_qa.chunker")
	assert.Contains(t, names, "rag_qa.llm_model")
	assert.Contains(t, names, "rag_qa.ranker.top_k")
	assert.Contains(t, names, "rag_qa.ranker.ngram_range")
	assert.Contains(t, names, "use_tracking")
}

func TestShippedNodes(t *testing.T) {
	reg, err := pipelines.Registry()
	require.NoError(t, err)
	factories := pipelines.Factories(pipelines.Deps{
		Providers: map[string]llm.Options{llm.ProviderEcho: {}},
	})
	lib := hypernode.NewLibrary(filepath.Join("..", "nodes"), reg, hypernode.WithFactories(factories))

	names, err := lib.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"batch_qa", "rag_qa", "tfidf_ranker"}, names)

	for _, name := range names {
		node, err := lib.Load(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, node.Name())
	}

	node, err := lib.Load("rag_qa")
	require.NoError(t, err)
	require.NoError(t, node.InstantiateInputs(context.Background(),
		map[string]any{"llm_model": "echo"},
		map[string]any{"texts_path": filepath.Join("..", "data", "raw"), "query": "What is the capital of Japan?"},
		false))
	out, err := node.Execute(context.Background(), []string{"top_k_chunks"}, node.Inputs())
	require.NoError(t, err)
	chunks := out["top_k_chunks"].([]string)
	require.NotEmpty(t, chunks)
	assert.Contains(t, chunks[0], "Tokyo")
}

// Package ragqa is the retrieval augmented question answering node.
//
// It loads the texts of texts_path, chunks them, asks the ranker node for
// the chunks closest to the query and sends them with the query to the llm.
// The final variable is llm_response.
package ragqa

import (
	"context"
	_ "embed"
	"fmt"
	"maps"
	"strings"

	"github.com/spf13/cast"
	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/hp"
	"github.com/smallnest/hypernodes/hypernode"
	"github.com/smallnest/hypernodes/llm"
	"github.com/smallnest/hypernodes/rag"
	"github.com/smallnest/hypernodes/rag/loader"
	"github.com/smallnest/hypernodes/rag/splitter"
)

// Name is the node and module name.
const Name = "rag_qa"

// FactoryKind is the factory kind that builds models.
const FactoryKind = "llm"

//go:embed config.hcl
var configSource []byte

// Config returns the node configuration document.
func Config() *hp.Document {
	return hp.MustParseDocument(configSource, Name+"_hp_config.hcl")
}

// Module returns the question answering functions.
func Module() *dataflow.Module {
	return dataflow.NewModule(Name,
		dataflow.MustFunc("texts", texts, "texts_path"),
		dataflow.MustFunc("text_chunks", textChunks, "texts", "chunker"),
		dataflow.MustFunc("top_k_chunks", topKChunks, "ranker", "text_chunks", "query"),
		dataflow.MustFunc("query_with_context", queryWithContext, "top_k_chunks", "query"),
		dataflow.MustFunc("llm_response", llmResponse, "query_with_context", "llm", "llm_config", "system_prompt"),
	)
}

// Node returns a new, uninstantiated question answering node. Its ranker is
// resolved through the resolver option when inputs are instantiated.
func Node(opts ...hypernode.Option) *hypernode.Node {
	return hypernode.New(Name, []*dataflow.Module{Module()}, Config(), opts...)
}

func texts(ctx context.Context, textsPath string) ([]string, error) {
	docs, err := loader.NewDirectoryLoader(textsPath).Load(ctx)
	if err != nil {
		return nil, err
	}
	return rag.Contents(docs), nil
}

func textChunks(texts []string, chunker string) ([]string, error) {
	return splitter.Chunk(chunker, texts)
}

// topKChunks runs the ranker with its instantiated inputs plus the chunks
// and the query.
func topKChunks(ctx context.Context, ranker hypernode.Executor, textChunks []string, query string) ([]string, error) {
	if ranker == nil {
		return nil, fmt.Errorf("no ranker node")
	}
	inputs := ranker.Inputs()
	if inputs == nil {
		inputs = make(map[string]any)
	}
	maps.Copy(inputs, map[string]any{"text_chunks": textChunks, "query": query})

	out, err := ranker.Execute(ctx, []string{"top_k_chunks"}, inputs)
	if err != nil {
		return nil, fmt.Errorf("ranker: %w", err)
	}
	chunks, err := cast.ToStringSliceE(out["top_k_chunks"])
	if err != nil {
		return nil, fmt.Errorf("ranker returned %T: %w", out["top_k_chunks"], err)
	}
	return chunks, nil
}

func queryWithContext(topKChunks []string, query string) string {
	return "Here's the user query: \n" + query +
		"\n and here are the top k chunks: \n" + strings.Join(topKChunks, ", ")
}

func llmResponse(ctx context.Context, queryWithContext string, model llms.Model, llmConfig map[string]any, systemPrompt string) (string, error) {
	if model == nil {
		return "", fmt.Errorf("no llm")
	}
	return llm.Complete(ctx, model, systemPrompt, queryWithContext, llmConfig)
}

// LLMFactory builds lazily created models. The model arg selects the model
// and the provider arg, when set, its provider. providers holds the
// credentials and base urls per provider; base_url and api_key args override
// them. cache, when not nil, memoizes responses.
func LLMFactory(providers map[string]llm.Options, cache llm.Cache) hp.FactoryFunc {
	return func(_ context.Context, args map[string]any) (any, error) {
		model := cast.ToString(args["model"])
		if model == "" {
			return nil, fmt.Errorf("llm factory: no model")
		}
		provider := cast.ToString(args["provider"])
		if provider == "" {
			provider = llm.ProviderFor(model)
		}

		opts := providers[provider]
		opts.Provider = provider
		opts.Model = model
		if u := cast.ToString(args["base_url"]); u != "" {
			opts.BaseURL = u
		}
		if k := cast.ToString(args["api_key"]); k != "" {
			opts.APIKey = k
		}

		var wrap func(llms.Model) llms.Model
		if cache != nil {
			wrap = func(m llms.Model) llms.Model { return llm.NewCachedModel(m, cache) }
		}
		return llm.NewLazyModel(opts, wrap), nil
	}
}

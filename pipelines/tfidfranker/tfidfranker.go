// Package tfidfranker is the node that ranks text chunks against a query by
// TF-IDF cosine similarity.
//
// Inputs are text_chunks, query, top_k and an unfitted vectorizer built by
// the "tfidf" factory. The final variable is top_k_chunks.
package tfidfranker

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/spf13/cast"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/hp"
	"github.com/smallnest/hypernodes/hypernode"
	"github.com/smallnest/hypernodes/rag/tfidf"
)

// Name is the node and module name.
const Name = "tfidf_ranker"

// FactoryKind is the factory kind that builds vectorizers.
const FactoryKind = "tfidf"

//go:embed config.hcl
var configSource []byte

// Config returns the node configuration document.
func Config() *hp.Document {
	return hp.MustParseDocument(configSource, Name+"_hp_config.hcl")
}

// Module returns the ranking functions.
func Module() *dataflow.Module {
	return dataflow.NewModule(Name,
		dataflow.MustFunc("fitted_vectorizer", fittedVectorizer, "vectorizer", "text_chunks"),
		dataflow.MustFunc("vectorized_texts", vectorizedTexts, "fitted_vectorizer", "text_chunks"),
		dataflow.MustFunc("vectorized_query", vectorizedQuery, "fitted_vectorizer", "query"),
		dataflow.MustFunc("similarities", similarities, "vectorized_query", "vectorized_texts"),
		dataflow.MustFunc("top_k_chunks", topKChunks, "text_chunks", "similarities", "top_k"),
	)
}

// Node returns a new, uninstantiated ranker node.
func Node(opts ...hypernode.Option) *hypernode.Node {
	return hypernode.New(Name, []*dataflow.Module{Module()}, Config(), opts...)
}

// fittedVectorizer fits a copy so the input vectorizer stays reusable.
func fittedVectorizer(vectorizer *tfidf.Vectorizer, textChunks []string) (*tfidf.Vectorizer, error) {
	if vectorizer == nil {
		return nil, fmt.Errorf("no vectorizer")
	}
	v := vectorizer.Clone()
	if err := v.Fit(textChunks); err != nil {
		return nil, err
	}
	return v, nil
}

func vectorizedTexts(fitted *tfidf.Vectorizer, textChunks []string) ([]tfidf.Vector, error) {
	return fitted.Transform(textChunks)
}

func vectorizedQuery(fitted *tfidf.Vectorizer, query string) (tfidf.Vector, error) {
	vecs, err := fitted.Transform([]string{query})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func similarities(query tfidf.Vector, texts []tfidf.Vector) []float64 {
	return tfidf.Similarities(query, texts)
}

func topKChunks(textChunks []string, scores []float64, topK int) ([]string, error) {
	return tfidf.TopK(textChunks, scores, topK)
}

// VectorizerFactory builds an unfitted vectorizer from the args
// ngram_range ([min, max]), analyzer and lowercase.
func VectorizerFactory(_ context.Context, args map[string]any) (any, error) {
	v := tfidf.NewVectorizer()
	if r, ok := args["ngram_range"]; ok && r != nil {
		bounds, err := cast.ToIntSliceE(r)
		if err != nil || len(bounds) != 2 {
			return nil, fmt.Errorf("%w: ngram_range %v", tfidf.ErrInvalidOption, r)
		}
		v.NgramMin, v.NgramMax = bounds[0], bounds[1]
	}
	if a, ok := args["analyzer"]; ok && a != nil {
		v.Analyzer = cast.ToString(a)
	}
	if l, ok := args["lowercase"]; ok && l != nil {
		lower, err := cast.ToBoolE(l)
		if err != nil {
			return nil, fmt.Errorf("%w: lowercase %v", tfidf.ErrInvalidOption, l)
		}
		v.Lowercase = lower
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

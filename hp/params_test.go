package hp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTitle(t *testing.T) {
	tests := map[string]string{
		"rag_qa":                 "RAG QA",
		"llm_model":              "LLM Model",
		"rag_qa.system_prompt":   "RAG QA System Prompt",
		"top_k":                  "Top K",
		"fitted_vectorizer":      "Fitted Vectorizer",
		"batch_qa.rag_qa.ranker": "Batch QA RAG QA Ranker",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatTitle(in), in)
	}

	assert.Equal(t, "Max Tokens", ParamSpec{Name: "max_tokens"}.Title())
}

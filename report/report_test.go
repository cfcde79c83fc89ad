package report

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/hp"
	"github.com/smallnest/hypernodes/hypernode"
)

func testReport(t *testing.T) Report {
	t.Helper()
	m := dataflow.NewModule("qa",
		dataflow.MustFunc("answer", func(q string) string { return "Paris" }, "query"),
	)
	n := hypernode.New("rag_qa", []*dataflow.Module{m}, nil)
	require.NoError(t, n.InstantiateInputs(context.Background(), nil, nil, false))
	out, err := n.Execute(context.Background(), []string{"answer"}, map[string]any{"query": "capital?"})
	require.NoError(t, err)

	params := []hp.ParamSpec{
		{Kind: hp.KindSelect, Name: "llm_model", Options: []any{"mini", "echo"}, Default: "gpt-4o-mini", Value: "echo"},
		{Kind: hp.KindInt, Name: "ranker.top_k", Default: 20, Value: 1},
	}
	return FromNode(n, params, out)
}

func TestMarkdown(t *testing.T) {
	md := Markdown(testReport(t))

	assert.True(t, strings.HasPrefix(md, "# RAG QA\n"))
	assert.Contains(t, md, "| llm_model | echo | gpt-4o-mini |")
	assert.Contains(t, md, "| ranker.top_k | 1 | 20 |")
	assert.Contains(t, md, "### Answer\n\nParis")
	assert.Contains(t, md, "```mermaid\nflowchart TD")
}

func TestMarkdownValues(t *testing.T) {
	md := Markdown(Report{
		Node: "batch_qa",
		Results: map[string]any{
			"accuracy":      0.75,
			"llm_responses": []string{"Paris", "Berlin"},
			"user_queries":  []map[string]string{{"question": "q"}},
		},
	})
	assert.Contains(t, md, "### Accuracy\n\n0.75")
	assert.Contains(t, md, "- Paris\n- Berlin\n")
	assert.Contains(t, md, "```json\n[\n  {\n    \"question\": \"q\"")
	assert.NotContains(t, md, "## Configuration")
	assert.NotContains(t, md, "## Graph")
}

func TestHTMLIsSanitized(t *testing.T) {
	out := string(HTML(Report{
		Node:    "rag_qa",
		Results: map[string]any{"llm_response": "<script>alert(1)</script>**Paris**"},
	}))
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>Paris</strong>")
	assert.NotContains(t, out, "<script>")
}

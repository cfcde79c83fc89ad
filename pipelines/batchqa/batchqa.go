// Package batchqa is the node that evaluates the rag_qa node on a file of
// questions with expected answers.
//
// The queries file is CSV with a header naming a question and an answer
// column. The final variable is accuracy, the share of responses equal to
// the expected answer ignoring case and surrounding space.
package batchqa

import (
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"github.com/spf13/cast"

	"github.com/smallnest/hypernodes/dataflow"
	"github.com/smallnest/hypernodes/hp"
	"github.com/smallnest/hypernodes/hypernode"
	"github.com/smallnest/hypernodes/log"
	"github.com/smallnest/hypernodes/tracking"
)

// Name is the node and module name.
const Name = "batch_qa"

// FactoryKind is the factory kind that builds graph builders.
const FactoryKind = "builder"

// ErrNoQueries is returned when there is nothing to score.
var ErrNoQueries = errors.New("no queries")

//go:embed config.hcl
var configSource []byte

// Config returns the node configuration document.
func Config() *hp.Document {
	return hp.MustParseDocument(configSource, Name+"_hp_config.hcl")
}

// QA is a question with its expected answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Module returns the evaluation functions.
func Module() *dataflow.Module {
	return dataflow.NewModule(Name,
		dataflow.MustFunc("user_queries", userQueries, "queries_path"),
		dataflow.MustFunc("questions", questions, "user_queries"),
		dataflow.MustFunc("answers", answers, "user_queries"),
		dataflow.MustFunc("llm_responses", llmResponses, "questions", "texts_path", "rag_qa"),
		dataflow.MustFunc("accuracy", accuracy, "llm_responses", "answers"),
	)
}

// Node returns a new, uninstantiated evaluation node.
func Node(opts ...hypernode.Option) *hypernode.Node {
	return hypernode.New(Name, []*dataflow.Module{Module()}, Config(), opts...)
}

// ReadQueries reads a CSV file with question and answer columns.
func ReadQueries(path string) ([]QA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open queries %s: %w", path, err)
	}
	defer f.Close()
	return parseQueries(f, path)
}

func parseQueries(r io.Reader, name string) ([]QA, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}
	qi, ai := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "question":
			qi = i
		case "answer":
			ai = i
		}
	}
	if qi < 0 || ai < 0 {
		return nil, fmt.Errorf("%s: header must name question and answer columns, got %v", name, header)
	}

	var out []QA
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		out = append(out, QA{Question: rec[qi], Answer: rec[ai]})
	}
	return out, nil
}

func userQueries(queriesPath string) ([]QA, error) {
	return ReadQueries(queriesPath)
}

func questions(queries []QA) []string {
	out := make([]string, len(queries))
	for i, q := range queries {
		out[i] = q.Question
	}
	return out
}

func answers(queries []QA) []string {
	out := make([]string, len(queries))
	for i, q := range queries {
		out[i] = q.Answer
	}
	return out
}

// llmResponses asks the rag_qa node every question in turn, reusing its
// instantiated inputs.
func llmResponses(ctx context.Context, questions []string, textsPath string, ragQA hypernode.Executor) ([]string, error) {
	if ragQA == nil {
		return nil, fmt.Errorf("no rag_qa node")
	}
	base := ragQA.Inputs()
	responses := make([]string, 0, len(questions))
	for i, q := range questions {
		inputs := maps.Clone(base)
		if inputs == nil {
			inputs = make(map[string]any)
		}
		inputs["query"] = q
		inputs["texts_path"] = textsPath

		out, err := ragQA.Execute(ctx, []string{"llm_response"}, inputs)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		responses = append(responses, cast.ToString(out["llm_response"]))
	}
	return responses, nil
}

// Accuracy returns the share of responses matching their answer, ignoring
// case and surrounding space.
func Accuracy(responses, expected []string) (float64, error) {
	if len(responses) != len(expected) {
		return 0, fmt.Errorf("%d responses for %d answers", len(responses), len(expected))
	}
	if len(expected) == 0 {
		return 0, ErrNoQueries
	}
	correct := 0
	for i := range expected {
		if strings.EqualFold(strings.TrimSpace(responses[i]), strings.TrimSpace(expected[i])) {
			correct++
		}
	}
	return float64(correct) / float64(len(expected)), nil
}

func accuracy(responses, answers []string) (float64, error) {
	return Accuracy(responses, answers)
}

// BuilderFactory builds the graph builder of a node. With the tracking arg
// set and a store available, runs are recorded under the experiment arg.
func BuilderFactory(store tracking.Store, logger log.Logger) hp.FactoryFunc {
	return func(_ context.Context, args map[string]any) (any, error) {
		b := dataflow.NewBuilder()
		if logger != nil {
			b = b.WithLogger(logger)
		}

		track, err := cast.ToBoolE(args["tracking"])
		if err != nil {
			return nil, fmt.Errorf("builder factory: tracking: %w", err)
		}
		if !track {
			return b, nil
		}
		if store == nil {
			if logger != nil {
				logger.Warn("tracking requested but no tracking store is configured")
			}
			return b, nil
		}

		experiment := cast.ToString(args["experiment"])
		if experiment == "" {
			experiment = "default"
		}
		opts := []tracking.TrackerOption{tracking.WithNodeName(cast.ToString(args["node"]))}
		if logger != nil {
			opts = append(opts, tracking.WithTrackerLogger(logger))
		}
		return b.WithAdapters(tracking.NewTracker(store, experiment, opts...)), nil
	}
}

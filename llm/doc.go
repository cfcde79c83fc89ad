// Package llm creates the completion models used by the question answering
// pipelines.
//
// Models are langchaingo llms.Model values. New picks a provider from the
// options or the model name:
//
//	model, err := llm.New(ctx, llm.Options{Model: "gpt-4o-mini"})
//	answer, err := llm.Complete(ctx, model, "Answer with one word only", "Capital of France?", map[string]any{
//		"temperature": 0,
//		"max_tokens":  16,
//	})
//
// The "echo" model answers offline and is used by tests and dry runs. Azure
// deployments go through ChatModel, a go-openai client adapted to llms.Model.
//
// CachedModel memoizes responses in a Cache keyed by the request messages and
// call options. MemoryCache and RedisCache are provided.
package llm

// Package rag holds the retrieval building blocks used by the question
// answering pipelines.
//
// # Core Types
//
// Document is a piece of text with metadata. Loaders produce documents,
// splitters cut them into chunks:
//
//	type Document struct {
//		ID       string
//		Content  string
//		Metadata map[string]any
//	}
//
// # Subpackages
//
// rag/loader/
// Document loaders for text and HTML files and whole directories
//
//	docs, err := loader.NewDirectoryLoader("data/raw").Load(ctx)
//
// rag/splitter/
// Text splitting strategies, selected by chunker name
//
//	s, err := splitter.ForChunker("paragraph")
//	chunks := s.SplitText(text)
//
// rag/tfidf/
// A TF-IDF vectorizer with cosine ranking
//
//	v := tfidf.NewVectorizer(tfidf.WithNgramRange(1, 3))
//	texts, _ := v.FitTransform(chunks)
//	q, _ := v.Transform([]string{query})
//	top, _ := tfidf.TopK(chunks, tfidf.Similarities(q[0], texts), 5)
package rag // import "github.com/smallnest/hypernodes/rag"

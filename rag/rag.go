package rag

import "context"

// Document is a unit of text with metadata.
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DocumentLoader loads documents from a source.
type DocumentLoader interface {
	Load(ctx context.Context) ([]Document, error)
}

// TextSplitter cuts text into chunks.
type TextSplitter interface {
	// SplitText splits one text
	SplitText(text string) []string

	// SplitDocuments splits documents, copying metadata onto every chunk
	SplitDocuments(documents []Document) []Document
}

// Contents returns the content of each document.
func Contents(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Content
	}
	return out
}

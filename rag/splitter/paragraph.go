package splitter

import (
	"regexp"
	"strings"

	"github.com/smallnest/hypernodes/rag"
)

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// ParagraphSplitter splits text on blank lines. Paragraphs are trimmed and
// empty ones dropped.
type ParagraphSplitter struct{}

// NewParagraphSplitter creates a new ParagraphSplitter
func NewParagraphSplitter() *ParagraphSplitter {
	return &ParagraphSplitter{}
}

// SplitText splits text into paragraphs
func (s *ParagraphSplitter) SplitText(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range blankLine.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitDocuments splits documents into paragraphs
func (s *ParagraphSplitter) SplitDocuments(documents []rag.Document) []rag.Document {
	return splitDocuments(s, documents)
}

// IdentitySplitter keeps each text as a single chunk.
type IdentitySplitter struct{}

// SplitText returns text unchanged
func (IdentitySplitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []string{text}
}

// SplitDocuments returns one chunk per document
func (s IdentitySplitter) SplitDocuments(documents []rag.Document) []rag.Document {
	return splitDocuments(s, documents)
}

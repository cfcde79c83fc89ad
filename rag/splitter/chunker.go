package splitter

import (
	"errors"
	"fmt"

	"github.com/smallnest/hypernodes/rag"
)

// Chunker names accepted by ForChunker.
const (
	ChunkerParagraph = "paragraph"
	ChunkerSemantic  = "semantic"
	ChunkerText      = "text"
)

// ErrUnknownChunker is returned by ForChunker for an unsupported name.
var ErrUnknownChunker = errors.New("unknown chunker")

// ForChunker returns the splitter for a chunker name.
func ForChunker(name string) (rag.TextSplitter, error) {
	switch name {
	case ChunkerParagraph:
		return NewParagraphSplitter(), nil
	case ChunkerSemantic:
		return NewSentenceSplitter(3, 500), nil
	case ChunkerText:
		return IdentitySplitter{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownChunker, name)
}

// Chunk splits every text with the named chunker.
func Chunk(name string, texts []string) ([]string, error) {
	s, err := ForChunker(name)
	if err != nil {
		return nil, err
	}
	chunks := []string{}
	for _, t := range texts {
		chunks = append(chunks, s.SplitText(t)...)
	}
	return chunks, nil
}

package splitter

import (
	"maps"
	"strings"

	"github.com/smallnest/hypernodes/rag"
)

// SimpleTextSplitter splits text into windows of at most ChunkSize bytes,
// preferring to break after Separator
type SimpleTextSplitter struct {
	ChunkSize    int
	ChunkOverlap int
	Separator    string
}

// NewSimpleTextSplitter creates a new SimpleTextSplitter
func NewSimpleTextSplitter(chunkSize, chunkOverlap int) *SimpleTextSplitter {
	return &SimpleTextSplitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Separator:    "\n\n",
	}
}

// SplitText splits text into chunks
func (s *SimpleTextSplitter) SplitText(text string) []string {
	if s.ChunkSize <= 0 || len(text) <= s.ChunkSize {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{strings.TrimSpace(text)}
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := min(start+s.ChunkSize, len(text))

		// Try to break at a separator
		if end < len(text) && s.Separator != "" {
			lastSep := strings.LastIndex(text[start:end], s.Separator)
			if lastSep > 0 {
				end = start + lastSep + len(s.Separator)
			}
		}

		if chunk := strings.TrimSpace(text[start:end]); chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(text) {
			break
		}

		nextStart := end - s.ChunkOverlap
		if nextStart <= start {
			// The chunk was shorter than the overlap
			nextStart = end
		}
		start = nextStart
	}

	return chunks
}

// SplitDocuments splits documents into smaller chunks
func (s *SimpleTextSplitter) SplitDocuments(documents []rag.Document) []rag.Document {
	return splitDocuments(s, documents)
}

// splitDocuments applies a splitter to every document, recording the chunk
// position in the metadata.
func splitDocuments(s rag.TextSplitter, documents []rag.Document) []rag.Document {
	var result []rag.Document

	for _, doc := range documents {
		chunks := s.SplitText(doc.Content)
		for i, chunk := range chunks {
			newDoc := rag.Document{
				ID:       doc.ID,
				Content:  chunk,
				Metadata: make(map[string]any, len(doc.Metadata)+2),
			}

			maps.Copy(newDoc.Metadata, doc.Metadata)
			newDoc.Metadata["chunk_index"] = i
			newDoc.Metadata["total_chunks"] = len(chunks)

			result = append(result, newDoc)
		}
	}

	return result
}

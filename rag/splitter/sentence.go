package splitter

import (
	"strings"
	"unicode"

	"github.com/smallnest/hypernodes/rag"
)

// SentenceSplitter groups consecutive sentences into chunks of at most
// MaxSentences sentences and roughly ChunkSize bytes. Paragraph breaks always
// end a chunk, so chunks stay within one topic.
type SentenceSplitter struct {
	MaxSentences int
	ChunkSize    int
}

// NewSentenceSplitter creates a new SentenceSplitter
func NewSentenceSplitter(maxSentences, chunkSize int) *SentenceSplitter {
	return &SentenceSplitter{MaxSentences: maxSentences, ChunkSize: chunkSize}
}

// SplitText splits text into sentence windows
func (s *SentenceSplitter) SplitText(text string) []string {
	var chunks []string
	for _, para := range NewParagraphSplitter().SplitText(text) {
		var cur []string
		size := 0
		flush := func() {
			if len(cur) > 0 {
				chunks = append(chunks, strings.Join(cur, " "))
				cur, size = nil, 0
			}
		}
		for _, sentence := range Sentences(para) {
			full := s.MaxSentences > 0 && len(cur) >= s.MaxSentences
			long := s.ChunkSize > 0 && size > 0 && size+len(sentence)+1 > s.ChunkSize
			if full || long {
				flush()
			}
			cur = append(cur, sentence)
			size += len(sentence) + 1
		}
		flush()
	}
	return chunks
}

// SplitDocuments splits documents into sentence windows
func (s *SentenceSplitter) SplitDocuments(documents []rag.Document) []rag.Document {
	return splitDocuments(s, documents)
}

// Sentences splits text after '.', '!' or '?' when followed by whitespace
// or the end of the text. Whitespace inside a sentence is collapsed.
func Sentences(text string) []string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	var out []string
	start := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

package loader

import (
	"context"
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/smallnest/hypernodes/rag"
)

// HTMLLoader loads the visible text of an HTML file. Scripts, styles and
// other non-content elements are dropped.
type HTMLLoader struct {
	filePath string
	selector string
	metadata map[string]any
}

// HTMLLoaderOption configures the HTMLLoader
type HTMLLoaderOption func(*HTMLLoader)

// WithSelector restricts extraction to the elements matching a CSS selector.
// The default is "body".
func WithSelector(selector string) HTMLLoaderOption {
	return func(l *HTMLLoader) {
		l.selector = selector
	}
}

// WithHTMLMetadata sets additional metadata for loaded documents
func WithHTMLMetadata(metadata map[string]any) HTMLLoaderOption {
	return func(l *HTMLLoader) {
		maps.Copy(l.metadata, metadata)
	}
}

// NewHTMLLoader creates a new HTMLLoader
func NewHTMLLoader(filePath string, opts ...HTMLLoaderOption) *HTMLLoader {
	l := &HTMLLoader{
		filePath: filePath,
		selector: "body",
		metadata: map[string]any{
			"source": filePath,
			"type":   "html",
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses the file and returns its text as one document
func (l *HTMLLoader) Load(ctx context.Context) ([]rag.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", l.filePath, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html %s: %w", l.filePath, err)
	}

	metadata := maps.Clone(l.metadata)
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		metadata["title"] = title
	}

	return []rag.Document{{
		ID:       fmt.Sprintf("html_%s", l.filePath),
		Content:  VisibleText(doc.Selection, l.selector),
		Metadata: metadata,
	}}, nil
}

// VisibleText returns the text of the elements matching selector with
// scripts and styles removed. Block elements are separated by blank lines.
func VisibleText(sel *goquery.Selection, selector string) string {
	root := sel.Find(selector)
	if root.Length() == 0 {
		root = sel
	}
	root = root.Clone()
	root.Find("script, style, noscript, template, head").Remove()

	var blocks []string
	root.Find("p, h1, h2, h3, h4, h5, h6, li, pre, blockquote, td, th").Each(func(_ int, s *goquery.Selection) {
		if s.Find("p, li, pre, blockquote").Length() > 0 {
			return
		}
		if text := normalizeSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	if len(blocks) == 0 {
		return normalizeSpace(root.Text())
	}
	return strings.Join(blocks, "\n\n")
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

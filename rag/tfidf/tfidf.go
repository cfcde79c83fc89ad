// Package tfidf implements a TF-IDF vectorizer with cosine similarity
// ranking over word or character n-grams.
package tfidf

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Analyzers accepted by the vectorizer.
const (
	AnalyzerWord = "word"
	AnalyzerChar = "char"
)

var (
	// ErrNotFitted is returned when transforming before Fit.
	ErrNotFitted = errors.New("vectorizer is not fitted")

	// ErrEmptyVocabulary is returned when the fitted texts produce no terms.
	ErrEmptyVocabulary = errors.New("empty vocabulary")

	// ErrInvalidOption is returned for an unusable analyzer or n-gram range.
	ErrInvalidOption = errors.New("invalid vectorizer option")
)

var wordPattern = regexp.MustCompile(`\w\w+`)

// Vector is a sparse vector indexed by vocabulary position.
type Vector map[int]float64

// Vectorizer turns texts into L2-normalized TF-IDF vectors.
type Vectorizer struct {
	NgramMin  int
	NgramMax  int
	Analyzer  string
	Lowercase bool

	vocabulary map[string]int
	idf        []float64
}

// Option configures a Vectorizer.
type Option func(*Vectorizer)

// WithNgramRange sets the inclusive n-gram range.
func WithNgramRange(lo, hi int) Option {
	return func(v *Vectorizer) {
		v.NgramMin, v.NgramMax = lo, hi
	}
}

// WithAnalyzer sets the analyzer, word or char.
func WithAnalyzer(analyzer string) Option {
	return func(v *Vectorizer) { v.Analyzer = analyzer }
}

// WithLowercase sets whether texts are lowercased before analysis.
func WithLowercase(lower bool) Option {
	return func(v *Vectorizer) { v.Lowercase = lower }
}

// NewVectorizer creates a word unigram vectorizer that lowercases input,
// adjusted by opts.
func NewVectorizer(opts ...Option) *Vectorizer {
	v := &Vectorizer{
		NgramMin:  1,
		NgramMax:  1,
		Analyzer:  AnalyzerWord,
		Lowercase: true,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Clone returns an unfitted vectorizer with the same options.
func (v *Vectorizer) Clone() *Vectorizer {
	return &Vectorizer{
		NgramMin:  v.NgramMin,
		NgramMax:  v.NgramMax,
		Analyzer:  v.Analyzer,
		Lowercase: v.Lowercase,
	}
}

// Validate checks the analyzer and n-gram range.
func (v *Vectorizer) Validate() error {
	if v.Analyzer != AnalyzerWord && v.Analyzer != AnalyzerChar {
		return fmt.Errorf("%w: analyzer %q", ErrInvalidOption, v.Analyzer)
	}
	if v.NgramMin < 1 || v.NgramMax < v.NgramMin {
		return fmt.Errorf("%w: ngram range (%d, %d)", ErrInvalidOption, v.NgramMin, v.NgramMax)
	}
	return nil
}

// Fitted reports whether Fit succeeded.
func (v *Vectorizer) Fitted() bool {
	return v.vocabulary != nil
}

// Vocabulary returns the fitted terms in index order.
func (v *Vectorizer) Vocabulary() []string {
	terms := make([]string, len(v.vocabulary))
	for t, i := range v.vocabulary {
		terms[i] = t
	}
	return terms
}

// Fit learns the vocabulary and the smoothed inverse document frequency
// ln((1+n)/(1+df))+1 of every term.
func (v *Vectorizer) Fit(texts []string) error {
	if err := v.Validate(); err != nil {
		return err
	}

	df := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]bool)
		for _, term := range v.Analyze(text) {
			if !seen[term] {
				seen[term] = true
				df[term]++
			}
		}
	}
	if len(df) == 0 {
		return ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	n := float64(len(texts))
	for i, t := range terms {
		v.vocabulary[t] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return nil
}

// Transform returns one vector per text. Terms outside the vocabulary are
// ignored; a text without known terms yields an empty vector.
func (v *Vectorizer) Transform(texts []string) ([]Vector, error) {
	if !v.Fitted() {
		return nil, ErrNotFitted
	}

	out := make([]Vector, len(texts))
	for i, text := range texts {
		vec := Vector{}
		for _, term := range v.Analyze(text) {
			if idx, ok := v.vocabulary[term]; ok {
				vec[idx]++
			}
		}
		var norm float64
		for idx, tf := range vec {
			w := tf * v.idf[idx]
			vec[idx] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for idx := range vec {
				vec[idx] /= norm
			}
		}
		out[i] = vec
	}
	return out, nil
}

// FitTransform fits texts and transforms them.
func (v *Vectorizer) FitTransform(texts []string) ([]Vector, error) {
	if err := v.Fit(texts); err != nil {
		return nil, err
	}
	return v.Transform(texts)
}

// Analyze returns the n-gram terms of text.
func (v *Vectorizer) Analyze(text string) []string {
	if v.Lowercase {
		text = strings.ToLower(text)
	}

	var units []string
	sep := " "
	switch v.Analyzer {
	case AnalyzerChar:
		for _, r := range strings.Join(strings.Fields(text), " ") {
			units = append(units, string(r))
		}
		sep = ""
	default:
		units = wordPattern.FindAllString(text, -1)
	}

	var terms []string
	for n := v.NgramMin; n <= v.NgramMax; n++ {
		for i := 0; i+n <= len(units); i++ {
			terms = append(terms, strings.Join(units[i:i+n], sep))
		}
	}
	return terms
}

// Cosine returns the cosine similarity of two vectors, 0 when either is
// empty.
func Cosine(a, b Vector) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var dot, na, nb float64
	for i, x := range a {
		dot += x * b[i]
		na += x * x
	}
	for _, y := range b {
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Similarities returns the cosine similarity of query with each vector.
func Similarities(query Vector, vectors []Vector) []float64 {
	out := make([]float64, len(vectors))
	for i, vec := range vectors {
		out[i] = Cosine(query, vec)
	}
	return out
}

// TopK returns at most k items ordered by descending score. Equal scores
// keep their input order.
func TopK[T any](items []T, scores []float64, k int) ([]T, error) {
	if len(items) != len(scores) {
		return nil, fmt.Errorf("tfidf: %d items but %d scores", len(items), len(scores))
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

	k = max(min(k, len(items)), 0)
	out := make([]T, k)
	for i := 0; i < k; i++ {
		out[i] = items[idx[i]]
	}
	return out, nil
}

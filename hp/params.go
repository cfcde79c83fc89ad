package hp

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Parameter kinds.
const (
	KindSelect = "select"
	KindText   = "text"
	KindNumber = "number"
	KindInt    = "int"
)

// ParamSpec describes a configuration parameter for display and editing.
type ParamSpec struct {
	Kind string `json:"kind"`
	// Name is dotted for parameters of nested configurations.
	Name string `json:"name"`
	// Options are the option values of a select, or its keys for keyed options.
	Options []any `json:"options,omitempty"`
	Default any   `json:"default"`
	Value   any   `json:"value"`
}

// Title returns the display name of the parameter.
func (p ParamSpec) Title() string {
	return FormatTitle(p.Name)
}

var acronyms = map[string]string{
	"rag": "RAG",
	"llm": "LLM",
	"qa":  "QA",
}

// FormatTitle turns a parameter or function name into a display title.
//
//	FormatTitle("rag_qa.llm_model") // "RAG QA LLM Model"
func FormatTitle(name string) string {
	caser := cases.Title(language.English)
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '.' })
	for i, w := range words {
		if a, ok := acronyms[strings.ToLower(w)]; ok {
			words[i] = a
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// Package highlight splits a line of pseudocode into styled text runs,
// marking the words that belong to a keyword set.
//
// Lines are split before and after every space and parenthesis, so
// "(SE x)" yields the runs "(", "SE", " ", "x", ")". A run is a keyword when
// its upper-cased text is in the set, which makes matching case-insensitive.
package highlight

import (
	"strings"
)

// Run is a piece of text with uniform styling.
type Run struct {
	Text    string `json:"text"`
	Keyword bool   `json:"keyword,omitempty"`
}

// Keywords is a set of upper-case words to emphasise.
type Keywords map[string]bool

// NewKeywords builds a keyword set from words.
func NewKeywords(words ...string) Keywords {
	kw := make(Keywords, len(words))
	for _, w := range words {
		kw[strings.ToUpper(w)] = true
	}
	return kw
}

// Has reports whether word is a keyword, ignoring case.
func (k Keywords) Has(word string) bool {
	return k[strings.ToUpper(word)]
}

// Pseudocode is the keyword set of the flat pseudocode transcription.
var Pseudocode = NewKeywords(
	"SE", "ALLORA", "ALTRIMENTI", "RIPETI", "FINCHE'",
	"INIZIO", "FINE", "OR", "AND", "NOT",
	"FINE-SE", "FINE-RIPETI", "RICHIAMA",
)

// StructuredPaper is the keyword set used inside the structured-paper diagram.
var StructuredPaper = NewKeywords(
	"(", ")", "ELSE", "SE", "UNTIL",
	"INIZIO", "FINE", "OR", "AND", "NOT",
	"RICHIAMA", "SKIP",
)

// Highlight splits line into runs and marks the ones found in kw.
// An empty line yields a single empty run.
func Highlight(line string, kw Keywords) []Run {
	words := split(line)
	runs := make([]Run, len(words))
	for i, w := range words {
		runs[i] = Run{Text: w, Keyword: kw.Has(w)}
	}
	return runs
}

// Plain returns text as a single unstyled run.
func Plain(text string) []Run {
	return []Run{{Text: text}}
}

// String joins the text of runs.
func String(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// split cuts line before and after every delimiter; delimiters become
// words of their own.
func split(line string) []string {
	if line == "" {
		return []string{""}
	}

	var words []string
	start := 0
	for i := 0; i < len(line); i++ {
		if !isDelimiter(line[i]) {
			continue
		}
		if i > start {
			words = append(words, line[start:i])
		}
		words = append(words, line[i:i+1])
		start = i + 1
	}
	if start < len(line) {
		words = append(words, line[start:])
	}
	return words
}

func isDelimiter(b byte) bool {
	return b == ' ' || b == '(' || b == ')'
}

package pseudocode

import (
	"slices"
	"strings"
)

// Block keywords of the dialect.
const (
	KeywordBegin     = "INIZIO"
	KeywordEnd       = "FINE"
	KeywordThen      = "ALLORA"
	KeywordElse      = "ALTRIMENTI"
	KeywordEndIf     = "FINE-SE"
	KeywordUntil     = "FINCHE'"
	KeywordEndRepeat = "FINE-RIPETI"

	// Header lines that introduce a conditional or a loop. They carry no
	// row of their own in the diagram.
	KeywordIf     = "SE"
	KeywordRepeat = "RIPETI"
)

// Values of synthetic nodes inserted by the builder.
const (
	SyntheticOr   = "OR"
	SyntheticSkip = "SKIP"
)

// pair maps an opening keyword to the keywords that close it.
type pair struct {
	opener  string
	closers []string
}

// pairs is the keyword pair table, in match order.
var pairs = []pair{
	{KeywordBegin, []string{KeywordEnd}},
	{KeywordThen, []string{KeywordEndIf, KeywordElse}},
	{KeywordElse, []string{KeywordEndIf}},
	{KeywordUntil, []string{KeywordEndRepeat}},
}

// closerSet holds every keyword that closes some block.
var closerSet = func() map[string]bool {
	m := make(map[string]bool)
	for _, p := range pairs {
		for _, c := range p.closers {
			m[c] = true
		}
	}
	return m
}()

// Openers returns the opening keywords in match order.
func Openers() []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.opener
	}
	return out
}

// Closers returns the keywords that close opener, or nil if opener does not
// open a block.
func Closers(opener string) []string {
	for _, p := range pairs {
		if p.opener == opener {
			return slices.Clone(p.closers)
		}
	}
	return nil
}

// IsCloser reports whether word closes some block.
func IsCloser(word string) bool {
	return closerSet[word]
}

// openerOf returns the opening keyword value starts with, if any.
func openerOf(value string) (string, bool) {
	for _, p := range pairs {
		if hasKeywordPrefix(value, p.opener) {
			return p.opener, true
		}
	}
	return "", false
}

// closes reports whether value ends with one of opener's closing keywords.
func closes(value, opener string) bool {
	for _, p := range pairs {
		if p.opener != opener {
			continue
		}
		for _, c := range p.closers {
			if hasKeywordSuffix(value, c) {
				return true
			}
		}
	}
	return false
}

// hasKeywordPrefix reports whether value starts with kw followed by the end
// of the line or whitespace. ALLORAX does not start with ALLORA.
func hasKeywordPrefix(value, kw string) bool {
	if !strings.HasPrefix(value, kw) {
		return false
	}
	return len(value) == len(kw) || isSpace(value[len(kw)])
}

// hasKeywordSuffix reports whether value ends with kw preceded by the start
// of the line or whitespace.
func hasKeywordSuffix(value, kw string) bool {
	if !strings.HasSuffix(value, kw) {
		return false
	}
	rest := len(value) - len(kw)
	return rest == 0 || isSpace(value[rest-1])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

// firstWord returns the first whitespace-separated token of value.
func firstWord(value string) string {
	if f := strings.Fields(value); len(f) > 0 {
		return f[0]
	}
	return ""
}

// IsConditionHeader reports whether value is a "SE <condition>" line.
func IsConditionHeader(value string) bool {
	return firstWord(value) == KeywordIf
}

// isHeader reports whether value introduces a conditional or a loop.
func isHeader(value string) bool {
	w := firstWord(value)
	return w == KeywordIf || w == KeywordRepeat
}

// leafSize is the number of rows a plain line occupies: closing keywords and
// header lines take none.
func leafSize(value string) int {
	if IsCloser(firstWord(value)) || isHeader(value) {
		return 0
	}
	return 1
}

// padding returns the size of a block opened by opener whose children occupy
// raw rows. Conditional branches get a minimum slot of two rows; every other
// block reserves one row above and one below its body.
func padding(opener string, raw int) int {
	if (opener == KeywordThen || opener == KeywordElse) && raw < 2 {
		return 2
	}
	return raw + 2
}

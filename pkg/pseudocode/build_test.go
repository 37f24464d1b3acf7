package pseudocode

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/cartastrutturata/pkg/errors"
)

func leaf(value string, size int) *Node {
	return &Node{Value: value, Size: size}
}

func block(value string, size int, children ...*Node) *Node {
	if children == nil {
		children = []*Node{}
	}
	return &Node{Value: value, Size: size, Content: children}
}

// skipElse is the branch inserted after a conditional without ALTRIMENTI.
func skipElse() []*Node {
	return []*Node{leaf("OR", 1), block("ALTRIMENTI", 2, leaf("SKIP", 1))}
}

var ignorePosition = cmpopts.IgnoreFields(Node{}, "Line", "Synthetic")

const (
	simpleCondition = `SE VAR = true
ALLORA
    Azione 1
FINE-SE`

	multilineCondition = `SE VAR = true
ALLORA
    Azione 1
    Azione 2
    Imposta VAR = false
FINE-SE`

	ifElseProgram = `INIZIO
    SE VAR = true
    ALLORA
        Azione 1
    ALTRIMENTI
        Imposta VAR = false
    FINE-SE
FINE`

	simpleCycle = `RIPETI
FINCHE' EOF
    Azione1
    Azione2
FINE-RIPETI
Imposta END = true`

	smallProgram = `RIPETI
FINCHE' CIAO = true
    Azione1
    Azione2

    SE EOF AND TEMPERATURA > 10
    ALLORA
        Azione1
    ALTRIMENTI
        Azione2
        Azione3
    FINE-SE
FINE-RIPETI`

	mediumProgram = "INIZIO\nApertura File I/O\nLettura fuori ciclo record INPUT\n\nSE EOF\nALLORA\n\tStampa \"Archivio Vuoto\"\nALTRIMENTI\n\tRIPETI\n\tFINCHE' CIAO = true\n\t\tAzione1\n\t\tAzione2\n\n\t\tSE EOF AND TEMPERATURA > 10\n\t\tALLORA\n\t\t\tAzione1\n\t\tALTRIMENTI\n\t\t\tAzione2\n\t\t\tAzione3\n\t\tFINE-SE\n\tFINE-RIPETI\nFINE-SE\nChiusura file I/O\nFINE"

	nestedInThen = `SE a
ALLORA
    SE b
    ALLORA
        x
    FINE-SE
FINE-SE`
)

// loopBody is the FINCHE' block shared by the small and medium programs.
func loopBody() *Node {
	return block("FINCHE' CIAO = true", 12,
		leaf("Azione1", 1),
		leaf("Azione2", 1),
		leaf("", 1),
		leaf("SE EOF AND TEMPERATURA > 10", 0),
		block("ALLORA", 2, leaf("Azione1", 1)),
		leaf("OR", 1),
		block("ALTRIMENTI", 4, leaf("Azione2", 1), leaf("Azione3", 1)),
		leaf("FINE-SE", 0),
	)
}

var scenarios = []struct {
	name string
	code string
	want []*Node
}{
	{
		name: "simple condition",
		code: simpleCondition,
		want: append(append([]*Node{
			leaf("SE VAR = true", 0),
			block("ALLORA", 2, leaf("Azione 1", 1)),
		}, skipElse()...), leaf("FINE-SE", 0)),
	},
	{
		name: "multiline condition",
		code: multilineCondition,
		want: append(append([]*Node{
			leaf("SE VAR = true", 0),
			block("ALLORA", 5, leaf("Azione 1", 1), leaf("Azione 2", 1), leaf("Imposta VAR = false", 1)),
		}, skipElse()...), leaf("FINE-SE", 0)),
	},
	{
		name: "if-else inside program",
		code: ifElseProgram,
		want: []*Node{
			block("INIZIO", 7,
				leaf("SE VAR = true", 0),
				block("ALLORA", 2, leaf("Azione 1", 1)),
				leaf("OR", 1),
				block("ALTRIMENTI", 2, leaf("Imposta VAR = false", 1)),
				leaf("FINE-SE", 0),
			),
			leaf("FINE", 0),
		},
	},
	{
		name: "simple cycle",
		code: simpleCycle,
		want: []*Node{
			leaf("RIPETI", 0),
			block("FINCHE' EOF", 4, leaf("Azione1", 1), leaf("Azione2", 1)),
			leaf("FINE-RIPETI", 0),
			leaf("Imposta END = true", 1),
		},
	},
	{
		name: "small program",
		code: smallProgram,
		want: []*Node{
			leaf("RIPETI", 0),
			loopBody(),
			leaf("FINE-RIPETI", 0),
		},
	},
	{
		name: "medium program",
		code: mediumProgram,
		want: []*Node{
			block("INIZIO", 23,
				leaf("Apertura File I/O", 1),
				leaf("Lettura fuori ciclo record INPUT", 1),
				leaf("", 1),
				leaf("SE EOF", 0),
				block("ALLORA", 2, leaf(`Stampa "Archivio Vuoto"`, 1)),
				leaf("OR", 1),
				block("ALTRIMENTI", 14,
					leaf("RIPETI", 0),
					loopBody(),
					leaf("FINE-RIPETI", 0),
				),
				leaf("FINE-SE", 0),
				leaf("Chiusura file I/O", 1),
			),
			leaf("FINE", 0),
		},
	},
	{
		name: "conditional nested directly in a branch",
		code: nestedInThen,
		want: append(append([]*Node{
			leaf("SE a", 0),
			block("ALLORA", 7, append(append([]*Node{
				leaf("SE b", 0),
				block("ALLORA", 2, leaf("x", 1)),
			}, skipElse()...), leaf("FINE-SE", 0))...),
		}, skipElse()...), leaf("FINE-SE", 0)),
	},
}

func TestParseScenarios(t *testing.T) {
	for _, tt := range scenarios {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.code)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, ignorePosition); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseScenariosStrict(t *testing.T) {
	for _, tt := range scenarios {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.code, WithStrict()); err != nil {
				t.Errorf("Parse(strict) error on well-formed input: %v", err)
			}
		})
	}
}

func TestBlockSizesArePadded(t *testing.T) {
	for _, tt := range scenarios {
		t.Run(tt.name, func(t *testing.T) {
			forest, _ := Parse(tt.code)
			Walk(forest, func(n *Node, _ int) bool {
				if kw := n.Opener(); kw != "" {
					if want := padding(kw, Size(n.Content)); n.Size != want {
						t.Errorf("%q size = %d, want %d", n.Value, n.Size, want)
					}
					if n.Size < 2 {
						t.Errorf("%q size = %d, blocks span at least 2 rows", n.Value, n.Size)
					}
				}
				return true
			})
		})
	}
}

func TestImplicitElseFollowsBareThen(t *testing.T) {
	for _, tt := range scenarios {
		t.Run(tt.name, func(t *testing.T) {
			forest, _ := Parse(tt.code)
			var check func(nodes []*Node)
			check = func(nodes []*Node) {
				for i, n := range nodes {
					if n.IsBlock() {
						check(n.Content)
					}
					if n.Opener() != KeywordThen {
						continue
					}
					if i+2 >= len(nodes) {
						t.Fatalf("ALLORA at index %d has no following branch", i)
					}
					or, alt := nodes[i+1], nodes[i+2]
					if or.Value != SyntheticOr || or.Size != 1 {
						t.Errorf("node after ALLORA = %+v, want OR", or)
					}
					if alt.Opener() != KeywordElse {
						t.Errorf("second node after ALLORA = %q, want ALTRIMENTI", alt.Value)
					}
					if alt.Synthetic && (len(alt.Content) != 1 || alt.Content[0].Value != SyntheticSkip || alt.Content[0].Size != 1) {
						t.Errorf("synthetic ALTRIMENTI content = %+v, want single SKIP", alt.Content)
					}
				}
			}
			check(forest)
		})
	}
}

func TestClosingKeywordsHaveNoHeight(t *testing.T) {
	for _, tt := range scenarios {
		t.Run(tt.name, func(t *testing.T) {
			forest, _ := Parse(tt.code)
			Walk(forest, func(n *Node, _ int) bool {
				if !n.IsBlock() && IsCloser(firstWord(n.Value)) && n.Size != 0 {
					t.Errorf("closer %q size = %d, want 0", n.Value, n.Size)
				}
				return true
			})
		})
	}
}

func TestFlattenRoundTrip(t *testing.T) {
	nonBlank := func(lines []string) []string {
		var out []string
		for _, l := range lines {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, l)
			}
		}
		return out
	}

	for _, tt := range scenarios {
		t.Run(tt.name, func(t *testing.T) {
			forest, _ := Parse(tt.code)
			got := nonBlank(Flatten(forest))
			want := nonBlank(strings.Split(tt.code, "\n"))
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestKeywordBoundaries(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []*Node
	}{
		{
			name: "opener prefix of identifier",
			code: "ALLORAX = 1\nINIZIOATO",
			want: []*Node{leaf("ALLORAX = 1", 1), leaf("INIZIOATO", 1)},
		},
		{
			name: "header prefix of identifier",
			code: "SEGNALA errore\nRIPETIZIONI = 3",
			want: []*Node{leaf("SEGNALA errore", 1), leaf("RIPETIZIONI = 3", 1)},
		},
		{
			name: "closer suffix of identifier",
			code: "INIZIO\nImposta X = PREFINE\nFINE",
			want: []*Node{block("INIZIO", 3, leaf("Imposta X = PREFINE", 1)), leaf("FINE", 0)},
		},
		{
			name: "bare header",
			code: "SE\nALLORA\nx\nFINE-SE",
			want: append(append([]*Node{leaf("SE", 0), block("ALLORA", 2, leaf("x", 1))}, skipElse()...), leaf("FINE-SE", 0)),
		},
		{
			name: "keywords are case sensitive",
			code: "inizio\nfine",
			want: []*Node{leaf("inizio", 1), leaf("fine", 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.code)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, ignorePosition); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLenientUnclosed(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []*Node
	}{
		{
			name: "unclosed program",
			code: "INIZIO\nAzione",
			want: []*Node{block("INIZIO", 3, leaf("Azione", 1))},
		},
		{
			name: "unclosed then gets empty else",
			code: "SE x\nALLORA\nAzione",
			want: append([]*Node{leaf("SE x", 0), block("ALLORA", 2, leaf("Azione", 1))}, skipElse()...),
		},
		{
			name: "empty block at end",
			code: "FINCHE' EOF",
			want: []*Node{block("FINCHE' EOF", 2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.code)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, ignorePosition); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseStrictErrors(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		wantCode errors.Code
		wantMsg  string
	}{
		{"unclosed program", "INIZIO\nAzione", errors.ErrCodeUnmatchedBlock, "INIZIO opened at line 1"},
		{"unclosed loop", "INIZIO\nRIPETI\nFINCHE' EOF\nAzione\nFINE", errors.ErrCodeUnmatchedBlock, "FINCHE' opened at line 3"},
		{"unclosed else", "SE x\nALLORA\na\nALTRIMENTI\nb", errors.ErrCodeUnmatchedBlock, "ALTRIMENTI opened at line 4"},
		{"condition without then", "SE x\nAzione", errors.ErrCodeOrphanCondition, `"SE x" at line 1`},
		{"condition at end", "INIZIO\nSE x\nFINE", errors.ErrCodeOrphanCondition, "line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.code, WithStrict())
			if err == nil {
				t.Fatalf("Parse(strict) = %v, want error", got)
			}
			if code := errors.GetCode(err); code != tt.wantCode {
				t.Errorf("error code = %q, want %q (%v)", code, tt.wantCode, err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParseConditionSkipsBlankLines(t *testing.T) {
	code := "SE x\n\nALLORA\na\nFINE-SE"
	if _, err := Parse(code, WithStrict()); err != nil {
		t.Errorf("Parse(strict) error: %v", err)
	}
}

func TestParseWindowsLineEndings(t *testing.T) {
	unix, _ := Parse(ifElseProgram)
	windows, _ := Parse(strings.ReplaceAll(ifElseProgram, "\n", "\r\n"))
	if diff := cmp.Diff(unix, windows); diff != "" {
		t.Errorf("CRLF input parsed differently (-lf +crlf):\n%s", diff)
	}
}

func TestParseRecordsLines(t *testing.T) {
	forest, _ := Parse(ifElseProgram)
	begin := forest[0]
	if begin.Line != 1 {
		t.Errorf("INIZIO line = %d, want 1", begin.Line)
	}
	if then := begin.Content[1]; then.Line != 3 || then.Content[0].Line != 4 {
		t.Errorf("ALLORA line = %d, child line = %d, want 3 and 4", then.Line, then.Content[0].Line)
	}
	if or := begin.Content[2]; !or.Synthetic || or.Line != 0 {
		t.Errorf("OR = %+v, want synthetic without line", or)
	}
	if end := forest[1]; end.Line != 8 {
		t.Errorf("FINE line = %d, want 8", end.Line)
	}
}

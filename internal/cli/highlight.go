package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matzehuels/cartastrutturata/pkg/highlight"
	"github.com/matzehuels/cartastrutturata/pkg/paper"
)

// Color modes of the highlight command.
const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

var styleKeyword = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5AA00"))

// highlightCommand creates the highlight command.
func (c *CLI) highlightCommand() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "highlight <file>",
		Short: "Print a program with its keywords highlighted",
		Long: `Print a program as it appears in the pseudocode panel of the sheet:
one line per source line, indented, with keywords in bold amber.

Colors are used when stdout is a terminal unless --color says otherwise.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readProgram(args[0])
			if err != nil {
				return err
			}
			useColor, err := colorEnabled(color, os.Stdout)
			if err != nil {
				return err
			}
			return writeHighlighted(os.Stdout, code, useColor)
		},
	}

	cmd.Flags().StringVar(&color, "color", colorAuto, "when to color keywords: auto, always or never")
	return cmd
}

func colorEnabled(mode string, f *os.File) (bool, error) {
	switch mode {
	case colorAuto:
		return term.IsTerminal(int(f.Fd())), nil
	case colorAlways:
		return true, nil
	case colorNever:
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color %q (want auto, always or never)", mode)
	}
}

// writeHighlighted writes every line of code, normalised to the sheet's
// indentation, with keyword runs styled when color is set.
func writeHighlighted(w io.Writer, code string, color bool) error {
	doc := paper.Document{Code: code}
	for _, line := range doc.Lines() {
		var sb strings.Builder
		sb.WriteString(strings.Repeat(" ", paper.Indentation(line)*paper.IndentWidth))
		for _, run := range highlight.Highlight(strings.TrimSpace(line), highlight.Pseudocode) {
			if run.Keyword && color {
				sb.WriteString(styleKeyword.Render(run.Text))
			} else {
				sb.WriteString(run.Text)
			}
		}
		if _, err := fmt.Fprintln(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

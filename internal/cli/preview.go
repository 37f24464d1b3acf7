package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matzehuels/cartastrutturata/pkg/pipeline"
	"github.com/matzehuels/cartastrutturata/pkg/render/sink"
)

var previewDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// PreviewModel - Scrollable structured paper
// =============================================================================

// PreviewModel is the bubbletea model that scrolls through a rendered sheet.
type PreviewModel struct {
	Title  string
	Lines  []string
	Offset int
	Height int
	Width  int
}

// NewPreviewModel creates a preview of the given text lines.
func NewPreviewModel(title string, lines []string) PreviewModel {
	return PreviewModel{
		Title:  title,
		Lines:  lines,
		Height: 20,
		Width:  100,
	}
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.Offset--
		case "down", "j":
			m.Offset++
		case "pgup", "b":
			m.Offset -= m.Height
		case "pgdown", "f", " ":
			m.Offset += m.Height
		case "home", "g":
			m.Offset = 0
		case "end", "G":
			m.Offset = len(m.Lines)
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height - 4
		if m.Height < 5 {
			m.Height = 5
		}
	}
	m.Offset = m.clamp(m.Offset)
	return m, nil
}

// clamp keeps the last page full when the sheet is taller than the view.
func (m PreviewModel) clamp(offset int) int {
	if last := len(m.Lines) - m.Height; offset > last {
		offset = last
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(previewDimStyle.Render("↑/↓ scroll  pgup/pgdn page  g/G top/bottom  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Lines) {
		end = len(m.Lines)
	}
	clip := lipgloss.NewStyle().MaxWidth(m.Width)
	for _, line := range m.Lines[m.Offset:end] {
		b.WriteString(clip.Render(line))
		b.WriteString("\n")
	}

	b.WriteString(previewDimStyle.Render(fmt.Sprintf("  [%d-%d/%d]", m.Offset+1, end, len(m.Lines))))
	return b.String()
}

// =============================================================================
// Command
// =============================================================================

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		title   string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Show the structured paper in the terminal",
		Long: `Show the structured paper of a program in a scrollable terminal view.

When stdout is not a terminal the sheet is printed as plain text instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := readProgram(args[0])
			if err != nil {
				return err
			}
			if title == "" {
				title = titleFromPath(args[0])
			}
			opts := pipeline.Options{
				Title:       title,
				Author:      c.Config.Author,
				Code:        code,
				Strict:      c.Config.Strict,
				ActionLabel: c.Config.ActionLabel,
				Logger:      c.Logger,
			}
			forest, err := pipeline.Parse(opts)
			if err != nil {
				return err
			}
			sheet := pipeline.Compose(forest, opts)

			interactive := term.IsTerminal(int(os.Stdout.Fd()))
			var textOpts []sink.TextOption
			if interactive && !noColor {
				textOpts = append(textOpts, sink.WithANSI())
			}
			text := sink.RenderText(sheet.Grid, textOpts...)

			if !interactive {
				_, err := fmt.Print(text)
				return err
			}
			lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
			_, err = tea.NewProgram(NewPreviewModel(title, lines), tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "program title (default: file name)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable keyword colors")
	return cmd
}

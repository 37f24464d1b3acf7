package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/matzehuels/cartastrutturata/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string  // output file, base path for several formats, or "-" for stdout
	formats     string  // comma-separated output formats
	title       string  // program title (default: file name)
	author      string  // author shown in the title row
	actionLabel string  // placeholder written on every block
	strict      bool    // reject unbalanced programs
	noCache     bool    // bypass the artifact cache
	refresh     bool    // ignore cached artifacts but store fresh ones
	scale       float64 // PNG resolution multiplier
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Draw a pseudocode program as structured paper",
		Long: `Draw a pseudocode program as structured paper.

The default output is an Excel workbook next to the working directory,
named after the program title. Use "-" as file to read from stdin and
-o - to write a single format to stdout.`,
		Example: `  cartastrutturata render somma.txt
  cartastrutturata render somma.txt -f xlsx,svg,txt --author "Mario Rossi"
  cat somma.txt | cartastrutturata render - --title Somma -f txt -o -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("strict") {
				opts.strict = c.Config.Strict
			}
			if opts.author == "" {
				opts.author = c.Config.Author
			}
			if opts.actionLabel == "" {
				opts.actionLabel = c.Config.ActionLabel
			}
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or base path")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", pipeline.DefaultFormat, "output formats: "+strings.Join(pipeline.Formats, ","))
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "program title (default: file name)")
	cmd.Flags().StringVarP(&opts.author, "author", "a", "", "author shown in the title row")
	cmd.Flags().StringVar(&opts.actionLabel, "action-label", "", "placeholder written on every block")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "reject unbalanced programs instead of repairing them")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, path string, opts renderOpts) error {
	ctx := cmd.Context()

	code, err := readProgram(path)
	if err != nil {
		return err
	}
	title := opts.title
	if title == "" {
		title = titleFromPath(path)
	}
	formats := pipeline.ParseFormats(opts.formats)
	if opts.output == "-" && len(formats) != 1 {
		return fmt.Errorf("-o - needs exactly one format, got %d", len(formats))
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger, title)
	stopSpinner := func() {}
	if term.IsTerminal(int(os.Stderr.Fd())) && opts.output != "-" {
		spinner := newSpinner(ctx, os.Stderr, "Rendering "+title)
		detach := spinner.attach()
		spinner.Start()
		stopSpinner = func() {
			spinner.Stop()
			detach()
		}
	}
	result, err := runner.Execute(ctx, pipeline.Options{
		Title:       title,
		Author:      opts.author,
		Code:        code,
		Formats:     formats,
		Strict:      opts.strict,
		ActionLabel: opts.actionLabel,
		Scale:       opts.scale,
		Refresh:     opts.refresh,
		Logger:      c.Logger,
	})
	stopSpinner()
	if err != nil {
		return err
	}

	if opts.output == "-" {
		if _, err := os.Stdout.Write(result.Artifacts[formats[0]]); err != nil {
			return err
		}
		prog.done(formats, result)
		return nil
	}

	paths := outputPaths(opts.output, title, formats)
	for _, f := range formats {
		if err := writeFile(paths[f], result.Artifacts[f]); err != nil {
			return err
		}
	}

	printSuccess("Rendered %s", StyleHighlight.Render(title))
	printStats(result.Stats.Blocks, result.Stats.Leaves, result.Stats.MaxDepth, result.CacheInfo.RenderHit)
	printArtifacts(formats, paths, result.Artifacts)
	return nil
}

// outputPaths maps each format to its file. A single format written to a
// path that already carries the format's extension is used verbatim;
// otherwise a known extension is stripped and each format's one appended.
func outputPaths(output, title string, formats []string) map[string]string {
	base := output
	if base == "" {
		base = title
	}
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && strings.HasSuffix(base, "."+pipeline.Extension(formats[0])) {
		paths[formats[0]] = base
		return paths
	}
	if ext := filepath.Ext(base); isKnownExtension(ext) {
		base = strings.TrimSuffix(base, ext)
	}
	for _, f := range formats {
		paths[f] = base + "." + pipeline.Extension(f)
	}
	return paths
}

func isKnownExtension(ext string) bool {
	for _, f := range pipeline.Formats {
		if filepath.Ext("x."+pipeline.Extension(f)) == ext {
			return true
		}
	}
	return false
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// printArtifacts prints one table row per written file.
func printArtifacts(formats []string, paths map[string]string, artifacts map[string][]byte) {
	rows := make([][]string, len(formats))
	for i, f := range formats {
		rows[i] = []string{f, formatBytes(len(artifacts[f])), paths[f]}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Format", "Size", "File").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			case col == 2:
				return StyleValue
			default:
				return StyleDim
			}
		})
	fmt.Println(t.Render())
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	cio "github.com/matzehuels/cartastrutturata/pkg/io"
	"github.com/matzehuels/cartastrutturata/pkg/pseudocode"
)

// treeCommand creates the tree command, which prints the block tree.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		format string
		output string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the block tree of a program",
		Long: `Print the block tree of a program as JSON or YAML.

Every node carries its text, the number of rows it occupies in the
structured paper and, for blocks, its children. Nodes inserted while
repairing the program are marked synthetic.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("strict") {
				strict = c.Config.Strict
			}
			code, err := readProgram(args[0])
			if err != nil {
				return err
			}
			var popts []pseudocode.Option
			if strict {
				popts = append(popts, pseudocode.WithStrict())
			}
			forest, err := pseudocode.Parse(code, popts...)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("parsed", "rows", pseudocode.Size(forest))

			w := io.Writer(os.Stdout)
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return writeTree(w, forest, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&strict, "strict", false, "reject unbalanced programs instead of repairing them")

	return cmd
}

func writeTree(w io.Writer, forest []*pseudocode.Node, format string) error {
	switch format {
	case "json":
		return cio.WriteJSON(forest, w)
	case "yaml", "yml":
		return cio.WriteYAML(forest, w)
	default:
		return fmt.Errorf("unknown tree format %q (want json or yaml)", format)
	}
}

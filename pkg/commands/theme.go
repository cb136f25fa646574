package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/popswap/popswap-interface/pkg/commands/text"
	"github.com/popswap/popswap-interface/theme"
)

var themeExample = text.Examples(`
	# dark palette, typography and layout constants as JSON
	popswap theme --dark

	# global stylesheet of the light theme
	popswap theme --format css

	# a single palette entry
	popswap theme --dark --color primary1
`)

// Theme creates the theme command, which exports the light or dark theme.
func (c *Commands) Theme() *cobra.Command {
	var (
		dark   bool
		format string
		color  string
	)

	cmd := &cobra.Command{
		Use:     "theme",
		Short:   "Export the interface theme",
		Example: themeExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := theme.New(dark)

			if color != "" {
				value, ok := t.Colors.Color(color)
				if !ok {
					return fmt.Errorf("unknown palette color %q", color)
				}
				cmd.Println(value)

				return nil
			}

			f, err := theme.ParseFormat(format)
			if err != nil {
				return err
			}
			c.lggr.Debugw("Exporting theme", "dark", dark, "format", f)

			return t.Export(cmd.OutOrStdout(), f)
		},
	}

	cmd.Flags().BoolVarP(&dark, "dark", "d", false, "Export the dark theme")
	cmd.Flags().StringVarP(&format, "format", "f", string(theme.FormatJSON), fmt.Sprintf("Output format, one of %v", theme.Formats))
	cmd.Flags().StringVar(&color, "color", "", "Print a single palette color, e.g. text1 or primary1")

	return cmd
}

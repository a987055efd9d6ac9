package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/export"
)

// renderCommand redraws a layout JSON written by generate, typically after
// discs were moved by hand, without nesting again.
func (c *CLI) renderCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "render LAYOUT.json",
		Short: "Draw a saved layout as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := c.loadSettings()
			if err != nil {
				return err
			}
			l, err := export.LoadLayout(args[0])
			if err != nil {
				return err
			}
			svg, err := export.RenderSVG(l, settings)
			if err != nil {
				return err
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".svg"
			}
			if err := os.WriteFile(output, svg, 0644); err != nil {
				return apperr.Wrap(apperr.ErrCodeIO, err, "cannot write %s", output)
			}

			log.FromContext(cmd.Context()).Info("rendered", "material", l.Material, "discs", len(l.Placed))
			printFile(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output SVG (default: next to the layout)")
	return cmd
}

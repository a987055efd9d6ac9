package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/engine"
	"github.com/piwi3910/PadNest/internal/model"
)

type compareOpts struct {
	pads     padOpts
	sheets   []string
	unit     string
	material string
}

func (c *CLI) compareCommand() *cobra.Command {
	var opts compareOpts

	cmd := &cobra.Command{
		Use:   "compare [padfile]",
		Short: "Rank candidate sheet sizes for one material",
		Long: `Compare nests the pad list on every --sheet candidate. Sheets that hold
every disc are listed first, smallest first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompare(cmd, args, &opts)
		},
	}

	opts.pads.register(cmd)
	cmd.Flags().StringSliceVarP(&opts.sheets, "sheet", "s", nil, `candidate sheets, e.g. "300x250,200x200"`)
	cmd.Flags().StringVarP(&opts.unit, "unit", "u", "mm", "unit of the sheet sizes: mm or in")
	cmd.Flags().StringVarP(&opts.material, "material", "m", "felt", "material to nest")
	return cmd
}

func (c *CLI) runCompare(cmd *cobra.Command, args []string, opts *compareOpts) error {
	settings, err := c.loadSettings()
	if err != nil {
		return err
	}
	pads, err := opts.pads.readPads(cmd, args)
	if err != nil {
		return err
	}
	m, err := model.ParseMaterial(opts.material)
	if err != nil {
		return err
	}
	unit := model.Unit(strings.ToLower(opts.unit))
	if !unit.Valid() {
		return apperr.New(apperr.ErrCodeInvalidInput, "unit must be mm or in, got %q", opts.unit)
	}
	if len(opts.sheets) == 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "give at least one --sheet")
	}

	candidates := make([]model.Sheet, 0, len(opts.sheets))
	for _, s := range opts.sheets {
		sheet, err := parseSheet(s, unit)
		if err != nil {
			return err
		}
		candidates = append(candidates, sheet)
	}

	fits, err := engine.CompareSheets(pads, m, candidates, settings)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(fits))
	for _, f := range fits {
		verdict := iconError
		if f.Fits {
			verdict = iconSuccess
		}
		rows = append(rows, []string{
			f.Sheet.String(),
			verdict,
			fmt.Sprintf("%d/%d", f.Placed, f.Total),
			fmt.Sprintf("%.1f%%", f.Utilization),
		})
	}

	out := cmd.OutOrStdout()
	printTitle(out, "%s, %d discs", m, model.TotalQuantity(pads))
	printTable(out, []string{"Sheet", "Fits", "Placed", "Used"}, rows)
	return nil
}

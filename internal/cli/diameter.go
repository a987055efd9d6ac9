package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/model"
)

func (c *CLI) diameterCommand() *cobra.Command {
	var materials []string

	cmd := &cobra.Command{
		Use:   "diameter SIZE...",
		Short: "Print the cut diameter of each pad size per material",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := c.loadSettings()
			if err != nil {
				return err
			}
			ms, err := model.ParseMaterials(materials)
			if err != nil {
				return err
			}

			headers := []string{"Size"}
			for _, m := range ms {
				headers = append(headers, m.String())
			}

			var rows [][]string
			for _, a := range args {
				size, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "size %q is not a number", a)
				}
				row := []string{model.FormatSize(size)}
				for _, m := range ms {
					d, err := model.ComputeDiameter(size, m, settings)
					if err != nil {
						return err
					}
					cell := formatMM(d)
					if model.HasCenterHole(size, m, settings) {
						cell += " ⊙"
					}
					row = append(row, cell)
				}
				rows = append(rows, row)
			}

			printTable(cmd.OutOrStdout(), headers, rows)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&materials, "material", "m", []string{"felt", "card", "leather", "exact_size"}, "materials to list")
	return cmd
}

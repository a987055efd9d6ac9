package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/engine"
	"github.com/piwi3910/PadNest/internal/model"
)

type checkOpts struct {
	pads      padOpts
	sheet     sheetOpts
	materials []string
}

func (c *CLI) checkCommand() *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check [padfile]",
		Short: "Report whether each material fits on the sheet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd, args, &opts)
		},
	}

	opts.pads.register(cmd)
	opts.sheet.register(cmd)
	cmd.Flags().StringSliceVarP(&opts.materials, "material", "m", defaultMaterials, "materials to check")
	return cmd
}

// runCheck prints a fit verdict per material and fails with the first
// material that does not fit.
func (c *CLI) runCheck(cmd *cobra.Command, args []string, opts *checkOpts) error {
	logger := log.FromContext(cmd.Context())

	settings, err := c.loadSettings()
	if err != nil {
		return err
	}
	pads, err := opts.pads.readPads(cmd, args)
	if err != nil {
		return err
	}
	materials, err := model.ParseMaterials(opts.materials)
	if err != nil {
		return err
	}
	if len(materials) == 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "no materials selected")
	}
	sheet, err := opts.sheet.sheet()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printTitle(out, "%d discs per material on %s", model.TotalQuantity(pads), sheet)

	var firstFailure error
	for _, m := range materials {
		ok, err := engine.CheckFeasibility(pads, m, sheet.Width, sheet.Height, settings)
		if err != nil {
			return err
		}
		if ok {
			printSuccess(out, "%s fits", m)
			continue
		}

		l, err := engine.GenerateLayout(pads, m, sheet.Width, sheet.Height, settings)
		if err != nil {
			return err
		}
		total := len(l.Placed) + len(l.Unplaced)
		printError(out, "%s: only %d of %d discs fit", m, len(l.Placed), total)
		if firstFailure == nil {
			firstFailure = &apperr.UnfittableError{Material: m.String(), Placed: len(l.Placed), Total: total}
		}
		hintSheets(logger, pads, m.String(), sheet, settings)
	}

	if firstFailure != nil {
		return fmt.Errorf("check failed: %w", firstFailure)
	}
	return nil
}

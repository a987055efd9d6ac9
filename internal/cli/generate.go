package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/engine"
	"github.com/piwi3910/PadNest/internal/export"
	"github.com/piwi3910/PadNest/internal/model"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	pads      padOpts
	sheet     sheetOpts
	materials []string
	formats   []string
	outDir    string
	name      string
	force     bool
}

func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [padfile]",
		Short: "Nest a pad list and write one drawing per material",
		Long: `Generate reads a pad list (SIZExQTY lines, CSV, Excel or a DXF of circles),
nests every selected material on its own sheet and writes the outputs.
Nothing is written unless every material fits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, args, &opts)
		},
	}

	opts.pads.register(cmd)
	opts.sheet.register(cmd)
	cmd.Flags().StringSliceVarP(&opts.materials, "material", "m", defaultMaterials, "materials to generate: felt, card, leather, exact_size")
	cmd.Flags().StringSliceVarP(&opts.formats, "format", "f", nil, "extra output formats: dxf, pdf, gcode, json (svg is always written)")
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", ".", "output directory")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "pads", "base file name")
	cmd.Flags().BoolVar(&opts.force, "force", false, "generate even when some size labels will be left off")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, args []string, opts *generateOpts) error {
	ctx := cmd.Context()
	logger := log.FromContext(ctx)

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
	sheet, err := opts.sheet.sheet()
	if err != nil {
		return err
	}
	formats, err := export.ParseFormats(opts.formats)
	if err != nil {
		return err
	}

	if err := checkEngravings(logger, pads, materials, settings, opts.force); err != nil {
		return err
	}

	p := newProgress(logger)
	job, err := engine.Plan(pads, materials, sheet, settings)
	if err != nil {
		var ue *apperr.UnfittableError
		if errors.As(err, &ue) {
			hintSheets(logger, pads, ue.Material, sheet, settings)
		}
		return err
	}
	for _, l := range job.Layouts {
		u := model.CalculateUsage(l)
		logger.Info("nested", "material", l.Material, "discs", u.DiscCount,
			"utilization", fmt.Sprintf("%.1f%%", u.Utilization))
	}

	written, err := export.WriteJob(ctx, job, settings, opts.outDir, opts.name, formats)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSuccess(out, "Job %s on %s", job.ID, sheet)
	for _, path := range written {
		printFile(out, path)
	}
	p.done(fmt.Sprintf("Generated %d file(s)", len(written)))
	return nil
}

// checkEngravings refuses to continue when a size label would be omitted,
// unless forced, in which case the omissions are logged.
func checkEngravings(logger *log.Logger, pads []model.PadSpec, materials []model.Material, s model.Settings, force bool) error {
	var oversized []string
	for _, m := range materials {
		adv, err := model.OversizedEngravings(pads, m, s)
		if err != nil {
			return err
		}
		for _, a := range adv {
			if force {
				logger.Warn("label left off", "material", a.Material, "size", model.FormatSize(a.Size),
					"diameter", a.Diameter, "font_size", a.FontSize)
				continue
			}
			oversized = append(oversized, fmt.Sprintf("%s %s", a.Material, model.FormatSize(a.Size)))
		}
	}
	if len(oversized) > 0 {
		return apperr.New(apperr.ErrCodeOversizedEngraving,
			"size labels do not fit on: %s (use --force to generate without them)", strings.Join(oversized, ", "))
	}
	return nil
}

// hintSheets logs a lower bound on the sheets the failing material needs.
func hintSheets(logger *log.Logger, pads []model.PadSpec, material string, sheet model.Sheet, s model.Settings) {
	m, err := model.ParseMaterial(material)
	if err != nil {
		return
	}
	discs, err := model.ExpandDiscs(pads, m, s)
	if err != nil {
		return
	}
	logger.Warn("does not fit", "material", m, "sheet", sheet,
		"sheets_needed", model.EstimateSheets(discs, sheet, s.Spacing))
}

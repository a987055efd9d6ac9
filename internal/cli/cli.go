// Package cli implements the padnest command-line interface.
//
// Commands read a pad list, size and nest the discs for each selected
// material, and write drawings, laser programs and reports. All commands
// support --verbose (-v) for debug logging and --config to choose the
// settings file. The logger travels in the command context so the export
// layer logs through it as well.
package cli

import (
	"context"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/PadNest/internal/buildinfo"
	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/importer"
	"github.com/piwi3910/PadNest/internal/model"
	"github.com/piwi3910/PadNest/internal/project"
)

const appName = "padnest"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Default sheet, 13.5 x 10 inches.
const (
	defaultSheetWidth  = 13.5
	defaultSheetHeight = 10
	defaultSheetUnit   = "in"
)

// defaultMinDiameter is the smallest DXF circle read as a pad, in mm.
const defaultMinDiameter = 5.0

var defaultMaterials = []string{"felt", "card", "leather"}

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
}

// New creates a CLI that logs to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "PadNest sizes and nests circular pad discs for laser cutting",
		Long:         `PadNest turns a list of pad sizes into felt, card and leather discs, nests them on a sheet and writes cut-ready drawings.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(log.WithContext(ctx, c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", project.DefaultConfigPath(), "settings file (TOML or JSON)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.diameterCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.labelsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())

	return root
}

// loadSettings reads the settings file named by --config over the defaults.
func (c *CLI) loadSettings() (model.Settings, error) {
	s, err := project.LoadSettings(c.configPath)
	if err != nil {
		return model.Settings{}, err
	}
	c.Logger.Debug("settings loaded", "path", c.configPath)
	return s, nil
}

// =============================================================================
// Shared flags
// =============================================================================

// sheetOpts holds the sheet size flags.
type sheetOpts struct {
	width  float64
	height float64
	unit   string
}

func (o *sheetOpts) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&o.width, "width", "W", defaultSheetWidth, "sheet width")
	cmd.Flags().Float64VarP(&o.height, "height", "H", defaultSheetHeight, "sheet height")
	cmd.Flags().StringVarP(&o.unit, "unit", "u", defaultSheetUnit, "unit of --width and --height: mm or in")
}

func (o sheetOpts) sheet() (model.Sheet, error) {
	unit := model.Unit(strings.ToLower(o.unit))
	if !unit.Valid() {
		return model.Sheet{}, apperr.New(apperr.ErrCodeInvalidInput, "unit must be mm or in, got %q", o.unit)
	}
	s := model.NewSheet(o.width, o.height, unit)
	if err := s.Validate(); err != nil {
		return model.Sheet{}, err
	}
	return s, nil
}

// padOpts holds the pad list flags.
type padOpts struct {
	list        string
	minDiameter float64
}

func (o *padOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.list, "pads", "p", "", `pad list inline, e.g. "20x3,12.5x2"`)
	cmd.Flags().Float64Var(&o.minDiameter, "min-diameter", defaultMinDiameter, "smallest DXF circle read as a pad (mm)")
}

// readPads takes the pad list from --pads, from the file argument, or from
// stdin when the argument is "-" or missing. Skipped lines are logged.
func (o padOpts) readPads(cmd *cobra.Command, args []string) ([]model.PadSpec, error) {
	var result importer.ImportResult
	switch {
	case o.list != "":
		result = importer.ParsePadText(strings.ReplaceAll(o.list, ",", "\n"))
	case len(args) == 0 || args[0] == "-":
		result = importer.ParsePadList(cmd.InOrStdin())
	default:
		result = importer.ImportFile(args[0], o.minDiameter)
	}

	logger := log.FromContext(cmd.Context())
	for _, w := range result.Warnings {
		logger.Warn(w)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	if len(result.Pads) == 0 {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "no pads in the pad list")
	}
	logger.Debug("pads read", "entries", len(result.Pads), "discs", model.TotalQuantity(result.Pads))
	return result.Pads, nil
}

// sheetRe matches "WIDTHxHEIGHT" with x, ×, * or - as separator.
var sheetRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*[×xX*-]\s*(\d+(?:\.\d+)?)$`)

// parseSheet parses a "WIDTHxHEIGHT" candidate in the given unit.
func parseSheet(s string, unit model.Unit) (model.Sheet, error) {
	m := sheetRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return model.Sheet{}, apperr.New(apperr.ErrCodeInvalidInput, "sheet %q is not WIDTHxHEIGHT", s)
	}
	w, _ := strconv.ParseFloat(m[1], 64)
	h, _ := strconv.ParseFloat(m[2], 64)
	sheet := model.NewSheet(w, h, unit)
	if err := sheet.Validate(); err != nil {
		return model.Sheet{}, err
	}
	return sheet, nil
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

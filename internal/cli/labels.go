package cli

import (
	"bytes"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/export"
	"github.com/piwi3910/PadNest/internal/model"
)

func (c *CLI) labelsCommand() *cobra.Command {
	var (
		pads      padOpts
		materials []string
		output    string
		jobID     string
	)

	cmd := &cobra.Command{
		Use:   "labels [padfile]",
		Short: "Write a sheet of QR-coded bag labels, one per pad size",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := c.loadSettings()
			if err != nil {
				return err
			}
			list, err := pads.readPads(cmd, args)
			if err != nil {
				return err
			}
			ms, err := model.ParseMaterials(materials)
			if err != nil {
				return err
			}
			infos, err := export.CollectLabelInfos(list, ms, settings, jobID)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := export.ExportLabels(&buf, infos, ms); err != nil {
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
				return apperr.Wrap(apperr.ErrCodeIO, err, "cannot write %s", output)
			}

			log.FromContext(cmd.Context()).Info("wrote labels", "sizes", len(infos), "path", output)
			printFile(cmd.OutOrStdout(), output)
			return nil
		},
	}

	pads.register(cmd)
	cmd.Flags().StringSliceVarP(&materials, "material", "m", defaultMaterials, "materials listed on each label")
	cmd.Flags().StringVarP(&output, "output", "o", "labels.pdf", "output PDF")
	cmd.Flags().StringVar(&jobID, "job", "", "job ID printed on the labels")
	return cmd
}

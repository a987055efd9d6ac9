package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperr "github.com/piwi3910/PadNest/internal/errors"
	"github.com/piwi3910/PadNest/internal/model"
	"github.com/piwi3910/PadNest/internal/project"
)

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configExportCommand())
	cmd.AddCommand(c.configImportCommand())
	return cmd
}

func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default settings to the settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(c.configPath); err == nil && !force {
				return apperr.New(apperr.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", c.configPath)
			}
			if err := project.SaveSettings(c.configPath, model.DefaultSettings()); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Wrote %s", c.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.loadSettings()
			if err != nil {
				return err
			}
			data, err := project.EncodeSettings(s, asJSON)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of TOML")
	return cmd
}

func (c *CLI) configExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Write a JSON backup of the effective settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.loadSettings()
			if err != nil {
				return err
			}
			if err := project.ExportBackup(args[0], c.configPath, s); err != nil {
				return err
			}
			printFile(cmd.OutOrStdout(), args[0])
			return nil
		},
	}
}

func (c *CLI) configImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the settings file with a JSON backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportBackup(args[0])
			if err != nil {
				return err
			}
			if err := project.SaveSettings(c.configPath, backup.Settings); err != nil {
				return err
			}
			from := backup.CreatedAt
			if backup.Source != "" {
				from = backup.Source + " at " + backup.CreatedAt
			}
			printSuccess(cmd.OutOrStdout(), "Imported backup of %s into %s", from, c.configPath)
			return nil
		},
	}
}

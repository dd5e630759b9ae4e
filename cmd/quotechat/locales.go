package main

import (
	"errors"

	"github.com/helpcar/quotechat/internal/cli"
	"github.com/spf13/cobra"
)

var localesCmd = &cobra.Command{
	Use:   "locales",
	Short: "Inspect translation catalogs",
}

var localesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available languages",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		return cli.ListLocales(cmd.Context(), cfg.LocalesDir, cmd.OutOrStdout())
	},
}

var localesValidateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check a directory of catalog overrides",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		dir := cfg.LocalesDir
		if len(args) > 0 {
			dir = args[0]
		}
		if dir == "" {
			return errors.New("no locales directory: pass one or set locales_dir")
		}
		return cli.ValidateLocales(cmd.Context(), dir, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(localesCmd)
	localesCmd.AddCommand(localesListCmd, localesValidateCmd)
}

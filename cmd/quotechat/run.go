package main

import (
	"fmt"
	"os"

	"github.com/helpcar/quotechat/internal/cli"
	"github.com/helpcar/quotechat/internal/presentation/tui"
	"github.com/helpcar/quotechat/pkg/domain"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fill in a quote request in the terminal",
	Long: `Starts one wizard session in the terminal. On a TTY the full-screen wizard is
used; with --plain or when stdin is a pipe, questions are printed line by line and
answered with an option number, an option label or free text.

Pass --lat and --lng to answer "use my location"; otherwise the wizard falls back
to typing an address.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")
		plain, _ := cmd.Flags().GetBool("plain")
		lang, _ := cmd.Flags().GetString("language")

		opts := cli.RunOptions{Language: lang, Plain: plain, Debug: debug}
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
			lat, _ := cmd.Flags().GetFloat64("lat")
			lng, _ := cmd.Flags().GetFloat64("lng")
			pos := domain.Coordinates{Lat: lat, Lng: lng}
			if !pos.Valid() {
				return fmt.Errorf("coordinates out of range: %s", pos)
			}
			opts.Position = &pos
		}

		if !plain && cli.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, version())
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		err = cli.Execute(ctx, cfg, opts, logger)
		if sig := ctx.Signal(); sig != nil {
			logger.Info("Interrupted", "signal", sig)
		}
		return cli.HandleExecutionError(err)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("plain", false, "Line mode even on a terminal")
	runCmd.Flags().Float64("lat", 0, "Latitude reported when choosing \"use my location\"")
	runCmd.Flags().Float64("lng", 0, "Longitude reported when choosing \"use my location\"")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/helpcar/quotechat/internal/cli"
	"github.com/helpcar/quotechat/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quotechat",
	Short: "QuoteChat collects roadside assistance quote requests",
	Long: `QuoteChat walks a motorist through a short guided chat (problem, vehicle,
location) and composes a ready-to-send WhatsApp message for the dispatcher.

Run it in the terminal, serve it over HTTP for the web widget, expose it to AI
agents over MCP, or attach it to a Telegram bot.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Config file (default ./quotechat.yaml when present)")
	flags.Bool("debug", false, "Log at debug level")
	flags.String("phone", "", "Number the composed message is sent to")
	flags.StringP("language", "l", "", "Fallback language (fr, en, nl)")
	flags.String("locales", "", "Directory of catalog overrides")
}

// setup loads the configuration with the persistent flags applied and builds the logger.
func setup(cmd *cobra.Command) (*config.Loader, *config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	loader, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	for key, flag := range map[string]string{
		"phone":       "phone",
		"language":    "language",
		"locales_dir": "locales",
	} {
		if err := loader.BindFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, nil, nil, err
		}
	}
	cfg, err := loader.Config()
	if err != nil {
		return nil, nil, nil, err
	}

	logger := cli.NewLogger(cfg, debug)
	slog.SetDefault(logger)
	loader.UseLogger(logger)
	if file := loader.File(); file != "" {
		logger.Debug("Config file loaded", "path", file)
	}
	return loader, cfg, logger, nil
}

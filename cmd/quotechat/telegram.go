package main

import (
	"errors"

	"github.com/helpcar/quotechat/internal/cli"
	"github.com/helpcar/quotechat/pkg/adapters/telegram"
	"github.com/spf13/cobra"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Run the wizard as a Telegram bot",
	Long: `Polls Telegram for updates and runs one wizard session per chat. /start begins
a new request and /cancel drops the current one. The token is read from
telegram.token (QUOTECHAT_TELEGRAM_TOKEN) or --token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		if token, _ := cmd.Flags().GetString("token"); token != "" {
			cfg.Telegram.Token = token
		}
		if cfg.Telegram.Token == "" {
			return errors.New("telegram token missing: set telegram.token or --token")
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		engine, cleanup, err := cli.NewEngine(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		bot := telegram.New(engine.Sessions, engine.Bundle, telegram.WithLogger(logger))
		logger.Info("Starting QuoteChat Telegram bot", "version", version())
		return cli.HandleExecutionError(bot.Run(ctx, cfg.Telegram.Token))
	},
}

func init() {
	rootCmd.AddCommand(telegramCmd)
	telegramCmd.Flags().String("token", "", "Bot token (overrides telegram.token)")
}

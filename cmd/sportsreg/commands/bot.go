package commands

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sportsreg/internal/tgbot"
	"sportsreg/internal/tournament"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long: `Run the Telegram bot (long polling). Requires TELEGRAM_BOT_TOKEN.

Export links sent by the bot point at BASE_PUBLIC_URL, which should reach a
running "sportsreg serve".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.cfg.RequireTelegram(); err != nil {
		return err
	}

	botApp, err := tgbot.New(a.cfg, tournament.New(a.store, slog.Default()))
	if err != nil {
		return err
	}
	slog.Info("telegram bot started")
	if err := botApp.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("bye")
	return nil
}

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sportsreg/internal/config"
	"sportsreg/internal/logging"
	"sportsreg/internal/store"
	"sportsreg/internal/tabular"
	"sportsreg/internal/tabular/memory"
	"sportsreg/internal/tabular/sheets"
	"sportsreg/internal/tabular/sqlite"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "sportsreg",
	Short: "Registration and results manager for school sports tournaments",
	Long: `sportsreg keeps a tournament's disciplines, units, athlete registrations and
results in a spreadsheet-like backend (Google Sheets, SQLite or memory).

Commands:
  serve    - HTTP JSON API
  bot      - Telegram bot
  migrate  - create missing tables and columns`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading configuration")
}

// app is what every command needs: configuration and an opened store.
type app struct {
	cfg     config.Config
	store   *store.Store
	closers []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			slog.Warn("close backend", "error", err)
		}
	}
}

func setup(ctx context.Context) (*app, error) {
	// a missing env file is fine; the environment may be set directly
	_ = godotenv.Load(envFile)

	cfg, err := config.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	a := &app{cfg: cfg}
	backend, err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}
	a.store = store.New(backend, store.Options{
		CacheTTL:  cfg.CacheTTL,
		CacheSize: cfg.CacheSize,
		Logger:    slog.Default(),
	})
	if err := a.store.Open(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	slog.Info("store ready", "backend", cfg.StoreBackend)
	return a, nil
}

func (a *app) openBackend(ctx context.Context) (tabular.Backend, error) {
	switch a.cfg.StoreBackend {
	case config.BackendSheets:
		c, err := sheets.New(ctx, a.cfg.GoogleServiceAccountJSON, a.cfg.SpreadsheetID)
		if err != nil {
			return nil, fmt.Errorf("sheets: %w", err)
		}
		return c, nil
	case config.BackendSQLite:
		s, err := sqlite.Open(a.cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		a.closers = append(a.closers, s)
		return s, nil
	case config.BackendMemory:
		slog.Warn("using in-memory store; data is lost on exit")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.cfg.StoreBackend)
	}
}

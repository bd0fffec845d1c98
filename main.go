package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"library-circulation/config"
	"library-circulation/library"
)

const defaultConfigFile = "library.yaml"

// app carries what every command needs once the root pre-run has opened the
// database.
type app struct {
	configPath string
	dbPath     string

	cfg    *config.Config
	logger *slog.Logger
	mgr    *library.LibraryManager

	in  *bufio.Scanner
	out io.Writer
	// tty is consulted for masked password input; nil means plain lines.
	tty *os.File
}

func main() {
	a := &app{
		in:  bufio.NewScanner(os.Stdin),
		out: os.Stdout,
		tty: os.Stdin,
	}
	if err := a.rootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "library",
		Short:         "Library circulation tracker: members, catalog, borrowing and late-return penalties",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	configDefault := os.Getenv("LIBRARY_CONFIG_FILE")
	if configDefault == "" {
		configDefault = defaultConfigFile
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", configDefault, "path to config file (env LIBRARY_CONFIG_FILE)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path, overrides sqlite.path from the config")

	root.AddCommand(
		a.bookCommand(),
		a.memberCommand(),
		a.borrowCommand(),
		a.returnCommand(),
		a.historyCommand(),
		a.summaryCommand(),
		a.loansCommand(),
		a.hashPasswordCommand(),
		a.shellCommand(),
	)
	return root
}

// open loads configuration, sets up logging and opens the database.
func (a *app) open() error {
	cfg := config.NewDefaultConfig()
	if err := config.LoadOrDefault(a.configPath, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if a.dbPath != "" {
		cfg.SQLite.Path = a.dbPath
	}
	a.cfg = cfg

	opts := &slog.HandlerOptions{Level: cfg.App.LogLevel}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.App.LogFormat == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	a.logger = slog.New(handler)
	slog.SetDefault(a.logger)

	a.logger.Debug("Configuration loaded",
		slog.String("config_file", a.configPath),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.Int("grace_days", cfg.Circulation.GraceDays),
		slog.Int64("daily_rate", cfg.Circulation.DailyRate))

	mgr, err := library.NewLibraryManager(cfg.SQLite.Path,
		library.WithLogger(a.logger),
		library.WithPenaltyPolicy(library.PenaltyPolicy{
			GraceDays: cfg.Circulation.GraceDays,
			DailyRate: cfg.Circulation.DailyRate,
		}),
	)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.mgr = mgr
	return nil
}

func (a *app) close() error {
	if a.mgr == nil {
		return nil
	}
	err := a.mgr.Close()
	a.mgr = nil
	if err != nil {
		a.logger.Error("close database", slog.String("error", err.Error()))
	}
	return err
}

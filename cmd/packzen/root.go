package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/erazemk/packzen/internal/client"
	"github.com/erazemk/packzen/internal/config"
)

// app carries the loaded configuration and flag overrides shared by all
// subcommands.
type app struct {
	cfg      *config.Config
	logLevel string
	logFile  string
	closeLog func()
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "packzen",
		Short:        "Travel packing lists with drag-and-drop packing",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the API server
  packzen serve --addr :8080

  # Pack a trip in the terminal
  PACKZEN_USER=ana PACKZEN_PASSWORD=... packzen tui --trip trip-abc123

  # Move a list between trips
  packzen export --trip trip-abc123 -o list.csv
  packzen import --trip trip-def456 list.csv
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if a.logLevel != "" {
			cfg.Log.Level = a.logLevel
		}
		if a.logFile != "" {
			cfg.Log.File = a.logFile
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config: validate: %w", err)
		}
		a.cfg = cfg

		level, _ := config.ParseLevel(cfg.Log.Level)
		quiet := cmd.Name() == "tui"
		closeLog, err := setupLogger(level, cfg.Log.File, quiet)
		if err != nil {
			return err
		}
		a.closeLog = closeLog
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if a.closeLog != nil {
			a.closeLog()
		}
	}

	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&a.logFile, "log-file", "", "also write logs to this file")

	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newTUICmd(a))
	cmd.AddCommand(newImportCmd(a))
	cmd.AddCommand(newExportCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// login connects to the configured server and signs in.
func (a *app) login(ctx context.Context) (*client.Client, error) {
	cc := a.cfg.Client
	if cc.Username == "" || cc.Password == "" {
		return nil, fmt.Errorf("set PACKZEN_USER and PACKZEN_PASSWORD (or client.username/password in the config file)")
	}
	c := client.New(cc.BaseURL, slog.Default())
	u, err := c.Login(ctx, cc.Username, cc.Password)
	if err != nil {
		return nil, err
	}
	slog.Debug("logged in", "user", u.Username, "server", cc.BaseURL)
	return c, nil
}

func tripFlag(cmd *cobra.Command, trip *string) {
	cmd.Flags().StringVar(trip, "trip", "", "trip id")
	_ = cmd.MarkFlagRequired("trip")
}

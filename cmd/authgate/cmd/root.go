// Package cmd implements the authgate CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/podfetch/authgate/internal/app"
	"github.com/podfetch/authgate/internal/infrastructure/config"
	"github.com/podfetch/authgate/pkg/logger"
)

// Version is set at build time
var Version = "0.1.0"

var (
	okFmt   = color.New(color.FgGreen).SprintFunc()
	warnFmt = color.New(color.FgYellow).SprintFunc()
	errFmt  = color.New(color.FgRed, color.Bold).SprintFunc()
	dimFmt  = color.New(color.Faint).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:   "authgate",
	Short: "Authentication gate for the podcast server",
	Long: `authgate serves the login endpoint and user management API of the
podcast server and guards privileged operations by role.

Configuration is read from the environment (BOOTSTRAP_USERNAME,
STORE_DRIVER, SQL_DSN, SESSION_BACKEND, ...).`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, userCmd)
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errFmt("error:"), err)
	}
	return err
}

// loadConfig reads the environment and initialises the process logger.
func loadConfig(ctx context.Context) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Pretty(),
		Service: "authgate",
	})
	return *cfg, log, nil
}

// openApp loads configuration and connects the stores.
type closer interface {
	Close(ctx context.Context) error
}

// closeApp releases the stores opened by openApp and logs a failed close.
func closeApp(ctx context.Context, a closer, log zerolog.Logger) {
	if err := a.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("close stores")
	}
}

func openApp(ctx context.Context) (*app.App, zerolog.Logger, error) {
	cfg, log, err := loadConfig(ctx)
	if err != nil {
		return nil, log, err
	}
	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		return nil, log, err
	}
	return a, log, nil
}

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmcdole/cinelist/internal/config"
	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/log"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigDir string
	flagJSON      bool
	flagVerbose   bool
)

// resolvedCfg and cfgLoader are set by PersistentPreRunE for every command
// except version.
var (
	resolvedCfg *config.Config
	cfgLoader   *config.Loader
)

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cinelist",
		Short:   "Movie watchlist with notes",
		Long:    "Keep a movie watchlist on a remote list store, annotate titles with notes and filter by genre.",
		Version: version,
		// We print errors ourselves
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return loadConfig()
		},
		// Bare invocation opens the TUI
		RunE: runTUI,
	}

	cmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "directory holding config.yaml")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newTUICmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newGenresCmd())
	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newRmCmd())
	cmd.AddCommand(newNotesCmd())
	cmd.AddCommand(newWatchedCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newRecommendCmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func loadConfig() error {
	cfgLoader = config.NewLoader(flagConfigDir)
	cfg, err := cfgLoader.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	resolvedCfg = cfg
	return nil
}

// buildLogger creates the file logger from config. --verbose forces DEBUG.
func buildLogger() *slog.Logger {
	logCfg := resolvedCfg.Logging
	if flagVerbose {
		logCfg.Level = "DEBUG"
	}

	logger, err := log.SetupLogger(&logCfg)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)
	return logger
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cinelist %s\n", version)
		},
	}
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if hint := errorHint(err); hint != "" {
		fmt.Fprintln(os.Stderr, hint)
	}
	os.Exit(1)
}

// errorHint suggests a next step for errors the user can act on
func errorHint(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "Run 'cinelist login' to sign in again."
	case errors.Is(err, domain.ErrUnreachable):
		return "Check backend.url and your network connection."
	case errors.Is(err, domain.ErrBusy):
		return "Wait for the previous operation on this title to finish."
	default:
		return ""
	}
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxgroups/internal/instrumentation"
)

// rootCmd represents the base command for the inboxgroups application
var rootCmd = &cobra.Command{
	Use:   "inboxgroups",
	Short: "Groups Gmail inbox messages into topic clusters",
	Long: `inboxgroups fetches recent messages from your Gmail inbox, groups them
into topic clusters using TF-IDF weighted k-means, and lets you archive a
whole cluster at once.

Messages and clusters are cached locally, so listing and archiving work
without refetching the inbox.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(logLevel)
	},
}

// version will be set by main
var version = "dev"

var logLevel string

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "inboxgroups version %s\n" .Version}}`)

	// If no subcommand is provided, run the cluster command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "cluster")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newClusterCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newArchiveCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("inboxgroups version %s\n", version)
		},
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

// setupInstrumentation creates the OpenTelemetry provider from the
// environment. The returned shutdown function flushes pending telemetry.
func setupInstrumentation(ctx context.Context) (*instrumentation.Provider, func(), error) {
	cfg := instrumentation.DefaultConfig()
	cfg.ServiceVersion = version

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid instrumentation config: %w", err)
	}

	provider, err := instrumentation.NewProvider(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	shutdown := func() {
		if err := provider.Shutdown(ctx); err != nil {
			slog.Warn("error during instrumentation shutdown", "error", err)
		}
	}
	return provider, shutdown, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/worklog"
)

// HomeEnv overrides the data directory.
const HomeEnv = "WORKLOG_HOME"

var (
	verbose  bool
	dataDir  string
	readOnly bool
	jsonOut  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "worklog",
	Short: "Sticky notes, an operation log and a pomodoro timer",
	Long: `worklog drives the sticky notes store headlessly.
Notes, the operation log and work sessions live in a local SQLite file.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Data directory (default $"+HomeEnv+" or ~/.worklog_desktop)")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "read-only", false, "Open the store without writing")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print JSON output")
}

func resolvedDataDir() string {
	if dataDir != "" {
		return worklog.ResolveDataDir(dataDir)
	}
	return worklog.ResolveDataDir(os.Getenv(HomeEnv))
}

func openApp() *worklog.App {
	app, err := worklog.New(resolvedDataDir(),
		worklog.WithReadOnly(readOnly),
		worklog.WithLogger(slog.Default()),
	)
	if err != nil {
		fatal("Failed to open worklog", err)
	}
	return app
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("Failed to encode output", err)
	}
}

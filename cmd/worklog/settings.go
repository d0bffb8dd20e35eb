package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/worklog/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect the settings file",
}

func settingsStore() *settings.Store {
	return settings.NewStore(filepath.Join(resolvedDataDir(), settings.FileName), slog.Default())
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := settingsStore().Load()
		if err != nil {
			slog.Warn("using default settings", "error", err)
		}
		printJSON(st)
	},
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(settingsStore().Path())
	},
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		store := settingsStore()
		if err := store.Save(settings.Default()); err != nil {
			fatal("Failed to write settings", err)
		}
		fmt.Printf("Settings written to %s\n", store.Path())
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsPathCmd, settingsInitCmd)
}

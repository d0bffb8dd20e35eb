package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/worklog/pkg/core"
)

var logDate string

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Inspect the operation log",
}

var logListCmd = &cobra.Command{
	Use:   "list",
	Short: "List operation log entries, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()
		ctx := context.Background()

		var (
			entries []core.LogEntry
			err     error
		)
		if logDate != "" {
			day, perr := time.ParseInLocation("2006-01-02", logDate, time.Local)
			if perr != nil {
				fatal("Invalid --date (want YYYY-MM-DD)", perr)
			}
			entries, err = app.Service.ListLogForDate(ctx, day)
		} else {
			entries, err = app.Service.ListLog(ctx)
		}
		if err != nil {
			fatal("Failed to list log", err)
		}

		if jsonOut {
			if entries == nil {
				entries = []core.LogEntry{}
			}
			printJSON(entries)
			return
		}
		for _, e := range entries {
			fmt.Printf("%s  %-8s  %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Action, e.NoteContent)
		}
	},
}

var logClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole operation log",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		if !app.Service.ClearLog(context.Background()) {
			fmt.Fprintln(os.Stderr, "Operation log not cleared.")
			os.Exit(1)
		}
		fmt.Println("Operation log cleared.")
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logListCmd.Flags().StringVar(&logDate, "date", "", "Only entries of this local day (YYYY-MM-DD)")
	logCmd.AddCommand(logListCmd, logClearCmd)
}

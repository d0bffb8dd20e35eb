package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recent work sessions and notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		st, err := app.Service.Stats(context.Background(), statsDays)
		if err != nil {
			fatal("Failed to compute stats", err)
		}
		if jsonOut {
			printJSON(st)
			return
		}
		fmt.Printf("Last %d days: %d min of focused work\n", st.Days, st.TotalWorkMinutes)
		fmt.Printf("Notes: %d active, %d completed\n", st.ActiveNotes, st.CompletedNotes)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsDays, "days", 7, "Window in days")
}

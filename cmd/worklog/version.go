package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/worklog"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of worklog",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("worklog version %s\n", strings.TrimSpace(worklog.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

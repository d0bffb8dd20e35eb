package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/worklog/pkg/timer"
)

var (
	timerMinutes int
	timerBreak   bool
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Pomodoro timer",
}

var timerRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a focus (or break) session in the terminal",
	Long: `Run counts down in the foreground. A finished work session is stored
as a work log. Ctrl-C stops the session without recording it.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		done := make(chan struct{})
		app.OnTimerEvent(func(e timer.Event) {
			switch e.Kind {
			case timer.EventTick:
				fmt.Printf("\r%02d:%02d ", e.Remaining/60, e.Remaining%60)
			case timer.EventFinished:
				bell := ""
				if e.Sound {
					bell = "\a"
				}
				fmt.Printf("\r%s session finished (%d min)%s\n", e.Phase, e.Minutes, bell)
				close(done)
			}
		})

		var err error
		switch {
		case timerMinutes > 0:
			err = app.Timer.Start(timerMinutes)
		case timerBreak:
			err = app.Timer.StartDefault(timer.PhaseBreak)
		default:
			err = app.Timer.StartDefault(timer.PhaseWork)
		}
		if err != nil {
			fatal("Failed to start timer", err)
		}

		select {
		case <-done:
		case <-ctx.Done():
			app.Timer.Stop()
			fmt.Println("\nStopped.")
		}
	},
}

func init() {
	rootCmd.AddCommand(timerCmd)
	timerRunCmd.Flags().IntVarP(&timerMinutes, "minutes", "m", 0, "Session length (default from settings)")
	timerRunCmd.Flags().BoolVar(&timerBreak, "break", false, "Run a break session")
	timerCmd.AddCommand(timerRunCmd)
}

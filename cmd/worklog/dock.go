package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/worklog/pkg/dock"
)

var (
	dockWindow  []int
	dockScreen  []int
	dockPointer bool
	dockFocused bool
	dockHidden  bool
	dockNoHide  bool
)

var dockCmd = &cobra.Command{
	Use:   "dock",
	Short: "Edge docking helpers",
}

var dockEvalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate one docking tick for the given geometry",
	Long: `eval runs the docking state machine once and prints the decision.
Rectangles are x,y,width,height. --hidden first runs a tick with the pointer
away and no focus, so a docked window starts out hidden.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		win, err := rectFlag("window", dockWindow)
		if err != nil {
			fatal("Invalid geometry", err)
		}
		scr, err := rectFlag("screen", dockScreen)
		if err != nil {
			fatal("Invalid geometry", err)
		}

		cfg := dock.DefaultConfig()
		cfg.AutoHide = !dockNoHide
		ctrl := dock.NewController(cfg)
		if dockHidden {
			ctrl.Tick(dock.Input{Window: win, Screen: scr})
		}

		res := ctrl.Tick(dock.Input{Window: win, Screen: scr, PointerOver: dockPointer, Focused: dockFocused})
		if jsonOut {
			printJSON(res)
			return
		}
		fmt.Printf("state=%s hidden=%t intent=%s", res.State, res.Hidden, res.Intent.Kind)
		if !res.Intent.None() {
			fmt.Printf(" from=(%d,%d) to=(%d,%d)", res.Intent.From.X, res.Intent.From.Y, res.Intent.To.X, res.Intent.To.Y)
		}
		fmt.Println()
	},
}

func rectFlag(name string, v []int) (dock.Rect, error) {
	if len(v) != 4 {
		return dock.Rect{}, fmt.Errorf("--%s wants x,y,width,height", name)
	}
	return dock.Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}

func init() {
	rootCmd.AddCommand(dockCmd)
	dockEvalCmd.Flags().IntSliceVar(&dockWindow, "window", nil, "Window rectangle x,y,w,h")
	dockEvalCmd.Flags().IntSliceVar(&dockScreen, "screen", []int{0, 0, 1920, 1040}, "Usable screen rectangle x,y,w,h")
	dockEvalCmd.Flags().BoolVar(&dockPointer, "pointer", false, "Pointer is over the window")
	dockEvalCmd.Flags().BoolVar(&dockFocused, "focused", false, "Window has input focus")
	dockEvalCmd.Flags().BoolVar(&dockHidden, "hidden", false, "Start from the hidden state")
	dockEvalCmd.Flags().BoolVar(&dockNoHide, "no-auto-hide", false, "Disable auto-hide")
	_ = dockEvalCmd.MarkFlagRequired("window")
	dockCmd.AddCommand(dockEvalCmd)
}

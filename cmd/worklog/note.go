package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/worklog/pkg/core"
)

var (
	noteContent  string
	noteColor    string
	noteUrgent   bool
	noteTitle    string
	editContent  string
	editColor    string
	noteListTags bool
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes",
}

var noteAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a note",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		title := ""
		if len(args) == 1 {
			title = args[0]
		}
		app := openApp()
		defer app.Close()

		opts := []core.CreateOption{core.WithColor(noteColor)}
		if noteUrgent {
			opts = append(opts, core.WithStatus(core.StatusUrgent))
		}
		n, err := app.Service.Create(context.Background(), title, noteContent, opts...)
		if err != nil {
			fatal("Failed to create note", err)
		}
		if jsonOut {
			printJSON(n)
			return
		}
		fmt.Printf("Note %d created.\n", n.ID)
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active notes in display order",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()
		ctx := context.Background()

		if noteListTags {
			tags, err := app.Service.ListTags(ctx)
			if err != nil {
				fatal("Failed to list tags", err)
			}
			if jsonOut {
				printJSON(tags)
				return
			}
			for _, t := range tags {
				fmt.Printf("#%s\t%d\n", t.Name, t.Notes)
			}
			return
		}

		notes, err := app.Service.ListActive(ctx)
		if err != nil {
			fatal("Failed to list notes", err)
		}
		printNotes(notes)
	},
}

var noteTrashCmd = &cobra.Command{
	Use:   "trash",
	Short: "List trashed notes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openApp()
		defer app.Close()

		notes, err := app.Service.ListTrash(context.Background())
		if err != nil {
			fatal("Failed to list trash", err)
		}
		printNotes(notes)
	},
}

var noteEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Change a note's title, content or color",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		var in core.UpdateInput
		if cmd.Flags().Changed("title") {
			in.Title = &noteTitle
		}
		if cmd.Flags().Changed("content") {
			in.Content = &editContent
		}
		if cmd.Flags().Changed("color") {
			in.Color = &editColor
		}

		app := openApp()
		defer app.Close()
		n, err := app.Service.Update(context.Background(), id, in)
		if err != nil {
			fatal("Failed to update note", err)
		}
		if jsonOut {
			printJSON(n)
			return
		}
		fmt.Printf("Note %d updated.\n", n.ID)
	},
}

// statusCmd builds the done/undone/urgent commands, which only differ in the
// call they make.
func statusCmd(use, short string, apply func(ctx context.Context, svc *core.Service, id int64) (core.Note, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			app := openApp()
			defer app.Close()

			n, err := apply(context.Background(), app.Service, id)
			if err != nil {
				fatal("Failed to update note", err)
			}
			fmt.Printf("Note %d is %s.\n", n.ID, n.Status)
		},
	}
}

// boolCmd builds the rm/restore/purge commands.
func boolCmd(use, short, done string, apply func(svc *core.Service, ctx context.Context, id int64) bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			app := openApp()
			defer app.Close()

			if !apply(app.Service, context.Background(), id) {
				fmt.Fprintf(os.Stderr, "Note %d unchanged.\n", id)
				os.Exit(1)
			}
			fmt.Printf("Note %d %s.\n", id, done)
		},
	}
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fatal("Invalid note id", err)
	}
	return id
}

func printNotes(notes []core.Note) {
	if jsonOut {
		if notes == nil {
			notes = []core.Note{}
		}
		printJSON(notes)
		return
	}
	if len(notes) == 0 {
		fmt.Println("No notes.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCREATED\tTITLE")
	for _, n := range notes {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", n.ID, n.Status, n.CreatedAt.Format("2006-01-02 15:04"), n.Title)
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(noteCmd)

	noteAddCmd.Flags().StringVarP(&noteContent, "content", "c", "", "Note content")
	noteAddCmd.Flags().StringVar(&noteColor, "color", "", "Display color (e.g. #cce5ff)")
	noteAddCmd.Flags().BoolVarP(&noteUrgent, "urgent", "u", false, "Flag the note as urgent")

	noteEditCmd.Flags().StringVarP(&noteTitle, "title", "t", "", "New title (empty keeps the old one)")
	noteEditCmd.Flags().StringVarP(&editContent, "content", "c", "", "New content")
	noteEditCmd.Flags().StringVar(&editColor, "color", "", "New display color")

	noteListCmd.Flags().BoolVar(&noteListTags, "tags", false, "List hashtags instead of notes")

	noteCmd.AddCommand(noteAddCmd, noteListCmd, noteTrashCmd, noteEditCmd,
		statusCmd("done", "Mark a note completed", func(ctx context.Context, svc *core.Service, id int64) (core.Note, error) {
			return svc.SetCompleted(ctx, id, true)
		}),
		statusCmd("undone", "Reopen a completed note", func(ctx context.Context, svc *core.Service, id int64) (core.Note, error) {
			return svc.SetCompleted(ctx, id, false)
		}),
		statusCmd("urgent", "Flag a note as urgent", func(ctx context.Context, svc *core.Service, id int64) (core.Note, error) {
			return svc.SetUrgent(ctx, id, true)
		}),
		boolCmd("rm", "Move a note to the trash", "moved to the trash", (*core.Service).Delete),
		boolCmd("restore", "Restore a trashed note", "restored", (*core.Service).Restore),
		boolCmd("purge", "Delete a note permanently", "purged", (*core.Service).Purge),
	)
}

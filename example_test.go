package worklog_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/worklog"
	"github.com/aretw0/worklog/pkg/core"
)

// Example_basic creates a note, completes it and reads the operation log.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "worklog-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	app, err := worklog.New(tmpDir)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	ctx := context.Background()

	note, err := app.Service.Create(ctx, "Buy milk", "")
	if err != nil {
		log.Fatal(err)
	}
	if _, err := app.Service.SetCompleted(ctx, note.ID, true); err != nil {
		log.Fatal(err)
	}

	entries, err := app.Service.ListLog(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, e := range entries {
		fmt.Println(e.Action, e.NoteContent)
	}

	note, _ = app.Service.Get(ctx, note.ID)
	fmt.Println(note.Status, note.DisplayColor() == core.CompletedColor)
	// Output:
	// complete Buy milk
	// create Buy milk
	// completed true
}

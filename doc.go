// Package worklog is the Composition Root for the worklog application: a
// small always-on-top sticky notes panel with a pomodoro timer.
//
// It connects the core business logic (Domain Layer) with the infrastructure
// adapters (SQLite store, settings file, local socket) using the Hexagonal
// Architecture pattern.
//
// Features:
//
//   - **Note lifecycle**: create, edit, complete, flag urgent, trash, restore and purge,
//     with a deterministic display order and an append-only operation log.
//   - **Edge docking**: a pure state machine that snaps the panel to a screen edge and
//     slides it out of view, leaving a small indicator.
//   - **Pomodoro timer**: an in-memory countdown whose finished work sessions are
//     recorded as work logs.
//   - **Hot-reloaded settings**: JSON or YAML preferences projected into each component.
//
// Usage:
//
//	app, err := worklog.New("~/.worklog_desktop",
//		worklog.WithLogger(logger),
//	)
//
//	// Create a note
//	note, err := app.Service.Create(ctx, "Buy milk", "")
//
//	// Drive the background workers until ctx is cancelled
//	err = app.Run(ctx, shell)
package worklog

package sqlite

import (
	"fmt"
	"time"

	"github.com/aretw0/worklog/pkg/core"
)

// timeLayout is fixed-width so lexical order in SQLite equals time order.
const timeLayout = "2006-01-02 15:04:05.000000000"

func formatTime(t time.Time) string {
	return t.In(time.Local).Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w: %w", s, core.ErrStorage, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

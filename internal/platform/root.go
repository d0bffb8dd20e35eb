package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirName is the data directory created under the user's home.
const DefaultDirName = ".worklog_desktop"

// DefaultDataDir returns ~/.worklog_desktop, or a relative directory of the
// same name when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// ResolveDataDir expands a leading ~ and falls back to DefaultDataDir for an
// empty path.
func ResolveDataDir(dir string) string {
	if dir == "" {
		return DefaultDataDir()
	}
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(dir, "~"))
		}
	}
	return dir
}

package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// TempFilePrefix is the prefix used for temporary atomic write files.
const TempFilePrefix = "worklog-tmp-"

// Extensions lists the supported settings formats, most preferred first.
var Extensions = []string{".json", ".yaml", ".yml"}

// Store reads and writes one settings file. The configured path names the
// preferred format; when it is absent a sibling with the same stem in another
// supported format is used instead, so switching settings.json to
// settings.yaml keeps working.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store for path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the configured settings file location.
func (s *Store) Path() string {
	return s.path
}

// Pattern returns the doublestar pattern matching every format of the
// settings file at path, e.g. "settings.{json,yaml,yml}". The stem is
// escaped so names such as "settings[1].json" match literally.
func Pattern(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	exts := make([]string, len(Extensions))
	for i, ext := range Extensions {
		exts[i] = strings.TrimPrefix(ext, ".")
	}
	return quoteMeta(stem) + ".{" + strings.Join(exts, ",") + "}"
}

func quoteMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\*?[]{}`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Resolve returns the file Load reads and Save writes: the configured path if
// it exists, otherwise the first existing sibling matching Pattern, otherwise
// the configured path.
func (s *Store) Resolve() string {
	if _, err := os.Stat(s.path); err == nil {
		return s.path
	}

	dir := filepath.Dir(s.path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return s.path
	}
	pattern := Pattern(s.path)
	var found []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := doublestar.Match(pattern, e.Name()); ok {
			found = append(found, e.Name())
		}
	}
	if len(found) == 0 {
		return s.path
	}
	sort.Slice(found, func(i, j int) bool {
		return extRank(found[i]) < extRank(found[j])
	})
	return filepath.Join(dir, found[0])
}

func extRank(name string) int {
	ext := strings.ToLower(filepath.Ext(name))
	for i, e := range Extensions {
		if e == ext {
			return i
		}
	}
	return len(Extensions)
}

// Load reads the file. A missing file yields the defaults and no error; a
// corrupt file yields the defaults and the parse error.
func (s *Store) Load() (Settings, error) {
	path := s.Resolve()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("read settings: %w", err)
	}

	st := Default()
	if err := CodecFor(path).Decode(data, &st); err != nil {
		if s.logger != nil {
			s.logger.Warn("settings file unreadable, using defaults", "path", path, "error", err)
		}
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	return st, nil
}

// Save writes the settings atomically in the format of the resolved file,
// creating the directory if needed.
func (s *Store) Save(st Settings) error {
	path := s.Resolve()
	data, err := CodecFor(path).Encode(st)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := replaceFile(path, data, 0o644); err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Debug("settings saved", "path", path)
	}
	return nil
}

// replaceFile stages data in a temp file beside path and renames it into
// place. The temp file is removed on every failure path.
func replaceFile(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), TempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("stage settings: %w", err)
	}
	staged := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(staged)
		}
	}()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("stage settings: %w", err)
	}
	if err = os.Chmod(staged, perm); err != nil {
		return fmt.Errorf("stage settings: %w", err)
	}
	if err = os.Rename(staged, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Special values of LogConfig.Output.
const (
	OutputStderr  = "-"
	OutputDiscard = "none"
)

// DefaultRetentionDays applies when LogConfig.RetentionDays is zero.
const DefaultRetentionDays = 7

const (
	logFilePrefix = "webstack-"
	logFileSuffix = ".log"
)

// LogConfig selects where command logs go.
type LogConfig struct {
	// Output is "-" for stderr, "none" to discard, empty for a generated file
	// name in Dir, or a path (relative paths are joined to Dir).
	Output string
	Dir    string
	// RetentionDays bounds the age of generated files kept in Dir. Negative
	// disables pruning.
	RetentionDays int
}

// LogFile is an opened log sink.
type LogFile struct {
	// Path is empty unless logs go to a file.
	Path   string
	w      io.Writer
	closer io.Closer
}

// NewLogFile opens the sink described by cfg. When logs go to a file, old
// generated files in cfg.Dir are pruned first.
func NewLogFile(cfg *LogConfig) (*LogFile, error) {
	switch strings.ToLower(cfg.Output) {
	case OutputDiscard:
		return &LogFile{w: io.Discard}, nil
	case OutputStderr:
		return &LogFile{w: os.Stderr}, nil
	}

	path := cfg.Output
	switch {
	case path == "":
		path = filepath.Join(cfg.Dir, FileName(time.Now()))
	case !filepath.IsAbs(path):
		path = filepath.Join(cfg.Dir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	days := cfg.RetentionDays
	if days == 0 {
		days = DefaultRetentionDays
	}
	if days > 0 && cfg.Dir != "" {
		// Pruning failures never block the command.
		_, _ = PruneLogFiles(cfg.Dir, time.Duration(days)*24*time.Hour, time.Now())
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &LogFile{Path: path, w: f, closer: f}, nil
}

// Writer returns the sink.
func (lf *LogFile) Writer() io.Writer { return lf.w }

// Close releases the file, if any.
func (lf *LogFile) Close() error {
	if lf.closer == nil {
		return nil
	}
	return lf.closer.Close()
}

// FileName returns the generated log file name for t:
// webstack-YYYYMMDD-HHMMSS-mmm.log in UTC.
func FileName(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s%s-%03d%s", logFilePrefix, t.Format("20060102-150405"), t.Nanosecond()/int(time.Millisecond), logFileSuffix)
}

// PruneLogFiles removes generated log files in dir last modified more than
// keep before now, and returns the removed paths. A missing dir is not an error.
func PruneLogFiles(dir string, keep time.Duration, now time.Time) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, logFilePrefix+"*"+logFileSuffix))
	if err != nil {
		return nil, err
	}
	cutoff := now.Add(-keep)
	var removed []string
	var errs []error
	for _, p := range matches {
		fi, err := os.Stat(p)
		if err != nil || fi.IsDir() || !fi.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(p); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, p)
	}
	return removed, errors.Join(errs...)
}

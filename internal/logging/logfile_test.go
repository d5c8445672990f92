package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		time time.Time
		want string
	}{
		{time.Date(2025, 12, 13, 9, 51, 5, 123000000, time.UTC), "webstack-20251213-095105-123.log"},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "webstack-20250101-000000-000.log"},
		{time.Date(2025, 6, 15, 12, 30, 45, 456789000, time.UTC), "webstack-20250615-123045-456.log"},
		// Non-UTC input is converted.
		{time.Date(2025, 6, 15, 21, 30, 45, 0, time.FixedZone("JST", 9*3600)), "webstack-20250615-123045-000.log"},
	}
	for _, tt := range tests {
		if got := FileName(tt.time); got != tt.want {
			t.Errorf("FileName(%v) = %q, want %q", tt.time, got, tt.want)
		}
	}
}

func TestNewLogFile(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "abs.log")
	tests := []struct {
		name     string
		output   string
		wantPath func(string) bool
	}{
		{"discard", "none", func(p string) bool { return p == "" }},
		{"stderr", "-", func(p string) bool { return p == "" }},
		{"generated", "", func(p string) bool { return filepath.Dir(p) == dir && filepath.Ext(p) == ".log" }},
		{"relative", "sub/run.log", func(p string) bool { return p == filepath.Join(dir, "sub", "run.log") }},
		{"absolute", abs, func(p string) bool { return p == abs }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lf, err := NewLogFile(&LogConfig{Output: tt.output, Dir: dir})
			if err != nil {
				t.Fatalf("NewLogFile: %v", err)
			}
			defer lf.Close()
			if !tt.wantPath(lf.Path) {
				t.Errorf("Path = %q", lf.Path)
			}
			if lf.Writer() == nil {
				t.Fatal("Writer is nil")
			}
			if lf.Path != "" {
				if _, err := lf.Writer().Write([]byte("line\n")); err != nil {
					t.Fatalf("write: %v", err)
				}
				if _, err := os.Stat(lf.Path); err != nil {
					t.Errorf("log file not created: %v", err)
				}
			}
		})
	}
	if lf, _ := NewLogFile(&LogConfig{Output: "-"}); lf.Writer() != os.Stderr {
		t.Error("\"-\" must write to stderr")
	}
}

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestPruneLogFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := filepath.Join(dir, "webstack-20251201-120000-000.log")
	recent := filepath.Join(dir, "webstack-20251210-120000-000.log")
	other := filepath.Join(dir, "other.log")
	touch(t, old, now.AddDate(0, 0, -10))
	touch(t, recent, now.AddDate(0, 0, -3))
	touch(t, other, now.AddDate(0, 0, -10))

	removed, err := PruneLogFiles(dir, 7*24*time.Hour, now)
	if err != nil {
		t.Fatalf("PruneLogFiles: %v", err)
	}
	if len(removed) != 1 || removed[0] != old {
		t.Errorf("removed = %v", removed)
	}
	for _, p := range []string{recent, other} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s should be kept: %v", p, err)
		}
	}

	if removed, err := PruneLogFiles(filepath.Join(dir, "missing"), time.Hour, now); err != nil || len(removed) != 0 {
		t.Errorf("missing dir: removed=%v err=%v", removed, err)
	}
}

func TestNewLogFilePrunes(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "webstack-20200101-000000-000.log")
	touch(t, stale, time.Now().AddDate(0, 0, -30))

	lf, err := NewLogFile(&LogConfig{Dir: dir, RetentionDays: -1})
	if err != nil {
		t.Fatal(err)
	}
	lf.Close()
	if _, err := os.Stat(stale); err != nil {
		t.Fatalf("negative retention must keep files: %v", err)
	}

	lf, err = NewLogFile(&LogConfig{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	lf.Close()
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale file should be pruned with default retention")
	}
	if _, err := os.Stat(lf.Path); err != nil {
		t.Errorf("new file must survive pruning: %v", err)
	}
}

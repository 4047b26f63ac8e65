package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"newscast/internal/config"
)

func writeAgedFile(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("log"), 0o644); err != nil {
		t.Fatal(err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCleanupOldLogsRemovesOnlyStaleMatches(t *testing.T) {
	dir := t.TempDir()
	stale := writeAgedFile(t, dir, "newscast-20250101.log", 90*24*time.Hour)
	fresh := writeAgedFile(t, dir, "newscast-20260820.log", 24*time.Hour)
	foreign := writeAgedFile(t, dir, "notes.txt", 90*24*time.Hour)

	removed := CleanupOldLogs(NewNop(), dir, logFilePattern, 30)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale log file still present: %v", err)
	}
	for _, path := range []string{fresh, foreign} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to survive: %v", path, err)
		}
	}
}

func TestCleanupOldLogsDisabledAtZero(t *testing.T) {
	dir := t.TempDir()
	stale := writeAgedFile(t, dir, "newscast-20250101.log", 90*24*time.Hour)

	if removed := CleanupOldLogs(NewNop(), dir, logFilePattern, 0); removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Fatalf("file should be untouched: %v", err)
	}
}

func TestCleanupFromConfigUsesLogDirAndWindow(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.RetentionDays = 30

	stale := writeAgedFile(t, cfg.Paths.LogDir, "newscast-20250101.log", 90*24*time.Hour)

	if removed := CleanupFromConfig(NewNop(), &cfg); removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale log file still present: %v", err)
	}
}

func TestLogFileNameMatchesPattern(t *testing.T) {
	name := logFileName(time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC))
	if name != "newscast-20260828.log" {
		t.Fatalf("name = %q", name)
	}
	matched, err := filepath.Match(logFilePattern, name)
	if err != nil || !matched {
		t.Fatalf("pattern mismatch: %v %v", matched, err)
	}
}

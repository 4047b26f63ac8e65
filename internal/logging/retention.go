package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"newscast/internal/config"
)

const logFilePattern = "newscast-*.log"

// logFileName returns the log file name for the given day, matching
// logFilePattern.
func logFileName(day time.Time) string {
	return "newscast-" + day.Format("20060102") + ".log"
}

// CleanupOldLogs removes files in dir matching pattern whose modification
// time is older than retentionDays. A retentionDays of zero or less disables
// pruning. Returns the number of files removed; failures are logged and the
// files remain.
func CleanupOldLogs(logger *slog.Logger, dir, pattern string, retentionDays int) int {
	if retentionDays <= 0 {
		return 0
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if matched, err := filepath.Match(pattern, name); err != nil || !matched {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			if logger != nil {
				logger.Warn("failed to remove old log file",
					String("path", path),
					Error(err),
				)
			}
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("log pruned", String("path", path))
		}
	}
	return removed
}

// CleanupFromConfig prunes dated log files in the configured log directory
// using the logging.retention_days window.
func CleanupFromConfig(logger *slog.Logger, cfg *config.Config) int {
	if cfg == nil {
		return 0
	}
	return CleanupOldLogs(logger, cfg.Paths.LogDir, logFilePattern, cfg.Logging.RetentionDays)
}

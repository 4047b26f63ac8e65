// Package testsupport provides helpers for constructing test fixtures.
package testsupport

import (
	"path/filepath"
	"testing"

	"newscast/internal/config"
)

// NewConfig returns a validated configuration rooted in a per-test temp
// directory with all output directories created.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Podcast.BaseURL = "https://podcast.example.com"
	cfg.Paths.OutputDir = filepath.Join(root, "audio")
	cfg.Paths.ContentDir = filepath.Join(root, "content")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Paths.StateDir = filepath.Join(root, "state")
	cfg.Sources.FeedURLs = []string{"https://news.example.com/feed.xml"}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config failed validation: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("create test directories: %v", err)
	}
	return &cfg
}

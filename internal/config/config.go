package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Podcast contains channel-level metadata published in the feed document.
type Podcast struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
	Author      string `toml:"author"`
	Language    string `toml:"language"`
	Category    string `toml:"category"`
	Explicit    bool   `toml:"explicit"`
	BaseURL     string `toml:"base_url"`
}

// Paths contains directory and filename configuration.
type Paths struct {
	OutputDir      string `toml:"output_dir"`
	ContentDir     string `toml:"content_dir"`
	LogDir         string `toml:"log_dir"`
	StateDir       string `toml:"state_dir"`
	EpisodesSubdir string `toml:"episodes_subdir"`
	FeedFilename   string `toml:"feed_filename"`
}

// Sources contains configuration for RSS article collection.
type Sources struct {
	FeedURLs            []string `toml:"feed_urls"`
	MaxArticlesPerFeed  int      `toml:"max_articles_per_feed"`
	MaxArticles         int      `toml:"max_articles"`
	WindowHours         int      `toml:"window_hours"`
	SimilarityThreshold float64  `toml:"similarity_threshold"`
	UserAgent           string   `toml:"user_agent"`
	TimeoutSeconds      int      `toml:"timeout_seconds"`
}

// LLM contains connection settings for dialogue script generation.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TTS contains speech synthesis settings.
type TTS struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	HostVoice      string `toml:"host_voice"`
	GuestVoice     string `toml:"guest_voice"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Retention bounds the growth of the published feed and media directory.
type Retention struct {
	// Days is the maximum episode age before pruning. Zero or negative
	// disables pruning entirely ("keep forever").
	Days int `toml:"days"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for newscast.
//
// Configuration sections by subsystem:
//   - Podcast: channel metadata and the public base URL
//   - Paths: output, content, log, and state directories
//   - Sources: RSS feed list, caps, recency window, dedup threshold
//   - LLM: chat-completions settings for script generation
//   - TTS: speech synthesis settings and speaker voices
//   - Retention: episode retention window
//   - Logging: log format, level, and retention
type Config struct {
	Podcast   Podcast   `toml:"podcast"`
	Paths     Paths     `toml:"paths"`
	Sources   Sources   `toml:"sources"`
	LLM       LLM       `toml:"llm"`
	TTS       TTS       `toml:"tts"`
	Retention Retention `toml:"retention"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/newscast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("newscast.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to the given path.
// It refuses to overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists: %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.EpisodesDir(), c.Paths.ContentDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FeedPath returns the absolute path of the feed document.
func (c *Config) FeedPath() string {
	return filepath.Join(c.Paths.OutputDir, c.Paths.FeedFilename)
}

// EpisodesDir returns the directory holding published media files.
func (c *Config) EpisodesDir() string {
	return filepath.Join(c.Paths.OutputDir, c.Paths.EpisodesSubdir)
}

// HistoryDBPath returns the path of the seen-article database.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.Paths.StateDir, "articles.db")
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

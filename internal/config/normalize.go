package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePodcast()
	c.normalizeSources()
	c.normalizeLLM()
	c.normalizeTTS()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.ContentDir, err = expandPath(c.Paths.ContentDir); err != nil {
		return fmt.Errorf("paths.content_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	c.Paths.EpisodesSubdir = strings.Trim(strings.TrimSpace(c.Paths.EpisodesSubdir), "/")
	if c.Paths.EpisodesSubdir == "" {
		c.Paths.EpisodesSubdir = defaultEpisodesSubdir
	}
	c.Paths.FeedFilename = strings.TrimSpace(c.Paths.FeedFilename)
	if c.Paths.FeedFilename == "" {
		c.Paths.FeedFilename = defaultFeedFilename
	}
	return nil
}

func (c *Config) normalizePodcast() {
	c.Podcast.Title = strings.TrimSpace(c.Podcast.Title)
	if c.Podcast.BaseURL == "" {
		if value, ok := os.LookupEnv("NEWSCAST_BASE_URL"); ok {
			c.Podcast.BaseURL = value
		}
	}
	c.Podcast.BaseURL = strings.TrimRight(strings.TrimSpace(c.Podcast.BaseURL), "/")
	if strings.TrimSpace(c.Podcast.Description) == "" {
		c.Podcast.Description = c.Podcast.Title
	}
	if strings.TrimSpace(c.Podcast.Language) == "" {
		c.Podcast.Language = defaultPodcastLanguage
	}
	if strings.TrimSpace(c.Podcast.Author) == "" {
		c.Podcast.Author = defaultPodcastAuthor
	}
	if strings.TrimSpace(c.Podcast.Category) == "" {
		c.Podcast.Category = defaultPodcastCategory
	}
}

func (c *Config) normalizeSources() {
	urls := make([]string, 0, len(c.Sources.FeedURLs))
	for _, raw := range c.Sources.FeedURLs {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	// NEWSCAST_EXTRA_FEEDS appends comma-separated feed URLs without a config edit.
	if extra, ok := os.LookupEnv("NEWSCAST_EXTRA_FEEDS"); ok {
		for _, raw := range strings.Split(extra, ",") {
			if trimmed := strings.TrimSpace(raw); trimmed != "" {
				urls = append(urls, trimmed)
			}
		}
	}
	c.Sources.FeedURLs = urls

	if c.Sources.MaxArticlesPerFeed <= 0 {
		c.Sources.MaxArticlesPerFeed = defaultMaxArticlesPerFeed
	}
	if c.Sources.MaxArticles <= 0 {
		c.Sources.MaxArticles = defaultMaxArticles
	}
	if c.Sources.WindowHours < 0 {
		c.Sources.WindowHours = 0
	}
	if c.Sources.SimilarityThreshold <= 0 {
		c.Sources.SimilarityThreshold = defaultSimilarityThreshold
	}
	if strings.TrimSpace(c.Sources.UserAgent) == "" {
		c.Sources.UserAgent = defaultSourceUserAgent
	}
	if c.Sources.TimeoutSeconds <= 0 {
		c.Sources.TimeoutSeconds = defaultSourceTimeout
	}
}

func (c *Config) normalizeLLM() {
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("NEWSCAST_LLM_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
}

func (c *Config) normalizeTTS() {
	if c.TTS.APIKey == "" {
		// A single Gemini key serves both the script and speech APIs.
		c.TTS.APIKey = c.LLM.APIKey
	}
	c.TTS.BaseURL = strings.TrimSpace(c.TTS.BaseURL)
	if c.TTS.BaseURL == "" {
		c.TTS.BaseURL = defaultTTSBaseURL
	}
	c.TTS.Model = strings.TrimSpace(c.TTS.Model)
	if c.TTS.Model == "" {
		c.TTS.Model = defaultTTSModel
	}
	if strings.TrimSpace(c.TTS.HostVoice) == "" {
		c.TTS.HostVoice = defaultHostVoice
	}
	if strings.TrimSpace(c.TTS.GuestVoice) == "" {
		c.TTS.GuestVoice = defaultGuestVoice
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

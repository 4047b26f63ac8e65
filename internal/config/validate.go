package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePodcast(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePodcast() error {
	if c.Podcast.Title == "" {
		return errors.New("podcast.title must be set")
	}
	if c.Podcast.BaseURL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/newscast/config.toml"
		}
		return fmt.Errorf("podcast.base_url is required. Edit %s (create with 'newscast config init')", defaultPath)
	}
	parsed, err := url.Parse(c.Podcast.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("podcast.base_url must be an absolute URL, got %q", c.Podcast.BaseURL)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.ContentDir == "" {
		return errors.New("paths.content_dir must be set")
	}
	if strings.ContainsAny(c.Paths.FeedFilename, "/\\") {
		return fmt.Errorf("paths.feed_filename must be a bare filename, got %q", c.Paths.FeedFilename)
	}
	return nil
}

func (c *Config) validateSources() error {
	if len(c.Sources.FeedURLs) == 0 {
		return errors.New("sources.feed_urls must list at least one feed")
	}
	for _, feedURL := range c.Sources.FeedURLs {
		parsed, err := url.Parse(feedURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("sources.feed_urls entry is not an absolute URL: %q", feedURL)
		}
	}
	if c.Sources.SimilarityThreshold <= 0 || c.Sources.SimilarityThreshold > 1 {
		return errors.New("sources.similarity_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newscast/internal/articles"
	"newscast/internal/config"
	"newscast/internal/logging"
)

// Fetcher pulls recent articles from the configured source feeds.
type Fetcher struct {
	cfg    config.Sources
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewFetcher builds a fetcher from source configuration.
func NewFetcher(cfg config.Sources, logger *slog.Logger) *Fetcher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logging.NewComponentLogger(logger, "sources"),
		now:    time.Now,
	}
}

// Fetch collects articles from every configured feed. Items older than the
// recency window are skipped (window_hours = 0 disables the filter) and each
// feed contributes at most max_articles_per_feed items. Per-feed failures
// are logged and skipped; Fetch only fails when the context is done.
func (f *Fetcher) Fetch(ctx context.Context) ([]articles.Article, error) {
	var cutoff time.Time
	if f.cfg.WindowHours > 0 {
		cutoff = f.now().Add(-time.Duration(f.cfg.WindowHours) * time.Hour)
	}

	collected := make([]articles.Article, 0, len(f.cfg.FeedURLs)*f.cfg.MaxArticlesPerFeed)
	for _, feedURL := range f.cfg.FeedURLs {
		if err := ctx.Err(); err != nil {
			return collected, err
		}
		batch, err := f.fetchFeed(ctx, feedURL, cutoff)
		if err != nil {
			f.logger.Warn("feed fetch failed; skipping source",
				logging.String(logging.FieldFeedURL, feedURL),
				logging.Error(err),
			)
			continue
		}
		f.logger.Info("feed fetched",
			logging.String(logging.FieldFeedURL, feedURL),
			logging.Int("articles", len(batch)),
		)
		collected = append(collected, batch...)
	}
	return collected, nil
}

func (f *Fetcher) fetchFeed(ctx context.Context, feedURL string, cutoff time.Time) ([]articles.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	parser := gofeed.NewParser()
	feed, err := parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("feed parse failed: %w", err)
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = feedURL
	}

	out := make([]articles.Article, 0, f.cfg.MaxArticlesPerFeed)
	for _, item := range feed.Items {
		if len(out) >= f.cfg.MaxArticlesPerFeed {
			break
		}
		published := itemPublished(item)
		if !cutoff.IsZero() && published != nil && published.Before(cutoff) {
			continue
		}
		out = append(out, articles.Article{
			Title:       strings.TrimSpace(item.Title),
			Summary:     itemSummary(item),
			Link:        strings.TrimSpace(item.Link),
			PublishedAt: published,
			Source:      source,
		})
	}
	return out, nil
}

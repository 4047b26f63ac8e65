package articles

import (
	"log/slog"

	"newscast/internal/logging"
)

// DefaultSimilarityThreshold is the title similarity at or above which two
// articles are treated as the same story.
const DefaultSimilarityThreshold = 0.75

// Deduplicator collapses near-duplicate articles within one fetch batch.
type Deduplicator struct {
	threshold float64
	logger    *slog.Logger
}

// NewDeduplicator builds a deduplicator with the given similarity threshold.
// Thresholds outside (0, 1] fall back to the default.
func NewDeduplicator(threshold float64, logger *slog.Logger) *Deduplicator {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSimilarityThreshold
	}
	return &Deduplicator{
		threshold: threshold,
		logger:    logging.NewComponentLogger(logger, "dedup"),
	}
}

// Deduplicate filters articles in input order, first occurrence wins.
// An article is discarded when its normalized URL was already seen, or when
// its title scores at or above the threshold against any kept article.
// Articles without a usable link never enter the seen-URL set but still go
// through title comparison. Retained articles are returned unmodified; the
// function never fails on missing fields.
func (d *Deduplicator) Deduplicate(batch []Article) []Article {
	seenURLs := make(map[string]struct{}, len(batch))
	kept := make([]Article, 0, len(batch))

	for _, article := range batch {
		normURL := NormalizeURL(article.Link)

		if normURL != "" {
			if _, dup := seenURLs[normURL]; dup {
				d.logger.Debug("duplicate by url", logging.String("title", article.Title), logging.String("url", normURL))
				continue
			}
		}

		if match, ok := d.titleMatch(article.Title, kept); ok {
			d.logger.Debug("duplicate by title",
				logging.String("title", article.Title),
				logging.String("kept", match),
			)
			continue
		}

		if normURL != "" {
			seenURLs[normURL] = struct{}{}
		}
		kept = append(kept, article)
	}

	return kept
}

func (d *Deduplicator) titleMatch(title string, kept []Article) (string, bool) {
	for _, existing := range kept {
		if TitleSimilarity(title, existing.Title) >= d.threshold {
			return existing.Title, true
		}
	}
	return "", false
}

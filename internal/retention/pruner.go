package retention

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"newscast/internal/config"
	"newscast/internal/feed"
	"newscast/internal/fileutil"
	"newscast/internal/logging"
	"newscast/internal/services"
)

// HistoryStore prunes stale seen-article rows alongside the feed.
type HistoryStore interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pruner drops episodes older than the retention window. A window of zero
// or less disables pruning. Episode age prefers the published date, then
// the date embedded in the feed identifier, then the media file's mtime;
// an episode whose age cannot be determined is kept.
type Pruner struct {
	days    int
	cfg     *config.Config
	history HistoryStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewPruner builds a pruner from configuration. history may be nil.
func NewPruner(cfg *config.Config, history HistoryStore, logger *slog.Logger) *Pruner {
	return &Pruner{
		days:    cfg.Retention.Days,
		cfg:     cfg,
		history: history,
		logger:  logging.NewComponentLogger(logger, "retention"),
		now:     time.Now,
	}
}

// Prune runs against the configured feed document and episodes directory.
func (p *Pruner) Prune(ctx context.Context) ([]string, error) {
	return p.PruneAt(ctx, p.cfg.FeedPath(), p.cfg.EpisodesDir())
}

// PruneAt runs against explicit paths, which lets deploy tooling point the
// pruner at a checkout instead of the local output directory. It returns
// the media filenames of every removed episode in document order.
func (p *Pruner) PruneAt(ctx context.Context, feedPath, episodesDir string) ([]string, error) {
	if p.days <= 0 {
		p.logger.Debug("retention disabled; keeping all episodes")
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cutoff := p.now().AddDate(0, 0, -p.days)

	// The lock spans read, rewrite, and file deletion so a concurrent
	// publisher never sees a half-applied prune.
	lock := flock.New(feedPath + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "retention", "prune", "acquire feed lock", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release feed lock", logging.Error(err))
		}
	}()

	data, err := os.ReadFile(feedPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrTransient, "retention", "prune", "read feed document", err)
	}
	doc, err := feed.Decode(data)
	if err != nil {
		p.logger.Warn("feed document is corrupt; skipping prune",
			logging.String("path", feedPath),
			logging.Error(err),
		)
		return nil, nil
	}

	kept := doc.Episodes[:0:0]
	var removed []feed.Episode
	for _, ep := range doc.Episodes {
		published, ok := p.effectiveDate(ep, episodesDir)
		if !ok {
			p.logger.Warn("episode age unknown; keeping it",
				logging.String("guid", ep.GUID),
			)
			kept = append(kept, ep)
			continue
		}
		if published.Before(cutoff) {
			removed = append(removed, ep)
			continue
		}
		kept = append(kept, ep)
	}
	if len(removed) == 0 {
		return nil, nil
	}

	doc.Episodes = kept
	doc.Channel.LastBuildDate = p.now()
	if err := p.persist(feedPath, doc); err != nil {
		return nil, err
	}

	// Entries are gone from the document before any file is touched, so a
	// failed delete leaves a stray file rather than a dangling entry.
	filenames := make([]string, 0, len(removed))
	for _, ep := range removed {
		filenames = append(filenames, ep.MediaFilename)
		if ep.MediaFilename == "" {
			continue
		}
		target := filepath.Join(episodesDir, ep.MediaFilename)
		if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
			p.logger.Warn("failed to delete media file",
				logging.String("path", target),
				logging.Error(err),
			)
		}
	}

	if p.history != nil {
		if pruned, err := p.history.PruneOlderThan(ctx, cutoff); err != nil {
			p.logger.Warn("failed to prune article history", logging.Error(err))
		} else if pruned > 0 {
			p.logger.Debug("pruned article history", logging.Int64("rows", pruned))
		}
	}

	p.logger.Info("pruned old episodes",
		logging.Int("removed", len(removed)),
		logging.Int("remaining", len(kept)),
	)
	return filenames, nil
}

func (p *Pruner) effectiveDate(ep feed.Episode, episodesDir string) (time.Time, bool) {
	if !ep.PublishedAt.IsZero() {
		return ep.PublishedAt, true
	}
	if _, date, ok := feed.ParseGUID(ep.GUID); ok {
		return date, true
	}
	if ep.MediaFilename != "" {
		if info, err := os.Stat(filepath.Join(episodesDir, ep.MediaFilename)); err == nil {
			return info.ModTime(), true
		}
	}
	return time.Time{}, false
}

// persist writes the document. The caller holds the feed lock.
func (p *Pruner) persist(feedPath string, doc *feed.Document) error {
	data, err := feed.Encode(doc)
	if err != nil {
		return services.Wrap(services.ErrTransient, "retention", "prune", "encode feed document", err)
	}
	if err := fileutil.WriteFileAtomic(feedPath, data, 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "retention", "prune", "write feed document", err)
	}
	return nil
}

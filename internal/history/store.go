package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"newscast/internal/articles"
	"newscast/internal/config"
	"newscast/internal/logging"
)

// Store manages the seen-article database backed by SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// Open initializes or connects to the history database and applies
// migrations.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.HistoryDBPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:     db,
		path:   dbPath,
		logger: logging.NewComponentLogger(logger, "history"),
	}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Filter drops articles whose normalized URL was covered by an earlier run.
// Articles without a usable URL pass through untouched; order is preserved.
func (s *Store) Filter(ctx context.Context, items []articles.Article) ([]articles.Article, error) {
	kept := make([]articles.Article, 0, len(items))
	for _, item := range items {
		key := articles.NormalizeURL(item.Link)
		if key == "" {
			kept = append(kept, item)
			continue
		}
		var count int
		row := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM seen_articles WHERE url = ?", key)
		if err := row.Scan(&count); err != nil {
			return nil, fmt.Errorf("query seen article: %w", err)
		}
		if count > 0 {
			s.logger.Debug("article already covered; dropping",
				logging.String("url", key),
				logging.String("title", item.Title),
			)
			continue
		}
		kept = append(kept, item)
	}
	return kept, nil
}

// MarkPublished records every article as covered by the given episode.
// Re-marking a URL updates its episode attribution.
func (s *Store) MarkPublished(ctx context.Context, items []articles.Article, episodeNumber int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	seenAt := time.Now().UTC().Format(time.RFC3339Nano)
	for _, item := range items {
		key := articles.NormalizeURL(item.Link)
		if key == "" {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO seen_articles (url, title, source, episode_number, seen_at)
             VALUES (?, ?, ?, ?, ?)
             ON CONFLICT(url) DO UPDATE SET episode_number = excluded.episode_number, seen_at = excluded.seen_at`,
			key, item.Title, item.Source, episodeNumber, seenAt,
		)
		if err != nil {
			return fmt.Errorf("insert seen article: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mark tx: %w", err)
	}
	return nil
}

// PruneOlderThan deletes rows last seen before cutoff and reports how many
// were removed.
func (s *Store) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM seen_articles WHERE seen_at < ?",
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune seen articles: %w", err)
	}
	pruned, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count pruned rows: %w", err)
	}
	return pruned, nil
}

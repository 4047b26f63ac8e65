package content

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"newscast/internal/config"
	"newscast/internal/fileutil"
	"newscast/internal/logging"
	"newscast/internal/services"
)

// SourceArticle is the slimmed-down article reference kept in a record.
type SourceArticle struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	Link   string `json:"link"`
}

// Record is the persisted metadata for one generated episode.
type Record struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	EpisodeNumber   int             `json:"episode_number"`
	PublishedDate   string          `json:"published_date"`
	SourceArticles  []SourceArticle `json:"source_articles"`
	DurationSeconds int             `json:"duration_seconds"`
	AudioFile       string          `json:"audio_file"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

// Recorder writes and reads episode records in the content directory.
type Recorder struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewRecorder builds a recorder for the configured content directory.
func NewRecorder(cfg *config.Config, logger *slog.Logger) *Recorder {
	return &Recorder{
		dir:    cfg.Paths.ContentDir,
		logger: logging.NewComponentLogger(logger, "content"),
		now:    time.Now,
	}
}

// Record persists rec as episode_{number}_{date}.json and returns the path.
// The filename is deterministic for a given episode and day, so re-running
// a failed pipeline overwrites the partial record instead of duplicating it.
func (r *Recorder) Record(rec Record) (string, error) {
	if rec.EpisodeNumber <= 0 {
		return "", services.Wrap(services.ErrValidation, "content", "record", "episode number must be positive", nil)
	}
	now := r.now()
	if rec.GeneratedAt.IsZero() {
		rec.GeneratedAt = now
	}
	if rec.PublishedDate == "" {
		rec.PublishedDate = now.Format("2006-01-02")
	}
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("episode-%d-%s", rec.EpisodeNumber, now.Format("20060102"))
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "content", "record", "encode record", err)
	}
	data = append(data, '\n')

	name := fmt.Sprintf("episode_%d_%s.json", rec.EpisodeNumber, now.Format("20060102"))
	path := filepath.Join(r.dir, name)
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", services.Wrap(services.ErrTransient, "content", "record", "write record", err)
	}

	r.logger.Info("episode record written",
		logging.String("path", path),
		logging.Int(logging.FieldEpisode, rec.EpisodeNumber),
	)
	return path, nil
}

// Count returns the number of episode records on disk.
func (r *Recorder) Count() (int, error) {
	names, err := r.recordFiles()
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// List loads every record, newest episode first. Unreadable records are
// logged and skipped so one bad file does not hide the rest.
func (r *Recorder) List() ([]Record, error) {
	names, err := r.recordFiles()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(names))
	for _, name := range names {
		path := filepath.Join(r.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.Warn("failed to read episode record", logging.String("path", path), logging.Error(err))
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			r.logger.Warn("failed to parse episode record", logging.String("path", path), logging.Error(err))
			continue
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].EpisodeNumber > records[j].EpisodeNumber
	})
	return records, nil
}

func (r *Recorder) recordFiles() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrTransient, "content", "list", "read content directory", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "episode_") && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	return names, nil
}

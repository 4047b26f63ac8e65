package feed

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"newscast/internal/config"
	"newscast/internal/fileutil"
	"newscast/internal/logging"
	"newscast/internal/services"
)

// Store reads and writes the feed document on disk. Writes go through an
// advisory lock plus an atomic rename so a crash mid-publish leaves either
// the old document or the new one, never a torn file. The lock does not
// make concurrent store instances safe; one writer per feed is assumed.
type Store struct {
	cfg    *config.Config
	logger *slog.Logger
	lock   *flock.Flock
	now    func() time.Time
}

// AddEpisodeParams describes one episode to publish.
type AddEpisodeParams struct {
	Number          int
	Title           string
	Description     string
	MediaFilename   string
	MediaSizeBytes  int64
	DurationSeconds int
	// PublishedAt defaults to the current time when nil.
	PublishedAt *time.Time
}

// NewStore builds a store bound to the configured feed path.
func NewStore(cfg *config.Config, logger *slog.Logger) *Store {
	return &Store{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "feed"),
		lock:   flock.New(cfg.FeedPath() + ".lock"),
		now:    time.Now,
	}
}

// Path returns the feed document location.
func (s *Store) Path() string {
	return s.cfg.FeedPath()
}

// Load reads and parses the feed document. A missing file returns an error
// matching services.ErrNotFound. A file that exists but fails to parse is
// logged and reported the same way so callers recreate it.
func (s *Store) Load() (*Document, error) {
	path := s.cfg.FeedPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "feed", "load", "feed document does not exist", nil)
		}
		return nil, services.Wrap(services.ErrTransient, "feed", "load", "read feed document", err)
	}

	doc, err := Decode(data)
	if err != nil {
		s.logger.Warn("feed document is corrupt; it will be recreated",
			logging.String("path", path),
			logging.Error(err),
		)
		return nil, services.Wrap(services.ErrNotFound, "feed", "load", "feed document is corrupt", err)
	}
	return doc, nil
}

// CreateEmpty builds a channel-only document from configuration.
func (s *Store) CreateEmpty() *Document {
	base := strings.TrimRight(s.cfg.Podcast.BaseURL, "/")
	return &Document{
		Channel: Channel{
			Title:         s.cfg.Podcast.Title,
			Link:          base,
			Description:   s.cfg.Podcast.Description,
			Language:      s.cfg.Podcast.Language,
			Author:        s.cfg.Podcast.Author,
			Category:      s.cfg.Podcast.Category,
			Explicit:      s.cfg.Podcast.Explicit,
			LastBuildDate: s.now(),
			SelfLink:      base + "/" + s.cfg.Paths.FeedFilename,
		},
	}
}

// Init writes a fresh channel-only feed document, replacing any existing one.
func (s *Store) Init() error {
	if err := s.lock.Lock(); err != nil {
		return services.Wrap(services.ErrTransient, "feed", "init", "acquire feed lock", err)
	}
	defer s.unlock()
	return s.persist(s.CreateEmpty())
}

// AddEpisode inserts a new episode at the head of the document and persists
// it, creating the document first when it is missing or corrupt. The media
// size is read from the episodes directory when the caller passes zero.
func (s *Store) AddEpisode(params AddEpisodeParams) (*Document, error) {
	if err := s.lock.Lock(); err != nil {
		return nil, services.Wrap(services.ErrTransient, "feed", "add episode", "acquire feed lock", err)
	}
	defer s.unlock()

	doc, err := s.Load()
	if err != nil {
		if !errors.Is(err, services.ErrNotFound) {
			return nil, err
		}
		doc = s.CreateEmpty()
	}

	published := s.now()
	if params.PublishedAt != nil {
		published = *params.PublishedAt
	}

	size := params.MediaSizeBytes
	if size == 0 {
		size = s.mediaSize(params.MediaFilename)
	}

	episode := Episode{
		Number:          params.Number,
		Title:           params.Title,
		Description:     params.Description,
		MediaFilename:   params.MediaFilename,
		MediaURL:        s.mediaURL(params.MediaFilename),
		MediaSizeBytes:  size,
		DurationSeconds: params.DurationSeconds,
		GUID:            FormatGUID(params.Number, published),
		PublishedAt:     published,
	}

	doc.Episodes = append([]Episode{episode}, doc.Episodes...)
	doc.Channel.LastBuildDate = s.now()

	if err := s.persist(doc); err != nil {
		return nil, err
	}
	s.logger.Info("feed document updated",
		logging.String("path", s.cfg.FeedPath()),
		logging.Int(logging.FieldEpisode, params.Number),
		logging.Int("episodes", len(doc.Episodes)),
	)
	return doc, nil
}

// Persist writes an already-modified document under the feed lock. It is
// the write path for maintenance operations that load, edit, and save.
func (s *Store) Persist(doc *Document) error {
	if err := s.lock.Lock(); err != nil {
		return services.Wrap(services.ErrTransient, "feed", "persist", "acquire feed lock", err)
	}
	defer s.unlock()
	return s.persist(doc)
}

// MaxEpisodeNumber reports the highest published episode number, or zero
// when no feed document exists yet.
func (s *Store) MaxEpisodeNumber() (int, error) {
	doc, err := s.Load()
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return doc.MaxEpisodeNumber(), nil
}

func (s *Store) persist(doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return services.Wrap(services.ErrTransient, "feed", "persist", "encode feed document", err)
	}
	path := s.cfg.FeedPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "feed", "persist", "create feed directory", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "feed", "persist", "write feed document", err)
	}
	return nil
}

func (s *Store) unlock() {
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("failed to release feed lock", logging.Error(err))
	}
}

func (s *Store) mediaURL(filename string) string {
	base := strings.TrimRight(s.cfg.Podcast.BaseURL, "/")
	return fmt.Sprintf("%s/%s/%s", base, s.cfg.Paths.EpisodesSubdir, filename)
}

func (s *Store) mediaSize(filename string) int64 {
	local := filepath.Join(s.cfg.EpisodesDir(), filename)
	info, err := os.Stat(local)
	if err != nil {
		s.logger.Warn("media file missing; publishing size 0",
			logging.String("path", local),
		)
		return 0
	}
	return info.Size()
}

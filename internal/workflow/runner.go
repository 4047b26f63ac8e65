package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"newscast/internal/articles"
	"newscast/internal/config"
	"newscast/internal/content"
	"newscast/internal/feed"
	"newscast/internal/logging"
	"newscast/internal/media"
	"newscast/internal/scripts"
	"newscast/internal/services"
)

// ArticleFetcher supplies the candidate articles for an episode.
type ArticleFetcher interface {
	Fetch(ctx context.Context) ([]articles.Article, error)
}

// History drops articles covered by earlier runs and records new coverage.
type History interface {
	Filter(ctx context.Context, items []articles.Article) ([]articles.Article, error)
	MarkPublished(ctx context.Context, items []articles.Article, episodeNumber int) error
}

// ScriptWriter produces the dialogue script, with a deterministic fallback.
type ScriptWriter interface {
	Generate(ctx context.Context, items []articles.Article) (scripts.Script, error)
	Fallback(items []articles.Article) scripts.Script
}

// Synthesizer renders a script to an audio file.
type Synthesizer interface {
	Synthesize(ctx context.Context, script scripts.Script, outPath string) error
}

// AudioConverter transcodes and probes the generated audio.
type AudioConverter interface {
	ProbeDuration(ctx context.Context, path string) int
	ConvertToMP3(ctx context.Context, wavPath, mp3Path, bitrate string) error
}

// FeedPublisher adds the finished episode to the public feed.
type FeedPublisher interface {
	AddEpisode(params feed.AddEpisodeParams) (*feed.Document, error)
	MaxEpisodeNumber() (int, error)
}

// MetadataRecorder persists the episode record.
type MetadataRecorder interface {
	Record(rec content.Record) (string, error)
	Count() (int, error)
}

// Deps bundles the collaborators a Runner needs.
type Deps struct {
	Fetcher   ArticleFetcher
	History   History // optional
	Dedup     *articles.Deduplicator
	Writer    ScriptWriter
	Synth     Synthesizer
	Converter AudioConverter
	Feed      FeedPublisher
	Recorder  MetadataRecorder
}

// Runner executes the episode pipeline once per invocation.
type Runner struct {
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger
	now    func() time.Time
}

// NewRunner builds a runner from configuration and collaborators.
func NewRunner(cfg *config.Config, deps Deps, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		deps:   deps,
		logger: logging.NewComponentLogger(logger, "workflow"),
		now:    time.Now,
	}
}

// Run generates one episode and returns its metadata record.
func (r *Runner) Run(ctx context.Context) (*content.Record, error) {
	runID := uuid.NewString()
	logger := r.logger.With(logging.String(logging.FieldRunID, runID))
	logger.Info("episode run started")

	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "run", "prepare directories", err)
	}

	items, err := r.deps.Fetcher.Fetch(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "workflow", "run", "fetch articles", err)
	}
	logger.Info("articles fetched", logging.Int("count", len(items)))

	if r.deps.History != nil {
		items, err = r.deps.History.Filter(ctx, items)
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "workflow", "run", "filter covered articles", err)
		}
		logger.Info("history filter applied", logging.Int("remaining", len(items)))
	}

	items = r.deps.Dedup.Deduplicate(items)
	if max := r.cfg.Sources.MaxArticles; max > 0 && len(items) > max {
		items = items[:max]
	}
	if len(items) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "workflow", "run", "no fresh articles to cover", nil)
	}
	logger.Info("article batch ready", logging.Int("count", len(items)))

	number, err := r.nextEpisodeNumber()
	if err != nil {
		return nil, err
	}
	now := r.now()
	title := fmt.Sprintf("第%d話 - %s (%s)", number, r.cfg.Podcast.Title, now.Format("2006-01-02"))
	description := buildDescription(items, now)

	script, err := r.deps.Writer.Generate(ctx, items)
	if err != nil {
		// Misconfiguration aborts the run; transient generation failures
		// degrade to the scripted fallback.
		if services.Fatal(err) {
			return nil, err
		}
		logger.Warn("script generation failed; using fallback script", logging.Error(err))
		script = r.deps.Writer.Fallback(items)
	}

	baseName := fmt.Sprintf("episode_%d_%s", number, now.Format("20060102"))
	wavPath := filepath.Join(r.cfg.EpisodesDir(), baseName+".wav")
	if err := r.deps.Synth.Synthesize(ctx, script, wavPath); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "workflow", "run", "synthesize audio", err)
	}

	audioPath := wavPath
	mp3Path := filepath.Join(r.cfg.EpisodesDir(), baseName+".mp3")
	if err := r.deps.Converter.ConvertToMP3(ctx, wavPath, mp3Path, "128k"); err != nil {
		logger.Warn("mp3 conversion failed; publishing wav", logging.Error(err))
	} else {
		audioPath = mp3Path
	}

	duration := r.deps.Converter.ProbeDuration(ctx, audioPath)
	size := media.FileSize(audioPath)
	audioFile := filepath.Base(audioPath)

	if _, err := r.deps.Feed.AddEpisode(feed.AddEpisodeParams{
		Number:          number,
		Title:           title,
		Description:     description,
		MediaFilename:   audioFile,
		MediaSizeBytes:  size,
		DurationSeconds: duration,
		PublishedAt:     &now,
	}); err != nil {
		// The audio exists; a broken feed write should not lose the episode.
		logger.Error("feed update failed", logging.Error(err))
	}

	rec := content.Record{
		Title:           title,
		Description:     description,
		EpisodeNumber:   number,
		PublishedDate:   now.Format("2006-01-02"),
		SourceArticles:  sourceArticles(items),
		DurationSeconds: duration,
		AudioFile:       audioFile,
		GeneratedAt:     now,
	}
	if _, err := r.deps.Recorder.Record(rec); err != nil {
		logger.Error("metadata record failed", logging.Error(err))
	}

	if r.deps.History != nil {
		if err := r.deps.History.MarkPublished(ctx, items, number); err != nil {
			logger.Warn("failed to record covered articles", logging.Error(err))
		}
	}

	logger.Info("episode run finished",
		logging.Int(logging.FieldEpisode, number),
		logging.String("audio", audioFile),
		logging.Int("duration_seconds", duration),
	)
	return &rec, nil
}

// nextEpisodeNumber continues from the published feed, falling back to the
// metadata records when no feed document exists yet.
func (r *Runner) nextEpisodeNumber() (int, error) {
	max, err := r.deps.Feed.MaxEpisodeNumber()
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "workflow", "run", "read feed state", err)
	}
	if max > 0 {
		return max + 1, nil
	}
	count, err := r.deps.Recorder.Count()
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "workflow", "run", "count episode records", err)
	}
	return count + 1, nil
}

func buildDescription(items []articles.Article, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "配信日: %s\n\n取り上げた記事:\n", now.Format("2006-01-02"))
	for i, item := range items {
		fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, item.Title, item.Source)
	}
	b.WriteString("\nAIで自動生成されたポッドキャストです。")
	return b.String()
}

func sourceArticles(items []articles.Article) []content.SourceArticle {
	out := make([]content.SourceArticle, 0, len(items))
	for _, item := range items {
		out = append(out, content.SourceArticle{
			Title:  item.Title,
			Source: item.Source,
			Link:   item.Link,
		})
	}
	return out
}

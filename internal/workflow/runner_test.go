package workflow

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"newscast/internal/articles"
	"newscast/internal/config"
	"newscast/internal/content"
	"newscast/internal/feed"
	"newscast/internal/logging"
	"newscast/internal/scripts"
	"newscast/internal/services"
	"newscast/internal/testsupport"
)

type fakeFetcher struct {
	items []articles.Article
	err   error
}

func (f *fakeFetcher) Fetch(context.Context) ([]articles.Article, error) {
	return f.items, f.err
}

type fakeWriter struct {
	script      scripts.Script
	err         error
	fallbackHit bool
}

func (f *fakeWriter) Generate(context.Context, []articles.Article) (scripts.Script, error) {
	return f.script, f.err
}

func (f *fakeWriter) Fallback([]articles.Article) scripts.Script {
	f.fallbackHit = true
	return scripts.Script{{Speaker: scripts.SpeakerHost, Text: "fallback"}}
}

type fakeSynth struct {
	err   error
	paths []string
}

func (f *fakeSynth) Synthesize(_ context.Context, _ scripts.Script, outPath string) error {
	if f.err != nil {
		return f.err
	}
	f.paths = append(f.paths, outPath)
	return os.WriteFile(outPath, []byte("wav-bytes"), 0o644)
}

type fakeConverter struct {
	convertErr error
	duration   int
}

func (f *fakeConverter) ProbeDuration(context.Context, string) int {
	return f.duration
}

func (f *fakeConverter) ConvertToMP3(_ context.Context, wavPath, mp3Path, _ string) error {
	if f.convertErr != nil {
		return f.convertErr
	}
	if err := os.WriteFile(mp3Path, []byte("mp3-bytes"), 0o644); err != nil {
		return err
	}
	return os.Remove(wavPath)
}

type fakeFeed struct {
	max    int
	addErr error
	added  []feed.AddEpisodeParams
}

func (f *fakeFeed) AddEpisode(params feed.AddEpisodeParams) (*feed.Document, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = append(f.added, params)
	return &feed.Document{}, nil
}

func (f *fakeFeed) MaxEpisodeNumber() (int, error) {
	return f.max, nil
}

type fakeRecorder struct {
	count   int
	records []content.Record
}

func (f *fakeRecorder) Record(rec content.Record) (string, error) {
	f.records = append(f.records, rec)
	return "record.json", nil
}

func (f *fakeRecorder) Count() (int, error) {
	return f.count, nil
}

type fakeHistory struct {
	drop   map[string]bool
	marked []articles.Article
	episod int
}

func (f *fakeHistory) Filter(_ context.Context, items []articles.Article) ([]articles.Article, error) {
	kept := items[:0:0]
	for _, item := range items {
		if !f.drop[item.Link] {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

func (f *fakeHistory) MarkPublished(_ context.Context, items []articles.Article, episode int) error {
	f.marked = items
	f.episod = episode
	return nil
}

func testDeps(cfg *config.Config) (Deps, *fakeFetcher, *fakeWriter, *fakeFeed, *fakeRecorder) {
	fetcher := &fakeFetcher{items: []articles.Article{
		{Title: "株式市場が上昇", Link: "https://example.com/a", Source: "Example"},
		{Title: "新しいAIモデルが公開", Link: "https://example.com/b", Source: "Example"},
	}}
	writer := &fakeWriter{script: scripts.Script{{Speaker: scripts.SpeakerHost, Text: "本編"}}}
	store := &fakeFeed{}
	recorder := &fakeRecorder{}
	deps := Deps{
		Fetcher:   fetcher,
		Dedup:     articles.NewDeduplicator(cfg.Sources.SimilarityThreshold, logging.NewNop()),
		Writer:    writer,
		Synth:     &fakeSynth{},
		Converter: &fakeConverter{duration: 300},
		Feed:      store,
		Recorder:  recorder,
	}
	return deps, fetcher, writer, store, recorder
}

func TestRunPublishesEpisode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	deps, _, _, store, recorder := testDeps(cfg)

	runner := NewRunner(cfg, deps, logging.NewNop())
	rec, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rec.EpisodeNumber != 1 {
		t.Fatalf("expected episode 1, got %d", rec.EpisodeNumber)
	}
	if !strings.HasSuffix(rec.AudioFile, ".mp3") {
		t.Fatalf("expected mp3 audio file, got %q", rec.AudioFile)
	}
	if rec.DurationSeconds != 300 {
		t.Fatalf("duration %d", rec.DurationSeconds)
	}
	if len(rec.SourceArticles) != 2 {
		t.Fatalf("expected 2 source articles, got %d", len(rec.SourceArticles))
	}
	if !strings.Contains(rec.Title, "第1話") {
		t.Fatalf("unexpected title %q", rec.Title)
	}

	if len(store.added) != 1 || store.added[0].Number != 1 {
		t.Fatalf("feed entry not published: %+v", store.added)
	}
	if store.added[0].MediaSizeBytes == 0 {
		t.Fatal("expected media size forwarded to the feed")
	}
	if len(recorder.records) != 1 {
		t.Fatalf("expected metadata record, got %d", len(recorder.records))
	}
}

func TestRunContinuesNumberingFromFeed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	deps, _, _, store, recorder := testDeps(cfg)
	store.max = 7
	recorder.count = 2

	runner := NewRunner(cfg, deps, logging.NewNop())
	rec, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.EpisodeNumber != 8 {
		t.Fatalf("expected episode 8 from feed max, got %d", rec.EpisodeNumber)
	}
}

func TestRunFallsBackToRecordCount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	deps, _, _, _, recorder := testDeps(cfg)
	recorder.count = 4

	runner := NewRunner(cfg, deps, logging.NewNop())
	rec, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.EpisodeNumber != 5 {
		t.Fatalf("expected episode 5 from record count, got %d", rec.EpisodeNumber)
	}
}

func TestRunUsesFallbackScriptWhenGenerationFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	deps, _, writer, _, _ := testDeps(cfg)
	writer.err = errors.New("model unavailable")

	runner := NewRunner(cfg, deps, logging.NewNop())
	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !writer.fallbackHit {
		t.Fatal("expected fallback script to be used")
	}
}

func TestRunAbortsWhenScriptGenerationMisconfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	deps, _, writer, store, recorder := testDeps(cfg)
	writer.err = services.Wrap(services.ErrConfiguration, "scripts", "generate", "llm api key is not set", nil)

	runner := NewRunner(cfg, deps, logging.NewNop())
	if _, err := runner.Run(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if writer.fallbackHit {
		t.Fatal("fallback script must not run on misconfiguration")
	}
	if len(store.added) != 0 || len(recorder.records) != 0 {
		t.Fatal("nothing should be published on misconfiguration")
	}
}

func TestRunSurvivesFeedFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	deps, _, _, store, recorder := testDeps(cfg)
	store.addErr = errors.New("disk full")

	runner := NewRunner(cfg, deps, logging.NewNop())
	rec, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("expected run to survive feed failure, got %v", err)
	}
	if rec == nil || len(recorder.records) != 1 {
		t.Fatal("expected metadata record despite feed failure")
	}
}

func TestRunPublishesWAVWhenConversionFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	deps, _, _, store, _ := testDeps(cfg)
	deps.Converter = &fakeConverter{convertErr: errors.New("no ffmpeg"), duration: 10}

	runner := NewRunner(cfg, deps, logging.NewNop())
	rec, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasSuffix(rec.AudioFile, ".wav") {
		t.Fatalf("expected wav publish, got %q", rec.AudioFile)
	}
	if len(store.added) != 1 || !strings.HasSuffix(store.added[0].MediaFilename, ".wav") {
		t.Fatalf("feed should reference the wav: %+v", store.added)
	}
}

func TestRunFailsWithoutArticles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	deps, fetcher, _, _, _ := testDeps(cfg)
	fetcher.items = nil

	runner := NewRunner(cfg, deps, logging.NewNop())
	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected error when no articles are available")
	}
}

func TestRunFailsWhenSynthesisFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	deps, _, _, store, recorder := testDeps(cfg)
	deps.Synth = &fakeSynth{err: errors.New("speech api down")}

	runner := NewRunner(cfg, deps, logging.NewNop())
	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected synthesis failure to end the run")
	}
	if len(store.added) != 0 || len(recorder.records) != 0 {
		t.Fatal("nothing should publish after synthesis failure")
	}
}

func TestRunAppliesHistoryFilterAndMarksCoverage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	deps, _, _, _, _ := testDeps(cfg)
	history := &fakeHistory{drop: map[string]bool{"https://example.com/a": true}}
	deps.History = history

	runner := NewRunner(cfg, deps, logging.NewNop())
	rec, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.SourceArticles) != 1 || rec.SourceArticles[0].Link != "https://example.com/b" {
		t.Fatalf("expected filtered batch, got %+v", rec.SourceArticles)
	}
	if len(history.marked) != 1 || history.episod != rec.EpisodeNumber {
		t.Fatalf("expected coverage marked for episode %d, got %+v", rec.EpisodeNumber, history.marked)
	}
}

func TestRunCapsBatchSize(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Sources.MaxArticles = 1
	deps, _, _, _, _ := testDeps(cfg)

	runner := NewRunner(cfg, deps, logging.NewNop())
	rec, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.SourceArticles) != 1 {
		t.Fatalf("expected capped batch of 1, got %d", len(rec.SourceArticles))
	}
}

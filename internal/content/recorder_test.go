package content_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"newscast/internal/content"
	"newscast/internal/feed"
	"newscast/internal/logging"
	"newscast/internal/retention"
	"newscast/internal/testsupport"
)

func TestRecordWritesDeterministicFilename(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	recorder := content.NewRecorder(cfg, logging.NewNop())

	rec := content.Record{
		Title:         "Episode 7",
		Description:   "desc",
		EpisodeNumber: 7,
		SourceArticles: []content.SourceArticle{
			{Title: "Article", Source: "Example News", Link: "https://example.com/a"},
		},
		DurationSeconds: 540,
		AudioFile:       "episode_7_20260828.mp3",
	}

	path, err := recorder.Record(rec)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	wantName := "episode_7_" + time.Now().Format("20060102") + ".json"
	if filepath.Base(path) != wantName {
		t.Fatalf("expected filename %q, got %q", wantName, filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	var got content.Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("parse record: %v", err)
	}
	if got.EpisodeNumber != 7 || got.Title != "Episode 7" {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.PublishedDate == "" || got.GeneratedAt.IsZero() || got.ID == "" {
		t.Fatalf("expected defaults filled, got %+v", got)
	}

	// A re-run the same day overwrites instead of duplicating.
	if _, err := recorder.Record(rec); err != nil {
		t.Fatalf("Record rerun: %v", err)
	}
	count, err := recorder.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record after rerun, got %d", count)
	}
}

func TestRecordRejectsInvalidEpisodeNumber(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	recorder := content.NewRecorder(cfg, logging.NewNop())

	if _, err := recorder.Record(content.Record{Title: "x"}); err == nil {
		t.Fatal("expected validation error for missing episode number")
	}
}

func TestCountIgnoresForeignFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	recorder := content.NewRecorder(cfg, logging.NewNop())

	for _, ep := range []int{1, 2} {
		if _, err := recorder.Record(content.Record{Title: "t", EpisodeNumber: ep}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	for _, name := range []string{"notes.txt", "episode_draft.md"} {
		if err := os.WriteFile(filepath.Join(cfg.Paths.ContentDir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write foreign file: %v", err)
		}
	}

	count, err := recorder.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 records, got %d", count)
	}
}

func TestListReturnsNewestFirstAndSkipsBrokenRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	recorder := content.NewRecorder(cfg, logging.NewNop())

	for _, ep := range []int{2, 5, 3} {
		if _, err := recorder.Record(content.Record{Title: "t", EpisodeNumber: ep}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	broken := filepath.Join(cfg.Paths.ContentDir, "episode_9_20200101.json")
	if err := os.WriteFile(broken, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write broken record: %v", err)
	}

	records, err := recorder.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 readable records, got %d", len(records))
	}
	if records[0].EpisodeNumber != 5 || records[2].EpisodeNumber != 2 {
		t.Fatalf("unexpected order: %v, %v, %v",
			records[0].EpisodeNumber, records[1].EpisodeNumber, records[2].EpisodeNumber)
	}
}

func TestRecordsSurviveFeedRewrites(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	recorder := content.NewRecorder(cfg, logging.NewNop())
	store := feed.NewStore(cfg, logging.NewNop())

	path, err := recorder.Record(content.Record{Title: "t", EpisodeNumber: 1})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}

	if err := store.Init(); err != nil {
		t.Fatalf("feed Init: %v", err)
	}
	if _, err := store.AddEpisode(feed.AddEpisodeParams{Number: 1, Title: "t", MediaFilename: "e.mp3"}); err != nil {
		t.Fatalf("AddEpisode: %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("record disappeared: %v", err)
	}
	if !strings.Contains(string(after), `"episode_number": 1`) || string(before) != string(after) {
		t.Fatal("expected record untouched by feed writes")
	}
}

func TestRecordsSurviveFeedPruning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Retention.Days = 30
	recorder := content.NewRecorder(cfg, logging.NewNop())
	store := feed.NewStore(cfg, logging.NewNop())

	old := time.Now().AddDate(0, 0, -90)
	path, err := recorder.Record(content.Record{Title: "t", EpisodeNumber: 1, GeneratedAt: old})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}

	media := filepath.Join(cfg.EpisodesDir(), "e.mp3")
	if err := os.WriteFile(media, []byte("mp3"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	if _, err := store.AddEpisode(feed.AddEpisodeParams{
		Number:        1,
		Title:         "t",
		MediaFilename: "e.mp3",
		PublishedAt:   &old,
	}); err != nil {
		t.Fatalf("AddEpisode: %v", err)
	}

	pruner := retention.NewPruner(cfg, nil, logging.NewNop())
	removed, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(removed) != 1 {
		t.Fatalf("expected the feed to be emptied, got %v", removed)
	}
	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Episodes) != 0 {
		t.Fatalf("expected no episodes left, got %d", len(doc.Episodes))
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("record disappeared after pruning: %v", err)
	}
	if string(before) != string(after) {
		t.Fatal("expected record untouched by pruning")
	}
}

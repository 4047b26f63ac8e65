package retention_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"newscast/internal/config"
	"newscast/internal/feed"
	"newscast/internal/logging"
	"newscast/internal/retention"
	"newscast/internal/testsupport"
)

func addEpisode(t *testing.T, cfg *config.Config, number int, published time.Time) string {
	t.Helper()
	filename := fmt.Sprintf("episode_%d_%s.mp3", number, published.Format("20060102"))
	if err := os.WriteFile(filepath.Join(cfg.EpisodesDir(), filename), []byte("mp3"), 0o644); err != nil {
		t.Fatalf("write media file: %v", err)
	}
	store := feed.NewStore(cfg, logging.NewNop())
	if _, err := store.AddEpisode(feed.AddEpisodeParams{
		Number:        number,
		Title:         fmt.Sprintf("Episode %d", number),
		MediaFilename: filename,
		PublishedAt:   &published,
	}); err != nil {
		t.Fatalf("AddEpisode: %v", err)
	}
	return filename
}

func TestPruneRemovesOnlyStaleEpisodes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Retention.Days = 60

	now := time.Now()
	oldFile := addEpisode(t, cfg, 1, now.AddDate(0, 0, -90))
	keepA := addEpisode(t, cfg, 2, now.AddDate(0, 0, -10))
	keepB := addEpisode(t, cfg, 3, now)

	pruner := retention.NewPruner(cfg, nil, logging.NewNop())
	removed, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(removed) != 1 || removed[0] != oldFile {
		t.Fatalf("expected only %q removed, got %v", oldFile, removed)
	}

	if _, err := os.Stat(filepath.Join(cfg.EpisodesDir(), oldFile)); !os.IsNotExist(err) {
		t.Fatalf("expected stale media file deleted, stat err %v", err)
	}
	for _, name := range []string{keepA, keepB} {
		if _, err := os.Stat(filepath.Join(cfg.EpisodesDir(), name)); err != nil {
			t.Fatalf("surviving media file missing: %v", err)
		}
	}

	doc, err := feed.NewStore(cfg, logging.NewNop()).Load()
	if err != nil {
		t.Fatalf("Load after prune: %v", err)
	}
	if len(doc.Episodes) != 2 {
		t.Fatalf("expected 2 surviving episodes, got %d", len(doc.Episodes))
	}
	if doc.Episodes[0].Number != 3 || doc.Episodes[1].Number != 2 {
		t.Fatalf("survivor order changed: %d, %d", doc.Episodes[0].Number, doc.Episodes[1].Number)
	}
}

func TestPruneDisabledKeepsEverything(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Retention.Days = 0

	addEpisode(t, cfg, 1, time.Now().AddDate(0, 0, -365))

	pruner := retention.NewPruner(cfg, nil, logging.NewNop())
	removed, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != nil {
		t.Fatalf("expected no removals, got %v", removed)
	}

	doc, err := feed.NewStore(cfg, logging.NewNop()).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc.Episodes) != 1 {
		t.Fatalf("expected episode kept, got %d", len(doc.Episodes))
	}
}

func TestPruneMissingFeedIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Retention.Days = 30

	pruner := retention.NewPruner(cfg, nil, logging.NewNop())
	removed, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != nil {
		t.Fatalf("expected nothing removed, got %v", removed)
	}
}

func TestPruneFallsBackToIdentifierDate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Retention.Days = 30

	// A document without pubDate elements forces the guid-embedded date path.
	raw := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>Test</title>
    <link>https://podcast.example.com</link>
    <description>d</description>
    <item>
      <title>Old</title>
      <enclosure url="https://podcast.example.com/episodes/old.mp3" length="1" type="audio/mpeg"></enclosure>
      <guid isPermaLink="false">episode-1-%s</guid>
    </item>
    <item>
      <title>Fresh</title>
      <enclosure url="https://podcast.example.com/episodes/fresh.mp3" length="1" type="audio/mpeg"></enclosure>
      <guid isPermaLink="false">episode-2-%s</guid>
    </item>
  </channel>
</rss>
`,
		time.Now().AddDate(0, 0, -90).Format("20060102"),
		time.Now().Format("20060102"))
	if err := os.WriteFile(cfg.FeedPath(), []byte(raw), 0o644); err != nil {
		t.Fatalf("write feed: %v", err)
	}

	pruner := retention.NewPruner(cfg, nil, logging.NewNop())
	removed, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if len(removed) != 1 || removed[0] != "old.mp3" {
		t.Fatalf("expected old.mp3 removed, got %v", removed)
	}
}

type fakeHistory struct {
	cutoff time.Time
	calls  int
}

func (f *fakeHistory) PruneOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	f.calls++
	return 2, nil
}

func TestPruneReleasesFeedLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Retention.Days = 60

	now := time.Now()
	addEpisode(t, cfg, 1, now.AddDate(0, 0, -90))

	pruner := retention.NewPruner(cfg, nil, logging.NewNop())
	if _, err := pruner.Prune(context.Background()); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	// The document lock must be free again so the publisher can write.
	lock := flock.New(cfg.FeedPath() + ".lock")
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("feed lock still held after prune: locked=%v err=%v", locked, err)
	}
	if err := lock.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	addEpisode(t, cfg, 2, now)
}

func TestPrunePrunesHistoryWithSameCutoff(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Retention.Days = 60

	addEpisode(t, cfg, 1, time.Now().AddDate(0, 0, -90))

	history := &fakeHistory{}
	pruner := retention.NewPruner(cfg, history, logging.NewNop())
	if _, err := pruner.Prune(context.Background()); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if history.calls != 1 {
		t.Fatalf("expected history prune call, got %d", history.calls)
	}
	if age := time.Since(history.cutoff); age < 59*24*time.Hour || age > 61*24*time.Hour {
		t.Fatalf("unexpected history cutoff %v", history.cutoff)
	}
}

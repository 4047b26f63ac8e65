package articles_test

import (
	"reflect"
	"testing"

	"newscast/internal/articles"
)

func TestNormalizeURLStripsTrackingParams(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"utm params", "https://a.com/story?utm_source=x&utm_medium=rss", "https://a.com/story"},
		{"ref param", "https://a.com/story?ref=feedly", "https://a.com/story"},
		{"kept param", "https://a.com/story?id=42&utm_term=y", "https://a.com/story?id=42"},
		{"trailing slash", "https://a.com/story/", "https://a.com/story"},
		{"fragment", "https://a.com/story#section", "https://a.com/story"},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := articles.NormalizeURL(tc.in); got != tc.want {
				t.Fatalf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTitleSimilarity(t *testing.T) {
	if got := articles.TitleSimilarity("Foo Bar Baz", "Foo Bar Baz"); got != 1 {
		t.Fatalf("identical titles: got %v, want 1", got)
	}
	if got := articles.TitleSimilarity("Foo Bar Baz", "Foo Bar Baz!!"); got < 0.75 {
		t.Fatalf("near-identical titles below threshold: %v", got)
	}
	if got := articles.TitleSimilarity("Foo", "Completely Unrelated Headline"); got >= 0.75 {
		t.Fatalf("unrelated titles above threshold: %v", got)
	}
	if got := articles.TitleSimilarity("", "Some Headline"); got != 0 {
		t.Fatalf("empty vs non-empty: got %v, want 0", got)
	}
	if got := articles.TitleSimilarity("", ""); got != 0 {
		t.Fatalf("empty vs empty: got %v, want 0", got)
	}
}

func TestTitleSimilarityFoldsWidthVariants(t *testing.T) {
	// Full-width ASCII in Japanese feed titles should compare equal to
	// half-width after NFKC.
	if got := articles.TitleSimilarity("ＡＩニュース", "AIニュース"); got != 1 {
		t.Fatalf("width variants: got %v, want 1", got)
	}
}

func TestDeduplicateByURL(t *testing.T) {
	d := articles.NewDeduplicator(0.75, nil)
	batch := []articles.Article{
		{Title: "Quantum launch", Link: "http://a.com/1"},
		{Title: "Something else entirely different", Link: "http://a.com/1?utm_source=x"},
	}
	got := d.Deduplicate(batch)
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
	if got[0].Title != "Quantum launch" {
		t.Fatalf("first occurrence should win, got %q", got[0].Title)
	}
}

func TestDeduplicateByTitle(t *testing.T) {
	d := articles.NewDeduplicator(0.75, nil)
	batch := []articles.Article{
		{Title: "Foo Bar Baz", Link: "http://a.com/1"},
		{Title: "Foo Bar Baz!!", Link: "http://a.com/2"},
		{Title: "Completely Unrelated Headline", Link: "http://a.com/3"},
	}
	got := d.Deduplicate(batch)
	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d: %+v", len(got), got)
	}
	if got[0].Title != "Foo Bar Baz" || got[1].Title != "Completely Unrelated Headline" {
		t.Fatalf("unexpected survivors: %+v", got)
	}
}

func TestDeduplicateEmptyLinksNeverMarkSeen(t *testing.T) {
	d := articles.NewDeduplicator(0.75, nil)
	batch := []articles.Article{
		{Title: "First headline about storage"},
		{Title: "Second headline about networks"},
	}
	got := d.Deduplicate(batch)
	if len(got) != 2 {
		t.Fatalf("articles without links collapsed by empty url: got %d", len(got))
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	d := articles.NewDeduplicator(0.75, nil)
	batch := []articles.Article{
		{Title: "Foo Bar Baz", Link: "http://a.com/1"},
		{Title: "Foo Bar Baz!!", Link: "http://a.com/2"},
		{Title: "Kernel release roundup", Link: "http://b.com/2"},
		{Title: "Kernel release roundup", Link: "http://b.com/2?ref=x"},
	}
	once := d.Deduplicate(batch)
	twice := d.Deduplicate(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("dedup not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestDeduplicateStableOrder(t *testing.T) {
	d := articles.NewDeduplicator(0.75, nil)
	batch := []articles.Article{
		{Title: "Alpha release notes", Link: "http://a.com/alpha"},
		{Title: "Beta rollout begins", Link: "http://a.com/beta"},
		{Title: "Gamma testing wraps up", Link: "http://a.com/gamma"},
	}
	got := d.Deduplicate(batch)
	if len(got) != 3 {
		t.Fatalf("expected all 3 kept, got %d", len(got))
	}
	for i := range batch {
		if got[i].Title != batch[i].Title {
			t.Fatalf("order changed at %d: %q", i, got[i].Title)
		}
	}
}

package sources

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// maxSummaryRunes bounds excerpt length so prompts and descriptions stay
// manageable regardless of how much body text a feed inlines.
const maxSummaryRunes = 500

// itemPublished resolves an item's publish time, preferring the parsed
// published date, then the updated date, then raw string fallbacks in the
// formats the source feeds actually use.
func itemPublished(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		utc := item.PublishedParsed.UTC()
		return &utc
	}
	if item.UpdatedParsed != nil {
		utc := item.UpdatedParsed.UTC()
		return &utc
	}

	raw := strings.TrimSpace(item.Published)
	if raw == "" {
		raw = strings.TrimSpace(item.Updated)
	}
	if raw == "" {
		return nil
	}
	for _, layout := range []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z07:00",
		"2006-01-02 15:04:05",
	} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			utc := parsed.UTC()
			return &utc
		}
	}
	return nil
}

// itemSummary picks the richer of Content/Description and strips markup.
func itemSummary(item *gofeed.Item) string {
	raw := strings.TrimSpace(item.Description)
	if raw == "" {
		raw = strings.TrimSpace(item.Content)
	}
	if raw == "" {
		return ""
	}
	text := StripHTML(raw)
	runes := []rune(text)
	if len(runes) > maxSummaryRunes {
		text = string(runes[:maxSummaryRunes]) + "…"
	}
	return text
}

// StripHTML reduces an HTML fragment to its text content with whitespace
// collapsed. Input that fails to parse is returned trimmed as-is.
func StripHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

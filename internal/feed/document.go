package feed

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Channel holds the feed-level metadata published ahead of the episodes.
type Channel struct {
	Title         string
	Link          string
	Description   string
	Language      string
	Author        string
	Category      string
	Explicit      bool
	LastBuildDate time.Time
	SelfLink      string
}

// Episode is one published entry in the feed.
type Episode struct {
	Number          int
	Title           string
	Description     string
	MediaFilename   string
	MediaURL        string
	MediaSizeBytes  int64
	DurationSeconds int
	GUID            string
	PublishedAt     time.Time
}

// Document is the full feed: channel metadata plus episodes in publish
// order, newest first.
type Document struct {
	Channel  Channel
	Episodes []Episode
}

// MaxEpisodeNumber returns the highest episode number in the document,
// or zero when it has none.
func (d *Document) MaxEpisodeNumber() int {
	max := 0
	for _, ep := range d.Episodes {
		if ep.Number > max {
			max = ep.Number
		}
	}
	return max
}

var guidPattern = regexp.MustCompile(`^episode-(\d+)-(\d{8})$`)

// FormatGUID builds the stable permalink-free identifier for an episode.
func FormatGUID(number int, published time.Time) string {
	return fmt.Sprintf("episode-%d-%s", number, published.Format("20060102"))
}

// ParseGUID extracts the episode number and publish date embedded in a
// feed identifier. ok is false when the identifier uses another shape.
func ParseGUID(guid string) (number int, published time.Time, ok bool) {
	m := guidPattern.FindStringSubmatch(guid)
	if m == nil {
		return 0, time.Time{}, false
	}
	number, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, time.Time{}, false
	}
	published, err = time.Parse("20060102", m[2])
	if err != nil {
		return 0, time.Time{}, false
	}
	return number, published, true
}

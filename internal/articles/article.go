package articles

import "time"

// Article is one story pulled from a source feed. All fields tolerate being
// empty; PublishedAt is nil when the source supplied no parseable date.
type Article struct {
	Title       string
	Summary     string
	Link        string
	PublishedAt *time.Time
	Source      string
}

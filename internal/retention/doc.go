// Package retention removes episodes older than the configured window from
// the feed document and the media directory, keeping hosting costs bounded
// for a feed that publishes daily.
package retention

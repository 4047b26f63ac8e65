// Package sources collects candidate articles from the configured RSS and
// Atom feeds.
//
// Each feed is fetched with a shared HTTP client and parsed with gofeed;
// items outside the recency window are skipped and summaries are stripped of
// HTML before they reach prompts or feed descriptions. A failing feed is
// logged and skipped so one dead source never kills a run.
package sources

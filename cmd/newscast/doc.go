// Command newscast generates and publishes an automated news podcast:
// it fetches articles from RSS feeds, writes and voices a dialogue script,
// and maintains the published feed document, media files, and episode
// records.
package main

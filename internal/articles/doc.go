// Package articles defines the transient article model and the
// deduplication logic that collapses near-duplicate stories fetched from
// overlapping feeds.
//
// Two articles are the same logical story when their normalized URLs match
// exactly or their titles exceed a similarity threshold. Articles only live
// for one fetch cycle; nothing here is persisted.
package articles

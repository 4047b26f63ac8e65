// Package workflow runs one end-to-end episode generation: fetch articles,
// drop what previous runs covered, deduplicate the batch, write a dialogue
// script, synthesize and transcode audio, publish the feed entry, and
// record the episode metadata.
//
// The run degrades rather than aborts wherever the audio can still be
// produced: script generation falls back to a read-through, a failed MP3
// conversion publishes the WAV, and a failed feed or metadata write is
// logged while the run continues. Only steps without a usable fallback
// (no articles, synthesis failure) end the run.
package workflow

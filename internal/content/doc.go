// Package content records what went into each generated episode as a JSON
// document alongside the audio output. The records are the durable history
// of the pipeline: pruning never touches them, and they seed episode
// numbering when no feed document exists.
package content

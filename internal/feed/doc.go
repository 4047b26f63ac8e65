// Package feed owns the published podcast feed document.
//
// It models the channel and its episode sequence as plain value types, codes
// them to and from RSS 2.0 with the iTunes and Atom extensions podcast
// directories expect, and persists the document through a Store that writes
// atomically under an advisory file lock. The Store treats a corrupt document
// as absent so a damaged file is recreated on the next publish instead of
// wedging the pipeline.
package feed

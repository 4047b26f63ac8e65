// Package scripts turns a batch of news articles into a two-host dialogue
// script via an OpenAI-compatible chat completions endpoint. The model is
// asked for a JSON array of speaker lines; decoding tolerates the fencing
// and prose wrappers models produce in practice. When generation fails the
// pipeline falls back to a deterministic single-host read-through so a run
// still produces an episode.
package scripts

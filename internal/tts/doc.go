// Package tts renders dialogue scripts to audio. Each line becomes one
// speech synthesis request with the voice assigned to its speaker, and the
// resulting PCM segments are joined with short silences into a single WAV
// file. A failed segment is padded with silence so one bad line does not
// lose the episode.
package tts

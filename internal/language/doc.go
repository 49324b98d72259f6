// Package language normalizes the audio-stream language tags reported by the
// media server so streams can be counted as English or Japanese dubs.
package language

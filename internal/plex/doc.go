// Package plex enumerates the shows of a Plex library section along with
// their per-episode audio-stream language tags.
package plex

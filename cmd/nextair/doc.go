// Command nextair resolves the airing schedules of a Plex anime library
// against AniList and writes Kometa overlay files.
package main

// Package anilist wraps the AniList GraphQL API for show search and by-ID
// lookups, driving every request through the shared rate gate.
package anilist

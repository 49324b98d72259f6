// Package aircache persists per-title resolution results and audio-track
// counts in one JSON cache file so repeated runs avoid redundant catalog
// calls. Entries carry creation timestamps and are validated against
// category-specific expiry rules; stale entries are replaced wholesale.
package aircache

// Package resolver turns library show titles into airing-schedule
// resolutions by combining the override table, the persistent cache, and
// catalog searches.
package resolver

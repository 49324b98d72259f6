// Package overlay renders Kometa overlay definition files from resolved
// airing schedules and audio counts.
package overlay

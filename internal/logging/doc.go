// Package logging configures the shared slog logger and provides small
// helpers for consistent structured attributes across components.
package logging

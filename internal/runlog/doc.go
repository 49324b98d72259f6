// Package runlog records per-run counters in a small SQLite database so past
// runs can be inspected from the CLI.
package runlog

// Package logs reads the run log back for the logs command: a bounded tail
// of recent lines plus an optional poll-based follow.
package logs

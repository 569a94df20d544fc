// Package logs reads back the vidingest log file for the `vidingest logs`
// command.
//
// Reads are bounded: the last N lines are kept in a ring buffer and follow
// mode polls forward from a byte offset, restarting from the top when the
// file is truncated. Filter matches both the JSON and console line formats
// written by internal/logging.
package logs

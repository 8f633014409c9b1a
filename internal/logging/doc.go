// Package logging assembles the slog loggers used by dive-tagger.
//
// It owns the console and JSON handlers, level parsing and output plumbing,
// and exposes attribute helpers plus a no-op logger for tests and for
// components constructed without one.
package logging

// Package logging configures structured logging for omnisearch.
//
// Logs are written as JSON lines via log/slog, to a size-rotated file
// under ~/.omnisearch/logs/ and optionally mirrored to stderr. The
// default level is info; the --debug CLI flag switches to debug.
package logging

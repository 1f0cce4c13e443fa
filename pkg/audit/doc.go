// Package audit implements the audit trail search and reporting engine.
//
// # Overview
//
// The platform's audit writer appends one JSON object per line to a log file
// that rotates into dated siblings sharing a filename prefix. This package is
// strictly a consumer of those files: it discovers them (Locator), parses
// them line by line with per-line resilience (ParseLine), streams them as one
// event sequence (Source), and answers filtered, paginated queries (Engine)
// or renders full CSV reports (Exporter) over them.
//
// # Query pipeline
//
// Raw request parameters pass through exactly one validation boundary
// (Validator), which reports every violation together. The caller's
// administrative role is turned into a VisibilityScope (Scoper) before any
// file I/O; the scope is intersected with the criteria as a silent filter,
// so asking outside one's scope narrows to zero results instead of erroring.
//
// # Ordering
//
// Files are visited newest-first and lines within a file oldest-first, so the
// composite stream is not globally sorted. Results are ranked most-recent-
// first with file-then-line order breaking timestamp ties, and queries buffer
// only the requested page's worth of top matches.
//
// # Caching
//
// An optional parse cache memoizes whole-file parses keyed by path, mtime and
// size. It is a derived cache: the files stay the source of truth, and a
// folder watcher plus TTL plus a scheduled purge bound its staleness.
//
// # Related Packages
//
//   - pkg/directory: membership and role lookups
//   - pkg/middleware: caller resolution
package audit

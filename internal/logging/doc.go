// Package logging wraps zap with context-aware logging for quoted.
//
// Loggers carry structured fields attached to the request context (owner,
// request id, pipeline stage) so that every log line emitted during a
// quote generation can be correlated without threading fields manually.
package logging

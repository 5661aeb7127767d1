// Package errs defines the error types returned to API clients.
//
// Every failure that reaches the global error handler ends up as an
// HTTPError: a stable JSON envelope with a machine-readable code, a
// human-readable message, optional per-field errors and an optional
// client action. The underlying cause, when attached with Wrap, is only
// ever logged.
package errs

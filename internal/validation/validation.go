// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules (like
// required fields or minimum lengths) defined in struct tags,
// rejects undeclared keys for strict payloads, and extracts
// every violation into a format the client can understand
package validation

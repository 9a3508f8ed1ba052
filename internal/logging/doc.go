// Package logging provides structured logging utilities for the inboxgroups
// application.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (email anonymization)
//   - Consistent attribute naming across the codebase
//
// # Security Considerations
//
//   - Sender emails are hashed to prevent PII leakage while allowing correlation
//   - Tokens are never logged directly
package logging

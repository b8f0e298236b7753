// Package http wraps the standard library client for scenario execution.
//
// It resolves relative paths against the configured base URL, applies
// configured timeouts and redirect policy, optionally throttles request
// rate, and normalizes every result into a Response holding status code,
// headers, and raw body. Unreachable targets surface as a ConnectionError.
package http

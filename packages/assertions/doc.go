// Package assertions compares response fields against expected literals.
//
// Subjects address the status code (status), response headers
// (header.Content-Type), the call duration in milliseconds (duration), or
// JSON body paths (body.user.name). Operators: equals, notEquals, contains,
// matches, exists, and schema (JSON Schema file validation).
//
// Assertions are not aggregated: evaluation stops at the first mismatch,
// which becomes the scenario's failure cause.
package assertions

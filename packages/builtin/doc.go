// Package builtin provides built-in functions for suite placeholders.
//
// Available functions:
//   - uuid(): random UUID v4
//   - now(): current time in RFC 3339
//   - timestamp(): current Unix timestamp
//   - randomInt(min, max): random integer in [min, max)
//   - randomString(length): random alphanumeric string
//
// Functions are invoked with the {{functionName(args)}} syntax in scenario
// paths, headers, and bodies.
package builtin

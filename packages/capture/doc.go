// Package capture threads dynamic values between chained scenarios.
//
// A Store holds the values captured during one run. An Extractor pulls
// values out of a response (JSON body paths via gjson, headers, status).
// A Resolver expands {{...}} placeholders in outgoing requests using the
// store, OS environment variables, and builtin functions.
package capture

// Package config loads environment parameters from a flat properties file.
//
// A suite is pointed at an environment with a single file of key=value
// pairs. Two keys are required: base.url (the API root all relative request
// paths resolve against) and env (an identifying label). A handful of
// optional keys tune the HTTP client and reporting. The file is read once at
// suite start; there is no hot reload.
package config

// Package suite defines the scenario model and loads suite files.
//
// A suite file is a YAML document declaring named scenarios: an HTTP
// request, assertions on the response, optional captures to publish for
// dependent scenarios, an execution priority, and at most one dependency
// on an earlier scenario. BuildPlan resolves the declarations into a
// deterministic run order at suite-build time.
package suite

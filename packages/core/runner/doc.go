// Package runner executes suite plans and manages scenario chaining.
//
// Scenarios run one at a time in plan order on a single logical thread of
// control. A scenario whose declared dependency did not pass is skipped,
// never executed. On success a scenario may publish captured values into a
// store scoped to the run; dependents read them through {{...}} placeholders.
// A network failure or assertion mismatch fails only the owning scenario;
// independent scenarios still run.
package runner

package core

import "time"

// ModuleResult records the outcome of one module's ensure step.
type ModuleResult struct {
	// Module is the module name.
	Module string
	// Tables is how many table specifications the module applied.
	Tables int
	// Warnings holds degraded steps (skipped optional foreign keys,
	// incomplete backfills) that did not stop the run.
	Warnings []string
	// Duration is the wall time the module took.
	Duration time.Duration
}

// Report summarizes one reconciliation run.
type Report struct {
	// RunID uniquely identifies the run across log events.
	RunID string
	// Modules holds per-module outcomes in execution order.
	Modules []ModuleResult
	// Duration is the total wall time of the run.
	Duration time.Duration
}

// Warnings returns all module warnings flattened, prefixed with the module
// name.
func (r *Report) Warnings() []string {
	var out []string
	for _, m := range r.Modules {
		for _, w := range m.Warnings {
			out = append(out, m.Module+": "+w)
		}
	}
	return out
}

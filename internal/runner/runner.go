// Package runner holds the per-language execution strategies. Each
// variant stages a submission into an isolated working directory, runs
// it inside a disposable environment and hands the raw output to the
// result normalizer. Failures past staging are always converted into a
// failing SubmissionResult, never returned as errors.
package runner

import "time"

// Limits carries the resource caps applied to every execution.
type Limits struct {
	// Timeout is the wall-clock deadline for one submission.
	Timeout time.Duration
	// MemoryBytes caps the execution environment's memory.
	MemoryBytes int64
	// CPUQuota limits CPU time per 100ms period (100000 = one core).
	CPUQuota int64
}

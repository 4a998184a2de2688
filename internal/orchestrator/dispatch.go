package orchestrator

import (
	"context"
	"time"

	"github.com/splitmesh/splitmesh/internal/script"
)

// Callback is invoked exactly once per Run (or per recursive Run call)
// with either a success Report or a non-nil error.
type Callback func(*Report, error)

// Report is the success payload delivered to a top-level callback once an
// invocation's whole dispatch tree has drained. It carries no aggregated
// traffic results: the orchestrator never aggregates results across peer
// workers.
type Report struct {
	Message         string
	Genesis         int64
	StartedAtMillis int64
	EndedAtMillis   int64

	// Metrics carries the embedded runner's aggregated summary for a leaf
	// report. It is nil for every non-leaf completion: the orchestrator
	// itself never aggregates results across branches, so a length/width-
	// split completion has nothing to put here. Typed as any to avoid
	// internal/orchestrator depending on the runner adapter's concrete
	// summary type.
	Metrics any
}

// Dispatcher submits a sub-script to a peer worker for execution. Over a
// real network boundary (HTTPDispatcher), dispatch is fire-and-forget:
// callback fires once submission succeeds, not when the peer finishes
// running the chunk, and a non-nil error means submission itself failed.
// LocalDispatcher has no such boundary and instead forwards the chunk's
// real completion, since there's nothing else to decouple from.
type Dispatcher interface {
	InvokeSelf(ctx context.Context, delay time.Duration, stage string, chunk *script.Script, callback Callback)
}

// Runner executes a leaf script directly: it is the embedded
// load-generation engine binding. On done, it must invoke callback with
// the aggregated report (latency samples suppressed) or an error if the
// engine failed.
type Runner interface {
	RunLoad(ctx context.Context, start time.Time, leaf *script.Script, callback Callback)
}

// Package engine is the embedded load-generation runner: given a leaf
// script (one small enough that the orchestrator decided not to split it
// any further), it actually emits the synthetic traffic and reports an
// aggregated summary back. It drives directly off a script.Script's phase
// sequence as an open arrival-rate model, with no VU pool.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	ihttp "github.com/splitmesh/splitmesh/internal/http"
	"github.com/splitmesh/splitmesh/internal/orchestrator"
	"github.com/splitmesh/splitmesh/internal/script"
)

// rampUpdateInterval is how often a ramp phase's target rate is
// recomputed and pushed into the leaky bucket.
const rampUpdateInterval = 200 * time.Millisecond

// Runner implements orchestrator.Runner: it owns nothing but an HTTP
// client factory and an optional trace sink, since every other piece of
// state (the leaf script, its metrics) is scoped to a single RunLoad call.
type Runner struct {
	// Trace, if set, receives phase-start/phase-end/done diagnostics when
	// the leaf's _trace flag is set.
	Trace func(format string, args ...any)

	// RequestTimeout bounds a single HTTP request issued during an
	// iteration. Defaults to 30s.
	RequestTimeout time.Duration
}

func (r *Runner) trace(leaf *script.Script, format string, args ...any) {
	if r.Trace != nil && leaf.Trace {
		r.Trace(format, args...)
	}
}

// RunLoad implements orchestrator.Runner: drive every phase of leaf in
// sequence at its prescribed arrival rate, and invoke callback exactly
// once with the aggregated report or an engine error.
func (r *Runner) RunLoad(ctx context.Context, start time.Time, leaf *script.Script, callback orchestrator.Callback) {
	defer func() {
		if rec := recover(); rec != nil {
			callback(nil, fmt.Errorf("engine: leaf runner panicked: %v", rec))
		}
	}()

	timeout := r.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var clientOpts []ihttp.ClientOption
	clientOpts = append(clientOpts, ihttp.WithTimeout(timeout))
	if leaf.Scenario != nil {
		if leaf.Scenario.BaseURL != "" {
			clientOpts = append(clientOpts, ihttp.WithBaseURL(leaf.Scenario.BaseURL))
		}
	}
	client := ihttp.NewClient(clientOpts...)

	st := newStats()
	r.trace(leaf, "engine: leaf starting at %s with %d phase(s)", start.Format(time.RFC3339), len(leaf.Config.Phases))

	for i, phase := range leaf.Config.Phases {
		select {
		case <-ctx.Done():
			callback(nil, fmt.Errorf("engine: cancelled mid-phase %d: %w", i, ctx.Err()))
			return
		default:
		}

		r.trace(leaf, "engine: phase %d (%s) starting", i, phase.Kind())
		if err := r.runPhase(ctx, client, leaf.Scenario, phase, st); err != nil {
			callback(nil, fmt.Errorf("engine: phase %d: %w", i, err))
			return
		}
		r.trace(leaf, "engine: phase %d (%s) done", i, phase.Kind())
	}

	summary := st.summary()
	r.trace(leaf, "engine: leaf done: %d iterations, %d failures", summary.Iterations, summary.Failures)

	callback(&orchestrator.Report{
		Message:         fmt.Sprintf("leaf for genesis %d completed %d iterations", leaf.Genesis, summary.Iterations),
		Genesis:         leaf.Genesis,
		StartedAtMillis: start.UnixMilli(),
		EndedAtMillis:   time.Now().UnixMilli(),
		Metrics:         summary,
	}, nil)
}

// runPhase drives one phase to completion: a pause just sleeps, every
// other shape spawns one goroutine per scheduled arrival at the phase's
// instantaneous rate (script.PhaseWidth's curve, not just its peak).
func (r *Runner) runPhase(ctx context.Context, client *ihttp.Client, scenario *script.Scenario, phase script.Phase, st *stats) error {
	length := script.PhaseLength(phase)
	if length < 0 {
		return fmt.Errorf("invalid phase length")
	}
	deadline := time.Now().Add(time.Duration(length * float64(time.Second)))

	if phase.Kind() == script.ShapePause {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(deadline)):
			return nil
		}
	}

	rateFn, err := rateFunc(phase)
	if err != nil {
		return err
	}

	bucket := newLeakyBucket(rateFn(0))
	var wg sync.WaitGroup
	defer wg.Wait()

	phaseStart := time.Now()
	ticker := time.NewTicker(rampUpdateInterval)
	defer ticker.Stop()

	for {
		elapsed := time.Since(phaseStart).Seconds()
		if elapsed >= length {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			bucket.setRate(rateFn(time.Since(phaseStart).Seconds()))
			continue
		default:
		}

		next := bucket.next()
		if next.IsZero() {
			// Zero arrival rate right now: nothing to schedule until the
			// next rate update (a ramp may rise off zero) or phase end.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Until(deadline)):
				return nil
			case <-ticker.C:
				bucket.setRate(rateFn(time.Since(phaseStart).Seconds()))
				continue
			}
		}

		wait := time.Until(next)
		if wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			case <-ticker.C:
				bucket.setRate(rateFn(time.Since(phaseStart).Seconds()))
				continue
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			iterStart := time.Now()
			ok, bytes, ierr := runIteration(ctx, client, scenario)
			st.record(time.Since(iterStart), ok && ierr == nil, bytes)
		}()
	}
}

// rateFunc returns the phase's instantaneous arrival rate at elapsed
// seconds into the phase: constant for constant-rate and count-over-
// duration phases (count phases resolve to their mean rate), linear for
// a ramp.
func rateFunc(phase script.Phase) (func(elapsed float64) float64, error) {
	switch phase.Kind() {
	case script.ShapeConstant:
		rate := *phase.ArrivalRate
		return func(float64) float64 { return rate }, nil

	case script.ShapeCount:
		rate := *phase.ArrivalCount / *phase.Duration
		return func(float64) float64 { return rate }, nil

	case script.ShapeRamp:
		from, to, duration := *phase.ArrivalRate, *phase.RampTo, *phase.Duration
		return func(elapsed float64) float64 {
			if duration <= 0 {
				return to
			}
			ratio := elapsed / duration
			if ratio > 1 {
				ratio = 1
			}
			return from + (to-from)*ratio
		}, nil

	default:
		return nil, fmt.Errorf("cannot schedule phase with unrecognized shape")
	}
}

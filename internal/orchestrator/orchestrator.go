// Package orchestrator implements the recursive run loop that decides
// whether a script needs length-splitting, width-splitting, or direct
// execution, and tracks completion across the resulting dispatch tree.
package orchestrator

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/splitmesh/splitmesh/internal/script"
)

// deadlineGraceMargin is added on top of maxScriptDurationInSeconds when
// deriving the defensive wall-clock deadline: a completion counter that
// never drains is a silent fault otherwise, so every invocation carries a
// hard upper bound on how long it will wait.
const deadlineGraceMargin = 30 * time.Second

// Orchestrator holds the two external collaborators the core depends on --
// the peer-dispatch transport and the embedded load-generation runner --
// plus the stage identifier attached to outbound dispatches.
type Orchestrator struct {
	Dispatcher Dispatcher
	Runner     Runner
	Stage      string

	// Now returns the current wall-clock time. Defaults to time.Now; tests
	// substitute a deterministic clock.
	Now func() time.Time

	// Trace, if set, receives progress diagnostics when a script's _trace
	// flag is true.
	Trace func(format string, args ...any)
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) trace(scr *script.Script, format string, args ...any) {
	if o.Trace != nil && scr.Trace {
		o.Trace(format, args...)
	}
}

// Run is the orchestrator's entry point: run(timeNow, script, context,
// callback). It validates scr, resolves its effective settings, wraps the
// whole dispatch tree in a defensive deadline, and invokes callback
// exactly once with either a success Report or an error.
func (o *Orchestrator) Run(ctx context.Context, scr *script.Script, callback Callback) {
	settings := script.ResolveSettings(scr.Split)

	if err := scr.ValidateWithSettings(settings); err != nil {
		callback(nil, err)
		return
	}

	deadline := time.Duration(settings.MaxScriptDurationInSeconds*float64(time.Second)) + deadlineGraceMargin
	ctx, cancel := context.WithTimeout(ctx, deadline)

	var once sync.Once
	finish := func(r *Report, err error) {
		once.Do(func() {
			cancel()
			callback(r, err)
		})
	}

	go func() {
		<-ctx.Done()
		if ctx.Err() == context.DeadlineExceeded {
			finish(nil, fmt.Errorf("orchestrator: completion timed out waiting for dispatch tree to drain (genesis=%d)", scr.Genesis))
			return
		}
		// Cancelled by the caller (or by finish itself, in which case the
		// once guard makes this a no-op).
		finish(nil, fmt.Errorf("orchestrator: cancelled (genesis=%d): %w", scr.Genesis, ctx.Err()))
	}()

	o.run(ctx, o.now(), scr, settings, finish)
}

// run is the recursive step. It assumes scr has already passed
// ValidateWithSettings once at the top of the tree; descendants produced
// by the splitter inherit validity by construction.
func (o *Orchestrator) run(ctx context.Context, timeNow time.Time, scr *script.Script, settings script.Settings, callback Callback) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	// Step 2: resample the clock.
	timeNow = o.now()

	total, _, ok := script.ScriptLength(scr)
	if !ok {
		callback(nil, fmt.Errorf("orchestrator: script has an invalid phase length"))
		return
	}
	width, _, ok := script.ScriptWidth(scr)
	if !ok {
		callback(nil, fmt.Errorf("orchestrator: script has an invalid phase width"))
		return
	}

	if !scr.HasGenesis() {
		scr.Genesis = timeNow.UnixMilli()
	}

	switch {
	case total > settings.MaxChunkDurationInSeconds:
		o.runLengthSplit(ctx, timeNow, scr, settings, callback)
	case width > settings.MaxChunkRequestsPerSecond:
		o.runWidthSplit(ctx, timeNow, scr, settings, callback)
	default:
		o.runLeaf(ctx, timeNow, scr, callback)
	}
}

// runLengthSplit handles the case where the script's total duration
// exceeds the chunk duration ceiling: split by length and dispatch the
// chunk and remainder independently.
func (o *Orchestrator) runLengthSplit(ctx context.Context, timeNow time.Time, scr *script.Script, settings script.Settings, callback Callback) {
	chunk, remainder, err := script.SplitScriptByLength(scr, settings.MaxChunkDurationInSeconds)
	if err != nil {
		callback(nil, fmt.Errorf("orchestrator: length split: %w", err))
		return
	}

	bufferMillis := int64(settings.TimeBufferInMilliseconds)
	if !chunk.HasStart() {
		chunk.Start = timeNow.UnixMilli() + bufferMillis
	}
	remainder.Start = chunk.Start + int64(settings.MaxChunkDurationInSeconds*1000)

	o.trace(scr, "length-split: chunk.start=%d remainder.start=%d", chunk.Start, remainder.Start)

	complete := newCounter(2, scr.Genesis, timeNow.UnixMilli(), callback, o.now)

	chunkWidth, _, ok := script.ScriptWidth(chunk)
	if !ok {
		complete(nil, fmt.Errorf("orchestrator: length split produced a chunk with invalid width"))
		return
	}

	if chunkWidth > settings.MaxChunkRequestsPerSecond {
		go o.run(ctx, timeNow, chunk, settings, complete)
	} else {
		o.dispatch(ctx, timeNow, chunk, bufferMillis, complete)
	}
	o.dispatch(ctx, timeNow, remainder, bufferMillis, complete)
}

// runWidthSplit handles the case where some phase's peak arrival rate
// exceeds the chunk rate ceiling: repeatedly width-split until the
// remaining width is exhausted, dispatching each chunk. All width-split
// siblings share the same _start and are therefore concurrent.
func (o *Orchestrator) runWidthSplit(ctx context.Context, timeNow time.Time, scr *script.Script, settings script.Settings, callback Callback) {
	if !scr.HasStart() {
		scr.Start = timeNow.UnixMilli() + int64(settings.TimeBufferInMilliseconds)
	}

	width, _, ok := script.ScriptWidth(scr)
	if !ok {
		callback(nil, fmt.Errorf("orchestrator: width split: script has invalid width"))
		return
	}

	bufferMillis := int64(settings.TimeBufferInMilliseconds)
	chunkCount := int32(math.Ceil(width / settings.MaxChunkRequestsPerSecond))
	complete := newCounter(chunkCount, scr.Genesis, timeNow.UnixMilli(), callback, o.now)

	remaining := scr
	for {
		w, _, ok := script.ScriptWidth(remaining)
		if !ok {
			complete(nil, fmt.Errorf("orchestrator: width split: remainder has invalid width"))
			return
		}
		if w <= 0 {
			break
		}

		chunk, next, err := script.SplitScriptByWidth(remaining, settings.MaxChunkRequestsPerSecond)
		if err != nil {
			complete(nil, fmt.Errorf("orchestrator: width split: %w", err))
			return
		}
		chunk.Start = scr.Start
		o.dispatch(ctx, timeNow, chunk, bufferMillis, complete)

		next.Start = scr.Start
		remaining = next
	}
}

// runLeaf hands the script straight to the embedded runner once it fits
// one worker's bounds. The leaf path bypasses the completion counter and
// reports the runner's report (or error) directly to the caller.
func (o *Orchestrator) runLeaf(ctx context.Context, timeNow time.Time, scr *script.Script, callback Callback) {
	if !scr.HasStart() {
		scr.Start = timeNow.UnixMilli()
	}

	delay := time.Duration(scr.Start-timeNow.UnixMilli()) * time.Millisecond
	if delay < 0 {
		delay = 0
	}

	start := time.UnixMilli(scr.Start)
	if delay == 0 {
		o.Runner.RunLoad(ctx, start, scr, callback)
		return
	}

	timer := time.NewTimer(delay)
	go func() {
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			o.Runner.RunLoad(ctx, start, scr, callback)
		}
	}()
}

// dispatch schedules a peer-dispatch call timeBufferMillis before chunk's
// nominal start, i.e. at chunk.Start - now - timeBufferMillis, clamped to
// fire immediately if that has already passed.
func (o *Orchestrator) dispatch(ctx context.Context, timeNow time.Time, chunk *script.Script, timeBufferMillis int64, callback Callback) {
	delay := time.Duration(chunk.Start-timeNow.UnixMilli()-timeBufferMillis) * time.Millisecond
	if delay < 0 {
		delay = 0
	}
	o.Dispatcher.InvokeSelf(ctx, delay, o.Stage, chunk, callback)
}

// newCounter tracks n outstanding completions. The first error short-
// circuits straight to onDone; once every success has been recorded with
// no error, onDone fires with a synthesized success Report. Guarded with
// atomics since completion closures fire from independent goroutines.
func newCounter(n int32, genesis int64, startedAt int64, onDone Callback, now func() time.Time) Callback {
	var remaining atomic.Int32
	remaining.Store(n)
	var failed atomic.Bool

	return func(_ *Report, err error) {
		if err != nil {
			if failed.CompareAndSwap(false, true) {
				onDone(nil, err)
			}
			return
		}
		if remaining.Add(-1) == 0 && !failed.Load() {
			onDone(&Report{
				Message:         fmt.Sprintf("dispatch tree for genesis %d completed", genesis),
				Genesis:         genesis,
				StartedAtMillis: startedAt,
				EndedAtMillis:   now().UnixMilli(),
			}, nil)
		}
	}
}

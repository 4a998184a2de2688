package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitmesh/splitmesh/internal/script"
)

// fakeDispatcher records every invocation and immediately confirms
// submission, matching the fire-and-forget contract without actually
// running the dispatched chunk -- most tests only care that the
// orchestrator *decided* to dispatch, and with what Start/width.
type fakeDispatcher struct {
	mu       sync.Mutex
	invoked  []*script.Script
	fail     bool
	failMsg  string
	onInvoke func(*script.Script)
}

func (d *fakeDispatcher) InvokeSelf(ctx context.Context, delay time.Duration, stage string, chunk *script.Script, callback Callback) {
	d.mu.Lock()
	d.invoked = append(d.invoked, chunk)
	d.mu.Unlock()
	if d.onInvoke != nil {
		d.onInvoke(chunk)
	}
	if d.fail {
		callback(nil, assertError(d.failMsg))
		return
	}
	callback(nil, nil)
}

type assertError string

func (e assertError) Error() string { return string(e) }

// fakeRunner immediately reports success for any leaf it's given.
type fakeRunner struct {
	mu     sync.Mutex
	leaves []*script.Script
}

func (r *fakeRunner) RunLoad(ctx context.Context, start time.Time, leaf *script.Script, callback Callback) {
	r.mu.Lock()
	r.leaves = append(r.leaves, leaf)
	r.mu.Unlock()
	callback(&Report{Message: "ok", Genesis: leaf.Genesis}, nil)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func awaitResult(t *testing.T) (chan *Report, chan error, Callback) {
	t.Helper()
	reports := make(chan *Report, 1)
	errs := make(chan error, 1)
	return reports, errs, func(r *Report, err error) {
		if err != nil {
			errs <- err
			return
		}
		reports <- r
	}
}

// TestS1LeafExecution: a script that fits within one worker's bounds
// executes directly through the Runner.
func TestS1LeafExecution(t *testing.T) {
	runner := &fakeRunner{}
	dispatcher := &fakeDispatcher{}
	orch := &Orchestrator{Dispatcher: dispatcher, Runner: runner, Now: fixedClock(time.UnixMilli(1_000_000))}

	scr := &script.Script{Config: script.Config{Phases: []script.Phase{script.ConstantPhase(10, 120)}}}

	reports, errs, cb := awaitResult(t)
	orch.Run(context.Background(), scr, cb)

	select {
	case r := <-reports:
		require.NotNil(t, r)
	case err := <-errs:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for completion")
	}

	assert.Len(t, runner.leaves, 1)
	assert.Empty(t, dispatcher.invoked)
}

// TestS2LengthSplit: a 600s script under default settings splits into a
// 240s chunk and a 360s remainder, with the remainder's _start offset by
// maxChunkDurationInSeconds*1000.
func TestS2LengthSplit(t *testing.T) {
	runner := &fakeRunner{}
	dispatcher := &fakeDispatcher{}
	now := time.UnixMilli(1_000_000)
	orch := &Orchestrator{Dispatcher: dispatcher, Runner: runner, Now: fixedClock(now)}

	scr := &script.Script{Config: script.Config{Phases: []script.Phase{script.ConstantPhase(10, 600)}}}

	reports, errs, cb := awaitResult(t)
	orch.Run(context.Background(), scr, cb)

	select {
	case <-reports:
	case err := <-errs:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for completion")
	}

	require.Len(t, dispatcher.invoked, 2)
	chunk, remainder := dispatcher.invoked[0], dispatcher.invoked[1]
	assert.Equal(t, 240.0, *chunk.Config.Phases[0].Duration)
	assert.Equal(t, 360.0, *remainder.Config.Phases[0].Duration)
	assert.Equal(t, chunk.Start+240_000, remainder.Start)
}

// TestS3WidthSplit: a single 60s phase at 100 req/s splits into four
// 25 req/s chunks under the default ceiling.
func TestS3WidthSplit(t *testing.T) {
	runner := &fakeRunner{}
	dispatcher := &fakeDispatcher{}
	now := time.UnixMilli(1_000_000)
	orch := &Orchestrator{Dispatcher: dispatcher, Runner: runner, Now: fixedClock(now)}

	scr := &script.Script{Config: script.Config{Phases: []script.Phase{script.ConstantPhase(100, 60)}}}

	reports, errs, cb := awaitResult(t)
	orch.Run(context.Background(), scr, cb)

	select {
	case <-reports:
	case err := <-errs:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for completion")
	}

	require.Len(t, dispatcher.invoked, 4)
	for _, chunk := range dispatcher.invoked {
		assert.Equal(t, 25.0, *chunk.Config.Phases[0].ArrivalRate)
		assert.Equal(t, 60.0, *chunk.Config.Phases[0].Duration)
		assert.Equal(t, dispatcher.invoked[0].Start, chunk.Start, "width-split siblings share the same start")
	}
}

func TestRunRejectsInvalidScript(t *testing.T) {
	orch := &Orchestrator{Dispatcher: &fakeDispatcher{}, Runner: &fakeRunner{}}

	reports, errs, cb := awaitResult(t)
	orch.Run(context.Background(), &script.Script{}, cb)

	select {
	case <-reports:
		t.Fatal("expected a validation error, got a success report")
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}

	assert.Empty(t, orch.Dispatcher.(*fakeDispatcher).invoked)
}

func TestRunSurfacesDispatchFailure(t *testing.T) {
	dispatcher := &fakeDispatcher{fail: true, failMsg: "peer unreachable"}
	orch := &Orchestrator{Dispatcher: dispatcher, Runner: &fakeRunner{}, Now: fixedClock(time.UnixMilli(1_000_000))}

	scr := &script.Script{Config: script.Config{Phases: []script.Phase{script.ConstantPhase(10, 600)}}}

	reports, errs, cb := awaitResult(t)
	orch.Run(context.Background(), scr, cb)

	select {
	case <-reports:
		t.Fatal("expected a dispatch error, got a success report")
	case err := <-errs:
		assert.Contains(t, err.Error(), "peer unreachable")
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

package orchestrator

import (
	"context"
	"time"

	"github.com/splitmesh/splitmesh/internal/script"
)

// LocalDispatcher recurses a dispatched chunk back into the same
// Orchestrator instance instead of sending it over the network. It backs
// `splitmesh run`'s local simulation of a full multi-chunk test without
// requiring a peer fleet.
//
// Unlike HTTPDispatcher, there is no network boundary here to justify
// acking on submission alone: callback fires only once the recursed
// chunk's whole sub-tree has actually drained, carrying its real Report
// or error. A local run that returned early on a bare submission ack
// would let `splitmesh run` report success and exit before any
// length/width-split descendant had generated real traffic.
type LocalDispatcher struct {
	Orchestrator *Orchestrator
}

// InvokeSelf waits delay, then re-enters the orchestrator with chunk on a
// fresh goroutine, forwarding its eventual completion to callback.
func (d *LocalDispatcher) InvokeSelf(ctx context.Context, delay time.Duration, stage string, chunk *script.Script, callback Callback) {
	go func() {
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				callback(nil, ctx.Err())
				return
			case <-timer.C:
			}
		}
		d.Orchestrator.Run(ctx, chunk, callback)
	}()
}

// Package clockdrift probes an external time source and compares it to
// local wall-clock time. This is informational only: drift never alters
// scheduling, so Probe never returns an error the orchestrator would act
// on -- only a Result for a caller (the CLI) to log.
//
// Implemented on net/http's Date-header comparison rather than a real NTP
// client: a HEAD request's round-trip midpoint against the response's
// Date header is plenty of resolution for a startup sanity check, and
// pulling in an NTP library for one warning line isn't worth the
// dependency (see DESIGN.md).
package clockdrift

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Threshold is the default drift magnitude that warrants a warning.
const Threshold = 250 * time.Millisecond

// Result reports the outcome of a single probe.
type Result struct {
	RemoteTime time.Time
	LocalTime  time.Time
	Drift      time.Duration
	Exceeded   bool
}

// Prober issues an HTTP HEAD request against Target and compares the
// response's Date header to local time.
type Prober struct {
	Target    string
	Threshold time.Duration
	Client    *http.Client
}

// NewProber builds a Prober against target with the default threshold and
// a short-timeout client -- this probe must never block process startup
// for long.
func NewProber(target string) *Prober {
	return &Prober{
		Target:    target,
		Threshold: Threshold,
		Client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Probe issues the HEAD request and reports the drift observed. A
// transport-level failure (unreachable target, no Date header) is
// returned as an error; the caller decides whether to log and continue,
// since clock drift is never fatal to the orchestrator.
func (p *Prober) Probe(ctx context.Context) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.Target, nil)
	if err != nil {
		return Result{}, fmt.Errorf("clockdrift: build probe request: %w", err)
	}

	localBefore := time.Now()
	resp, err := p.Client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("clockdrift: probe %s: %w", p.Target, err)
	}
	defer resp.Body.Close()
	localAfter := time.Now()

	dateHeader := resp.Header.Get("Date")
	if dateHeader == "" {
		return Result{}, fmt.Errorf("clockdrift: probe %s: no Date header in response", p.Target)
	}
	remote, err := http.ParseTime(dateHeader)
	if err != nil {
		return Result{}, fmt.Errorf("clockdrift: parse Date header %q: %w", dateHeader, err)
	}

	local := localBefore.Add(localAfter.Sub(localBefore) / 2)
	drift := remote.Sub(local)
	if drift < 0 {
		drift = -drift
	}

	threshold := p.Threshold
	if threshold == 0 {
		threshold = Threshold
	}

	return Result{
		RemoteTime: remote,
		LocalTime:  local,
		Drift:      drift,
		Exceeded:   drift > threshold,
	}, nil
}

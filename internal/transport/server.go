package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/splitmesh/splitmesh/internal/orchestrator"
	"github.com/splitmesh/splitmesh/internal/script"
)

// Server hosts the /invoke endpoint a dispatched sub-script re-enters the
// orchestrator at: a peer must treat the message as a fresh invocation
// and re-enter the orchestrator at the top, not resume some parent
// invocation's state.
type Server struct {
	Orchestrator *orchestrator.Orchestrator
	Stage        string

	// OnResult, if set, observes every dispatched invocation's outcome.
	// The HTTP response to the dispatching peer has already been sent by
	// the time this fires -- it exists purely for local logging, since
	// nothing here aggregates results across peers.
	OnResult func(report *orchestrator.Report, err error)
}

// Handler returns the http.Handler to mount at the server's root.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/invoke", s.handleInvoke)
	return mux
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "only POST is accepted")
		return
	}

	if s.Stage != "" {
		if got := r.Header.Get(StageHeader); got != "" && got != s.Stage {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("stage mismatch: peer is %q, dispatch targeted %q", s.Stage, got))
			return
		}
	}

	var scr script.Script
	if err := json.NewDecoder(r.Body).Decode(&scr); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed script: %v", err))
		return
	}

	w.WriteHeader(http.StatusAccepted)

	// Re-enter the orchestrator asynchronously on a detached context: the
	// 202 above already confirmed submission (fire-and-forget), and
	// r.Context() is cancelled the moment this handler returns.
	go s.Orchestrator.Run(context.Background(), &scr, func(report *orchestrator.Report, err error) {
		if s.OnResult != nil {
			s.OnResult(report, err)
		}
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

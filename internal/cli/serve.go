package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/splitmesh/splitmesh/internal/clockdrift"
	"github.com/splitmesh/splitmesh/internal/engine"
	"github.com/splitmesh/splitmesh/internal/orchestrator"
	"github.com/splitmesh/splitmesh/internal/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stand up the peer-dispatch HTTP endpoint a worker process listens on",
	Long: `Host the /invoke endpoint: a peer POSTs a sub-script here and this process
re-enters the orchestrator at the top, treating it as a fresh invocation.`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runServe(cmd))
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	serveCmd.Flags().String("peer", "", "base URL of the peer this worker dispatches further sub-scripts to (defaults to itself)")
	serveCmd.Flags().String("clock-source", "", "URL to probe for clock drift at startup; skipped if empty")
}

// probeClockDrift runs the startup clock-drift check: informational only,
// never fatal, never consulted again once the process is serving (drift
// never alters scheduling).
func probeClockDrift(target string) {
	if target == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := clockdrift.NewProber(target).Probe(ctx)
	if err != nil {
		printTrace("clockdrift: probe against %s failed: %v", target, err)
		return
	}
	if result.Exceeded {
		fmt.Fprintf(os.Stderr, "warning: clock drift of %s against %s exceeds threshold %s\n",
			result.Drift, target, clockdrift.Threshold)
	}
}

func runServe(cmd *cobra.Command) int {
	addr, _ := cmd.Flags().GetString("addr")
	peer, _ := cmd.Flags().GetString("peer")
	clockSource, _ := cmd.Flags().GetString("clock-source")

	probeClockDrift(clockSource)

	stage := stageFromEnv()

	o := &orchestrator.Orchestrator{
		Runner: &engine.Runner{Trace: printTrace},
		Stage:  stage,
		Trace:  printTrace,
	}

	peerURL := peer
	if peerURL == "" {
		peerURL = "http://" + localAddr(addr)
	}
	o.Dispatcher = transport.NewHTTPDispatcher(peerURL)

	srv := &transport.Server{
		Orchestrator: o,
		Stage:        stage,
		OnResult: func(report *orchestrator.Report, err error) {
			if err != nil {
				printTrace("serve: dispatch tree failed: %v", err)
				return
			}
			printTrace("serve: %s", report.Message)
		},
	}

	fmt.Printf("splitmesh serving on %s (stage=%s)\n", addr, stage)
	return runHTTPServer(addr, srv.Handler())
}

// localAddr turns a listen address like ":8080" into a dialable
// "localhost:8080" for the default self-dispatch target.
func localAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func runHTTPServer(addr string, handler http.Handler) int {
	server := &http.Server{Addr: addr, Handler: handler}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// stageFromEnv reads the deployment generation identifier attached to
// outbound dispatches so a peer can reject cross-generation traffic.
func stageFromEnv() string {
	if s := os.Getenv("SPLITMESH_STAGE"); s != "" {
		return s
	}
	return "dev"
}

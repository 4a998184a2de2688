package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/splitmesh/splitmesh/internal/engine"
	"github.com/splitmesh/splitmesh/internal/orchestrator"
	"github.com/splitmesh/splitmesh/internal/script"
)

var runCmd = &cobra.Command{
	Use:   "run [script file]",
	Short: "Run a load-test script locally, simulating a full worker fleet in-process",
	Long: `Drive a single top-level orchestrator invocation without a peer fleet: every
dispatch that would normally go to another worker instead recurses back
into this same process.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runRun(cmd, args[0]))
	},
}

func init() {
	runCmd.Flags().Bool("trace", false, "force _trace diagnostics on, even if the script doesn't set it")
}

func runRun(cmd *cobra.Command, path string) int {
	scr, err := script.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if forceTrace, _ := cmd.Flags().GetBool("trace"); forceTrace {
		scr.Trace = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o := &orchestrator.Orchestrator{
		Runner: &engine.Runner{Trace: printTrace},
		Stage:  stageFromEnv(),
		Trace:  printTrace,
	}
	o.Dispatcher = &orchestrator.LocalDispatcher{Orchestrator: o}

	done := make(chan struct{})
	var report *orchestrator.Report
	var runErr error

	o.Run(ctx, scr, func(r *orchestrator.Report, err error) {
		report, runErr = r, err
		close(done)
	})

	<-done

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", runErr)
		return 1
	}
	fmt.Println(report.Message)
	return 0
}

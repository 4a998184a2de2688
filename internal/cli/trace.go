package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// traceColor is the accent used for _trace progress lines: color only
// when stdout is actually a terminal, plain text otherwise (redirected to
// a file, piped into another tool, or running in CI).
var traceColor = newTraceColor()

func newTraceColor() *color.Color {
	c := color.New(color.FgCyan)
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		c.DisableColor()
	}
	return c
}

// printTrace is passed as the Orchestrator's and engine.Runner's Trace
// hook: both call it only when a script's _trace flag is set, so this
// function itself does no gating.
func printTrace(format string, args ...any) {
	traceColor.Fprintf(os.Stderr, format+"\n", args...)
}

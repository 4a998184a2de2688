// Package cli wires the splitmesh binary's cobra command tree: validate,
// run, and serve. A bare RootCmd with subcommands registered in init.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:     "splitmesh",
	Short:   "A distributed load-test orchestrator",
	Version: version,
	Long: `splitmesh recursively splits a phased load-test script along duration and
concurrent arrival rate into worker-sized chunks, and dispatches each chunk
to a peer worker or runs it directly through the embedded load generator.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func init() {
	RootCmd.AddCommand(validateCmd)
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(serveCmd)
}

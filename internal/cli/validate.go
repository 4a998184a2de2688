package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/splitmesh/splitmesh/internal/script"
)

var validateCmd = &cobra.Command{
	Use:   "validate [script file]",
	Short: "Validate a load-test script without running it",
	Long: `Parse a script file and run the same structural and numeric checks the
orchestrator runs before accepting it, reporting every offending field.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runValidate(args[0]))
	},
}

func runValidate(path string) int {
	scr, err := script.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if err := script.MarshalAndValidate(scr); err != nil {
		fmt.Fprintln(os.Stderr, "script failed structural schema check:")
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := scr.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "script is invalid:")
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	settings := script.ResolveSettings(scr.Split)
	if err := scr.ValidateWithSettings(settings); err != nil {
		fmt.Fprintln(os.Stderr, "script is invalid:")
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	total, _, _ := script.ScriptLength(scr)
	width, _, _ := script.ScriptWidth(scr)
	fmt.Printf("ok: %d phase(s), %.0fs total duration, %.2f peak requests/sec\n",
		len(scr.Config.Phases), total, width)
	return 0
}

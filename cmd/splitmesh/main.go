package main

import (
	"os"

	"github.com/splitmesh/splitmesh/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

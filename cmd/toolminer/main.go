// CLI entry point for offline mining, registry validation, and scoring.
package main

import (
	"fmt"
	"os"

	"github.com/curately/ResearchTools-Intelligence/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

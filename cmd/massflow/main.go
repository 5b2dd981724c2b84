// Command massflow computes a deposit return scheme mass-flow baseline
// from WasteDataFlow quarterly returns.
package main

import (
	"os"

	"github.com/massflow-labs/massflow/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

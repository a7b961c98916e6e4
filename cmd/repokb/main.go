// Command repokb is the repository knowledge base CLI.
package main

import (
	"fmt"
	"os"

	"github.com/pipewise/repokb/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

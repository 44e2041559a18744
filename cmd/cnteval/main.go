// Command cnteval evaluates technology certification submissions: it
// indexes parsed submission documents, retrieves evidence and runs the
// two-stage criterion review.
package main

import (
	"os"

	"github.com/cnt-labs/cnteval-cli/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}

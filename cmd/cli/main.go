// Bandicoot - Crash Report Collector
//
// Bandicoot sweeps operating-system crash and diagnostic reports into a
// local database, deduplicating across re-scans, and lets you browse and
// annotate what it found.
package main

import (
	"os"

	"github.com/bandicoot-project/bandicoot/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

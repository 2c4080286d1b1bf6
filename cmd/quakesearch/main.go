// Command quakesearch searches local Atom/GeoRSS earthquake feeds and writes
// the matching entries to a text report.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/quake-feed-search/internal/output"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	if err != nil {
		output.NewPrinter(output.ColorAuto).FormatError(err)
	}
	os.Exit(output.ExitCode(err))
}

// Package main provides the entry point for the workon CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mrz1836/workon/internal/cli"
	"github.com/mrz1836/workon/internal/signal"
)

// Set at build time with -ldflags "-X main.version=...".
//
//nolint:gochecknoglobals // build metadata
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	h := signal.NewHandler(context.Background())
	err := cli.Execute(h.Context(), cli.BuildInfo{Version: version, Commit: commit, Date: date})
	h.Stop()
	if sig := h.Received(); sig != nil {
		_, _ = fmt.Fprintf(os.Stderr, "workon: interrupted by %s\n", sig)
	}
	os.Exit(cli.ExitCodeForError(err))
}

// Command metaprobe profiles a record file (delimited text, JSON array of
// objects, or an HTML table) and writes a JSON metadata document describing
// its fields.
//
// Settings come from an optional parameter file (YAML or JSON), METAPROBE_*
// environment variables, and flags, in increasing precedence:
//
//	metaprobe params.yaml
//	metaprobe --infile data.csv --metafile data.meta.json --report
//
// A parameter file uses the keys infile, metafile, format, separator,
// hasheader, encoding, flatten_nested, log_level and the sections
// catalog {kind, dsn} and metrics {backend, tags}.
//
// Exit status is 0 on success, 2 for invalid configuration, and 1 for any
// other failure.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

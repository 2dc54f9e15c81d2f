package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"metaprobe/internal/config"
	apperrors "metaprobe/internal/errors"
	"metaprobe/internal/metrics"
	"metaprobe/internal/metrics/datadog"
	"metaprobe/internal/probe"
	"metaprobe/internal/storage"
	_ "metaprobe/internal/storage/mssql"
	_ "metaprobe/internal/storage/postgres"
	_ "metaprobe/internal/storage/sqlite"
	"metaprobe/internal/writer"
)

// Version is set at build time.
var Version = "dev"

// execute runs the CLI and returns the process exit status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

func exitCode(err error) int {
	if apperrors.HasCode(err, apperrors.CodeConfigInvalid) {
		return 2
	}
	return 1
}

type runOptions struct {
	report bool
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		report   bool
		envFiles []string
	)

	cmd := &cobra.Command{
		Use:   "metaprobe [parameter-file]",
		Short: "Profile a record file into a JSON metadata document",
		Long: `metaprobe reads a delimited text file, a JSON array of objects, or the
first table of an HTML page, infers whether each field is numeric or string,
and writes a metadata document with per-field min/max/mean or distinct counts.`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var paramFile string
			if len(args) == 1 {
				paramFile = args[0]
			}

			cfg, err := config.Load(paramFile, cmd.Flags(), config.Options{EnvFiles: envFiles})
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, runOptions{
				report: report,
				stdout: stdout,
				stderr: stderr,
				now:    time.Now,
			})
		},
	}

	f := cmd.Flags()
	f.String("infile", "", "input file to profile")
	f.String("metafile", "", "output path for the metadata document")
	f.String("format", "", "input format: tabular, json or html (default: from file suffix)")
	f.String("separator", "", `field separator for tabular input, e.g. ";" or "\t"`)
	f.Bool("hasheader", false, "first row is a header (default: sniffed)")
	f.String("encoding", "", "input character set, e.g. windows-1252 (default utf-8)")
	f.Bool("flatten-nested", false, "expand nested JSON objects into dotted field names")
	f.String("catalog-kind", "", "record the profile in a catalog: sqlite, postgres or mssql")
	f.String("catalog-dsn", "", "catalog connection string")
	f.String("metrics-backend", "", "metrics backend: none or datadog")
	f.String("metrics-tags", "", `extra metric tags, e.g. "env:prod,team:data"`)
	f.String("log-level", "", "debug, info, warn or error")
	f.BoolVar(&report, "report", false, "print a field summary table to stdout")
	f.StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"tabular", "json", "html"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("catalog-kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return storage.Kinds(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func run(ctx context.Context, cfg *config.Config, opt runOptions) error {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(opt.stderr, &slog.HandlerOptions{Level: level}))

	if strings.EqualFold(cfg.Metrics.Backend, "datadog") {
		b, err := datadog.NewBackend(ctx, datadog.Options{Tags: datadog.ParseTagsCSV(cfg.Metrics.Tags)})
		if err != nil {
			return apperrors.Wrap(err, "start metrics backend")
		}
		metrics.SetBackend(b)
		defer func() {
			if err := b.Close(); err != nil {
				logger.Warn("metrics flush failed", "error", err)
			}
			metrics.SetBackend(nil)
		}()
	}

	md, err := probe.New(logger).Profile(ctx, cfg.InputSpec())
	if err != nil {
		return err
	}

	doc, err := writer.WriteJSON(cfg.Metafile, md)
	if err != nil {
		return err
	}
	logger.Info("metadata written", "metafile", cfg.Metafile)

	if cfg.Catalog.Kind != "" {
		rec := storage.NewProfileRecord(md, doc, opt.now())
		if err := saveProfile(ctx, storage.Config{Kind: cfg.Catalog.Kind, DSN: cfg.Catalog.DSN}, rec); err != nil {
			return err
		}
		logger.Info("profile recorded", "catalog", cfg.Catalog.Kind, "run_id", rec.RunID, "fingerprint", rec.Fingerprint)
	}

	if opt.report {
		writer.RenderReport(opt.stdout, md)
	}
	return nil
}

func saveProfile(ctx context.Context, cfg storage.Config, rec storage.ProfileRecord) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStep("catalog", start, err) }()

	cat, err := storage.NewCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.EnsureSchema(ctx); err != nil {
		return err
	}
	return cat.SaveProfile(ctx, rec)
}

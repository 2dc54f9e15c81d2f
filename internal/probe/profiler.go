package probe

import (
	"context"
	"io"
	"log/slog"
	"time"

	"metaprobe/internal/metrics"
)

// Profiler runs the full pipeline for one input at a time. It keeps no
// state between runs and is safe for concurrent use.
type Profiler struct {
	log *slog.Logger
}

// New returns a Profiler logging to logger. A nil logger discards output.
func New(logger *slog.Logger) *Profiler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Profiler{log: logger}
}

// Profile profiles the file described by in. On error no partial Metadata
// is returned. ctx is checked between stages.
func (p *Profiler) Profile(ctx context.Context, in InputSpec) (md Metadata, err error) {
	log := p.log.With("infile", in.Path)
	defer func() {
		metrics.IncCounter(metrics.RunsTotal, 1, metrics.Labels{"status": metrics.Status(err)})
		if err != nil {
			md = Metadata{}
		}
	}()

	var rf ResolvedFormat
	if err = step(ctx, "resolve_format", func() (e error) {
		rf, e = ResolveFormat(in)
		return e
	}); err != nil {
		return
	}
	log.Debug("format resolved", "format", rf.Kind, "separator", string(rf.Separator))

	var header *bool
	if err = step(ctx, "detect_header", func() (e error) {
		header, e = DetectHeader(ctx, in, rf)
		return e
	}); err != nil {
		return
	}
	if header != nil {
		log.Debug("header detected", "header", *header, "explicit", in.HasHeader != nil)
	}

	var loaded *Loaded
	if err = step(ctx, "load", func() (e error) {
		loaded, e = LoadRecords(ctx, in, rf, header != nil && *header)
		return e
	}); err != nil {
		return
	}
	numRows := CountRows(loaded.Records)
	metrics.IncCounter(metrics.RecordsTotal, float64(numRows), metrics.Labels{"format": string(rf.Kind)})
	log.Debug("records loaded", "records", numRows, "columns", len(loaded.Columns))

	var sets []FieldValueSet
	if err = step(ctx, "collect", func() error {
		sets = CollectFields(loaded.Records, loaded.Columns)
		return nil
	}); err != nil {
		return
	}
	log.Debug("fields collected", "fields", len(sets))

	summaries := make([]FieldSummary, 0, len(sets))
	if err = step(ctx, "summarize", func() error {
		for _, set := range sets {
			typ := Classify(set)
			s, e := Summarize(set, typ)
			if e != nil {
				return e
			}
			metrics.IncCounter(metrics.FieldsTotal, 1, metrics.Labels{"type": string(typ)})
			log.Debug("field summarized", "field", set.Name, "type", typ, "distinct", len(set.Values))
			summaries = append(summaries, s)
		}
		return nil
	}); err != nil {
		return
	}

	md = AssembleMetadata(in, rf, header, numRows, summaries)
	log.Info("profile complete", "format", md.Format, "numrows", md.NumRows, "numfields", md.NumFields)
	return md, nil
}

// step checks ctx, runs fn and records its duration.
func step(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	metrics.ObserveStep(name, start, err)
	return err
}

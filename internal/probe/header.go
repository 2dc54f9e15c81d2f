package probe

import (
	"context"
	"unicode/utf8"

	"metaprobe/internal/datasource/file"
	csvparser "metaprobe/internal/parser/csv"
	htmlparser "metaprobe/internal/parser/html"
)

const (
	sniffBytes = 1024
	sniffRows  = 20
)

// peekFn returns up to n decoded bytes from the start of the input.
// Tests replace it to count reads.
var peekFn = func(ctx context.Context, in InputSpec, n int) ([]byte, error) {
	return file.NewLocal(in.Path).WithEncoding(in.Encoding).Peek(ctx, n)
}

// DetectHeader decides whether the first row is a header. It returns nil for
// JSON, where the notion does not apply.
//
// An explicit in.HasHeader always wins. HTML input has a header when its
// first table row is all <th> cells. Tabular input is sniffed from its first
// 1024 bytes; see sniffHeader.
func DetectHeader(ctx context.Context, in InputSpec, rf ResolvedFormat) (*bool, error) {
	if rf.Kind == FormatJSON {
		return nil, nil
	}
	if in.HasHeader != nil {
		v := *in.HasHeader
		return &v, nil
	}

	switch rf.Kind {
	case FormatHTML:
		rc, err := file.NewLocal(in.Path).WithEncoding(in.Encoding).Open(ctx)
		if err != nil {
			return nil, err
		}
		defer rc.Close()

		v, err := htmlparser.HasHeaderRow(rc)
		if err != nil {
			return nil, err
		}
		return &v, nil

	default:
		sample, err := peekFn(ctx, in, sniffBytes+1)
		if err != nil {
			return nil, err
		}
		truncated := len(sample) > sniffBytes
		if truncated {
			sample = sample[:sniffBytes]
		}
		v := sniffHeader(csvparser.SampleRows(sample, rf.Separator, truncated, sniffRows+1))
		return &v, nil
	}
}

// column shape states for sniffHeader.
type shape struct {
	set     bool
	dropped bool
	numeric bool
	length  int
}

// sniffHeader guesses whether rows[0] is a header.
//
// Each column gets a shape from the data rows (rows[1:], rows of the wrong
// width ignored): numeric if every value is numeric, otherwise a fixed
// character length if every value has the same length. Columns without a
// consistent shape drop out. The others vote on the first row: a
// non-numeric cell over a numeric column, or a cell whose length differs
// from a fixed-length column, votes header; the opposite votes data.
//
// The answer is best-effort. Fewer than two rows always yields false.
func sniffHeader(rows [][]string) bool {
	if len(rows) < 2 {
		return false
	}
	header := rows[0]
	shapes := make([]shape, len(header))

	for _, row := range rows[1:] {
		if len(row) != len(header) {
			continue
		}
		for i, cell := range row {
			s := &shapes[i]
			if s.dropped {
				continue
			}
			num := IsNumeric(cell)
			n := utf8.RuneCountInString(cell)
			if !s.set {
				*s = shape{set: true, numeric: num, length: n}
				continue
			}
			if num != s.numeric || (!num && n != s.length) {
				s.dropped = true
			}
		}
	}

	votes := 0
	for i, s := range shapes {
		if !s.set || s.dropped {
			continue
		}
		switch {
		case s.numeric && IsNumeric(header[i]):
			votes--
		case s.numeric:
			votes++
		case utf8.RuneCountInString(header[i]) != s.length:
			votes++
		default:
			votes--
		}
	}
	return votes > 0
}

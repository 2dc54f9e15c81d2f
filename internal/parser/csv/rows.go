// Package csv reads delimited text into a records.Table.
package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "metaprobe/internal/errors"
	"metaprobe/pkg/records"
)

// Options controls ReadRows.
type Options struct {
	Comma     rune
	HasHeader bool
}

func newReader(r io.Reader, comma rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr
}

// ReadRows loads every row of r.
//
// The first row fixes the column count and names: header cells when
// opt.HasHeader is set, var1..varN otherwise (the row is then data). Every
// later row must have the same number of cells. Blank lines are skipped and
// cell text is kept verbatim.
func ReadRows(ctx context.Context, r io.Reader, opt Options) (*records.Table, error) {
	if opt.Comma == 0 {
		opt.Comma = ','
	}
	cr := newReader(r, opt.Comma)
	cr.ReuseRecord = true

	tbl := &records.Table{}

	first, err := cr.Read()
	if err == io.EOF {
		return tbl, nil
	}
	if err != nil {
		return nil, readError(err)
	}
	first = append([]string(nil), first...)
	first[0] = strings.TrimPrefix(first[0], "\uFEFF")

	if opt.HasHeader {
		tbl.Columns = first
	} else {
		tbl.Columns = records.SyntheticColumns(len(first))
		tbl.Records = append(tbl.Records, records.FromRow(tbl.Columns, first))
	}
	want := len(tbl.Columns)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := cr.Read()
		if err == io.EOF {
			return tbl, nil
		}
		if err != nil {
			return nil, readError(err)
		}
		if len(rec) != want {
			line, _ := cr.FieldPos(0)
			return nil, apperrors.ParseError(
				fmt.Sprintf("line %d: expected %d fields, got %d", line, want, len(rec)), nil)
		}
		tbl.Records = append(tbl.Records, records.FromRow(tbl.Columns, rec))
	}
}

func readError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return apperrors.ParseError(fmt.Sprintf("line %d", pe.Line), pe.Err)
	}
	return apperrors.WithCode(apperrors.CodeIO, err)
}

// SampleRows parses a leading sample of a file. When truncated is set the
// sample was cut at a byte limit and its last, possibly partial, line is
// dropped. Parsing stops quietly at the first malformed row; at most limit
// rows are returned.
func SampleRows(sample []byte, comma rune, truncated bool, limit int) [][]string {
	sample = bytes.TrimPrefix(sample, []byte("\uFEFF"))
	if truncated {
		if i := bytes.LastIndexByte(sample, '\n'); i >= 0 {
			sample = sample[:i+1]
		}
	}

	cr := newReader(bytes.NewReader(sample), comma)
	var out [][]string
	for len(out) < limit {
		rec, err := cr.Read()
		if err != nil {
			break
		}
		out = append(out, rec)
	}
	return out
}

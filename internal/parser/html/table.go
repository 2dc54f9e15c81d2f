// Package html reads the first <table> of an HTML document as rows.
package html

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	apperrors "metaprobe/internal/errors"
	"metaprobe/pkg/records"
)

// Options controls ReadTable.
type Options struct {
	HasHeader bool
}

type row struct {
	cells  []string
	header bool // every cell is a <th>
}

func firstTable(r io.Reader) ([]row, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, apperrors.ParseError("parse HTML", err)
	}

	tbl := doc.Find("table").First()
	if tbl.Length() == 0 {
		return nil, apperrors.ParseError("no <table> element in HTML document", nil)
	}

	var rows []row
	tbl.Find("tr").
		FilterFunction(func(_ int, tr *goquery.Selection) bool {
			return tr.Closest("table").IsSelection(tbl)
		}).
		Each(func(_ int, tr *goquery.Selection) {
			cells := tr.ChildrenFiltered("th,td")
			if cells.Length() == 0 {
				return
			}
			rw := row{
				cells:  make([]string, 0, cells.Length()),
				header: cells.Length() == tr.ChildrenFiltered("th").Length(),
			}
			cells.Each(func(_ int, c *goquery.Selection) {
				rw.cells = append(rw.cells, strings.TrimSpace(c.Text()))
			})
			rows = append(rows, rw)
		})
	return rows, nil
}

// HasHeaderRow reports whether the first row of the first table is made of
// <th> cells.
func HasHeaderRow(r io.Reader) (bool, error) {
	rows, err := firstTable(r)
	if err != nil {
		return false, err
	}
	return len(rows) > 0 && rows[0].header, nil
}

// ReadTable loads the first table with the same column rules as delimited
// text: the first row fixes names and arity, and rows without cells are
// skipped.
func ReadTable(ctx context.Context, r io.Reader, opt Options) (*records.Table, error) {
	rows, err := firstTable(r)
	if err != nil {
		return nil, err
	}

	tbl := &records.Table{}
	if len(rows) == 0 {
		return tbl, nil
	}

	start := 0
	if opt.HasHeader {
		tbl.Columns = rows[0].cells
		start = 1
	} else {
		tbl.Columns = records.SyntheticColumns(len(rows[0].cells))
	}

	for i := start; i < len(rows); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(rows[i].cells) != len(tbl.Columns) {
			return nil, apperrors.ParseError(
				fmt.Sprintf("table row %d: expected %d cells, got %d", i+1, len(tbl.Columns), len(rows[i].cells)), nil)
		}
		tbl.Records = append(tbl.Records, records.FromRow(tbl.Columns, rows[i].cells))
	}
	return tbl, nil
}

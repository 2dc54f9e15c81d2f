// Package writer serializes profile Metadata.
package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	apperrors "metaprobe/internal/errors"
	"metaprobe/internal/probe"
)

// Encode renders md as 4-space indented JSON with a trailing newline. The
// output is deterministic for equal input.
func Encode(md probe.Metadata) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(md); err != nil {
		return nil, apperrors.Wrap(err, "encode metadata")
	}
	return buf.Bytes(), nil
}

// WriteJSON writes the encoded document to path. The file is written to a
// temporary sibling first and renamed into place, so readers never see a
// partial document.
func WriteJSON(path string, md probe.Metadata) ([]byte, error) {
	b, err := Encode(md)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, apperrors.WithCodef(apperrors.CodeIO, err, "write %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return nil, apperrors.WithCodef(apperrors.CodeIO, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return nil, apperrors.WithCodef(apperrors.CodeIO, err, "write %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return nil, apperrors.WithCodef(apperrors.CodeIO, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, apperrors.WithCodef(apperrors.CodeIO, err, "write %s", path)
	}
	return b, nil
}

// RenderReport prints a human-readable summary of md.
func RenderReport(w io.Writer, md probe.Metadata) {
	sep := "-"
	if md.Separator != nil {
		sep = strconv.Quote(*md.Separator)
	}
	header := "-"
	if md.Header != nil {
		header = strconv.FormatBool(*md.Header)
	}
	_, _ = fmt.Fprintf(w, "%s: format=%s separator=%s header=%s rows=%d fields=%d\n",
		md.Infile, md.Format, sep, header, md.NumRows, md.NumFields)

	if len(md.Fields) == 0 {
		_, _ = fmt.Fprintln(w, "(0 fields)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Field", "Type", "Min", "Max", "Mean", "Unique"})

	for i, f := range md.Fields {
		t.AppendRow(table.Row{i + 1, f.Name, string(f.Type), num(f.Min), num(f.Max), num(f.Mean), count(f.UniqueCount)})
	}
	t.Render()
}

func num(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

func count(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

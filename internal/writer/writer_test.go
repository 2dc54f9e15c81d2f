package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "metaprobe/internal/errors"
	"metaprobe/internal/probe"
)

func sample() probe.Metadata {
	sep := ","
	hdr := true
	lo, hi, mean := 25.0, 30.0, 27.5
	uniq := 2
	return probe.Metadata{
		Infile:    "a.csv",
		Format:    probe.FormatTabular,
		Separator: &sep,
		Header:    &hdr,
		NumRows:   2,
		NumFields: 2,
		Fields: []probe.FieldSummary{
			{Name: "name", Type: probe.FieldString, UniqueCount: &uniq},
			{Name: "age", Type: probe.FieldNumeric, Min: &lo, Max: &hi, Mean: &mean},
		},
	}
}

func TestEncode_Layout(t *testing.T) {
	t.Parallel()

	b, err := Encode(sample())
	require.NoError(t, err)

	want := `{
    "infile": "a.csv",
    "format": "tabular",
    "separator": ",",
    "header": true,
    "numrows": 2,
    "numfields": 2,
    "fields": [
        {
            "name": "name",
            "Type": "string",
            "uniqueCount": 2
        },
        {
            "name": "age",
            "Type": "numeric",
            "min": 25,
            "max": 30,
            "mean": 27.5
        }
    ]
}
`
	assert.Equal(t, want, string(b))
}

func TestEncode_JSONNulls(t *testing.T) {
	t.Parallel()

	b, err := Encode(probe.Metadata{Infile: "b.json", Format: probe.FormatJSON, Fields: []probe.FieldSummary{}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"separator": null`)
	assert.Contains(t, string(b), `"header": null`)
	assert.Contains(t, string(b), `"fields": []`)
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := filepath.Join(dir, "a.meta.json")
	require.NoError(t, os.WriteFile(p, []byte("stale"), 0o644))

	b, err := WriteJSON(p, sample())
	require.NoError(t, err)

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteJSON_MissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := WriteJSON(filepath.Join(t.TempDir(), "no", "such", "m.json"), sample())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeIO, apperrors.GetCode(err))
}

func TestRenderReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	RenderReport(&buf, sample())
	out := buf.String()

	assert.Contains(t, out, `a.csv: format=tabular separator="," header=true rows=2 fields=2`)
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "27.5")
	assert.Contains(t, out, "numeric")

	buf.Reset()
	RenderReport(&buf, probe.Metadata{Infile: "e.json", Format: probe.FormatJSON})
	assert.Contains(t, buf.String(), "separator=- header=-")
	assert.Contains(t, buf.String(), "(0 fields)")
}

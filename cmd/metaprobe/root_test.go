package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	dir     string
	envFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{dir: t.TempDir()}
	h.envFile = h.write(t, "empty.env", "")
	return h
}

func (h *harness) write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func (h *harness) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	args = append(args, "--env-file", h.envFile)
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func readDoc(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	return doc
}

func TestExecute_FlagsAndReport(t *testing.T) {
	h := newHarness(t)
	in := h.write(t, "a.csv", "name,age\nAlice,30\nBob,25\n")
	out := filepath.Join(h.dir, "a.meta.json")

	code, stdout, stderr := h.run("--infile", in, "--metafile", out, "--report", "--log-level", "error")
	require.Equal(t, 0, code, stderr)

	doc := readDoc(t, out)
	assert.Equal(t, "tabular", doc["format"])
	assert.Equal(t, ",", doc["separator"])
	assert.Equal(t, true, doc["header"])
	assert.Equal(t, 2.0, doc["numrows"])
	assert.Equal(t, 2.0, doc["numfields"])

	fields := doc["fields"].([]any)
	age := fields[1].(map[string]any)
	assert.Equal(t, "age", age["name"])
	assert.Equal(t, "numeric", age["Type"])
	assert.Equal(t, 27.5, age["mean"])

	assert.Contains(t, stdout, "rows=2 fields=2")
	assert.Contains(t, stdout, "numeric")
	assert.Empty(t, stderr)
}

func TestExecute_ParameterFile(t *testing.T) {
	h := newHarness(t)
	in := h.write(t, "b.json", `[{"x":1},{"x":2,"y":"z"}]`)
	out := filepath.Join(h.dir, "b.meta.json")

	params, err := json.Marshal(map[string]any{"infile": in, "metafile": out, "log_level": "warn"})
	require.NoError(t, err)
	pf := h.write(t, "params.json", string(params))

	code, stdout, stderr := h.run(pf)
	require.Equal(t, 0, code, stderr)
	assert.Empty(t, stdout)

	doc := readDoc(t, out)
	assert.Equal(t, "json", doc["format"])
	assert.Nil(t, doc["separator"])
	assert.Nil(t, doc["header"])
	assert.Len(t, doc["fields"], 2)
}

func TestExecute_FlagOverridesParameterFile(t *testing.T) {
	h := newHarness(t)
	in := h.write(t, "c.dat", "1;2\n3;4\n")
	out := filepath.Join(h.dir, "c.meta.json")
	pf := h.write(t, "params.yaml", "infile: "+in+"\nmetafile: "+out+"\nformat: tabular\nseparator: ','\n")

	code, _, stderr := h.run(pf, "--separator", ";", "--hasheader=false", "--log-level", "error")
	require.Equal(t, 0, code, stderr)

	doc := readDoc(t, out)
	assert.Equal(t, ";", doc["separator"])
	assert.Equal(t, false, doc["header"])
	assert.Equal(t, 2.0, doc["numrows"])
}

func TestExecute_ExitCodes(t *testing.T) {
	h := newHarness(t)
	unknown := h.write(t, "d.dat", "a,b\n1,2\n")
	ragged := h.write(t, "e.csv", "a,b\n1,2,3\n")

	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr string
	}{
		{"missing metafile", []string{"--infile", unknown}, 2, "metafile is required"},
		{"unknown suffix", []string{"--infile", unknown, "--metafile", filepath.Join(h.dir, "d.json")}, 2, "Error:"},
		{"bad separator", []string{"--infile", ragged, "--metafile", filepath.Join(h.dir, "x.json"), "--separator", ";;"}, 2, "Error:"},
		{"missing input", []string{"--infile", filepath.Join(h.dir, "nope.csv"), "--metafile", filepath.Join(h.dir, "y.json")}, 1, "nope.csv"},
		{"ragged rows", []string{"--infile", ragged, "--metafile", filepath.Join(h.dir, "z.json")}, 1, "line 2"},
		{"too many args", []string{"a.yaml", "b.yaml"}, 1, "accepts at most 1 arg"},
		{"unknown catalog", []string{"--infile", ragged, "--metafile", filepath.Join(h.dir, "w.json"), "--catalog-kind", "oracle"}, 2, "unknown catalog kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := h.run(tt.args...)
			assert.Equal(t, tt.want, code, stderr)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}

	_, err := os.Stat(filepath.Join(h.dir, "d.json"))
	assert.True(t, os.IsNotExist(err), "no metafile is written on failure")
}

func TestExecute_RecordsProfileInSQLiteCatalog(t *testing.T) {
	h := newHarness(t)
	in := h.write(t, "a.csv", "name,age\nAlice,30\nBob,25\n")
	out := filepath.Join(h.dir, "a.meta.json")
	dsn := filepath.Join(h.dir, "catalog.db")

	for i := 0; i < 2; i++ {
		code, _, stderr := h.run("--infile", in, "--metafile", out,
			"--catalog-kind", "sqlite", "--catalog-dsn", dsn, "--log-level", "error")
		require.Equal(t, 0, code, stderr)
	}

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	var runs, fingerprints, fields int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT fingerprint) FROM metaprobe_profiles`).Scan(&runs, &fingerprints))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM metaprobe_fields`).Scan(&fields))

	assert.Equal(t, 2, runs)
	assert.Equal(t, 1, fingerprints, "identical inputs produce identical documents")
	assert.Equal(t, 4, fields)
}

package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "metaprobe/internal/errors"
)

func TestResolveFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   InputSpec
		want ResolvedFormat
	}{
		{"csv suffix", InputSpec{Path: "a.csv"}, ResolvedFormat{FormatTabular, ','}},
		{"upper case suffix", InputSpec{Path: "A.CSV"}, ResolvedFormat{FormatTabular, ','}},
		{"txt is tab", InputSpec{Path: "a.txt"}, ResolvedFormat{FormatTabular, '\t'}},
		{"tsv is tab", InputSpec{Path: "a.tsv"}, ResolvedFormat{FormatTabular, '\t'}},
		{"json suffix", InputSpec{Path: "dir/b.json"}, ResolvedFormat{Kind: FormatJSON}},
		{"html suffix", InputSpec{Path: "t.htm"}, ResolvedFormat{Kind: FormatHTML}},
		{"explicit overrides unknown suffix", InputSpec{Path: "c.dat", Format: "tabular", Separator: ";"}, ResolvedFormat{FormatTabular, ';'}},
		{"explicit overrides known suffix", InputSpec{Path: "c.csv", Format: "tabular", Separator: "|"}, ResolvedFormat{FormatTabular, '|'}},
		{"tab escape", InputSpec{Path: "c.dat", Format: "tabular", Separator: `\t`}, ResolvedFormat{FormatTabular, '\t'}},
		{"structured alias", InputSpec{Path: "c.dat", Format: "structured"}, ResolvedFormat{Kind: FormatJSON}},
		{"separator alone overrides suffix", InputSpec{Path: "c.csv", Separator: ";"}, ResolvedFormat{FormatTabular, ';'}},
		{"explicit tabular takes suffix separator", InputSpec{Path: "c.csv", Format: "tabular"}, ResolvedFormat{FormatTabular, ','}},
		{"json ignores separator", InputSpec{Path: "c.json", Separator: ";"}, ResolvedFormat{Kind: FormatJSON}},
		{"explicit json keeps separator", InputSpec{Path: "c.json", Format: "json", Separator: ";"}, ResolvedFormat{FormatJSON, ';'}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ResolveFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFormat_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   InputSpec
	}{
		{"unknown suffix", InputSpec{Path: "c.dat"}},
		{"no suffix", InputSpec{Path: "Makefile"}},
		{"unknown suffix with separator only", InputSpec{Path: "c.dat", Separator: ";"}},
		{"tabular without separator source", InputSpec{Path: "c.dat", Format: "tabular"}},
		{"unknown format", InputSpec{Path: "c.csv", Format: "xml"}},
		{"long separator", InputSpec{Path: "c.csv", Separator: ";;"}},
		{"quote separator", InputSpec{Path: "c.csv", Separator: `"`}},
		{"newline separator", InputSpec{Path: "c.csv", Separator: "\n"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ResolveFormat(tt.in)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
		})
	}
}

func TestParseSeparator_MultiByteRune(t *testing.T) {
	t.Parallel()

	r, err := ParseSeparator("§")
	require.NoError(t, err)
	assert.Equal(t, '§', r)
}

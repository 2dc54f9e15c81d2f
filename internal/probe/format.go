package probe

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	apperrors "metaprobe/internal/errors"
)

// suffixFormats maps a lower-case file suffix to its default format.
var suffixFormats = map[string]ResolvedFormat{
	".csv":  {Kind: FormatTabular, Separator: ','},
	".tsv":  {Kind: FormatTabular, Separator: '\t'},
	".txt":  {Kind: FormatTabular, Separator: '\t'},
	".json": {Kind: FormatJSON},
	".html": {Kind: FormatHTML},
	".htm":  {Kind: FormatHTML},
}

// ParseFormat maps a user-facing format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tabular":
		return FormatTabular, nil
	case "json", "structured":
		return FormatJSON, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", apperrors.ConfigInvalidf("unknown format %q (want tabular, json or html)", name)
	}
}

// ParseSeparator validates a separator. The escape `\t` means tab.
func ParseSeparator(s string) (rune, error) {
	if s == `\t` {
		s = "\t"
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, apperrors.ConfigInvalidf("separator must be exactly one character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	switch r {
	case utf8.RuneError, '\r', '\n', '"':
		return 0, apperrors.ConfigInvalidf("invalid separator %q", s)
	}
	return r, nil
}

// ResolveFormat decides the format and separator without reading the file.
//
// Explicit settings win; whatever is missing comes from the path suffix. A
// path whose suffix is not registered fails unless the format (and, for
// tabular input, the separator) is given explicitly.
func ResolveFormat(in InputSpec) (ResolvedFormat, error) {
	ext := strings.ToLower(filepath.Ext(in.Path))
	bySuffix, known := suffixFormats[ext]

	kind := bySuffix.Kind
	if in.Format != "" {
		f, err := ParseFormat(in.Format)
		if err != nil {
			return ResolvedFormat{}, err
		}
		kind = f
	} else if !known {
		return ResolvedFormat{}, apperrors.ConfigInvalidf(
			"cannot infer format of %q from suffix %q; set format and separator explicitly", in.Path, ext)
	}

	if kind != FormatTabular {
		// An explicit format and separator pair is kept as given even
		// though nothing reads the separator.
		if in.Format != "" && in.Separator != "" {
			sep, err := ParseSeparator(in.Separator)
			if err != nil {
				return ResolvedFormat{}, err
			}
			return ResolvedFormat{Kind: kind, Separator: sep}, nil
		}
		return ResolvedFormat{Kind: kind}, nil
	}

	if in.Separator != "" {
		sep, err := ParseSeparator(in.Separator)
		if err != nil {
			return ResolvedFormat{}, err
		}
		return ResolvedFormat{Kind: FormatTabular, Separator: sep}, nil
	}
	if known && bySuffix.Kind == FormatTabular {
		return bySuffix, nil
	}
	return ResolvedFormat{}, apperrors.ConfigInvalidf(
		"tabular input %q needs a separator (suffix %q has no default)", in.Path, ext)
}

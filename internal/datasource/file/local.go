// Package file opens local input files for the profiler.
//
// Every reader returned here is already decoded to UTF-8: a leading byte
// order mark is consumed (and, for UTF-16 marks, honored), and a non-default
// character set can be selected by name.
package file

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	apperrors "metaprobe/internal/errors"
)

// Local is a file on the local filesystem.
type Local struct {
	Path string

	// Encoding is an IANA/WHATWG character set name. Empty means UTF-8.
	Encoding string
}

// NewLocal returns a Local source for path decoded as UTF-8.
func NewLocal(path string) *Local {
	return &Local{Path: path}
}

// WithEncoding returns a copy of l that decodes with the named charset.
func (l *Local) WithEncoding(name string) *Local {
	cp := *l
	cp.Encoding = name
	return &cp
}

// LookupEncoding resolves a charset name. Empty and UTF-8 aliases resolve
// to UTF-8.
func LookupEncoding(name string) (encoding.Encoding, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(n)
	if err != nil {
		return nil, apperrors.ConfigInvalidf("unknown encoding %q", name)
	}
	return enc, nil
}

// Open opens the file and returns a decoded reader. The caller must Close it.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	enc, err := LookupEncoding(l.Encoding)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(l.Path)
	if err != nil {
		return nil, apperrors.IOError(l.Path, err)
	}

	type rc struct {
		io.Reader
		io.Closer
	}
	return &rc{
		Reader: transform.NewReader(f, unicode.BOMOverride(enc.NewDecoder())),
		Closer: f,
	}, nil
}

// ReadAll opens, fully reads, and closes the file.
func (l *Local) ReadAll(ctx context.Context) ([]byte, error) {
	rc, err := l.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, apperrors.IOError(l.Path, err)
	}
	return b, nil
}

// Peek returns at most n decoded bytes from the start of the file.
func (l *Local) Peek(ctx context.Context, n int) ([]byte, error) {
	if n <= 0 {
		return nil, apperrors.New(apperrors.CodeInternalError, "peek: n must be > 0")
	}
	rc, err := l.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	lr := &io.LimitedReader{R: rc, N: int64(n)}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lr); err != nil {
		return nil, apperrors.IOError(l.Path, err)
	}
	return buf.Bytes(), nil
}

// Package json reads a JSON array of objects into ordered records.
//
// Object keys keep document order and numbers are stored in canonical
// shortest form, so 1, 1.0 and 1e0 load as the same value.
package json

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	apperrors "metaprobe/internal/errors"
	"metaprobe/pkg/records"
)

// Options controls ReadArray.
type Options struct {
	// FlattenNested expands nested objects into dotted keys ("a.b").
	// Arrays are never expanded.
	FlattenNested bool
}

// ReadArray decodes a document whose root is an array of objects. Null
// elements are skipped; any other non-object element is an error.
func ReadArray(ctx context.Context, r io.Reader, opt Options) ([]*records.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		return nil, apperrors.ParseError("empty JSON document", nil)
	}
	if err != nil {
		return nil, decodeError(dec, err)
	}
	if tok != json.Delim('[') {
		return nil, apperrors.ParseError(fmt.Sprintf("JSON root must be an array, got %s", describe(tok)), nil)
	}

	var out []*records.Record
	for i := 0; dec.More(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, decodeError(dec, err)
		}
		raw = bytes.TrimSpace(raw)

		switch raw[0] {
		case 'n':
			continue
		case '{':
		default:
			return nil, apperrors.ParseError(fmt.Sprintf("array element %d is not an object", i), nil)
		}

		rec := records.NewRecord(8)
		if err := decodeObject(raw, "", rec, opt.FlattenNested); err != nil {
			return nil, apperrors.ParseError(fmt.Sprintf("array element %d", i), err)
		}
		out = append(out, rec)
	}

	if _, err := dec.Token(); err != nil {
		return nil, decodeError(dec, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, apperrors.ParseError("unexpected data after JSON array", err)
	}
	return out, nil
}

// decodeObject walks one object, adding its members to rec under prefix.
func decodeObject(raw json.RawMessage, prefix string, rec *records.Record, flatten bool) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("object key not a string (got %T)", kt)
		}
		if prefix != "" {
			key = prefix + "." + key
		}

		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return err
		}
		v = bytes.TrimSpace(v)

		if flatten && v[0] == '{' {
			if err := decodeObject(v, key, rec, flatten); err != nil {
				return err
			}
			continue
		}

		val, err := scalar(v)
		if err != nil {
			return err
		}
		rec.Set(key, val)
	}
	return nil
}

func scalar(raw json.RawMessage) (records.Value, error) {
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return records.Value{}, err
		}
		return records.String(s), nil
	case 't':
		return records.Bool(true), nil
	case 'f':
		return records.Bool(false), nil
	case 'n':
		return records.Null(), nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return records.Value{}, err
		}
		return records.Nested(buf.String()), nil
	default:
		return records.Number(canonicalNumber(string(raw))), nil
	}
}

// canonicalNumber renders a JSON number as the shortest float64 text.
// Literals outside float64 range stay as written.
func canonicalNumber(literal string) string {
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return literal
	}
	if f == 0 {
		f = 0 // -0
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func decodeError(dec *json.Decoder, err error) error {
	var se *json.SyntaxError
	switch {
	case errors.As(err, &se):
		return apperrors.ParseError(fmt.Sprintf("invalid JSON at offset %d", se.Offset), err)
	case errors.Is(err, io.ErrUnexpectedEOF), err == io.EOF:
		return apperrors.ParseError(fmt.Sprintf("truncated JSON at offset %d", dec.InputOffset()), err)
	default:
		return apperrors.WithCode(apperrors.CodeIO, err)
	}
}

func describe(tok json.Token) string {
	switch t := tok.(type) {
	case json.Delim:
		return fmt.Sprintf("%q", string(t))
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", tok)
	}
}

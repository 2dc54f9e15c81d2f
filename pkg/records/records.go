// Package records holds the in-memory shape of loaded data: ordered records
// of raw values, and the column-aligned table produced by row-oriented
// parsers.
package records

import "strconv"

// Kind tells where a raw value came from.
type Kind uint8

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindNull
	KindNested
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindNested:
		return "nested"
	default:
		return "unknown"
	}
}

// Value is a raw field value. It is comparable, so two values are the same
// raw value iff they have the same kind and the same text.
//
// Text is the canonical rendering: the number text, the string itself
// for strings, "true"/"false", "null", or compact JSON for nested values.
type Value struct {
	kind Kind
	text string
}

func String(s string) Value { return Value{kind: KindString, text: s} }

// Number keeps text as given. Callers pass a canonical form when equal
// numbers written differently must compare equal.
func Number(literal string) Value { return Value{kind: KindNumber, text: literal} }

func Bool(b bool) Value { return Value{kind: KindBool, text: strconv.FormatBool(b)} }

func Null() Value { return Value{kind: KindNull, text: "null"} }

// Nested wraps the compact JSON encoding of an object or array.
func Nested(compact string) Value { return Value{kind: KindNested, text: compact} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) String() string { return v.text }

// Record is one logical data item. Keys keep their first insertion order.
type Record struct {
	keys []string
	vals map[string]Value
}

// NewRecord returns an empty record sized for n fields.
func NewRecord(n int) *Record {
	return &Record{
		keys: make([]string, 0, n),
		vals: make(map[string]Value, n),
	}
}

// Set stores v under key. Re-setting an existing key replaces the value
// but keeps the original position.
func (r *Record) Set(key string, v Value) {
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (r *Record) Keys() []string { return r.keys }

func (r *Record) Len() int { return len(r.keys) }

// Table is the output of a row-oriented parser: the column list fixed by the
// first row plus every data record, in file order.
type Table struct {
	Columns []string
	Records []*Record
}

// SyntheticColumns returns var1..varN.
func SyntheticColumns(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "var" + strconv.Itoa(i+1)
	}
	return out
}

// FromRow builds a record aligning row values to columns. Callers check
// arity beforehand.
func FromRow(columns, row []string) *Record {
	r := NewRecord(len(columns))
	for i, c := range columns {
		r.Set(c, String(row[i]))
	}
	return r
}

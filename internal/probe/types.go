// Package probe profiles a record file into a Metadata document.
//
// The pipeline is a straight sequence of pure-ish stages:
//
//	ResolveFormat -> DetectHeader -> LoadRecords -> CollectFields
//	  -> Classify + Summarize (per field) -> AssembleMetadata
//
// with CountRows as a side computation over the loaded records. Every stage
// takes explicit inputs and returns a new value; only DetectHeader and
// LoadRecords touch the filesystem. Profiler wires the stages together.
package probe

import "metaprobe/pkg/records"

// Format is the input format kind.
type Format string

const (
	FormatTabular Format = "tabular"
	FormatJSON    Format = "json"
	FormatHTML    Format = "html"
)

// InputSpec describes one file to profile. Zero values mean "infer".
type InputSpec struct {
	Path string

	// Format is "tabular", "json" (alias "structured") or "html".
	Format string

	// Separator is a single character; the two-character escape `\t` is
	// accepted for tab. Only meaningful for tabular input.
	Separator string

	// HasHeader overrides header sniffing when non-nil.
	HasHeader *bool

	// Encoding names the input character set. Empty means UTF-8.
	Encoding string

	// FlattenNested expands nested JSON objects into dotted field names.
	FlattenNested bool
}

// ResolvedFormat is the outcome of ResolveFormat. Only tabular loading reads
// Separator; for other kinds it is set when given with an explicit format.
type ResolvedFormat struct {
	Kind      Format
	Separator rune
}

// Loaded is the output of LoadRecords. Columns is the fixed column list for
// row-oriented formats and nil for JSON.
type Loaded struct {
	Records []*records.Record
	Columns []string
}

// FieldType is the inferred type of a field.
type FieldType string

const (
	FieldNumeric FieldType = "numeric"
	FieldString  FieldType = "string"
)

// FieldValueSet holds the distinct raw values of one field in first-seen
// order. Records lacking the field contribute nothing.
type FieldValueSet struct {
	Name   string
	Values []records.Value
}

// FieldSummary describes one field. Min, Max and Mean are set for numeric
// fields; UniqueCount for string fields.
type FieldSummary struct {
	Name        string    `json:"name"`
	Type        FieldType `json:"Type"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
	Mean        *float64  `json:"mean,omitempty"`
	UniqueCount *int      `json:"uniqueCount,omitempty"`
}

// Metadata is the profile document. Field order is the serialized key order.
type Metadata struct {
	Infile    string         `json:"infile"`
	Format    Format         `json:"format"`
	Separator *string        `json:"separator"`
	Header    *bool          `json:"header"`
	NumRows   int            `json:"numrows"`
	NumFields int            `json:"numfields"`
	Fields    []FieldSummary `json:"fields"`
}

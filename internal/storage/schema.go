package storage

// ColumnKind is a dialect-neutral column type. Each backend maps it to a
// concrete SQL type.
type ColumnKind int

const (
	ColumnID    ColumnKind = iota // short text key
	ColumnText                    // unbounded text
	ColumnInt                     // 64-bit integer
	ColumnFloat                   // double precision
	ColumnBool
	ColumnTime // timestamp with zone
	ColumnJSON // JSON document
)

type ColumnSpec struct {
	Name     string
	Kind     ColumnKind
	Nullable bool
}

type TableSpec struct {
	Name       string
	Columns    []ColumnSpec
	PrimaryKey []string
}

// ColumnNames returns the column names in declaration order.
func (t TableSpec) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// ProfilesTable holds one row per profiling run.
var ProfilesTable = TableSpec{
	Name: "metaprobe_profiles",
	Columns: []ColumnSpec{
		{Name: "run_id", Kind: ColumnID},
		{Name: "infile", Kind: ColumnText},
		{Name: "format", Kind: ColumnID},
		{Name: "separator", Kind: ColumnID, Nullable: true},
		{Name: "header", Kind: ColumnBool, Nullable: true},
		{Name: "numrows", Kind: ColumnInt},
		{Name: "numfields", Kind: ColumnInt},
		{Name: "fingerprint", Kind: ColumnID},
		{Name: "document", Kind: ColumnJSON},
		{Name: "created_at", Kind: ColumnTime},
	},
	PrimaryKey: []string{"run_id"},
}

// FieldsTable holds one row per summarized field of a run.
var FieldsTable = TableSpec{
	Name: "metaprobe_fields",
	Columns: []ColumnSpec{
		{Name: "run_id", Kind: ColumnID},
		{Name: "ordinal", Kind: ColumnInt},
		{Name: "name", Kind: ColumnText},
		{Name: "type", Kind: ColumnID},
		{Name: "min_value", Kind: ColumnFloat, Nullable: true},
		{Name: "max_value", Kind: ColumnFloat, Nullable: true},
		{Name: "mean_value", Kind: ColumnFloat, Nullable: true},
		{Name: "unique_count", Kind: ColumnInt, Nullable: true},
	},
	PrimaryKey: []string{"run_id", "ordinal"},
}

// Tables lists the catalog tables in creation order.
func Tables() []TableSpec {
	return []TableSpec{ProfilesTable, FieldsTable}
}

// Batches splits rows so that no statement binds more than maxParams values.
// Every row must have the same width.
func Batches(rows [][]any, maxParams int) [][][]any {
	if len(rows) == 0 {
		return nil
	}
	per := 1
	if w := len(rows[0]); w > 0 && maxParams > w {
		per = maxParams / w
	}
	out := make([][][]any, 0, (len(rows)+per-1)/per)
	for len(rows) > per {
		out = append(out, rows[:per])
		rows = rows[per:]
	}
	return append(out, rows)
}

package probe

import "metaprobe/pkg/records"

// CountRows returns the number of data rows. Header rows and skipped null
// JSON elements never become records, so this is the record count.
func CountRows(recs []*records.Record) int {
	return len(recs)
}

// AssembleMetadata composes the final document.
func AssembleMetadata(in InputSpec, rf ResolvedFormat, header *bool, numRows int, fields []FieldSummary) Metadata {
	md := Metadata{
		Infile:    in.Path,
		Format:    rf.Kind,
		NumRows:   numRows,
		NumFields: len(fields),
		Fields:    make([]FieldSummary, len(fields)),
	}
	copy(md.Fields, fields)

	if rf.Separator != 0 {
		sep := string(rf.Separator)
		md.Separator = &sep
	}
	if rf.Kind != FormatJSON && header != nil {
		h := *header
		md.Header = &h
	}
	return md
}

package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"metaprobe/internal/probe"
)

// ProfileRecord is one run as stored in the catalog.
type ProfileRecord struct {
	RunID       string
	Metadata    probe.Metadata
	Document    []byte // serialized Metadata, exactly as written to the metafile
	Fingerprint string // hex SHA-256 of Document
	CreatedAt   time.Time
}

// NewProfileRecord stamps md with a fresh run id. doc must be the serialized
// form of md; identical documents share a fingerprint.
func NewProfileRecord(md probe.Metadata, doc []byte, now time.Time) ProfileRecord {
	return ProfileRecord{
		RunID:       uuid.NewString(),
		Metadata:    md,
		Document:    doc,
		Fingerprint: Fingerprint(doc),
		CreatedAt:   now.UTC(),
	}
}

// Fingerprint returns the hex SHA-256 of doc.
func Fingerprint(doc []byte) string {
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:])
}

// ProfileRow returns the values for ProfilesTable, aligned to its columns.
// Absent optional values are nil.
func (r ProfileRecord) ProfileRow() []any {
	md := r.Metadata
	return []any{
		r.RunID,
		md.Infile,
		string(md.Format),
		nullable(md.Separator),
		nullable(md.Header),
		int64(md.NumRows),
		int64(md.NumFields),
		r.Fingerprint,
		string(r.Document),
		r.CreatedAt,
	}
}

// FieldRows returns one FieldsTable row per field, ordinals starting at 1.
func (r ProfileRecord) FieldRows() [][]any {
	out := make([][]any, 0, len(r.Metadata.Fields))
	for i, f := range r.Metadata.Fields {
		var unique any
		if f.UniqueCount != nil {
			unique = int64(*f.UniqueCount)
		}
		out = append(out, []any{
			r.RunID,
			int64(i + 1),
			f.Name,
			string(f.Type),
			nullable(f.Min),
			nullable(f.Max),
			nullable(f.Mean),
			unique,
		})
	}
	return out
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

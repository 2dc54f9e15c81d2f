package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	apperrors "metaprobe/internal/errors"
	"metaprobe/internal/storage"
)

// maxParams stays under SQLITE_MAX_VARIABLE_NUMBER for old builds too.
const maxParams = 999

// Catalog implements storage.Catalog for SQLite.
//
// SQLite has no timestamp or boolean type: created_at is stored as
// RFC3339Nano text and header as 0/1.
type Catalog struct {
	db *sql.DB
}

func init() {
	storage.RegisterCatalog("sqlite", Open)
}

// Open opens the database file named by cfg.DSN and checks it is reachable.
func Open(ctx context.Context, cfg storage.Config) (storage.Catalog, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, apperrors.ConfigInvalid("sqlite: catalog dsn is empty")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, apperrors.StorageError("sqlite", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, apperrors.StorageError("sqlite", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() { _ = c.db.Close() }

func (c *Catalog) EnsureSchema(ctx context.Context) error {
	for _, t := range storage.Tables() {
		if _, err := c.db.ExecContext(ctx, buildCreateSQL(t)); err != nil {
			return apperrors.StorageError("sqlite", fmt.Errorf("create table %s: %w", t.Name, err))
		}
	}
	return nil
}

// SaveProfile inserts the profile row and its field rows in one transaction.
func (c *Catalog) SaveProfile(ctx context.Context, rec storage.ProfileRecord) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.StorageError("sqlite", err)
	}
	defer func() { _ = tx.Rollback() }()

	q, args := buildInsertSQL(storage.ProfilesTable, [][]any{encodeRow(rec.ProfileRow())})
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return apperrors.StorageError("sqlite", fmt.Errorf("insert profile %s: %w", rec.RunID, err))
	}

	rows := rec.FieldRows()
	for i := range rows {
		rows[i] = encodeRow(rows[i])
	}
	for _, batch := range storage.Batches(rows, maxParams) {
		q, args := buildInsertSQL(storage.FieldsTable, batch)
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return apperrors.StorageError("sqlite", fmt.Errorf("insert fields for %s: %w", rec.RunID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.StorageError("sqlite", err)
	}
	return nil
}

// encodeRow rewrites values SQLite cannot store natively.
func encodeRow(row []any) []any {
	for i, v := range row {
		switch t := v.(type) {
		case time.Time:
			row[i] = t.UTC().Format(time.RFC3339Nano)
		case bool:
			if t {
				row[i] = int64(1)
			} else {
				row[i] = int64(0)
			}
		}
	}
	return row
}

func sqliteType(k storage.ColumnKind) string {
	switch k {
	case storage.ColumnInt, storage.ColumnBool:
		return "INTEGER"
	case storage.ColumnFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

func buildCreateSQL(t storage.TableSpec) string {
	parts := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		def := sqlIdent(c.Name) + " " + sqliteType(c.Kind)
		if !c.Nullable {
			def += " NOT NULL"
		}
		parts = append(parts, def)
	}
	if len(t.PrimaryKey) > 0 {
		pk := make([]string, len(t.PrimaryKey))
		for i, c := range t.PrimaryKey {
			pk[i] = sqlIdent(c)
		}
		parts = append(parts, "PRIMARY KEY ("+strings.Join(pk, ", ")+")")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", sqlIdent(t.Name), strings.Join(parts, ",\n  "))
}

// buildInsertSQL returns a multi-row INSERT with ? placeholders. Every row
// must match t's column count.
func buildInsertSQL(t storage.TableSpec, rows [][]any) (string, []any) {
	cols := t.ColumnNames()

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(t.Name))
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
	}
	b.WriteString(") VALUES ")

	ph := "(" + strings.TrimRight(strings.Repeat("?, ", len(cols)), ", ") + ")"
	args := make([]any, 0, len(rows)*len(cols))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(ph)
		args = append(args, row...)
	}
	return b.String(), args
}

func sqlIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

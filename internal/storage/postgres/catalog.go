package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "metaprobe/internal/errors"
	"metaprobe/internal/storage"
)

// maxParams is the wire protocol limit on bind parameters per statement.
const maxParams = 65535

/*
Catalog implements storage.Catalog for Postgres.

The document column is JSONB so catalog users can query into stored profiles;
created_at is TIMESTAMPTZ.
*/
type Catalog struct {
	pool *pgxpool.Pool
}

func init() {
	storage.RegisterCatalog("postgres", Open)
}

// Open creates a pool for cfg.DSN and pings it.
func Open(ctx context.Context, cfg storage.Config) (storage.Catalog, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, apperrors.ConfigInvalid("postgres: catalog dsn is empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, apperrors.StorageError("postgres", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.StorageError("postgres", err)
	}
	return &Catalog{pool: pool}, nil
}

// Close closes the connection pool.
func (c *Catalog) Close() {
	c.pool.Close()
}

func (c *Catalog) EnsureSchema(ctx context.Context) error {
	for _, t := range storage.Tables() {
		if _, err := c.pool.Exec(ctx, buildCreateSQL(t)); err != nil {
			return apperrors.StorageError("postgres", fmt.Errorf("create table %s: %w", t.Name, err))
		}
	}
	return nil
}

// SaveProfile inserts the profile and its fields in one transaction.
func (c *Catalog) SaveProfile(ctx context.Context, rec storage.ProfileRecord) error {
	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperrors.StorageError("postgres", err)
	}
	defer tx.Rollback(ctx)

	q, args := buildInsertSQL(storage.ProfilesTable, [][]any{rec.ProfileRow()})
	if _, err := tx.Exec(ctx, q, args...); err != nil {
		return apperrors.StorageError("postgres", fmt.Errorf("insert profile %s: %w", rec.RunID, err))
	}

	for _, batch := range storage.Batches(rec.FieldRows(), maxParams) {
		q, args := buildInsertSQL(storage.FieldsTable, batch)
		if _, err := tx.Exec(ctx, q, args...); err != nil {
			return apperrors.StorageError("postgres", fmt.Errorf("insert fields for %s: %w", rec.RunID, err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.StorageError("postgres", err)
	}
	return nil
}

func pgType(k storage.ColumnKind) string {
	switch k {
	case storage.ColumnInt:
		return "BIGINT"
	case storage.ColumnFloat:
		return "DOUBLE PRECISION"
	case storage.ColumnBool:
		return "BOOLEAN"
	case storage.ColumnTime:
		return "TIMESTAMPTZ"
	case storage.ColumnJSON:
		return "JSONB"
	default:
		return "TEXT"
	}
}

func buildCreateSQL(t storage.TableSpec) string {
	parts := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		def := pgIdent(c.Name) + " " + pgType(c.Kind)
		if !c.Nullable {
			def += " NOT NULL"
		}
		parts = append(parts, def)
	}
	if len(t.PrimaryKey) > 0 {
		pk := make([]string, len(t.PrimaryKey))
		for i, c := range t.PrimaryKey {
			pk[i] = pgIdent(c)
		}
		parts = append(parts, "PRIMARY KEY ("+strings.Join(pk, ", ")+")")
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s);`, pgIdent(t.Name), strings.Join(parts, ", "))
}

// buildInsertSQL constructs a multi-row INSERT with $n placeholders numbered
// across all rows.
func buildInsertSQL(t storage.TableSpec, rows [][]any) (string, []any) {
	cols := t.ColumnNames()

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(pgIdent(t.Name))
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(cols))
	p := 1
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range cols {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fmt.Sprintf("$%d", p))
			args = append(args, row[j])
			p++
		}
		b.WriteString(")")
	}
	b.WriteString(";")
	return b.String(), args
}

func pgIdent(s string) string {
	return pgx.Identifier{s}.Sanitize()
}

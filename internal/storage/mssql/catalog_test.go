package mssql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "metaprobe/internal/errors"
	"metaprobe/internal/probe"
	"metaprobe/internal/storage"
)

type fakeTx struct {
	stmts      []string
	failOn     string
	committed  bool
	rolledBack bool
}

func (f *fakeTx) ExecContext(_ context.Context, q string, _ ...any) (sql.Result, error) {
	f.stmts = append(f.stmts, q)
	if f.failOn != "" && strings.Contains(q, f.failOn) {
		return nil, errors.New("violation of PRIMARY KEY constraint")
	}
	return driverResult(1), nil
}

func (f *fakeTx) Commit() error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback() error {
	if !f.committed {
		f.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	tx    *fakeTx
	execs []string
}

func (f *fakeDB) ExecContext(_ context.Context, q string, _ ...any) (sql.Result, error) {
	f.execs = append(f.execs, q)
	return driverResult(0), nil
}

func (f *fakeDB) BeginTx(context.Context, *sql.TxOptions) (txConn, error) { return f.tx, nil }
func (f *fakeDB) Close() error                                           { return nil }

type driverResult int64

func (r driverResult) LastInsertId() (int64, error) { return 0, nil }
func (r driverResult) RowsAffected() (int64, error) { return int64(r), nil }

func record() storage.ProfileRecord {
	n := 2
	md := probe.Metadata{
		Infile: "a.csv", Format: probe.FormatTabular, NumRows: 2, NumFields: 1,
		Fields: []probe.FieldSummary{{Name: "name", Type: probe.FieldString, UniqueCount: &n}},
	}
	return storage.NewProfileRecord(md, []byte("{}"), time.Now())
}

func TestBuildInsertSQL(t *testing.T) {
	t.Parallel()

	tbl := storage.TableSpec{
		Name:    "dbo.metaprobe_fields",
		Columns: []storage.ColumnSpec{{Name: "run_id"}, {Name: "odd]name"}},
	}
	q, args := buildInsertSQL(tbl, [][]any{{"a", 1}, {"b", 2}})
	assert.Equal(t, "INSERT INTO [dbo].[metaprobe_fields] ([run_id], [odd]]name]) VALUES (@p1, @p2), (@p3, @p4);", q)
	assert.Equal(t, []any{"a", 1, "b", 2}, args)
}

func TestBuildCreateSQL_GuardedByObjectID(t *testing.T) {
	t.Parallel()

	q := buildCreateSQL(storage.ProfilesTable)
	assert.True(t, strings.HasPrefix(q, "IF OBJECT_ID(N'metaprobe_profiles', N'U') IS NULL BEGIN CREATE TABLE [metaprobe_profiles] ("))
	assert.Contains(t, q, "[run_id] NVARCHAR(64) NOT NULL")
	assert.Contains(t, q, "[header] BIT NULL")
	assert.Contains(t, q, "[document] NVARCHAR(MAX) NOT NULL")
	assert.Contains(t, q, "[created_at] DATETIMEOFFSET NOT NULL")
	assert.True(t, strings.HasSuffix(q, "PRIMARY KEY ([run_id])); END;"))
}

func TestEnsureSchema_CreatesEveryTable(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	c := &Catalog{db: db}
	require.NoError(t, c.EnsureSchema(context.Background()))
	require.Len(t, db.execs, 2)
	assert.Contains(t, db.execs[0], "[metaprobe_profiles]")
	assert.Contains(t, db.execs[1], "[metaprobe_fields]")
}

func TestSaveProfile_Commits(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{}
	c := &Catalog{db: &fakeDB{tx: tx}}
	require.NoError(t, c.SaveProfile(context.Background(), record()))

	require.Len(t, tx.stmts, 2)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestSaveProfile_RollsBackWhenFieldsFail(t *testing.T) {
	t.Parallel()

	tx := &fakeTx{failOn: "[metaprobe_fields]"}
	c := &Catalog{db: &fakeDB{tx: tx}}
	err := c.SaveProfile(context.Background(), record())

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStorage))
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

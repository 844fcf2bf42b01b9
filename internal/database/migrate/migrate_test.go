// SPDX-License-Identifier: MIT

package migrate

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"testing"
	"testing/fstest"
	"time"

	xglog "github.com/ManuGH/snippets/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestMain(m *testing.M) {
	xglog.Configure(xglog.Config{Output: io.Discard})
	os.Exit(m.Run())
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testSource() fstest.MapFS {
	return fstest.MapFS{
		"0001_create_snippets.up.sql":   {Data: []byte("CREATE TABLE snippets (id TEXT PRIMARY KEY, title TEXT NOT NULL);")},
		"0001_create_snippets.down.sql": {Data: []byte("DROP TABLE snippets;")},
		"0002_add_language.up.sql":      {Data: []byte("ALTER TABLE snippets ADD COLUMN language TEXT NOT NULL DEFAULT 'plaintext';")},
		"0002_add_language.down.sql":    {Data: []byte("ALTER TABLE snippets DROP COLUMN language;")},
		"0003_create_tags.up.sql":       {Data: []byte("CREATE TABLE tags (name TEXT PRIMARY KEY);\nCREATE INDEX idx_tags_name ON tags (name);")},
		"README.md":                     {Data: []byte("ignored")},
	}
}

func newRunner(t *testing.T, db *sql.DB, src fstest.MapFS) *Runner {
	t.Helper()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r, err := NewRunner(db, src, SQLiteDialect, WithClock(func() time.Time { return fixed }), WithStatementLogging(true))
	require.NoError(t, err)
	return r
}

func ids(ms []Migration) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID()
	}
	return out
}

func TestLoad_SortsAndPairs(t *testing.T) {
	ms, err := Load(testSource())
	require.NoError(t, err)

	assert.Equal(t, []string{"1_create_snippets", "2_add_language", "3_create_tags"}, ids(ms))
	assert.NotEmpty(t, ms[0].Down)
	assert.Empty(t, ms[2].Down)
	assert.NotEqual(t, ms[0].Checksum, ms[1].Checksum)
}

func TestLoad_RejectsInconsistentSources(t *testing.T) {
	tests := []struct {
		name string
		src  fstest.MapFS
	}{
		{
			name: "down without up",
			src:  fstest.MapFS{"0001_a.down.sql": {Data: []byte("DROP TABLE a;")}},
		},
		{
			name: "version reused with another name",
			src: fstest.MapFS{
				"0001_a.up.sql": {Data: []byte("CREATE TABLE a (x INT);")},
				"0001_b.up.sql": {Data: []byte("CREATE TABLE b (x INT);")},
			},
		},
		{
			name: "empty up script",
			src:  fstest.MapFS{"0001_a.up.sql": {Data: []byte("  \n")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSource))
		})
	}
}

func TestParseFilename(t *testing.T) {
	v, name, dir, ok := parseFilename("0042_add_index.up.sql")
	require.True(t, ok)
	assert.Equal(t, int64(42), v)
	assert.Equal(t, "add_index", name)
	assert.Equal(t, "up", dir)

	for _, bad := range []string{"add_index.up.sql", "0001.up.sql", "0001_x.sql", "0_x.up.sql", "x_y.down.sql", "0001_x.up.txt"} {
		_, _, _, ok := parseFilename(bad)
		assert.False(t, ok, bad)
	}
}

func TestRunner_UpAppliesPendingInOrder(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	r := newRunner(t, db, testSource())

	applied, err := r.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1_create_snippets", "2_add_language", "3_create_tags"}, ids(applied))

	_, err = db.ExecContext(ctx, `INSERT INTO snippets (id, title) VALUES ('a', 'hello')`)
	require.NoError(t, err)
	var lang string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT language FROM snippets WHERE id = 'a'`).Scan(&lang))
	assert.Equal(t, "plaintext", lang)

	again, err := r.Up(ctx)
	require.NoError(t, err)
	assert.Empty(t, again, "second run must find nothing pending")
}

func TestRunner_StatusAndPending(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	src := testSource()
	delete(src, "0003_create_tags.up.sql")
	first := newRunner(t, db, src)
	_, err := first.Up(ctx)
	require.NoError(t, err)

	r := newRunner(t, db, testSource())
	states, err := r.Status(ctx)
	require.NoError(t, err)
	require.Len(t, states, 3)
	assert.True(t, states[0].Applied)
	assert.True(t, states[1].Applied)
	assert.False(t, states[2].Applied)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), states[0].AppliedAt)
	assert.True(t, states[2].AppliedAt.IsZero())

	n, err := r.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRunner_DownRevertsLatest(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	src := testSource()
	delete(src, "0003_create_tags.up.sql")
	r := newRunner(t, db, src)
	_, err := r.Up(ctx)
	require.NoError(t, err)

	m, err := r.Down(ctx)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "2_add_language", m.ID())

	n, err := r.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	m, err = r.Down(ctx)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "1_create_snippets", m.ID())

	m, err = r.Down(ctx)
	require.NoError(t, err)
	assert.Nil(t, m, "nothing left to revert")
}

func TestRunner_DownIrreversible(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	r := newRunner(t, db, testSource())
	_, err := r.Up(ctx)
	require.NoError(t, err)

	_, err = r.Down(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIrreversible))
}

func TestRunner_FailedMigrationRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	src := testSource()
	src["0002_add_language.up.sql"] = &fstest.MapFile{Data: []byte("ALTER TABLE snippets ADD COLUMN language TEXT; SELECT * FROM missing_table;")}
	r := newRunner(t, db, src)

	applied, err := r.Up(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply 2_add_language")
	assert.Equal(t, []string{"1_create_snippets"}, ids(applied))

	states, err := r.Status(ctx)
	require.NoError(t, err)
	assert.True(t, states[0].Applied)
	assert.False(t, states[1].Applied)

	// The partial ALTER was rolled back with its transaction.
	_, err = db.ExecContext(ctx, `SELECT language FROM snippets`)
	assert.Error(t, err)
}

func TestRunner_DetectsEditedMigration(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	_, err := newRunner(t, db, testSource()).Up(ctx)
	require.NoError(t, err)

	edited := testSource()
	edited["0001_create_snippets.up.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE snippets (id TEXT);")}
	_, err = newRunner(t, db, edited).Up(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChecksumMismatch))
}

func TestRunner_DetectsUnknownVersion(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	_, err := newRunner(t, db, testSource()).Up(ctx)
	require.NoError(t, err)

	shrunk := testSource()
	delete(shrunk, "0003_create_tags.up.sql")
	_, err = newRunner(t, db, shrunk).Status(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownVersion))
}

func TestRunner_CustomTable(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	r, err := NewRunner(db, testSource(), SQLiteDialect, WithTable("app_migrations"))
	require.NoError(t, err)

	_, err = r.Up(ctx)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM app_migrations`).Scan(&n))
	assert.Equal(t, 3, n)
}

func TestDialectPlaceholders(t *testing.T) {
	assert.Equal(t, "$3", PostgresDialect.Placeholder(3))
	assert.Equal(t, "?", SQLiteDialect.Placeholder(3))
	assert.NotEmpty(t, PostgresDialect.Lock)
	assert.Empty(t, SQLiteDialect.Lock)
}

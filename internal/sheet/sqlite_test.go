package sheet

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func newTestSheet(t *testing.T, headers Row) *SQLiteSheet {
	t.Helper()
	s := newTestStore(t)
	sh, err := s.OpenSheet(context.Background(), "Test", headers)
	require.NoError(t, err)
	return sh
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Running migrate again should be a no-op
	err := s.Migrate(ctx)
	assert.NoError(t, err)
}

func TestOpenSheet_SeedsHeaderOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sh, err := s.OpenSheet(ctx, "Issues", Row{"Issue ID", "Status"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Issue ID", "Status"}, sh.Headers())

	// Reopening must not add a second header row
	sh2, err := s.OpenSheet(ctx, "Issues", Row{"Issue ID", "Status"})
	require.NoError(t, err)

	count, err := sh2.RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpenSheet_KeepsStoredHeaders(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.OpenSheet(ctx, "Issues", Row{"Issue ID", "Status"})
	require.NoError(t, err)

	// A second open with different headers sees the stored ones.
	sh, err := s.OpenSheet(ctx, "Issues", Row{"Other"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Issue ID", "Status"}, sh.Headers())
}

func TestOpenSheet_CapsAndStripsHeaders(t *testing.T) {
	long := make(Row, MaxColumns+5)
	for i := range long {
		long[i] = "h"
	}
	long[3] = "" // empty header cells are not recognized

	sh := newTestSheet(t, long)
	assert.Len(t, sh.Headers(), MaxColumns-1)
}

func TestAppendAndReadRows(t *testing.T) {
	sh := newTestSheet(t, Row{"A", "B"})
	ctx := context.Background()

	require.NoError(t, sh.AppendRow(ctx, Row{"1", "one"}))
	require.NoError(t, sh.AppendRow(ctx, Row{"2", "two"}))

	last, err := sh.LastRowRange(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, last.Row)
	assert.False(t, last.IsHeader())

	row, err := sh.ReadRow(ctx, last)
	require.NoError(t, err)
	assert.Equal(t, Row{"2", "two"}, row)

	row, err = sh.ReadRow(ctx, Range{Row: 2})
	require.NoError(t, err)
	assert.Equal(t, Row{"1", "one"}, row)
}

func TestLastRowRange_EmptySheetIsHeader(t *testing.T) {
	sh := newTestSheet(t, Row{"A"})

	last, err := sh.LastRowRange(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, last.Row)
	assert.True(t, last.IsHeader())
}

func TestFindRowRange(t *testing.T) {
	sh := newTestSheet(t, Row{"Issue ID", "Status"})
	ctx := context.Background()

	require.NoError(t, sh.AppendRow(ctx, Row{"HELP-1", "OPEN"}))
	require.NoError(t, sh.AppendRow(ctx, Row{"HELP-2", "CLOSED"}))

	r, ok, err := sh.FindRowRange(ctx, "Issue ID", "HELP-2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, r.Row)

	_, ok, err = sh.FindRowRange(ctx, "Issue ID", "HELP-9")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = sh.FindRowRange(ctx, "Nope", "x")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestWriteRow_OverwritesInPlace(t *testing.T) {
	sh := newTestSheet(t, Row{"A", "B"})
	ctx := context.Background()

	require.NoError(t, sh.AppendRow(ctx, Row{"1", "one"}))

	err := sh.WriteRow(ctx, Range{Row: 2}, Row{"1", "uno"})
	require.NoError(t, err)

	row, err := sh.ReadRow(ctx, Range{Row: 2})
	require.NoError(t, err)
	assert.Equal(t, Row{"1", "uno"}, row)

	count, err := sh.RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Writing a row that does not exist is an error, not an append.
	err = sh.WriteRow(ctx, Range{Row: 9}, Row{"x"})
	assert.Error(t, err)
}

func TestDeleteDataRows_EvictsOldestAndKeepsHeader(t *testing.T) {
	sh := newTestSheet(t, Row{"Time", "Message"})
	ctx := context.Background()

	for _, m := range []string{"first", "second", "third", "fourth"} {
		require.NoError(t, sh.AppendRow(ctx, Row{"t", m}))
	}

	require.NoError(t, sh.DeleteDataRows(ctx, 2))

	count, err := sh.RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count) // header + two surviving rows

	row, err := sh.ReadRow(ctx, Range{Row: 2})
	require.NoError(t, err)
	assert.Equal(t, Row{"t", "third"}, row)

	row, err = sh.ReadRow(ctx, Range{Row: 1})
	require.NoError(t, err)
	assert.Equal(t, Row{"Time", "Message"}, row)

	// Appends continue from the shifted positions.
	require.NoError(t, sh.AppendRow(ctx, Row{"t", "fifth"}))
	last, err := sh.LastRowRange(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, last.Row)
}

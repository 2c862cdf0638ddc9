package tracker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/issuedesk/internal/models"
	"github.com/joescharf/issuedesk/internal/sheet"
)

func newTestIssuesSheet(t *testing.T) *sheet.SQLiteSheet {
	t.Helper()
	ctx := context.Background()

	s, err := sheet.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(ctx))

	sh, err := s.OpenSheet(ctx, "Issues", IssueHeaders)
	require.NoError(t, err)
	return sh
}

func newTestTable(t *testing.T) *IssueTable {
	t.Helper()
	table, err := NewIssueTable(newTestIssuesSheet(t))
	require.NoError(t, err)
	return table
}

func testIssue(num int) *models.Issue {
	return models.NewIssue(
		models.IssueID{Key: "HELP", Num: num},
		"a@x.com",
		time.Date(2023, 9, 9, 1, 1, 1, 0, time.Local),
	)
}

func TestNewIssueTable_MissingColumn(t *testing.T) {
	ctx := context.Background()
	s, err := sheet.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(ctx))

	sh, err := s.OpenSheet(ctx, "Issues", sheet.Row{"Issue ID", "Submitter"})
	require.NoError(t, err)

	_, err = NewIssueTable(sh)
	require.Error(t, err)
	assert.ErrorIs(t, err, sheet.ErrColumnNotFound)
}

func TestFindByID(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()

	// Empty table
	_, err := table.FindByID(ctx, models.IssueID{Key: "HELP", Num: 1})
	assert.ErrorIs(t, err, ErrIssueNotFound)

	require.NoError(t, table.Insert(ctx, testIssue(1)))
	require.NoError(t, table.Insert(ctx, testIssue(2)))

	got, err := table.FindByID(ctx, models.IssueID{Key: "HELP", Num: 2})
	require.NoError(t, err)
	assert.Equal(t, "HELP-2", got.ID.String())
	assert.Equal(t, models.StatusOpen, got.Status)

	// Absent id
	_, err = table.FindByID(ctx, models.IssueID{Key: "HELP", Num: 9})
	assert.ErrorIs(t, err, ErrIssueNotFound)
}

func TestFindLatest(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()

	// Header-only sheet has no latest issue.
	got, err := table.FindLatest(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, table.Insert(ctx, testIssue(1)))
	got, err = table.FindLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.ID.Num)

	require.NoError(t, table.Insert(ctx, testIssue(2)))
	got, err = table.FindLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.ID.Num)
}

func TestUpdate(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()

	// Non-existent id
	err := table.Update(ctx, testIssue(1))
	assert.ErrorIs(t, err, ErrIssueNotFound)

	require.NoError(t, table.Insert(ctx, testIssue(1)))
	require.NoError(t, table.Insert(ctx, testIssue(2)))

	issue := testIssue(1)
	issue.Assignee = "b@x.com"
	issue.Status = models.StatusInProgress
	require.NoError(t, table.Update(ctx, issue))

	got, err := table.FindByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", got.Assignee)
	assert.Equal(t, models.StatusInProgress, got.Status)

	// In-place overwrite: row count and positions unchanged.
	count, err := table.Sheet().(*sheet.SQLiteSheet).RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	r, ok, err := table.Sheet().FindRowRange(ctx, HeaderIssueID, "HELP-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, r.Row)
}

func TestList(t *testing.T) {
	table := newTestTable(t)
	ctx := context.Background()

	issues, err := table.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, issues)

	require.NoError(t, table.Insert(ctx, testIssue(1)))
	require.NoError(t, table.Insert(ctx, testIssue(2)))

	issues, err = table.List(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, "HELP-1", issues[0].ID.String())
	assert.Equal(t, "HELP-2", issues[1].ID.String())
}

func TestStatusColumnIndex(t *testing.T) {
	table := newTestTable(t)

	idx, err := table.StatusColumnIndex()
	require.NoError(t, err)
	assert.Equal(t, 5, idx, "1-based position of the Status header")
}

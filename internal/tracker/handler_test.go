package tracker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/issuedesk/internal/models"
	"github.com/joescharf/issuedesk/internal/sheet"
)

func TestHandleSubmission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	issue, err := env.handler.HandleSubmission(ctx, testSubmission())
	require.NoError(t, err)
	assert.Equal(t, "HELP-1", issue.ID.String())

	// The raw payload is recorded before the issue is created.
	last, err := env.raw.LastRowRange(ctx)
	require.NoError(t, err)
	row, err := env.raw.ReadRow(ctx, last)
	require.NoError(t, err)
	require.Len(t, row, len(SubmissionHeaders))
	assert.NotEmpty(t, row[0], "record id")
	assert.Equal(t, "2023/09/09 01:01:01", row[1])
	assert.Equal(t, "a@x.com", row[2])
	assert.Equal(t, "printer on fire", row[3])
	assert.Equal(t, "2023/09/20", row[7])
}

func TestHandleSubmission_RequiresEmail(t *testing.T) {
	env := newTestEnv(t)

	sub := testSubmission()
	sub.SubmitterEmail = ""
	_, err := env.handler.HandleSubmission(context.Background(), sub)
	require.Error(t, err)

	// Nothing recorded, nothing created.
	count, err := env.raw.RowCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHandleStatusEdit_UpdatesDocTitle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	issue, err := env.handler.HandleSubmission(ctx, testSubmission())
	require.NoError(t, err)

	statusCol, err := env.table.StatusColumnIndex()
	require.NoError(t, err)

	err = env.handler.HandleStatusEdit(ctx, issue.ID, models.StatusClosed, 2, statusCol)
	require.NoError(t, err)

	title, err := env.docs.Title(ctx, mustOpen(t, env.docs, issue.DocURL))
	require.NoError(t, err)
	assert.Equal(t, "[CLOSED] HELP-1", title)
}

func TestHandleStatusEdit_IgnoresHeaderRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	issue, err := env.handler.HandleSubmission(ctx, testSubmission())
	require.NoError(t, err)

	err = env.handler.HandleStatusEdit(ctx, issue.ID, models.StatusClosed, 1, 5)
	require.NoError(t, err)

	title, err := env.docs.Title(ctx, mustOpen(t, env.docs, issue.DocURL))
	require.NoError(t, err)
	assert.Equal(t, "[OPEN] HELP-1", title, "header edits change nothing")
}

func TestHandleStatusEdit_IgnoresOtherColumns(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	issue, err := env.handler.HandleSubmission(ctx, testSubmission())
	require.NoError(t, err)

	err = env.handler.HandleStatusEdit(ctx, issue.ID, models.StatusClosed, 2, 4)
	require.NoError(t, err)

	title, err := env.docs.Title(ctx, mustOpen(t, env.docs, issue.DocURL))
	require.NoError(t, err)
	assert.Equal(t, "[OPEN] HELP-1", title, "only Status column edits fire")
}

func TestEditStatusCell(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	issue, err := env.handler.HandleSubmission(ctx, testSubmission())
	require.NoError(t, err)

	err = env.handler.EditStatusCell(ctx, issue.ID, models.StatusClosed)
	require.NoError(t, err)

	// The emulated edit writes the cell, the trigger renames the doc.
	got, err := env.table.FindByID(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, got.Status)

	title, err := env.docs.Title(ctx, mustOpen(t, env.docs, issue.DocURL))
	require.NoError(t, err)
	assert.Equal(t, "[CLOSED] HELP-1", title)
}

func TestEditStatusCell_UnknownIssue(t *testing.T) {
	env := newTestEnv(t)

	err := env.handler.EditStatusCell(context.Background(), models.IssueID{Key: "HELP", Num: 4}, models.StatusClosed)
	assert.ErrorIs(t, err, ErrIssueNotFound)
}

func TestParseSubmission(t *testing.T) {
	sub, err := ParseSubmission("a@x.com", "2023/09/09 01:01:01", "s", "d", "r", "high", "2023/09/20")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sub.SubmitterEmail)
	assert.Equal(t, "2023/09/09 01:01:01", sub.CreateTime.Format(models.TimeFormat))
	assert.Equal(t, "2023/09/20", sub.DesiredDeadline.Format(models.DateFormat))

	// Empty timestamp defaults to now, empty deadline stays absent.
	sub, err = ParseSubmission("a@x.com", "", "s", "", "", "", "")
	require.NoError(t, err)
	assert.False(t, sub.CreateTime.IsZero())
	assert.True(t, sub.DesiredDeadline.IsZero())

	_, err = ParseSubmission("", "", "s", "", "", "", "")
	assert.Error(t, err, "email is required")

	_, err = ParseSubmission("a@x.com", "not a time", "s", "", "", "", "")
	assert.Error(t, err)

	_, err = ParseSubmission("a@x.com", "", "s", "", "", "", "soon")
	assert.Error(t, err)
}

var _ sheet.Sheet = (*failingAppendSheet)(nil)

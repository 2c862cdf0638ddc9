package tracker

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/joescharf/issuedesk/internal/applog"
	"github.com/joescharf/issuedesk/internal/models"
	"github.com/joescharf/issuedesk/internal/sheet"
)

// Handler is the tracker's synchronous entry points. Whatever the trigger
// source is (CLI invocation, MCP tool call), each event runs one handler
// call to completion before the next begins.
type Handler struct {
	repo  *Repository
	table *IssueTable
	raw   sheet.Sheet
	log   *applog.Logger
}

// NewHandler wires the entry points.
func NewHandler(repo *Repository, table *IssueTable, rawSheet sheet.Sheet, logger *applog.Logger) *Handler {
	if logger == nil {
		logger = applog.Nop()
	}
	return &Handler{repo: repo, table: table, raw: rawSheet, log: logger}
}

// newULID generates a record id for the raw submissions sheet.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// HandleSubmission records the raw payload and creates the issue.
func (h *Handler) HandleSubmission(ctx context.Context, sub Submission) (*models.Issue, error) {
	h.log.Log(ctx, "submit new issue: submitter=%s", sub.SubmitterEmail)

	if sub.SubmitterEmail == "" {
		return nil, fmt.Errorf("submitter email is required")
	}

	if h.raw != nil {
		if err := h.raw.AppendRow(ctx, encodeSubmission(newULID(), sub)); err != nil {
			return nil, fmt.Errorf("record raw submission: %w", err)
		}
	}

	return h.repo.CreateFromSubmission(ctx, sub)
}

// EditStatusCell emulates a human editing the Status cell on the Issues
// sheet: the cell is written here, host-side, and then the status-edit
// trigger fires. The repository itself never writes the cell.
func (h *Handler) EditStatusCell(ctx context.Context, id models.IssueID, newStatus string) error {
	sh := h.table.Sheet()

	r, ok, err := sh.FindRowRange(ctx, HeaderIssueID, id.String())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrIssueNotFound, id)
	}

	statusCol, err := h.table.StatusColumnIndex()
	if err != nil {
		return err
	}

	row, err := sh.ReadRow(ctx, r)
	if err != nil {
		return err
	}
	if len(row) < statusCol {
		return fmt.Errorf("%w: %d cells", ErrMalformedRow, len(row))
	}
	row[statusCol-1] = newStatus
	if err := sh.WriteRow(ctx, r, row); err != nil {
		return err
	}

	return h.HandleStatusEdit(ctx, id, newStatus, r.Row, statusCol)
}

// HandleStatusEdit reacts to one edited cell of the Issues sheet. Edits on
// the header row or outside the Status column are ignored. editedRow and
// editedCol are 1-based sheet positions.
func (h *Handler) HandleStatusEdit(ctx context.Context, id models.IssueID, newStatus string, editedRow, editedCol int) error {
	if editedRow < 2 {
		h.log.Log(ctx, "ignoring edit on header row %d", editedRow)
		return nil
	}

	statusCol, err := h.table.StatusColumnIndex()
	if err != nil {
		return err
	}
	if editedCol != statusCol {
		h.log.Log(ctx, "ignoring edit on column %d (status is %d)", editedCol, statusCol)
		return nil
	}

	return h.repo.ChangeStatus(ctx, id, newStatus)
}

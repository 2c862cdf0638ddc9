package tracker

import (
	"context"
	"fmt"

	"github.com/joescharf/issuedesk/internal/models"
	"github.com/joescharf/issuedesk/internal/sheet"
)

// IssueTable persists issues as rows of the Issues sheet. It owns the
// row⇄issue mapping; nothing else reads or writes issue rows directly.
type IssueTable struct {
	sheet sheet.Sheet
}

// NewIssueTable wraps the Issues sheet, validating the header→field mapping
// up front so a missing column fails here rather than mid-operation.
func NewIssueTable(s sheet.Sheet) (*IssueTable, error) {
	for _, name := range []string{HeaderIssueID, HeaderStatus} {
		if !hasHeader(s.Headers(), name) {
			return nil, fmt.Errorf("%w: %q in sheet %s", sheet.ErrColumnNotFound, name, s.Name())
		}
	}
	return &IssueTable{sheet: s}, nil
}

func hasHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}

// Insert appends the issue as a new row. Uniqueness of the id is not
// checked here; the allocator is the only writer of new ids.
func (t *IssueTable) Insert(ctx context.Context, issue *models.Issue) error {
	if err := t.sheet.AppendRow(ctx, encodeIssue(issue)); err != nil {
		return fmt.Errorf("insert issue %s: %w", issue.ID, err)
	}
	return nil
}

// FindByID returns the issue whose id column matches. The id column is
// scanned linearly; the sheet is expected to stay small.
func (t *IssueTable) FindByID(ctx context.Context, id models.IssueID) (*models.Issue, error) {
	r, ok, err := t.sheet.FindRowRange(ctx, HeaderIssueID, id.String())
	if err != nil {
		return nil, fmt.Errorf("find issue %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIssueNotFound, id)
	}

	row, err := t.sheet.ReadRow(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("find issue %s: %w", id, err)
	}
	return decodeIssue(row)
}

// FindLatest returns the issue on the last physical row, or nil when the
// sheet holds only its header. Under append-only inserts the last row also
// carries the highest id, which is what the allocator relies on.
func (t *IssueTable) FindLatest(ctx context.Context) (*models.Issue, error) {
	r, err := t.sheet.LastRowRange(ctx)
	if err != nil {
		return nil, fmt.Errorf("find latest issue: %w", err)
	}
	if r.IsHeader() {
		return nil, nil
	}

	row, err := t.sheet.ReadRow(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("find latest issue: %w", err)
	}
	return decodeIssue(row)
}

// List returns all issues in physical row order.
func (t *IssueTable) List(ctx context.Context) ([]*models.Issue, error) {
	last, err := t.sheet.LastRowRange(ctx)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}

	var issues []*models.Issue
	for pos := 2; pos <= last.Row; pos++ {
		row, err := t.sheet.ReadRow(ctx, sheet.Range{Row: pos})
		if err != nil {
			return nil, fmt.Errorf("list issues: %w", err)
		}
		issue, err := decodeIssue(row)
		if err != nil {
			return nil, fmt.Errorf("list issues: row %d: %w", pos, err)
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// Update overwrites the issue's existing row in place. The row keeps its
// position; updates never append.
func (t *IssueTable) Update(ctx context.Context, issue *models.Issue) error {
	r, ok, err := t.sheet.FindRowRange(ctx, HeaderIssueID, issue.ID.String())
	if err != nil {
		return fmt.Errorf("update issue %s: %w", issue.ID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrIssueNotFound, issue.ID)
	}

	if err := t.sheet.WriteRow(ctx, r, encodeIssue(issue)); err != nil {
		return fmt.Errorf("update issue %s: %w", issue.ID, err)
	}
	return nil
}

// StatusColumnIndex returns the 1-based position of the Status column,
// used by the status-edit trigger to check which column an edit targeted.
func (t *IssueTable) StatusColumnIndex() (int, error) {
	for i, h := range t.sheet.Headers() {
		if h == HeaderStatus {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %q in sheet %s", sheet.ErrColumnNotFound, HeaderStatus, t.sheet.Name())
}

// Sheet exposes the underlying sheet for host-side concerns (the CLI's
// emulated cell edit); tracker code itself goes through the table.
func (t *IssueTable) Sheet() sheet.Sheet {
	return t.sheet
}

package tracker

import (
	"fmt"
	"time"

	"github.com/joescharf/issuedesk/internal/models"
	"github.com/joescharf/issuedesk/internal/sheet"
)

// Column layout of the Issues sheet. The order is the persisted wire
// format: existing stores break if it changes.
var IssueHeaders = sheet.Row{
	HeaderIssueID,
	"Submitter",
	"Created",
	"Assignee",
	HeaderStatus,
	"Document URL",
}

// Header names the table looks up by value rather than position.
const (
	HeaderIssueID = "Issue ID"
	HeaderStatus  = "Status"
)

const (
	colIssueID = iota
	colSubmitter
	colCreated
	colAssignee
	colStatus
	colDocURL

	issueColumns = 6
)

// encodeIssue maps an issue onto its fixed 6-cell row. Absent assignee and
// document URL become empty cells.
func encodeIssue(issue *models.Issue) sheet.Row {
	return sheet.Row{
		issue.ID.String(),
		issue.Submitter,
		issue.CreateTime.Format(models.TimeFormat),
		issue.Assignee,
		issue.Status,
		issue.DocURL,
	}
}

// decodeIssue maps a row back into an issue. Empty assignee/doc cells decode
// to absent fields, so decode(encode(x)) == x.
func decodeIssue(row sheet.Row) (*models.Issue, error) {
	if len(row) < issueColumns {
		return nil, fmt.Errorf("%w: %d cells, want %d", ErrMalformedRow, len(row), issueColumns)
	}

	id, err := models.ParseIssueID(row[colIssueID])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}

	createTime, err := time.ParseInLocation(models.TimeFormat, row[colCreated], time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: bad create time %q", ErrMalformedRow, row[colCreated])
	}

	return &models.Issue{
		ID:         id,
		Submitter:  row[colSubmitter],
		CreateTime: createTime,
		Assignee:   row[colAssignee],
		Status:     row[colStatus],
		DocURL:     row[colDocURL],
	}, nil
}

package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedID indicates an issue id string that does not match "KEY-N".
var ErrMalformedID = errors.New("malformed issue id")

// Timestamp formats used across the sheet rows and documents. These mirror
// the intake form's own formatting and are part of the persisted contract.
const (
	TimeFormat = "2006/01/02 15:04:05"
	DateFormat = "2006/01/02"
)

// IssueID identifies an issue: a short project key plus a sequence number
// that increases monotonically within that key. The canonical string form
// is "KEY-N", e.g. "HELP-12".
type IssueID struct {
	Key string
	Num int
}

// ParseIssueID parses the canonical "KEY-N" form. It fails with
// ErrMalformedID when the string does not contain exactly one separator,
// the suffix is not an integer, or the number is not positive.
func ParseIssueID(s string) (IssueID, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return IssueID{}, fmt.Errorf("%w: %q", ErrMalformedID, s)
	}
	num, err := strconv.Atoi(parts[1])
	if err != nil {
		return IssueID{}, fmt.Errorf("%w: %q", ErrMalformedID, s)
	}
	if num < 1 {
		return IssueID{}, fmt.Errorf("%w: %q", ErrMalformedID, s)
	}
	return IssueID{Key: parts[0], Num: num}, nil
}

// String returns the canonical "KEY-N" form.
func (id IssueID) String() string {
	return fmt.Sprintf("%s-%d", id.Key, id.Num)
}

// Next returns the following id in the same key. The receiver is unchanged.
func (id IssueID) Next() IssueID {
	return IssueID{Key: id.Key, Num: id.Num + 1}
}

// IsZero reports whether the id is the zero value (no issue).
func (id IssueID) IsZero() bool {
	return id.Key == "" && id.Num == 0
}

// Well-known status values. Status is a free-form string by design: the
// tracker records whatever the surrounding workflow writes and imposes no
// transition rules.
const (
	StatusOpen       = "OPEN"
	StatusInProgress = "IN PROGRESS"
	StatusClosed     = "CLOSED"
)

// Issue is the aggregate root for one tracked item. The id and creation
// time are fixed at creation; status changes through the repository, and
// assignee/doc URL change only as side effects of defined operations.
type Issue struct {
	ID         IssueID
	Submitter  string // submitter email, required
	CreateTime time.Time
	Assignee   string // empty = unassigned
	Status     string
	DocURL     string // companion document URL, empty until linked
}

// NewIssue builds a freshly submitted issue in the initial OPEN status.
func NewIssue(id IssueID, submitter string, createTime time.Time) *Issue {
	return &Issue{
		ID:         id,
		Submitter:  submitter,
		CreateTime: createTime,
		Status:     StatusOpen,
	}
}

package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/joescharf/issuedesk/internal/models"
	"github.com/joescharf/issuedesk/internal/sheet"
)

// Column layout of the raw submissions sheet. One row is appended per
// handled submission, before the issue itself is created.
var SubmissionHeaders = sheet.Row{
	"ID",
	"Timestamp",
	"Email Address",
	"Summary",
	"Details",
	"Reason",
	"Severity",
	"Desired Deadline",
}

// Submission is one intake-form payload.
type Submission struct {
	SubmitterEmail  string
	CreateTime      time.Time
	Summary         string
	Details         string
	Reason          string
	Severity        string
	DesiredDeadline time.Time // zero = none given
}

// ParseSubmission builds a Submission from the raw string fields of an
// intake form. An empty timestamp means "now"; an empty deadline means no
// deadline. The submitter email is required.
func ParseSubmission(email, timestamp, summary, details, reason, severity, deadline string) (Submission, error) {
	sub := Submission{
		SubmitterEmail: strings.TrimSpace(email),
		Summary:        summary,
		Details:        details,
		Reason:         reason,
		Severity:       severity,
	}
	if sub.SubmitterEmail == "" {
		return Submission{}, fmt.Errorf("submitter email is required")
	}

	if timestamp == "" {
		sub.CreateTime = time.Now()
	} else {
		t, err := time.ParseInLocation(models.TimeFormat, timestamp, time.Local)
		if err != nil {
			return Submission{}, fmt.Errorf("bad timestamp %q: want %s", timestamp, models.TimeFormat)
		}
		sub.CreateTime = t
	}

	if deadline != "" {
		d, err := time.ParseInLocation(models.DateFormat, deadline, time.Local)
		if err != nil {
			return Submission{}, fmt.Errorf("bad deadline %q: want %s", deadline, models.DateFormat)
		}
		sub.DesiredDeadline = d
	}

	return sub, nil
}

// encodeSubmission maps a submission onto its raw-sheet row. The record id
// is generated by the caller.
func encodeSubmission(recordID string, sub Submission) sheet.Row {
	deadline := ""
	if !sub.DesiredDeadline.IsZero() {
		deadline = sub.DesiredDeadline.Format(models.DateFormat)
	}
	return sheet.Row{
		recordID,
		sub.CreateTime.Format(models.TimeFormat),
		sub.SubmitterEmail,
		sub.Summary,
		sub.Details,
		sub.Reason,
		sub.Severity,
		deadline,
	}
}

package tracker

import "errors"

// Error taxonomy of the tracker core. Callers match with errors.Is; bad id
// strings surface as models.ErrMalformedID and missing sheet columns as
// sheet.ErrColumnNotFound.
var (
	// ErrMalformedRow indicates a sheet row that cannot be decoded into
	// an issue: too few cells, a bad id, or an unparseable timestamp.
	ErrMalformedRow = errors.New("malformed issue row")

	// ErrIssueNotFound indicates a lookup that yielded no issue where
	// one was required.
	ErrIssueNotFound = errors.New("issue not found")

	// ErrDocumentUpdate indicates a failure to resolve or rename the
	// companion document.
	ErrDocumentUpdate = errors.New("document update failed")
)

package tracker

import "github.com/joescharf/issuedesk/internal/models"

// AllocateNextID returns the id for the next issue. With no current maximum
// (zero id, empty table) the sequence starts at defaultKey-1; otherwise the
// current maximum is incremented within its key.
//
// Pure and deterministic. Uniqueness holds only under the single-writer
// model: two submissions racing to read the current maximum would allocate
// the same id, and nothing here defends against that.
func AllocateNextID(currentMax models.IssueID, defaultKey string) models.IssueID {
	if currentMax.IsZero() {
		return models.IssueID{Key: defaultKey, Num: 1}
	}
	return currentMax.Next()
}

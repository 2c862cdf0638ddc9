package tracker

import (
	"context"
	"fmt"
	"regexp"

	"github.com/joescharf/issuedesk/internal/applog"
	"github.com/joescharf/issuedesk/internal/doc"
	"github.com/joescharf/issuedesk/internal/models"
)

// statusMarker matches the leading "[STATUS]" marker of a document title.
// Titles that do not start with a marker pass through rename unchanged.
var statusMarker = regexp.MustCompile(`^\[[a-zA-Z0-9]+\]`)

// DocTitle is the display-title convention for companion documents.
func DocTitle(issue *models.Issue) string {
	return fmt.Sprintf("[%s] %s", issue.Status, issue.ID)
}

// Settings holds the repository's per-deployment knobs.
type Settings struct {
	// IssueKey is the id namespace for newly allocated issues.
	IssueKey string

	// DefaultEditor and DefaultViewer are granted on every new document,
	// next to the submitter. Either may be empty.
	DefaultEditor string
	DefaultViewer string

	// TitleFunc builds the companion document title. Nil means DocTitle.
	TitleFunc func(*models.Issue) string
}

// Repository realizes the issue aggregate: it allocates ids, keeps the
// issue row and its companion document consistent, and is the only writer
// of issues. Operations run synchronously under the host's single-writer
// model; there are no transactions and no retries.
type Repository struct {
	table    *IssueTable
	docs     doc.Store
	folder   doc.Folder
	log      *applog.Logger
	settings Settings
}

// NewRepository wires the repository from its collaborators.
func NewRepository(table *IssueTable, docs doc.Store, folder doc.Folder, logger *applog.Logger, settings Settings) *Repository {
	if settings.TitleFunc == nil {
		settings.TitleFunc = DocTitle
	}
	if logger == nil {
		logger = applog.Nop()
	}
	return &Repository{
		table:    table,
		docs:     docs,
		folder:   folder,
		log:      logger,
		settings: settings,
	}
}

// CreateFromSubmission allocates the next id, creates and files the
// companion document, and persists the new issue row. The returned issue
// is fully populated.
//
// If the row insert fails after the document was created, the document is
// orphaned: there is no compensating cleanup, matching the source system.
func (r *Repository) CreateFromSubmission(ctx context.Context, sub Submission) (*models.Issue, error) {
	latest, err := r.table.FindLatest(ctx)
	if err != nil {
		return nil, err
	}
	var maxID models.IssueID
	if latest != nil {
		maxID = latest.ID
	}

	issue := models.NewIssue(
		AllocateNextID(maxID, r.settings.IssueKey),
		sub.SubmitterEmail,
		sub.CreateTime,
	)
	r.log.Log(ctx, "new issue: id=%s submitter=%s", issue.ID, issue.Submitter)

	ref, err := r.docs.Create(ctx, r.settings.TitleFunc(issue))
	if err != nil {
		return nil, fmt.Errorf("create issue doc: %w", err)
	}
	if err := r.folder.AddFile(ctx, ref); err != nil {
		return nil, fmt.Errorf("file issue doc: %w", err)
	}

	if r.settings.DefaultEditor != "" {
		if err := r.docs.AddEditor(ctx, ref, r.settings.DefaultEditor); err != nil {
			return nil, fmt.Errorf("grant editor: %w", err)
		}
	}
	if err := r.docs.AddEditor(ctx, ref, issue.Submitter); err != nil {
		return nil, fmt.Errorf("grant editor: %w", err)
	}
	if r.settings.DefaultViewer != "" {
		if err := r.docs.AddViewer(ctx, ref, r.settings.DefaultViewer); err != nil {
			return nil, fmt.Errorf("grant viewer: %w", err)
		}
	}

	if err := r.docs.AppendBody(ctx, ref, doc.Body{
		Submitter:       sub.SubmitterEmail,
		CreateTime:      sub.CreateTime,
		Severity:        sub.Severity,
		DesiredDeadline: sub.DesiredDeadline,
		Summary:         sub.Summary,
		Details:         sub.Details,
		Reason:          sub.Reason,
	}); err != nil {
		return nil, fmt.Errorf("write issue doc: %w", err)
	}

	issue.DocURL = ref.URL()
	if err := r.table.Insert(ctx, issue); err != nil {
		// The document already exists and stays behind.
		r.log.Log(ctx, "insert failed after doc creation, orphaned doc: %s", issue.DocURL)
		return nil, err
	}

	r.log.Log(ctx, "created issue %s (doc: %s)", issue.ID, issue.DocURL)
	return issue, nil
}

// ChangeStatus rewrites the leading status marker of the companion
// document's title. The row's own Status cell is deliberately left alone:
// the cell is written by whoever edits the sheet, and the document title is
// the visible status marker this operation maintains.
func (r *Repository) ChangeStatus(ctx context.Context, id models.IssueID, newStatus string) error {
	r.log.Log(ctx, "change issue status: id=%s status=%s", id, newStatus)

	issue, err := r.table.FindByID(ctx, id)
	if err != nil {
		return err
	}

	ref, err := r.docs.OpenByURL(ctx, issue.DocURL)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrDocumentUpdate, issue.DocURL, err)
	}
	title, err := r.docs.Title(ctx, ref)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDocumentUpdate, err)
	}

	newTitle := statusMarker.ReplaceAllString(title, "["+newStatus+"]")
	if err := r.docs.Rename(ctx, ref, newTitle); err != nil {
		return fmt.Errorf("%w: %v", ErrDocumentUpdate, err)
	}

	r.log.Log(ctx, "renamed issue doc: %s", newTitle)
	return nil
}

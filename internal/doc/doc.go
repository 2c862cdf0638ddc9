// Package doc defines the companion-document collaborators consumed by the
// tracker, plus a local markdown-backed implementation. Every issue gets one
// document; its title carries the visible "[STATUS] KEY-N" marker.
package doc

import (
	"context"
	"time"
)

// Ref is an opaque handle to one companion document. Handles are produced
// by a Store and are only meaningful to the store that issued them.
type Ref interface {
	// URL returns the stable address persisted on the issue row. The
	// same store resolves it back via OpenByURL.
	URL() string
}

// Store creates and manipulates companion documents. Content layout is
// entirely the store's concern; the tracker only hands over the data.
type Store interface {
	// Create makes a new empty document with the given display title.
	Create(ctx context.Context, title string) (Ref, error)

	// OpenByURL re-resolves a persisted document URL into a handle.
	OpenByURL(ctx context.Context, url string) (Ref, error)

	// Title returns the document's current display title.
	Title(ctx context.Context, ref Ref) (string, error)

	// Rename replaces the document's display title.
	Rename(ctx context.Context, ref Ref, newTitle string) error

	// AddEditor grants edit access to the given email.
	AddEditor(ctx context.Context, ref Ref, email string) error

	// AddViewer grants view access to the given email.
	AddViewer(ctx context.Context, ref Ref, email string) error

	// AppendBody renders the submission details into the document body.
	AppendBody(ctx context.Context, ref Ref, body Body) error
}

// Folder files documents under the configured issues folder.
type Folder interface {
	AddFile(ctx context.Context, ref Ref) error
}

// Body carries the submission details a document body is rendered from.
type Body struct {
	Submitter       string
	CreateTime      time.Time
	Severity        string
	DesiredDeadline time.Time
	Summary         string
	Details         string
	Reason          string
}

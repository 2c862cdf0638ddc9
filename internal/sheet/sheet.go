package sheet

import (
	"context"
	"errors"
)

// MaxColumns caps how many header cells a sheet recognizes.
const MaxColumns = 20

// ErrColumnNotFound indicates a header name that the sheet does not carry.
var ErrColumnNotFound = errors.New("column not found")

// Row is one sheet row as an ordered sequence of string cells.
type Row []string

// Range addresses a single physical row of a sheet. Row positions are
// 1-based; position 1 is the header row.
type Range struct {
	Row int
}

// IsHeader reports whether the range addresses the header row.
func (r Range) IsHeader() bool { return r.Row <= 1 }

// Sheet is the tabular persistence contract consumed by the tracker. The
// tracker never creates sheets itself; the surrounding host opens them and
// hands them in.
type Sheet interface {
	// Name returns the sheet name.
	Name() string

	// Headers returns the header cells read when the sheet was opened,
	// capped at MaxColumns and stripped of trailing empties.
	Headers() []string

	// AppendRow appends one row after the current last row.
	AppendRow(ctx context.Context, row Row) error

	// FindRowRange scans the named column top to bottom and returns the
	// range of the first row whose cell equals value. The second return
	// is false when no row matches. Fails with ErrColumnNotFound when
	// the header is unknown.
	FindRowRange(ctx context.Context, header, value string) (Range, bool, error)

	// LastRowRange returns the range of the last physical row. On a
	// sheet holding only its header row this is the header range.
	LastRowRange(ctx context.Context) (Range, error)

	// ReadRow returns the cells of the addressed row.
	ReadRow(ctx context.Context, r Range) (Row, error)

	// WriteRow overwrites the addressed row in place.
	WriteRow(ctx context.Context, r Range, row Row) error
}

// columnIndex resolves a header name to its 0-based position.
func columnIndex(headers []string, name string) (int, error) {
	for i, h := range headers {
		if h == name {
			return i, nil
		}
	}
	return 0, ErrColumnNotFound
}

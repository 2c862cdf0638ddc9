// Package applog writes diagnostic messages as rows of a log sheet, the way
// the tracker records everything else. The log is append-only with a fixed
// row cap; the oldest rows are evicted first.
package applog

import (
	"context"
	"fmt"
	"time"

	"github.com/joescharf/issuedesk/internal/models"
	"github.com/joescharf/issuedesk/internal/sheet"
)

// Headers is the column layout of the log sheet.
var Headers = sheet.Row{"Time", "Actor", "Message"}

// Sink is the slice of the sheet store the logger needs.
type Sink interface {
	AppendRow(ctx context.Context, row sheet.Row) error
	RowCount(ctx context.Context) (int, error)
	DeleteDataRows(ctx context.Context, n int) error
}

// Logger appends timestamped rows to a log sheet. Logging is best-effort
// diagnostics: a failing sink never fails the operation being logged.
type Logger struct {
	sink    Sink
	actor   string
	maxRows int
	now     func() time.Time
}

// New creates a logger writing as actor, keeping at most maxRows data rows.
// A nil sink discards everything.
func New(sink Sink, actor string, maxRows int) *Logger {
	return &Logger{sink: sink, actor: actor, maxRows: maxRows, now: time.Now}
}

// Nop returns a logger that discards all messages.
func Nop() *Logger {
	return New(nil, "", 0)
}

// Log appends one formatted message row, evicting the oldest rows when the
// sheet exceeds the configured cap.
func (l *Logger) Log(ctx context.Context, format string, args ...any) {
	if l.sink == nil {
		return
	}

	row := sheet.Row{
		l.now().Format(models.TimeFormat),
		l.actor,
		fmt.Sprintf(format, args...),
	}
	if err := l.sink.AppendRow(ctx, row); err != nil {
		return
	}

	count, err := l.sink.RowCount(ctx)
	if err != nil {
		return
	}
	// Count includes the header row.
	if over := count - 1 - l.maxRows; over > 0 {
		_ = l.sink.DeleteDataRows(ctx, over)
	}
}

package sheet

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore holds spreadsheet-style sheets in a single SQLite database
// using modernc.org/sqlite (pure Go, no CGO). Each sheet is a named set of
// rows; cells are stored as a JSON array of strings per row.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool,
	// which also matches the tracker's single-writer model.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// OpenSheet opens the named sheet, seeding the header row when the sheet is
// empty. Headers are read once here; reopen the sheet to pick up changes.
func (s *SQLiteStore) OpenSheet(ctx context.Context, name string, headers Row) (*SQLiteSheet, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sheet_rows WHERE sheet = ?", name).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("open sheet %s: %w", name, err)
	}

	if count == 0 {
		cells, err := encodeCells(headers)
		if err != nil {
			return nil, fmt.Errorf("seed sheet %s: %w", name, err)
		}
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO sheet_rows (sheet, pos, cells) VALUES (?, 1, ?)", name, cells)
		if err != nil {
			return nil, fmt.Errorf("seed sheet %s: %w", name, err)
		}
	}

	stored, err := s.readRow(ctx, name, 1)
	if err != nil {
		return nil, fmt.Errorf("read headers of %s: %w", name, err)
	}

	return &SQLiteSheet{store: s, name: name, headers: trimHeaders(stored)}, nil
}

// trimHeaders caps the recognized columns and drops empty header cells.
func trimHeaders(row Row) []string {
	if len(row) > MaxColumns {
		row = row[:MaxColumns]
	}
	var headers []string
	for _, h := range row {
		if h != "" {
			headers = append(headers, h)
		}
	}
	return headers
}

func (s *SQLiteStore) readRow(ctx context.Context, sheet string, pos int) (Row, error) {
	var cells string
	err := s.db.QueryRowContext(ctx,
		"SELECT cells FROM sheet_rows WHERE sheet = ? AND pos = ?", sheet, pos).Scan(&cells)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("row %d not found", pos)
	}
	if err != nil {
		return nil, err
	}
	return decodeCells(cells)
}

func encodeCells(row Row) (string, error) {
	if row == nil {
		row = Row{}
	}
	data, err := json.Marshal(row)
	if err != nil {
		return "", fmt.Errorf("encode cells: %w", err)
	}
	return string(data), nil
}

func decodeCells(data string) (Row, error) {
	var row Row
	if err := json.Unmarshal([]byte(data), &row); err != nil {
		return nil, fmt.Errorf("decode cells: %w", err)
	}
	return row, nil
}

// SQLiteSheet is one named sheet inside a SQLiteStore. It implements Sheet.
type SQLiteSheet struct {
	store   *SQLiteStore
	name    string
	headers []string
}

var _ Sheet = (*SQLiteSheet)(nil)

func (sh *SQLiteSheet) Name() string { return sh.name }

func (sh *SQLiteSheet) Headers() []string { return sh.headers }

func (sh *SQLiteSheet) AppendRow(ctx context.Context, row Row) error {
	cells, err := encodeCells(row)
	if err != nil {
		return err
	}
	_, err = sh.store.db.ExecContext(ctx,
		`INSERT INTO sheet_rows (sheet, pos, cells)
		SELECT ?, COALESCE(MAX(pos), 0) + 1, ? FROM sheet_rows WHERE sheet = ?`,
		sh.name, cells, sh.name)
	if err != nil {
		return fmt.Errorf("append row to %s: %w", sh.name, err)
	}
	return nil
}

func (sh *SQLiteSheet) FindRowRange(ctx context.Context, header, value string) (Range, bool, error) {
	idx, err := columnIndex(sh.headers, header)
	if err != nil {
		return Range{}, false, fmt.Errorf("%w: %q in sheet %s", ErrColumnNotFound, header, sh.name)
	}

	rows, err := sh.store.db.QueryContext(ctx,
		"SELECT pos, cells FROM sheet_rows WHERE sheet = ? ORDER BY pos", sh.name)
	if err != nil {
		return Range{}, false, fmt.Errorf("scan sheet %s: %w", sh.name, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var pos int
		var cells string
		if err := rows.Scan(&pos, &cells); err != nil {
			return Range{}, false, fmt.Errorf("scan sheet %s: %w", sh.name, err)
		}
		row, err := decodeCells(cells)
		if err != nil {
			return Range{}, false, fmt.Errorf("scan sheet %s: %w", sh.name, err)
		}
		if idx < len(row) && row[idx] == value {
			return Range{Row: pos}, true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return Range{}, false, err
	}
	return Range{}, false, nil
}

func (sh *SQLiteSheet) LastRowRange(ctx context.Context) (Range, error) {
	var pos int
	err := sh.store.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(pos), 1) FROM sheet_rows WHERE sheet = ?", sh.name).Scan(&pos)
	if err != nil {
		return Range{}, fmt.Errorf("last row of %s: %w", sh.name, err)
	}
	return Range{Row: pos}, nil
}

func (sh *SQLiteSheet) ReadRow(ctx context.Context, r Range) (Row, error) {
	row, err := sh.store.readRow(ctx, sh.name, r.Row)
	if err != nil {
		return nil, fmt.Errorf("read row of %s: %w", sh.name, err)
	}
	return row, nil
}

func (sh *SQLiteSheet) WriteRow(ctx context.Context, r Range, row Row) error {
	cells, err := encodeCells(row)
	if err != nil {
		return err
	}
	res, err := sh.store.db.ExecContext(ctx,
		"UPDATE sheet_rows SET cells = ? WHERE sheet = ? AND pos = ?",
		cells, sh.name, r.Row)
	if err != nil {
		return fmt.Errorf("write row %d of %s: %w", r.Row, sh.name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("write row %d of %s: row does not exist", r.Row, sh.name)
	}
	return nil
}

// RowCount returns the number of physical rows, header included.
func (sh *SQLiteSheet) RowCount(ctx context.Context) (int, error) {
	var count int
	err := sh.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sheet_rows WHERE sheet = ?", sh.name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count rows of %s: %w", sh.name, err)
	}
	return count, nil
}

// DeleteDataRows removes the first n data rows (positions 2..n+1) and shifts
// the remaining data rows up so positions stay dense. The header row is
// never deleted. Used by the log sheet's retention cap.
func (sh *SQLiteSheet) DeleteDataRows(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	tx, err := sh.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete rows of %s: %w", sh.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM sheet_rows WHERE sheet = ? AND pos > 1 AND pos <= ?", sh.name, n+1)
	if err != nil {
		return fmt.Errorf("delete rows of %s: %w", sh.name, err)
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE sheet_rows SET pos = pos - ? WHERE sheet = ? AND pos > 1", n, sh.name)
	if err != nil {
		return fmt.Errorf("shift rows of %s: %w", sh.name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete rows of %s: %w", sh.name, err)
	}
	return nil
}

// Package history records generated tickets in a SQLite database.
package history

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"qacraft/internal/domain"
	"qacraft/internal/ports"
)

// SQLiteStore persists one row per generated ticket. The full test case
// payload rides along as a JSON blob so history listing never needs the
// file cache.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path. An unusable
// database degrades to a no-op store rather than failing startup; history
// is convenience, not correctness.
func NewSQLiteStore(path string) *SQLiteStore {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path}
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		return &SQLiteStore{path: path}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS tickets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_id TEXT,
		summary TEXT,
		test_case_count INTEGER,
		generated_at TEXT,
		test_cases TEXT
	);`)
	return err
}

// Save inserts a new record.
func (s *SQLiteStore) Save(entry domain.TicketHistoryEntry) error {
	if s.db == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(entry.TestCases)
	if err != nil {
		return err
	}
	if entry.GeneratedAt.IsZero() {
		entry.GeneratedAt = time.Now()
	}
	_, err = s.db.Exec(`INSERT INTO tickets
		(ticket_id, summary, test_case_count, generated_at, test_cases)
		VALUES (?, ?, ?, ?, ?)`,
		entry.TicketID,
		entry.Summary,
		entry.TestCaseCount,
		entry.GeneratedAt.Format(time.RFC3339),
		string(payload),
	)
	return err
}

// Entries returns history entries, newest first. Both limit and search are
// optional.
func (s *SQLiteStore) Entries(limit int, search string) ([]domain.TicketHistoryEntry, error) {
	if s.db == nil {
		return nil, nil
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT ticket_id, summary, test_case_count, generated_at, test_cases FROM tickets")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE ticket_id LIKE ? OR summary LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY datetime(generated_at) DESC, id DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.TicketHistoryEntry
	for rows.Next() {
		var entry domain.TicketHistoryEntry
		var ts, payload string
		if err := rows.Scan(&entry.TicketID, &entry.Summary, &entry.TestCaseCount, &ts, &payload); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.GeneratedAt = t
		}
		_ = json.Unmarshal([]byte(payload), &entry.TestCases)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.Exec("DELETE FROM tickets")
	return err
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)

// Package sqlite provides a SQLite-backed interaction log.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pipewise/repokb/internal/adapters/driven/history/sqlite/migrations"
	"github.com/pipewise/repokb/internal/core/domain"
	"github.com/pipewise/repokb/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.InteractionStore = (*Store)(nil)

// DefaultListLimit bounds List when the caller passes no limit.
const DefaultListLimit = 50

// Store persists question/answer pairs in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite interaction log at the given data
// directory. If dataDir is empty, defaults to ~/.repokb/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".repokb", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")

	// WAL mode for better concurrency across ingest/query requests.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// migrate applies embedded SQL migrations in filename order.
func (s *Store) migrate(fsys fs.FS) error {
	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		script, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", file, err)
		}
		if _, err := s.db.Exec(string(script)); err != nil {
			return fmt.Errorf("applying migration %s: %w", file, err)
		}
	}
	return nil
}

// Append stores one interaction record. Missing ID and timestamp are
// filled in.
func (s *Store) Append(ctx context.Context, record domain.InteractionRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (id, namespace, question, answer, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		record.ID, record.Namespace.String(), record.Question, record.Answer, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// List returns up to limit records for the namespace, newest first.
func (s *Store) List(ctx context.Context, ns domain.Namespace, limit int) ([]domain.InteractionRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, namespace, question, answer, created_at
		 FROM interactions
		 WHERE namespace = ?
		 ORDER BY created_at DESC, id
		 LIMIT ?`,
		ns.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var records []domain.InteractionRecord
	for rows.Next() {
		var rec domain.InteractionRecord
		var namespace string
		if err := rows.Scan(&rec.ID, &namespace, &rec.Question, &rec.Answer, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		rec.Namespace = domain.Namespace(namespace)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}

	return records, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

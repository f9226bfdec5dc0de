package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/mailkit/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// RecordDispatch inserts one send-log entry. If the dispatch has no
// ID, a new UUID is generated.
func (s *SQLiteStore) RecordDispatch(ctx context.Context, d model.Dispatch) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.SentAt.IsZero() {
		d.SentAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dispatches (id, subject, from_addr, recipients, host, status, detail, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Subject, d.FromAddr, strings.Join(d.Recipients, ","),
		d.Host, d.Status, d.Detail, d.SentAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("recording dispatch %s: %w", d.ID, err)
	}

	return nil
}

// ListDispatches retrieves send-log entries ordered by send time
// descending. A non-positive limit returns all entries.
func (s *SQLiteStore) ListDispatches(ctx context.Context, limit int) ([]model.Dispatch, error) {
	query := "SELECT * FROM dispatches ORDER BY sent_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying dispatches: %w", err)
	}
	defer rows.Close()

	var dispatches []model.Dispatch
	for rows.Next() {
		d, err := scanDispatch(rows)
		if err != nil {
			return nil, err
		}
		dispatches = append(dispatches, d)
	}

	return dispatches, rows.Err()
}

// scanDispatch scans a dispatch row from a sqlx.Rows result set.
func scanDispatch(rows *sqlx.Rows) (model.Dispatch, error) {
	var (
		d          model.Dispatch
		recipients string
		sentAt     time.Time
	)

	err := rows.Scan(
		&d.ID, &d.Subject, &d.FromAddr, &recipients,
		&d.Host, &d.Status, &d.Detail, &sentAt,
	)
	if err != nil {
		return model.Dispatch{}, fmt.Errorf("scanning dispatch row: %w", err)
	}

	if recipients != "" {
		d.Recipients = strings.Split(recipients, ",")
	}
	d.SentAt = sentAt

	return d, nil
}

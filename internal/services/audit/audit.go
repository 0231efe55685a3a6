package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/phambaophuc/device-mockup/internal/models"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS mockups (
	id         TEXT PRIMARY KEY,
	model      TEXT NOT NULL,
	color      TEXT NOT NULL,
	upload_url TEXT NOT NULL DEFAULT '',
	mockup_url TEXT NOT NULL DEFAULT '',
	file_size  INTEGER NOT NULL DEFAULT 0,
	source     TEXT NOT NULL DEFAULT 'api',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mockups_created_at ON mockups(created_at);
`

// MaxRecent caps the number of rows returned by Recent.
const MaxRecent = 100

// Store is the SQLite-backed audit trail of generated mockups.
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the audit database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	// SQLite serializes writers; a single connection also keeps :memory: coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure audit database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate audit database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Record(ctx context.Context, rec models.AuditRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Source == "" {
		rec.Source = "api"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mockups (id, model, color, upload_url, mockup_url, file_size, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Model, rec.Color, rec.UploadURL, rec.MockupURL, rec.FileSize, rec.Source,
		rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// Recent returns the newest records first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.AuditRecord, error) {
	if limit <= 0 || limit > MaxRecent {
		limit = MaxRecent
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, model, color, upload_url, mockup_url, file_size, source, created_at
		 FROM mockups ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	records := make([]models.AuditRecord, 0, limit)
	for rows.Next() {
		var rec models.AuditRecord
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.Model, &rec.Color, &rec.UploadURL, &rec.MockupURL,
			&rec.FileSize, &rec.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(createdAt)
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

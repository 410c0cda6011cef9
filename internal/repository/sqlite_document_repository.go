package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/ticket-metrics/internal/domain"
)

type sqliteDocumentRepository struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteDocumentRepository stores documents in an embedded SQLite file.
// The schema must exist; see InitSQLiteSchema.
func NewSQLiteDocumentRepository(db *sql.DB, ttl time.Duration) DocumentRepository {
	return &sqliteDocumentRepository{db: db, ttl: ttl, now: time.Now}
}

func (r *sqliteDocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	var expiresAt sql.NullInt64
	if r.ttl > 0 {
		expiresAt = sql.NullInt64{Int64: doc.UploadedAt.Add(r.ttl).UnixNano(), Valid: true}
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM session_documents WHERE expires_at IS NOT NULL AND expires_at < ?`,
		r.now().UnixNano(),
	); err != nil {
		return fmt.Errorf("purge expired documents: %w", err)
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO session_documents (session_id, file_name, digest, size_bytes, content, uploaded_at, expires_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id) DO UPDATE SET
  file_name = excluded.file_name,
  digest = excluded.digest,
  size_bytes = excluded.size_bytes,
  content = excluded.content,
  uploaded_at = excluded.uploaded_at,
  expires_at = excluded.expires_at`,
		doc.SessionID,
		doc.FileName,
		doc.Digest,
		doc.SizeBytes,
		compressContent(doc.Content),
		doc.UploadedAt.UTC().Format(time.RFC3339Nano),
		expiresAt,
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (r *sqliteDocumentRepository) Get(ctx context.Context, sessionID string) (*domain.Document, error) {
	doc := domain.Document{SessionID: sessionID}
	var compressed []byte
	var uploadedAt string
	err := r.db.QueryRowContext(ctx, `
SELECT file_name, digest, size_bytes, content, uploaded_at
FROM session_documents
WHERE session_id = ? AND (expires_at IS NULL OR expires_at > ?)`,
		sessionID, r.now().UnixNano(),
	).Scan(&doc.FileName, &doc.Digest, &doc.SizeBytes, &compressed, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	doc.UploadedAt, _ = time.Parse(time.RFC3339Nano, uploadedAt)
	if doc.Content, err = decompressContent(compressed); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *sqliteDocumentRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_documents WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (r *sqliteDocumentRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS session_documents (
  session_id TEXT PRIMARY KEY,
  file_name TEXT NOT NULL DEFAULT '',
  digest TEXT NOT NULL,
  size_bytes INTEGER NOT NULL,
  content BLOB NOT NULL,
  uploaded_at TEXT NOT NULL,
  expires_at INTEGER NULL
);
CREATE INDEX IF NOT EXISTS idx_session_documents_expires_at ON session_documents(expires_at);
`

// InitSQLiteSchema creates the session_documents table if it does not exist.
func InitSQLiteSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("init sqlite schema: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-metrics/internal/domain"
)

type postgresDocumentRepository struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPostgresDocumentRepository stores documents in the session_documents table.
func NewPostgresDocumentRepository(pool *pgxpool.Pool, ttl time.Duration) DocumentRepository {
	return &postgresDocumentRepository{pool: pool, ttl: ttl}
}

func (r *postgresDocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	var expiresAt *time.Time
	if r.ttl > 0 {
		exp := doc.UploadedAt.Add(r.ttl)
		expiresAt = &exp
	}

	if _, err := r.pool.Exec(ctx, `DELETE FROM session_documents WHERE expires_at < NOW()`); err != nil {
		return fmt.Errorf("purge expired documents: %w", err)
	}

	const query = `
        INSERT INTO session_documents (session_id, file_name, digest, size_bytes, content, uploaded_at, expires_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (session_id) DO UPDATE SET
            file_name = EXCLUDED.file_name,
            digest = EXCLUDED.digest,
            size_bytes = EXCLUDED.size_bytes,
            content = EXCLUDED.content,
            uploaded_at = EXCLUDED.uploaded_at,
            expires_at = EXCLUDED.expires_at`
	_, err := r.pool.Exec(ctx, query,
		doc.SessionID,
		doc.FileName,
		doc.Digest,
		doc.SizeBytes,
		compressContent(doc.Content),
		doc.UploadedAt,
		expiresAt,
	)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (r *postgresDocumentRepository) Get(ctx context.Context, sessionID string) (*domain.Document, error) {
	const query = `
        SELECT file_name, digest, size_bytes, content, uploaded_at
        FROM session_documents
        WHERE session_id=$1 AND (expires_at IS NULL OR expires_at > NOW())`

	doc := domain.Document{SessionID: sessionID}
	var compressed []byte
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&doc.FileName,
		&doc.Digest,
		&doc.SizeBytes,
		&compressed,
		&doc.UploadedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	if doc.Content, err = decompressContent(compressed); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *postgresDocumentRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM session_documents WHERE session_id=$1`, sessionID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (r *postgresDocumentRepository) Ping(ctx context.Context) error {
	if r.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return r.pool.Ping(ctx)
}

package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-metrics/internal/domain"
)

type redisDocumentRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisDocumentRepository stores each session document as a hash that
// expires after ttl (never when ttl is zero).
func NewRedisDocumentRepository(client *redis.Client, prefix string, ttl time.Duration) DocumentRepository {
	return &redisDocumentRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *redisDocumentRepository) key(sessionID string) string {
	return r.prefix + ":document:" + sessionID
}

func (r *redisDocumentRepository) Save(ctx context.Context, doc *domain.Document) error {
	key := r.key(doc.SessionID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"file_name", doc.FileName,
			"digest", doc.Digest,
			"size_bytes", doc.SizeBytes,
			"uploaded_at", doc.UploadedAt.UTC().Format(time.RFC3339Nano),
			"content", compressContent(doc.Content),
		)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (r *redisDocumentRepository) Get(ctx context.Context, sessionID string) (*domain.Document, error) {
	fields, err := r.client.HGetAll(ctx, r.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrDocumentNotFound
	}

	content, err := decompressContent([]byte(fields["content"]))
	if err != nil {
		return nil, err
	}
	size, _ := strconv.Atoi(fields["size_bytes"])
	uploadedAt, _ := time.Parse(time.RFC3339Nano, fields["uploaded_at"])

	return &domain.Document{
		SessionID:  sessionID,
		FileName:   fields["file_name"],
		Content:    content,
		SizeBytes:  size,
		Digest:     fields["digest"],
		UploadedAt: uploadedAt,
	}, nil
}

func (r *redisDocumentRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (r *redisDocumentRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

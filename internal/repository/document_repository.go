package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/spec-kit/ticket-metrics/internal/domain"
)

// ErrDocumentNotFound is returned when a session has no live document.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentRepository holds at most one raw CSV document per session.
type DocumentRepository interface {
	// Save stores doc, replacing any previous document of the session.
	Save(ctx context.Context, doc *domain.Document) error
	// Get returns the session's document or ErrDocumentNotFound.
	Get(ctx context.Context, sessionID string) (*domain.Document, error)
	// Delete removes the session's document. Deleting a missing document is not an error.
	Delete(ctx context.Context, sessionID string) error
	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}

type memoryEntry struct {
	doc       domain.Document
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

type memoryDocumentRepository struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryDocumentRepository keeps documents in process memory. A zero ttl
// keeps them until deleted.
func NewMemoryDocumentRepository(ttl time.Duration) DocumentRepository {
	return newMemoryDocumentRepository(ttl, time.Now)
}

func newMemoryDocumentRepository(ttl time.Duration, now func() time.Time) *memoryDocumentRepository {
	return &memoryDocumentRepository{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     now,
	}
}

func (r *memoryDocumentRepository) Save(_ context.Context, doc *domain.Document) error {
	entry := memoryEntry{doc: *doc}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.mu.Lock()
	r.entries[doc.SessionID] = entry
	r.mu.Unlock()
	return nil
}

func (r *memoryDocumentRepository) Get(_ context.Context, sessionID string) (*domain.Document, error) {
	r.mu.RLock()
	entry, ok := r.entries[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrDocumentNotFound
	}
	if entry.expired(r.now()) {
		r.evictExpired(sessionID, entry.expiresAt)
		return nil, ErrDocumentNotFound
	}
	doc := entry.doc
	return &doc, nil
}

// evictExpired drops the session's entry only if it is still the one that
// expired at seen. A Save that raced in after the read keeps its document.
func (r *memoryDocumentRepository) evictExpired(sessionID string, seen time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[sessionID]
	if !ok || !entry.expiresAt.Equal(seen) || !entry.expired(r.now()) {
		return
	}
	delete(r.entries, sessionID)
}

func (r *memoryDocumentRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.entries, sessionID)
	r.mu.Unlock()
	return nil
}

func (r *memoryDocumentRepository) Ping(context.Context) error {
	return nil
}

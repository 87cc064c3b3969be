package token

import (
	"context"
	"sync"
	"time"

	"authgate/internal/domain"
)

// MemoryStore is the reference Store implementation: a mutex-guarded map
// with the same claim semantics as the SQL store. Used by tests and local
// development; it is not durable.
type MemoryStore struct {
	mu     sync.Mutex
	byHash map[string]*domain.RefreshToken
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byHash: make(map[string]*domain.RefreshToken)}
}

func (m *MemoryStore) Insert(_ context.Context, t *domain.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byHash[t.TokenHash]; ok {
		return ErrDuplicateHash
	}
	cp := *t
	m.byHash[t.TokenHash] = &cp
	return nil
}

func (m *MemoryStore) FindByHash(_ context.Context, hash string) (*domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.byHash[hash]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryStore) ClaimForRotation(_ context.Context, hash string, now time.Time) (*domain.RefreshToken, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.byHash[hash]
	if !ok {
		return nil, false, ErrNotFound
	}
	prior := *t
	if t.UsedAt != nil || t.RevokedAt != nil {
		return &prior, false, nil
	}
	used := now
	t.UsedAt = &used
	return &prior, true, nil
}

func (m *MemoryStore) RevokeFamily(_ context.Context, familyID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.byHash {
		if t.TokenFamily == familyID && t.RevokedAt == nil {
			revoked := now
			t.RevokedAt = &revoked
		}
	}
	return nil
}

func (m *MemoryStore) RevokeAllForUser(_ context.Context, userID int64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.byHash {
		if t.UserID == userID && t.RevokedAt == nil {
			revoked := now
			t.RevokedAt = &revoked
		}
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
)

// cacheStore implements driven.CacheStore.
type cacheStore struct {
	store *Store
}

var _ driven.CacheStore = (*cacheStore)(nil)

// Get returns the value stored under key.
func (s *cacheStore) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var value []byte
	err := s.store.db.QueryRowContext(ctx,
		"SELECT value FROM cache WHERE namespace = ? AND key = ?", namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading cache key %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key.
func (s *cacheStore) Set(ctx context.Context, namespace, key string, value []byte) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO cache (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, namespace, key, value, formatTime(s.store.now()))
	if err != nil {
		return fmt.Errorf("writing cache key %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *cacheStore) Delete(ctx context.Context, namespace, key string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM cache WHERE namespace = ? AND key = ?", namespace, key)
	if err != nil {
		return fmt.Errorf("deleting cache key %s: %w", key, err)
	}
	return nil
}

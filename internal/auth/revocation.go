// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/mediarec/internal/logging"
)

// RevocationList remembers logged-out token ids until their expiry.
type RevocationList interface {
	// Revoke marks jti revoked until expiresAt. A past expiry is a no-op.
	Revoke(ctx context.Context, entry RevokedToken) error

	// IsRevoked reports whether jti is currently revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// Size returns the number of live entries.
	Size(ctx context.Context) (int, error)

	Close() error
}

// RevokedToken is one stored revocation.
type RevokedToken struct {
	JTI       string    `json:"jti"`
	UserID    int64     `json:"user_id"`
	RevokedAt time.Time `json:"revoked_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BadgerRevocationList keeps revocations in BadgerDB with per-entry TTLs.
type BadgerRevocationList struct {
	db     *badger.DB
	owned  bool
	prefix []byte
	now    func() time.Time

	mu     sync.RWMutex
	closed bool
}

// OpenRevocationList opens a badger store at path, or an in-memory one when
// path is empty. The returned list owns the database and closes it.
func OpenRevocationList(path string) (*BadgerRevocationList, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open revocation store: %w", err)
	}
	l := NewBadgerRevocationList(db, "")
	l.owned = true
	return l, nil
}

// NewBadgerRevocationList stores entries in a shared db under prefix
// (default "revoked:"). Close leaves the db open.
func NewBadgerRevocationList(db *badger.DB, prefix string) *BadgerRevocationList {
	if prefix == "" {
		prefix = "revoked:"
	}
	return &BadgerRevocationList{db: db, prefix: []byte(prefix), now: time.Now}
}

func (l *BadgerRevocationList) key(jti string) []byte {
	return append(append([]byte{}, l.prefix...), jti...)
}

func (l *BadgerRevocationList) checkOpen() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrRevocationClosed
	}
	return nil
}

func (l *BadgerRevocationList) Revoke(ctx context.Context, entry RevokedToken) error {
	if err := l.checkOpen(); err != nil {
		return err
	}
	if entry.JTI == "" {
		return errors.New("revocation requires a token id")
	}
	now := l.now()
	ttl := entry.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}
	entry.RevokedAt = now

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode revocation: %w", err)
	}
	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(l.key(entry.JTI), data).WithTTL(ttl))
	})
	if err != nil {
		RevocationOperations.WithLabelValues("revoke", "failure").Inc()
		return fmt.Errorf("failed to store revocation: %w", err)
	}
	RevocationOperations.WithLabelValues("revoke", "success").Inc()
	return nil
}

func (l *BadgerRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if err := l.checkOpen(); err != nil {
		return false, err
	}

	var revoked bool
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(l.key(jti))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var entry RevokedToken
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entry); err != nil {
				return err
			}
			// Badger TTLs have second granularity.
			revoked = l.now().Before(entry.ExpiresAt)
			return nil
		})
	})
	if err != nil {
		RevocationOperations.WithLabelValues("check", "failure").Inc()
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	return revoked, nil
}

func (l *BadgerRevocationList) Size(ctx context.Context) (int, error) {
	if err := l.checkOpen(); err != nil {
		return 0, err
	}
	count := 0
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = l.prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Close marks the list closed and closes the db if the list opened it.
func (l *BadgerRevocationList) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.owned {
		if err := l.db.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close revocation store")
			return err
		}
	}
	return nil
}

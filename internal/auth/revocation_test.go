// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

func TestRevocationList_RevokeAndCheck(t *testing.T) {
	l := testRevocations(t)
	ctx := context.Background()

	if revoked, err := l.IsRevoked(ctx, "abc"); err != nil || revoked {
		t.Fatalf("IsRevoked(unknown) = %v, %v", revoked, err)
	}
	if err := l.Revoke(ctx, RevokedToken{JTI: "abc", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if revoked, err := l.IsRevoked(ctx, "abc"); err != nil || !revoked {
		t.Errorf("IsRevoked(abc) = %v, %v", revoked, err)
	}
	if n, err := l.Size(ctx); err != nil || n != 1 {
		t.Errorf("Size() = %d, %v", n, err)
	}
}

func TestRevocationList_ExpiredEntries(t *testing.T) {
	l := testRevocations(t)
	ctx := context.Background()
	now := time.Now()
	l.now = func() time.Time { return now }

	if err := l.Revoke(ctx, RevokedToken{JTI: "old", ExpiresAt: now.Add(-time.Second)}); err != nil {
		t.Fatalf("Revoke(past) error = %v", err)
	}
	if n, _ := l.Size(ctx); n != 0 {
		t.Errorf("past expiry was stored, Size() = %d", n)
	}

	if err := l.Revoke(ctx, RevokedToken{JTI: "soon", ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	l.now = func() time.Time { return now.Add(2 * time.Hour) }
	if revoked, _ := l.IsRevoked(ctx, "soon"); revoked {
		t.Error("entry still revoked after its expiry")
	}
}

func TestRevocationList_Validation(t *testing.T) {
	l := testRevocations(t)
	if err := l.Revoke(context.Background(), RevokedToken{ExpiresAt: time.Now().Add(time.Hour)}); err == nil {
		t.Error("Revoke() without jti succeeded")
	}
}

func TestRevocationList_Closed(t *testing.T) {
	l, err := OpenRevocationList("")
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	ctx := context.Background()
	if _, err := l.IsRevoked(ctx, "x"); !errors.Is(err, ErrRevocationClosed) {
		t.Errorf("IsRevoked() after Close = %v", err)
	}
	if err := l.Revoke(ctx, RevokedToken{JTI: "x", ExpiresAt: time.Now().Add(time.Hour)}); !errors.Is(err, ErrRevocationClosed) {
		t.Errorf("Revoke() after Close = %v", err)
	}
}

func TestRevocationList_SharedDB(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	l := NewBadgerRevocationList(db, "test:")
	if err := l.Revoke(context.Background(), RevokedToken{JTI: "a", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if db.IsClosed() {
		t.Error("Close() closed a shared database")
	}
}

func TestRevocationList_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	l, err := OpenRevocationList(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Revoke(ctx, RevokedToken{JTI: "persist", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenRevocationList(dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	if revoked, err := reopened.IsRevoked(ctx, "persist"); err != nil || !revoked {
		t.Errorf("IsRevoked() after reopen = %v, %v", revoked, err)
	}
}

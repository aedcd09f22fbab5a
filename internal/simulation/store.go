// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package simulation

import (
	"sort"
	"sync"
)

// SessionStore holds live sessions. A reserved session is invisible to Get
// and the listing methods until it is activated.
type SessionStore interface {
	// Reserve claims s.Key. It returns ErrAlreadyActive if the key is
	// reserved or live.
	Reserve(s *Session) error
	// Activate makes a reserved session visible.
	Activate(key string)
	// Remove drops the key whether reserved or live.
	Remove(key string)
	Get(key string) (*Session, bool)
	// ListByOwner returns the user's live sessions ordered by start time.
	ListByOwner(userID int64) []*Session
	// All returns every live session ordered by start time.
	All() []*Session
	Len() int
}

type storeEntry struct {
	session *Session
	active  bool
}

// MemoryStore is the in-process SessionStore.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]storeEntry
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]storeEntry)}
}

func (m *MemoryStore) Reserve(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[s.Key]; exists {
		return ErrAlreadyActive
	}
	m.sessions[s.Key] = storeEntry{session: s}
	return nil
}

func (m *MemoryStore) Activate(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[key]; ok {
		e.active = true
		m.sessions[key] = e
	}
}

func (m *MemoryStore) Remove(key string) {
	m.mu.Lock()
	delete(m.sessions, key)
	m.mu.Unlock()
}

func (m *MemoryStore) Get(key string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[key]
	if !ok || !e.active {
		return nil, false
	}
	return e.session, true
}

func (m *MemoryStore) ListByOwner(userID int64) []*Session {
	return m.collect(func(s *Session) bool { return s.UserID == userID })
}

func (m *MemoryStore) All() []*Session {
	return m.collect(func(*Session) bool { return true })
}

// Len counts live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.sessions {
		if e.active {
			n++
		}
	}
	return n
}

func (m *MemoryStore) collect(keep func(*Session) bool) []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, e := range m.sessions {
		if e.active && keep(e.session) {
			out = append(out, e.session)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].Key < out[j].Key
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

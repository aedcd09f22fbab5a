// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package simulation

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Rand is the random source used for durations and event gating.
// Implementations must be safe for concurrent use.
type Rand interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// IntN returns a value in [0, n). n must be positive.
	IntN(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a concurrency-safe PCG source. A zero seed draws a random
// one, so only non-zero seeds give reproducible runs.
func NewRand(seed int64) Rand {
	s1, s2 := uint64(seed), uint64(seed)^0x9e3779b97f4a7c15
	if seed == 0 {
		s1, s2 = rand.Uint64(), rand.Uint64()
	}
	return &lockedRand{r: rand.New(rand.NewPCG(s1, s2))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

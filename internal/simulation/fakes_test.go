// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package simulation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/mediarec/internal/models"
)

var errBoom = errors.New("boom")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// scriptedRand returns queued values, then fallback values once drained.
type scriptedRand struct {
	mu     sync.Mutex
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.floats) == 0 {
		return 0.99
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

type fakeCatalog struct {
	mu        sync.Mutex
	items     map[models.ContentType]map[int64]*models.ContentSummary
	lookupErr error
	ratingErr error
	ratings   []int
}

func newFakeCatalog() *fakeCatalog {
	c := &fakeCatalog{items: map[models.ContentType]map[int64]*models.ContentSummary{}}
	c.add(models.ContentBook, 1, "Dune", 8.0)
	c.add(models.ContentMovie, 2, "Heat", 7.5)
	c.add(models.ContentGame, 3, "Portal 2", 9.2)
	return c
}

func (c *fakeCatalog) add(ct models.ContentType, id int64, title string, pop float64) {
	if c.items[ct] == nil {
		c.items[ct] = map[int64]*models.ContentSummary{}
	}
	c.items[ct][id] = &models.ContentSummary{ID: id, Type: ct, Title: title, PopularityScore: pop}
}

func (c *fakeCatalog) LookupContent(_ context.Context, ct models.ContentType, id int64) (*models.ContentSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lookupErr != nil {
		return nil, c.lookupErr
	}
	item, ok := c.items[ct][id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (c *fakeCatalog) ApplyRating(_ context.Context, ct models.ContentType, id int64, rating int) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ratingErr != nil {
		return 0, c.ratingErr
	}
	item, ok := c.items[ct][id]
	if !ok {
		return 0, models.ErrNotFound
	}
	item.PopularityScore = models.BlendPopularity(item.PopularityScore, rating)
	c.ratings = append(c.ratings, rating)
	return item.PopularityScore, nil
}

func (c *fakeCatalog) popularity(ct models.ContentType, id int64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[ct][id].PopularityScore
}

type fakeLedger struct {
	mu        sync.Mutex
	nextID    int64
	records   map[int64]*models.Interaction
	createErr error
	updateErr error
	updates   int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{records: map[int64]*models.Interaction{}}
}

func (l *fakeLedger) CreateInteraction(_ context.Context, it *models.Interaction) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.createErr != nil {
		return 0, l.createErr
	}
	l.nextID++
	cp := *it
	cp.ID = l.nextID
	l.records[cp.ID] = &cp
	return cp.ID, nil
}

func (l *fakeLedger) UpdateInteraction(_ context.Context, id int64, upd models.InteractionUpdate) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.updateErr != nil {
		return l.updateErr
	}
	rec, ok := l.records[id]
	if !ok {
		return models.ErrNotFound
	}
	l.updates++
	if upd.Type != nil {
		rec.Type = *upd.Type
	}
	if upd.Rating != nil {
		r := *upd.Rating
		rec.Rating = &r
	}
	if upd.ProgressPercent != nil {
		rec.ProgressPercent = *upd.ProgressPercent
	}
	if upd.CompletionDate != nil {
		d := *upd.CompletionDate
		rec.CompletionDate = &d
	}
	if upd.SimulationDuration != nil {
		d := *upd.SimulationDuration
		rec.SimulationDuration = &d
	}
	rec.TagsExtracted = append(rec.TagsExtracted, upd.AddTags...)
	return nil
}

func (l *fakeLedger) setUpdateErr(err error) {
	l.mu.Lock()
	l.updateErr = err
	l.mu.Unlock()
}

func (l *fakeLedger) record(t *testing.T, id int64) models.Interaction {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[id]
	if !ok {
		t.Fatalf("ledger record %d missing", id)
	}
	return *rec
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []LifecycleEvent
}

func (n *recordingNotifier) Notify(_ context.Context, ev LifecycleEvent) {
	n.mu.Lock()
	n.events = append(n.events, ev)
	n.mu.Unlock()
}

func (n *recordingNotifier) kinds() []EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]EventKind, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Kind
	}
	return out
}

type harness struct {
	tracker  *Tracker
	catalog  *fakeCatalog
	ledger   *fakeLedger
	clock    *fakeClock
	rand     *scriptedRand
	notifier *recordingNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		catalog:  newFakeCatalog(),
		ledger:   newFakeLedger(),
		clock:    newFakeClock(),
		rand:     &scriptedRand{},
		notifier: &recordingNotifier{},
	}
	h.tracker = NewTracker(h.catalog, h.ledger, DefaultConfig(),
		WithClock(h.clock), WithRand(h.rand), WithNotifier(h.notifier))
	return h
}

// start opens a book session whose planned duration is exactly 100s.
func (h *harness) startBook(t *testing.T, userID int64) *StartResult {
	t.Helper()
	h.rand.mu.Lock()
	h.rand.ints = append(h.rand.ints, 70) // 30 + 70 = 100
	h.rand.mu.Unlock()
	res, err := h.tracker.Start(context.Background(), userID, models.ContentBook, 1)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if res.PlannedDuration != 100 {
		t.Fatalf("PlannedDuration = %d, want 100", res.PlannedDuration)
	}
	return res
}

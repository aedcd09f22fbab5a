// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/metrics"
	"github.com/tomtom215/mediarec/internal/models"
)

// Tracker owns every live simulation session. It is safe for concurrent use.
type Tracker struct {
	cfg      Config
	catalog  Catalog
	ledger   Ledger
	store    SessionStore
	clock    Clock
	rand     Rand
	notifier Notifier

	// lifecycle is held shared by Start and exclusively by Shutdown, so no
	// start can slip in after the drain begins.
	lifecycle sync.RWMutex
	closed    bool
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithStore replaces the in-memory session store.
func WithStore(s SessionStore) Option { return func(t *Tracker) { t.store = s } }

// WithClock injects the time source.
func WithClock(c Clock) Option { return func(t *Tracker) { t.clock = c } }

// WithRand injects the random source.
func WithRand(r Rand) Option { return func(t *Tracker) { t.rand = r } }

// WithNotifier registers the lifecycle event sink.
func WithNotifier(n Notifier) Option { return func(t *Tracker) { t.notifier = n } }

// NewTracker creates a tracker over the given catalog and ledger. Without
// options it uses a MemoryStore, the system clock and a randomly seeded source.
func NewTracker(catalog Catalog, ledger Ledger, cfg Config, opts ...Option) *Tracker {
	t := &Tracker{
		cfg:     cfg,
		catalog: catalog,
		ledger:  ledger,
		store:   NewMemoryStore(),
		clock:   SystemClock{},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rand == nil {
		t.rand = NewRand(0)
	}
	return t
}

// Start opens a session for userID on the given content item.
func (t *Tracker) Start(ctx context.Context, userID int64, ct models.ContentType, contentID int64) (res *StartResult, err error) {
	defer func() { metrics.RecordSimulationOp("start", resultLabel(err)) }()

	if !ct.Valid() {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrInvalidInput, ct)
	}

	t.lifecycle.RLock()
	defer t.lifecycle.RUnlock()
	if t.closed {
		return nil, ErrClosed
	}

	content, err := t.catalog.LookupContent(ctx, ct, contentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s %d does not exist", ErrNotFound, ct, contentID)
		}
		return nil, fmt.Errorf("%w: lookup content: %w", ErrStorage, err)
	}

	now := t.clock.Now()
	s := &Session{
		Key:          SessionKey(userID, ct, contentID),
		UserID:       userID,
		ContentType:  ct,
		ContentID:    contentID,
		ContentTitle: content.Title,
		StartedAt:    now,
	}
	if err := t.store.Reserve(s); err != nil {
		return nil, fmt.Errorf("reserve %s: %w", s.Key, err)
	}

	ledgerID, err := t.ledger.CreateInteraction(ctx, &models.Interaction{
		UserID:          userID,
		ContentType:     ct,
		ContentID:       contentID,
		Type:            models.InteractionStarted,
		ProgressPercent: 0,
		StartDate:       now,
	})
	if err != nil {
		t.store.Remove(s.Key)
		return nil, fmt.Errorf("%w: create interaction: %w", ErrStorage, err)
	}
	s.LedgerID = ledgerID
	s.PlannedDuration = t.drawDuration(ct)
	t.store.Activate(s.Key)
	metrics.SimulationsActive.Inc()

	msg := fmt.Sprintf("Starting %s '%s'!", ct.Verb(), s.ContentTitle)
	logging.Ctx(ctx).Info().
		Str("simulation_id", s.Key).
		Int64("interaction_id", ledgerID).
		Int("planned_duration", s.PlannedDuration).
		Msg("Simulation started")

	ev := t.event(s, EventStarted, now)
	ev.Message = msg
	t.publish(ctx, ev)

	return &StartResult{
		SessionKey:      s.Key,
		InteractionID:   ledgerID,
		PlannedDuration: s.PlannedDuration,
		ContentTitle:    s.ContentTitle,
		Message:         msg,
	}, nil
}

// Progress recomputes the session's progress from elapsed time, persists it,
// and may draw one flavor event.
func (t *Tracker) Progress(ctx context.Context, key string) (rep *ProgressReport, err error) {
	defer func() { metrics.RecordSimulationOp("progress", resultLabel(err)) }()

	s, ok := t.store.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return t.progress(ctx, s)
}

func (t *Tracker) progress(ctx context.Context, s *Session) (*ProgressReport, error) {
	s.mu.Lock()
	if s.finalizing {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Key)
	}

	now := t.clock.Now()
	elapsed := now.Sub(s.StartedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	pct := computeProgress(elapsed, s.PlannedDuration)
	if pct < s.lastProgress {
		pct = s.lastProgress
	}

	if err := t.ledger.UpdateInteraction(ctx, s.LedgerID, models.InteractionUpdate{ProgressPercent: &pct}); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: update progress: %w", ErrStorage, err)
	}
	s.lastProgress = pct

	var event *string
	if pct > t.cfg.EventThreshold && len(s.events) < t.cfg.MaxEvents && t.rand.Float64() < t.cfg.EventChance {
		if list := t.cfg.Events[s.ContentType]; len(list) > 0 {
			e := list[t.rand.IntN(len(list))]
			s.events = append(s.events, e)
			event = &e
		}
	}
	s.mu.Unlock()

	if event != nil {
		ev := t.event(s, EventProgress, now)
		ev.Progress = pct
		ev.Event = *event
		t.publish(ctx, ev)
	}

	return &ProgressReport{
		Progress:       pct,
		Completed:      pct >= 100,
		Event:          event,
		ContentTitle:   s.ContentTitle,
		ElapsedSeconds: int(elapsed),
	}, nil
}

// Complete finalizes the session with a rating, folds personalTags into the
// ledger record, and nudges the item's popularity.
func (t *Tracker) Complete(ctx context.Context, key string, rating int, personalTags []string) (rep *CompletionReport, err error) {
	defer func() { metrics.RecordSimulationOp("complete", resultLabel(err)) }()

	if rating < models.MinRating || rating > models.MaxRating {
		return nil, fmt.Errorf("%w: rating %d outside %d..%d", ErrInvalidInput, rating, models.MinRating, models.MaxRating)
	}

	s, ok := t.store.Get(key)
	if !ok || !s.claim() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	now := t.clock.Now()
	duration := elapsedSeconds(s, now)
	completed := models.InteractionCompleted
	full := 100
	if err := t.ledger.UpdateInteraction(ctx, s.LedgerID, models.InteractionUpdate{
		Type:               &completed,
		Rating:             &rating,
		ProgressPercent:    &full,
		CompletionDate:     &now,
		SimulationDuration: &duration,
		AddTags:            personalTags,
	}); err != nil {
		s.release()
		return nil, fmt.Errorf("%w: complete interaction: %w", ErrStorage, err)
	}
	t.evict(s)

	if score, err := t.catalog.ApplyRating(ctx, s.ContentType, s.ContentID, rating); err != nil {
		metrics.PopularityUpdateFailures.Inc()
		logging.Ctx(ctx).Warn().Err(err).
			Str("content_type", string(s.ContentType)).
			Int64("content_id", s.ContentID).
			Msg("Popularity update failed; completion kept")
	} else {
		logging.Ctx(ctx).Debug().Float64("popularity_score", score).Int64("content_id", s.ContentID).Msg("Popularity updated")
	}
	metrics.RecordSessionEnd(string(s.ContentType), "completed", duration, rating)

	msg := fmt.Sprintf("You finished %s '%s'!", s.ContentType.Verb(), s.ContentTitle)
	logging.Ctx(ctx).Info().Str("simulation_id", s.Key).Int("rating", rating).Int("duration", duration).Msg("Simulation completed")

	ev := t.event(s, EventCompleted, now)
	ev.Progress = 100
	ev.Rating = rating
	ev.Message = msg
	t.publish(ctx, ev)

	return &CompletionReport{
		Message:    msg,
		Rating:     rating,
		Duration:   duration,
		Experience: experience(rating, duration),
	}, nil
}

// Cancel drops the session. Progress and popularity are left as they are.
func (t *Tracker) Cancel(ctx context.Context, key string) (rep *CancellationReport, err error) {
	defer func() { metrics.RecordSimulationOp("cancel", resultLabel(err)) }()

	s, ok := t.store.Get(key)
	if !ok || !s.claim() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	now := t.clock.Now()
	if err := t.markDropped(ctx, s, now); err != nil {
		s.release()
		return nil, err
	}
	t.evict(s)
	metrics.RecordSessionEnd(string(s.ContentType), "cancelled", elapsedSeconds(s, now), 0)

	msg := fmt.Sprintf("You stopped %s '%s'", s.ContentType.Verb(), s.ContentTitle)
	logging.Ctx(ctx).Info().Str("simulation_id", s.Key).Msg("Simulation cancelled")

	ev := t.event(s, EventCancelled, now)
	ev.Message = msg
	t.publish(ctx, ev)

	return &CancellationReport{Message: msg}, nil
}

// ListActive reports progress for each of the user's live sessions, oldest
// first. Sessions finalized while the list is built are skipped.
func (t *Tracker) ListActive(ctx context.Context, userID int64) ([]SessionSummary, error) {
	sessions := t.store.ListByOwner(userID)
	out := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		rep, err := t.progress(ctx, s)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, SessionSummary{
			SessionKey:   s.Key,
			ContentTitle: s.ContentTitle,
			ContentType:  s.ContentType,
			Progress:     rep.Progress,
			StartTime:    s.StartedAt,
		})
	}
	return out, nil
}

// Owner returns the user that owns a live session.
func (t *Tracker) Owner(key string) (int64, bool) {
	s, ok := t.store.Get(key)
	if !ok {
		return 0, false
	}
	return s.UserID, true
}

// ActiveCount returns the number of live sessions.
func (t *Tracker) ActiveCount() int {
	return t.store.Len()
}

// Expire drops sessions that have run longer than ExpiryFactor times their
// planned duration and returns how many were evicted.
func (t *Tracker) Expire(ctx context.Context, now time.Time) int {
	if t.cfg.ExpiryFactor <= 0 {
		return 0
	}
	expired := 0
	for _, s := range t.store.All() {
		limit := t.cfg.ExpiryFactor * float64(s.PlannedDuration)
		if now.Sub(s.StartedAt).Seconds() <= limit {
			continue
		}
		if !s.claim() {
			continue
		}
		if err := t.markDropped(ctx, s, now); err != nil {
			s.release()
			logging.Ctx(ctx).Warn().Err(err).Str("simulation_id", s.Key).Msg("Failed to expire simulation")
			continue
		}
		t.evict(s)
		metrics.RecordSessionEnd(string(s.ContentType), "expired", elapsedSeconds(s, now), 0)
		metrics.RecordSimulationOp("expire", "ok")

		ev := t.event(s, EventExpired, now)
		ev.Progress = s.LastProgress()
		ev.Message = fmt.Sprintf("You stopped %s '%s'", s.ContentType.Verb(), s.ContentTitle)
		t.publish(ctx, ev)
		expired++
	}
	if expired > 0 {
		logging.Ctx(ctx).Info().Int("expired", expired).Msg("Expired stale simulations")
	}
	return expired
}

// Shutdown refuses further starts, marks every live session's record as
// dropped, and discards the sessions. It returns how many were discarded
// along with any ledger errors.
func (t *Tracker) Shutdown(ctx context.Context) (int, error) {
	t.lifecycle.Lock()
	if t.closed {
		t.lifecycle.Unlock()
		return 0, nil
	}
	t.closed = true
	t.lifecycle.Unlock()

	now := t.clock.Now()
	var errs []error
	drained := 0
	for _, s := range t.store.All() {
		if !s.claim() {
			continue
		}
		if err := t.markDropped(ctx, s, now); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Key, err))
		}
		t.evict(s)
		drained++
	}
	logging.Info().Int("drained", drained).Msg("Simulation tracker shut down")
	return drained, errors.Join(errs...)
}

func (t *Tracker) markDropped(ctx context.Context, s *Session, now time.Time) error {
	dropped := models.InteractionDropped
	if err := t.ledger.UpdateInteraction(ctx, s.LedgerID, models.InteractionUpdate{
		Type:           &dropped,
		CompletionDate: &now,
	}); err != nil {
		return fmt.Errorf("%w: drop interaction: %w", ErrStorage, err)
	}
	return nil
}

func (t *Tracker) evict(s *Session) {
	t.store.Remove(s.Key)
	metrics.SimulationsActive.Dec()
}

// drawDuration picks uniformly from the inclusive range for ct.
func (t *Tracker) drawDuration(ct models.ContentType) int {
	r := t.cfg.Durations[ct]
	span := r.Max - r.Min + 1
	if span <= 1 {
		return r.Min
	}
	return r.Min + t.rand.IntN(span)
}

func (t *Tracker) event(s *Session, kind EventKind, at time.Time) LifecycleEvent {
	return LifecycleEvent{
		Kind:          kind,
		SessionKey:    s.Key,
		UserID:        s.UserID,
		ContentType:   s.ContentType,
		ContentID:     s.ContentID,
		ContentTitle:  s.ContentTitle,
		InteractionID: s.LedgerID,
		OccurredAt:    at,
	}
}

func (t *Tracker) publish(ctx context.Context, ev LifecycleEvent) {
	if t.notifier != nil {
		t.notifier.Notify(ctx, ev)
	}
}

// computeProgress is floor(elapsed/planned*100) clamped to [0,100].
func computeProgress(elapsed float64, planned int) int {
	if planned <= 0 {
		return 100
	}
	pct := int(math.Floor(elapsed / float64(planned) * 100))
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

func elapsedSeconds(s *Session, now time.Time) int {
	d := int(now.Sub(s.StartedAt).Seconds())
	if d < 0 {
		return 0
	}
	return d
}

// experience is rating*10 plus one point per 30 seconds, capped at 50.
func experience(rating, duration int) int {
	return rating*10 + min(duration/30, 50)
}

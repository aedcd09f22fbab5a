// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mediarec/internal/database"
	"github.com/tomtom215/mediarec/internal/metrics"
	"github.com/tomtom215/mediarec/internal/models"
)

// Store is the catalog and ledger surface the engine reads. *database.DB
// implements it.
type Store interface {
	GetPreferences(ctx context.Context, userID int64) (models.Preferences, error)
	RecentRatedInteractions(ctx context.Context, userID int64, limit int) ([]models.Interaction, error)
	RatedContentIDs(ctx context.Context, userID int64) (map[models.ContentType][]int64, error)
	LookupContent(ctx context.Context, ct models.ContentType, id int64) (*models.ContentSummary, error)
	GetContent(ctx context.Context, ct models.ContentType, id int64) (*models.Content, error)
	ListCandidates(ctx context.Context, ct models.ContentType, f database.CandidateFilter) ([]models.Content, error)
	ListAllContent(ctx context.Context, ct models.ContentType) ([]models.Content, error)
	TrendingContent(ctx context.Context, ct models.ContentType, since time.Time, limit int) ([]models.TrendingItem, error)
	SaveFeedback(ctx context.Context, fb *models.RecommendationFeedback) error
}

// Rand is the random source for score jitter and the final shuffle.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Engine ranks catalog items for a user. It is safe for concurrent use.
type Engine struct {
	store  Store
	cfg    Config
	cache  *Cache
	rand   Rand
	now    func() time.Time
	logger zerolog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRand injects the random source.
func WithRand(r Rand) Option { return func(e *Engine) { e.rand = r } }

// WithClock injects the time source used for the newness and trending
// windows.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithCache replaces the result cache, e.g. to share it with an event
// handler.
func WithCache(c *Cache) Option { return func(e *Engine) { e.cache = c } }

// NewEngine creates an engine over store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(store Store, cfg Config, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("recommend: store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	e := &Engine{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		logger: logger.With().Str("component", "recommend").Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rand == nil {
		e.rand = newLockedRand()
	}
	if e.cache == nil {
		e.cache = NewCache(cfg.CacheTTL)
	}
	return e, nil
}

// Cache exposes the result cache so lifecycle handlers can invalidate it.
func (e *Engine) Cache() *Cache { return e.cache }

// InvalidateUser drops a user's cached results.
func (e *Engine) InvalidateUser(userID int64) int { return e.cache.InvalidateUser(userID) }

// Recommend ranks unrated items for req.UserID.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	defer func() { observe("recommend", start) }()

	if req.ContentType != "" && !req.ContentType.Valid() {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrInvalidInput, req.ContentType)
	}
	if req.Limit == 0 {
		req.Limit = e.cfg.DefaultLimit
	}
	if req.Limit < 1 || req.Limit > e.cfg.MaxLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, e.cfg.MaxLimit)
	}

	if cached, ok := e.cache.get(req); ok {
		return cloneResult(cached), nil
	}

	prefs, err := e.store.GetPreferences(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	preferred, err := e.preferredTags(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	rated, err := e.store.RatedContentIDs(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rated content: %w", err)
	}

	types := models.AllContentTypes
	if req.ContentType != "" {
		types = []models.ContentType{req.ContentType}
	}
	quota := req.Limit / len(types)

	window := e.candidateWindow(prefs)
	recs := make([]Recommendation, 0, req.Limit)
	for _, ct := range types {
		f := window
		f.ExcludeIDs = rated[ct]
		items, err := e.store.ListCandidates(ctx, ct, f)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s candidates: %w", ct, err)
		}
		recs = append(recs, e.rankType(ct, items, preferred, quota)...)
	}

	e.shuffle(recs)
	if len(recs) > req.Limit {
		recs = recs[:req.Limit]
	}

	res := &Result{Recommendations: recs, UserPreferences: prefs}
	e.cache.put(req, res)

	e.logger.Debug().
		Int64("user_id", req.UserID).
		Str("content_type", string(req.ContentType)).
		Int("preferred_tags", len(preferred)).
		Int("results", len(recs)).
		Msg("computed recommendations")
	return cloneResult(res), nil
}

// preferredTags builds the tag profile from the user's latest ratings.
// Items deleted from the catalog since they were rated are skipped.
func (e *Engine) preferredTags(ctx context.Context, userID int64) ([]string, error) {
	recent, err := e.store.RecentRatedInteractions(ctx, userID, recentRated)
	if err != nil {
		return nil, fmt.Errorf("failed to load rated interactions: %w", err)
	}
	items := make([]ratedTags, 0, len(recent))
	for i := range recent {
		it := &recent[i]
		if it.Rating == nil || *it.Rating < likedRating {
			continue
		}
		c, err := e.store.LookupContent(ctx, it.ContentType, it.ContentID)
		if errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load %s %d: %w", it.ContentType, it.ContentID, err)
		}
		items = append(items, ratedTags{rating: *it.Rating, tags: c.Tags})
	}
	return preferredTags(items), nil
}

// candidateWindow maps preferences onto the popularity and year bounds.
func (e *Engine) candidateWindow(p models.Preferences) database.CandidateFilter {
	f := database.CandidateFilter{
		MinPopularity: math.Max(models.MinPopularity, float64(p.Popularity-popularityBand)/10),
		MaxPopularity: math.Min(models.MaxPopularity, float64(p.Popularity+popularityBand)/10),
	}
	year := e.currentYear()
	switch {
	case p.Newness > newnessHigh:
		minYear := year - recentYears
		f.MinYear = &minYear
	case p.Newness < newnessLow:
		maxYear := year - classicYears
		f.MaxYear = &maxYear
	}
	return f
}

func (e *Engine) currentYear() int {
	if e.cfg.CurrentYear > 0 {
		return e.cfg.CurrentYear
	}
	return e.now().Year()
}

// rankType scores items and keeps the best quota of them.
func (e *Engine) rankType(ct models.ContentType, items []models.Content, preferred []string, quota int) []Recommendation {
	if quota <= 0 || len(items) == 0 {
		return nil
	}
	set := tagSet(preferred)
	scored := make([]Recommendation, len(items))
	for i := range items {
		score := e.score(items[i].Tags, set, len(preferred))
		scored[i] = Recommendation{
			Type:       ct,
			Content:    items[i],
			MatchScore: score,
			Reason:     fmt.Sprintf("Tag match: %.1f%%", score*100),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})
	if len(scored) > quota {
		scored = scored[:quota]
	}
	return scored
}

// score is the preferred-tag overlap ratio plus a small jitter, or a plain
// random draw when the user has no tag profile.
func (e *Engine) score(tags []string, preferred map[string]struct{}, n int) float64 {
	if n == 0 {
		return e.rand.Float64()
	}
	return float64(overlap(tags, preferred))/float64(n) + e.rand.Float64()*tagJitter
}

// shuffle is Fisher-Yates over the injected source.
func (e *Engine) shuffle(recs []Recommendation) {
	for i := len(recs) - 1; i > 0; i-- {
		j := e.rand.IntN(i + 1)
		recs[i], recs[j] = recs[j], recs[i]
	}
}

// Similar ranks items of the same type by tag Jaccard similarity with the
// source item. Items sharing no tag are left out.
func (e *Engine) Similar(ctx context.Context, ct models.ContentType, id int64, limit int) (*SimilarResult, error) {
	start := time.Now()
	defer func() { observe("similar", start) }()

	if !ct.Valid() {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrInvalidInput, ct)
	}
	if limit == 0 {
		limit = DefaultSimilarLimit
	}
	if limit < 1 || limit > MaxSimilarLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxSimilarLimit)
	}

	source, err := e.store.GetContent(ctx, ct, id)
	if err != nil {
		return nil, err
	}
	all, err := e.store.ListAllContent(ctx, ct)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s catalog: %w", ct, err)
	}

	similar := make([]SimilarItem, 0, limit)
	for i := range all {
		if all[i].ID == source.ID {
			continue
		}
		if s := jaccard(source.Tags, all[i].Tags); s > 0 {
			similar = append(similar, SimilarItem{Content: all[i], Similarity: s})
		}
	}
	sort.SliceStable(similar, func(i, j int) bool {
		a, b := similar[i], similar[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if a.Content.PopularityScore != b.Content.PopularityScore {
			return a.Content.PopularityScore > b.Content.PopularityScore
		}
		return a.Content.ID < b.Content.ID
	})
	if len(similar) > limit {
		similar = similar[:limit]
	}
	return &SimilarResult{Original: *source, Similar: similar}, nil
}

// Trending ranks items by interactions started within period.
func (e *Engine) Trending(ctx context.Context, ct models.ContentType, period Period, limit int) (*TrendingResult, error) {
	start := time.Now()
	defer func() { observe("trending", start) }()

	if ct != "" && !ct.Valid() {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrInvalidInput, ct)
	}
	period, err := ParsePeriod(string(period))
	if err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = e.cfg.DefaultLimit
	}
	if limit < 1 || limit > e.cfg.MaxLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, e.cfg.MaxLimit)
	}

	items, err := e.store.TrendingContent(ctx, ct, e.now().Add(-period.Duration()), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank trending content: %w", err)
	}
	if items == nil {
		items = []models.TrendingItem{}
	}
	return &TrendingResult{Trending: items, Period: period}, nil
}

// Feedback records whether a recommendation helped.
func (e *Engine) Feedback(ctx context.Context, userID int64, ct models.ContentType, id int64, helpful bool) (*FeedbackResult, error) {
	if !ct.Valid() {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrInvalidInput, ct)
	}
	if id < 1 {
		return nil, fmt.Errorf("%w: content id must be positive", ErrInvalidInput)
	}
	fb := &models.RecommendationFeedback{
		UserID:      userID,
		ContentType: ct,
		ContentID:   id,
		Helpful:     helpful,
		CreatedAt:   e.now().UTC(),
	}
	if err := e.store.SaveFeedback(ctx, fb); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}
	e.logger.Info().
		Int64("user_id", userID).
		Str("content_type", string(ct)).
		Int64("content_id", id).
		Bool("helpful", helpful).
		Msg("recommendation feedback recorded")
	return &FeedbackResult{Message: FeedbackMessage, ContentType: ct, ContentID: id, Helpful: helpful}, nil
}

func observe(kind string, start time.Time) {
	metrics.RecommendDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func cloneResult(r *Result) *Result {
	out := *r
	out.Recommendations = append([]Recommendation(nil), r.Recommendations...)
	return &out
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand() *lockedRand {
	return &lockedRand{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))} //nolint:gosec // ranking jitter
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

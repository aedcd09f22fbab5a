// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/models"
)

// Table and column names below come from models.ContentType. They are
// interpolated only after checkType has accepted the type.
func checkType(ct models.ContentType) error {
	if !ct.Valid() {
		return fmt.Errorf("unknown content type %q", ct)
	}
	return nil
}

func contentColumns(ct models.ContentType) string {
	return fmt.Sprintf(
		"id, title, COALESCE(%s, ''), COALESCE(genre, ''), COALESCE(year, 0), popularity_score, COALESCE(description, ''), tags, created_at",
		ct.CreatorColumn())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContent(ct models.ContentType, row rowScanner) (*models.Content, error) {
	var (
		c    models.Content
		tags string
	)
	if err := row.Scan(&c.ID, &c.Title, &c.Creator, &c.Genre, &c.Year,
		&c.PopularityScore, &c.Description, &tags, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Type = ct
	c.Tags = decodeTags(tags)
	return &c, nil
}

func encodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeTags(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		logging.Warn().Err(err).Str("raw", raw).Msg("Malformed tags column")
		return []string{}
	}
	return tags
}

// unionTags appends the tags in add that are not already in base.
func unionTags(base, add []string) []string {
	seen := make(map[string]struct{}, len(base)+len(add))
	out := make([]string, 0, len(base)+len(add))
	for _, list := range [][]string{base, add} {
		for _, t := range list {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func contentWhere(ct models.ContentType, f *models.ContentFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Genre != "" {
		conds = append(conds, "genre ILIKE ?")
		args = append(args, "%"+f.Genre+"%")
	}
	if f.Year != nil {
		conds = append(conds, "year = ?")
		args = append(args, *f.Year)
	}
	if f.Search != "" {
		conds = append(conds, fmt.Sprintf("(title ILIKE ? OR %s ILIKE ?)", ct.CreatorColumn()))
		args = append(args, "%"+f.Search+"%", "%"+f.Search+"%")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListContent returns a filtered page of one catalog table ordered by id.
func (db *DB) ListContent(ctx context.Context, ct models.ContentType, f models.ContentFilter) ([]models.Content, error) {
	if err := checkType(ct); err != nil {
		return nil, err
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := contentWhere(ct, &f)
	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY id LIMIT ? OFFSET ?", contentColumns(ct), ct.Table(), where)
	args = append(args, f.Limit, f.Skip)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", ct.Table(), err)
	}
	defer closeWithLog(rows, "rows")

	items := []models.Content{}
	for rows.Next() {
		c, err := scanContent(ct, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", ct, err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// CountContent counts the rows ListContent would page through.
func (db *DB) CountContent(ctx context.Context, ct models.ContentType, f models.ContentFilter) (int64, error) {
	if err := checkType(ct); err != nil {
		return 0, err
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	where, args := contentWhere(ct, &f)
	var n int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+ct.Table()+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", ct.Table(), err)
	}
	return n, nil
}

// GetContent returns one item or ErrNotFound.
func (db *DB) GetContent(ctx context.Context, ct models.ContentType, id int64) (*models.Content, error) {
	if err := checkType(ct); err != nil {
		return nil, err
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", contentColumns(ct), ct.Table()), id)
	c, err := scanContent(ct, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %d: %w", ct, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", ct, id, err)
	}
	return c, nil
}

// LookupContent is the catalog lookup used by the simulation tracker.
func (db *DB) LookupContent(ctx context.Context, ct models.ContentType, id int64) (*models.ContentSummary, error) {
	c, err := db.GetContent(ctx, ct, id)
	if err != nil {
		return nil, err
	}
	return c.Summary(), nil
}

// CreateContent inserts an item and returns it as stored.
func (db *DB) CreateContent(ctx context.Context, ct models.ContentType, in *models.ContentInput) (*models.Content, error) {
	if err := checkType(ct); err != nil {
		return nil, err
	}
	return db.insertContent(ctx, ct, in, time.Now().UTC())
}

func (db *DB) insertContent(ctx context.Context, ct models.ContentType, in *models.ContentInput, createdAt time.Time) (*models.Content, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`INSERT INTO %s (title, %s, genre, year, popularity_score, description, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`, ct.Table(), ct.CreatorColumn())

	var id int64
	err := db.conn.QueryRowContext(ctx, query,
		in.Title, in.ResolvedCreator(), in.Genre, in.Year, in.PopularityScore,
		in.Description, encodeTags(in.Tags), createdAt,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to insert %s: %w", ct, err)
	}
	return db.GetContent(ctx, ct, id)
}

// UpdateContent replaces every editable field of an item. It returns the
// previous and the new state for the audit trail.
func (db *DB) UpdateContent(ctx context.Context, ct models.ContentType, id int64, in *models.ContentInput) (before, after *models.Content, err error) {
	before, err = db.GetContent(ctx, ct, id)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf(`UPDATE %s SET title = ?, %s = ?, genre = ?, year = ?, popularity_score = ?,
		description = ?, tags = ? WHERE id = ?`, ct.Table(), ct.CreatorColumn())
	res, err := db.conn.ExecContext(ctx, query,
		in.Title, in.ResolvedCreator(), in.Genre, in.Year, in.PopularityScore,
		in.Description, encodeTags(in.Tags), id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update %s %d: %w", ct, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil, fmt.Errorf("%s %d: %w", ct, id, ErrNotFound)
	}

	after, err = db.GetContent(ctx, ct, id)
	return before, after, err
}

// DeleteContent removes an item and returns what was deleted. Ledger rows
// referring to it are kept.
func (db *DB) DeleteContent(ctx context.Context, ct models.ContentType, id int64) (*models.Content, error) {
	before, err := db.GetContent(ctx, ct, id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, "DELETE FROM "+ct.Table()+" WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete %s %d: %w", ct, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%s %d: %w", ct, id, ErrNotFound)
	}
	return before, nil
}

// SearchContent matches title, creator and description case-insensitively.
// With no type the limit is split evenly across the three tables.
func (db *DB) SearchContent(ctx context.Context, query string, ct models.ContentType, limit int) ([]models.Content, error) {
	types := models.AllContentTypes
	perType := limit
	if ct != "" {
		if err := checkType(ct); err != nil {
			return nil, err
		}
		types = []models.ContentType{ct}
	} else {
		perType = limit / len(types)
		if perType < 1 {
			perType = 1
		}
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	pattern := "%" + query + "%"
	results := []models.Content{}
	for _, t := range types {
		q := fmt.Sprintf(`SELECT %s FROM %s
			WHERE title ILIKE ? OR %s ILIKE ? OR description ILIKE ?
			ORDER BY popularity_score DESC, id LIMIT ?`,
			contentColumns(t), t.Table(), t.CreatorColumn())

		rows, err := db.conn.QueryContext(ctx, q, pattern, pattern, pattern, perType)
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", t.Table(), err)
		}
		for rows.Next() {
			c, err := scanContent(t, rows)
			if err != nil {
				closeQuietly(rows)
				return nil, fmt.Errorf("failed to scan %s row: %w", t, err)
			}
			results = append(results, *c)
		}
		err = rows.Err()
		closeWithLog(rows, "rows")
		if err != nil {
			return nil, err
		}
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// CandidateFilter bounds the recommendation candidate query. Nil year
// bounds are open.
type CandidateFilter struct {
	MinPopularity float64
	MaxPopularity float64
	MinYear       *int
	MaxYear       *int
	ExcludeIDs    []int64
}

// ListCandidates returns every item of ct inside the popularity and year
// window, minus the excluded ids.
func (db *DB) ListCandidates(ctx context.Context, ct models.ContentType, f CandidateFilter) ([]models.Content, error) {
	if err := checkType(ct); err != nil {
		return nil, err
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	conds := []string{"popularity_score >= ?", "popularity_score <= ?"}
	args := []any{f.MinPopularity, f.MaxPopularity}
	if f.MinYear != nil {
		conds = append(conds, "year >= ?")
		args = append(args, *f.MinYear)
	}
	if f.MaxYear != nil {
		conds = append(conds, "year <= ?")
		args = append(args, *f.MaxYear)
	}
	if len(f.ExcludeIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.ExcludeIDs)), ",")
		conds = append(conds, "id NOT IN ("+placeholders+")")
		for _, id := range f.ExcludeIDs {
			args = append(args, id)
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY id",
		contentColumns(ct), ct.Table(), strings.Join(conds, " AND "))
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s candidates: %w", ct, err)
	}
	defer closeWithLog(rows, "rows")

	items := []models.Content{}
	for rows.Next() {
		c, err := scanContent(ct, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", ct, err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ListAllContent returns every item of one type, for similarity scans.
func (db *DB) ListAllContent(ctx context.Context, ct models.ContentType) ([]models.Content, error) {
	return db.ListCandidates(ctx, ct, CandidateFilter{MinPopularity: models.MinPopularity, MaxPopularity: models.MaxPopularity})
}

// ApplyRating blends rating into the item's popularity with a
// compare-and-swap loop: the UPDATE only lands if the score is still the
// value it was computed from, so concurrent completions never lose an update.
func (db *DB) ApplyRating(ctx context.Context, ct models.ContentType, id int64, rating int) (float64, error) {
	if err := checkType(ct); err != nil {
		return 0, err
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	selectQ := "SELECT popularity_score FROM " + ct.Table() + " WHERE id = ?"
	updateQ := "UPDATE " + ct.Table() + " SET popularity_score = ? WHERE id = ? AND popularity_score = ?"

	for attempt := 0; attempt < db.maxCASRetries; attempt++ {
		var current float64
		err := db.conn.QueryRowContext(ctx, selectQ, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s %d: %w", ct, id, ErrNotFound)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read popularity of %s %d: %w", ct, id, err)
		}

		next := models.BlendPopularity(current, rating)
		res, err := db.conn.ExecContext(ctx, updateQ, next, id, current)
		if isTransactionConflict(err) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to update popularity of %s %d: %w", ct, id, err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			return next, nil
		}

		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}
	return 0, fmt.Errorf("popularity update of %s %d: %w after %d attempts", ct, id, ErrConflict, db.maxCASRetries)
}

// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
crud_interactions.go - Interaction Ledger

The simulation tracker is the only writer of started/completed/dropped rows.
Progress writes are overwrites of progress_percent, never increments, so two
racing writers both leave a value derived from elapsed time.

Reads join the ledger with a UNION of the three catalog tables so history
and library views can show titles without a per-row lookup.
*/

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/mediarec/internal/models"
)

// catalogUnion is a (content_type, id, title, creator, popularity_score)
// view over all three catalog tables.
func catalogUnion() string {
	parts := make([]string, 0, len(models.AllContentTypes))
	for _, ct := range models.AllContentTypes {
		parts = append(parts, fmt.Sprintf(
			"SELECT '%s' AS content_type, id, title, COALESCE(%s, '') AS creator, popularity_score FROM %s",
			ct, ct.CreatorColumn(), ct.Table()))
	}
	return "(" + strings.Join(parts, " UNION ALL ") + ")"
}

const interactionColumns = `i.interaction_id, i.user_id, i.content_type, i.content_id, i.interaction_type,
	i.rating, i.progress_percent, i.start_date, i.completion_date, i.simulation_duration, i.tags_extracted`

func scanInteraction(row rowScanner, extra ...any) (*models.Interaction, error) {
	var (
		it         models.Interaction
		ct, itype  string
		rating     sql.NullInt64
		completion sql.NullTime
		duration   sql.NullInt64
		tags       string
	)
	dest := []any{&it.ID, &it.UserID, &ct, &it.ContentID, &itype,
		&rating, &it.ProgressPercent, &it.StartDate, &completion, &duration, &tags}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	it.ContentType = models.ContentType(ct)
	it.Type = models.InteractionType(itype)
	if rating.Valid {
		r := int(rating.Int64)
		it.Rating = &r
	}
	if completion.Valid {
		t := completion.Time
		it.CompletionDate = &t
	}
	if duration.Valid {
		d := int(duration.Int64)
		it.SimulationDuration = &d
	}
	it.TagsExtracted = decodeTags(tags)
	return &it, nil
}

// CreateInteraction appends a ledger row and returns its id.
func (db *DB) CreateInteraction(ctx context.Context, it *models.Interaction) (int64, error) {
	if err := checkType(it.ContentType); err != nil {
		return 0, err
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var id int64
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO user_interactions
			(user_id, content_type, content_id, interaction_type, rating, progress_percent,
			 start_date, completion_date, simulation_duration, tags_extracted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING interaction_id`,
		it.UserID, string(it.ContentType), it.ContentID, string(it.Type),
		nullableInt(it.Rating), it.ProgressPercent, it.StartDate.UTC(),
		nullableTime(it.CompletionDate), nullableInt(it.SimulationDuration),
		encodeTags(it.TagsExtracted),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert interaction: %w", err)
	}
	return id, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC()
}

// UpdateInteraction applies a partial update. AddTags is unioned into
// tags_extracted inside the same transaction.
func (db *DB) UpdateInteraction(ctx context.Context, id int64, upd models.InteractionUpdate) error {
	if upd.Empty() {
		return nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var sets []string
	var args []any
	if upd.Type != nil {
		sets = append(sets, "interaction_type = ?")
		args = append(args, string(*upd.Type))
	}
	if upd.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *upd.Rating)
	}
	if upd.ProgressPercent != nil {
		sets = append(sets, "progress_percent = ?")
		args = append(args, *upd.ProgressPercent)
	}
	if upd.CompletionDate != nil {
		sets = append(sets, "completion_date = ?")
		args = append(args, upd.CompletionDate.UTC())
	}
	if upd.SimulationDuration != nil {
		sets = append(sets, "simulation_duration = ?")
		args = append(args, *upd.SimulationDuration)
	}
	if len(upd.AddTags) > 0 {
		var raw string
		err = tx.QueryRowContext(ctx, `SELECT tags_extracted FROM user_interactions WHERE interaction_id = ?`, id).Scan(&raw)
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("interaction %d: %w", id, ErrNotFound)
			return err
		}
		if err != nil {
			err = fmt.Errorf("failed to read tags of interaction %d: %w", id, err)
			return err
		}
		sets = append(sets, "tags_extracted = ?")
		args = append(args, encodeTags(unionTags(decodeTags(raw), upd.AddTags)))
	}

	args = append(args, id)
	var res sql.Result
	res, err = tx.ExecContext(ctx,
		"UPDATE user_interactions SET "+strings.Join(sets, ", ")+" WHERE interaction_id = ?", args...)
	if err != nil {
		err = fmt.Errorf("failed to update interaction %d: %w", id, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = fmt.Errorf("interaction %d: %w", id, ErrNotFound)
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit interaction %d: %w", id, err)
	}
	return nil
}

// GetInteraction returns one ledger row or ErrNotFound.
func (db *DB) GetInteraction(ctx context.Context, id int64) (*models.Interaction, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		"SELECT "+interactionColumns+" FROM user_interactions i WHERE i.interaction_id = ?", id)
	it, err := scanInteraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("interaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interaction %d: %w", id, err)
	}
	return it, nil
}

// ListInteractions returns a user's history, newest start first.
func (db *DB) ListInteractions(ctx context.Context, userID int64, f models.InteractionFilter) ([]models.InteractionWithContent, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	conds := []string{"i.user_id = ?"}
	args := []any{userID}
	if f.ContentType != "" {
		conds = append(conds, "i.content_type = ?")
		args = append(args, string(f.ContentType))
	}
	if f.InteractionType != "" {
		conds = append(conds, "i.interaction_type = ?")
		args = append(args, string(f.InteractionType))
	}
	args = append(args, f.Limit, f.Skip)

	query := "SELECT " + interactionColumns + ", COALESCE(c.title, '') FROM user_interactions i " +
		"LEFT JOIN " + catalogUnion() + " c ON c.content_type = i.content_type AND c.id = i.content_id " +
		"WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY i.start_date DESC, i.interaction_id DESC LIMIT ? OFFSET ?"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out := []models.InteractionWithContent{}
	for rows.Next() {
		var title string
		it, err := scanInteraction(rows, &title)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		out = append(out, models.InteractionWithContent{Interaction: *it, ContentTitle: title})
	}
	return out, rows.Err()
}

// InteractionStats aggregates a user's ledger. Ratings, time spent and the
// per-type breakdown count completed rows only; recent_activity counts rows
// started in the seven days before now.
func (db *DB) InteractionStats(ctx context.Context, userID int64, now time.Time) (*models.InteractionStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	stats := &models.InteractionStats{
		ByContentType: map[string]int64{},
	}
	for _, ct := range models.AllContentTypes {
		stats.ByContentType[string(ct)] = 0
	}

	var avg sql.NullFloat64
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE interaction_type = 'completed'),
			COUNT(*) FILTER (WHERE interaction_type = 'dropped'),
			AVG(rating) FILTER (WHERE interaction_type = 'completed' AND rating IS NOT NULL),
			CAST(COALESCE(SUM(simulation_duration) FILTER (WHERE interaction_type = 'completed'), 0) AS BIGINT),
			COUNT(*) FILTER (WHERE start_date >= ?)
		FROM user_interactions WHERE user_id = ?`,
		now.UTC().Add(-7*24*time.Hour), userID,
	).Scan(&stats.TotalInteractions, &stats.Completed, &stats.Dropped, &avg, &stats.TotalTimeSpent, &stats.RecentActivity)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate interactions: %w", err)
	}
	if avg.Valid {
		stats.AverageRating = math.Round(avg.Float64*100) / 100
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT content_type, COUNT(*) FROM user_interactions
		WHERE user_id = ? AND interaction_type = 'completed'
		GROUP BY content_type`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to group interactions: %w", err)
	}
	defer closeWithLog(rows, "rows")
	for rows.Next() {
		var (
			ct string
			n  int64
		)
		if err := rows.Scan(&ct, &n); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		stats.ByContentType[ct] = n
	}
	return stats, rows.Err()
}

// Library returns a user's ledger grouped by state.
func (db *DB) Library(ctx context.Context, userID int64, status models.LibraryStatus, ct models.ContentType) (*models.Library, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	lib := &models.Library{
		Reading:   []models.LibraryItem{},
		Completed: []models.LibraryItem{},
		Dropped:   []models.LibraryItem{},
		Planned:   []models.LibraryItem{},
	}

	conds := []string{"i.user_id = ?"}
	args := []any{userID}
	if ct != "" {
		conds = append(conds, "i.content_type = ?")
		args = append(args, string(ct))
	}
	switch status {
	case models.LibraryReading:
		conds = append(conds, "i.interaction_type = 'started'")
	case models.LibraryCompleted:
		conds = append(conds, "i.interaction_type = 'completed'")
	case models.LibraryDropped:
		conds = append(conds, "i.interaction_type = 'dropped'")
	case models.LibraryPlanned:
		return lib, nil
	}

	query := "SELECT " + interactionColumns + ", COALESCE(c.title, ''), COALESCE(c.creator, '') FROM user_interactions i " +
		"LEFT JOIN " + catalogUnion() + " c ON c.content_type = i.content_type AND c.id = i.content_id " +
		"WHERE " + strings.Join(conds, " AND ") + " ORDER BY i.start_date DESC, i.interaction_id DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var title, creator string
		it, err := scanInteraction(rows, &title, &creator)
		if err != nil {
			return nil, fmt.Errorf("failed to scan library row: %w", err)
		}
		item := models.LibraryItem{
			InteractionID:  it.ID,
			ContentType:    it.ContentType,
			ContentID:      it.ContentID,
			Title:          title,
			Creator:        creator,
			Status:         it.Type,
			Rating:         it.Rating,
			Progress:       it.ProgressPercent,
			StartDate:      it.StartDate,
			CompletionDate: it.CompletionDate,
		}
		switch it.Type {
		case models.InteractionCompleted:
			lib.Completed = append(lib.Completed, item)
		case models.InteractionDropped:
			lib.Dropped = append(lib.Dropped, item)
		default:
			lib.Reading = append(lib.Reading, item)
		}
	}
	return lib, rows.Err()
}

// DeleteInteraction removes a row owned by userID. A row owned by someone
// else is reported as ErrNotFound.
func (db *DB) DeleteInteraction(ctx context.Context, userID, id int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM user_interactions WHERE interaction_id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete interaction %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("interaction %d: %w", id, ErrNotFound)
	}
	return nil
}

// RecentRatedInteractions returns the user's latest rated rows, newest
// completion first.
func (db *DB) RecentRatedInteractions(ctx context.Context, userID int64, limit int) ([]models.Interaction, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+interactionColumns+` FROM user_interactions i
		 WHERE i.user_id = ? AND i.rating IS NOT NULL
		 ORDER BY i.completion_date DESC NULLS LAST, i.interaction_id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rated interactions: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var out []models.Interaction
	for rows.Next() {
		it, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// RatedContentIDs returns, per type, the ids the user has rated.
func (db *DB) RatedContentIDs(ctx context.Context, userID int64) (map[models.ContentType][]int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT DISTINCT content_type, content_id FROM user_interactions
		 WHERE user_id = ? AND rating IS NOT NULL ORDER BY content_type, content_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rated content: %w", err)
	}
	defer closeWithLog(rows, "rows")

	out := make(map[models.ContentType][]int64)
	for rows.Next() {
		var (
			ct string
			id int64
		)
		if err := rows.Scan(&ct, &id); err != nil {
			return nil, fmt.Errorf("failed to scan rated content: %w", err)
		}
		out[models.ContentType(ct)] = append(out[models.ContentType(ct)], id)
	}
	return out, rows.Err()
}

// TrendingContent ranks items by the number of interactions started at or
// after since, then by popularity. Items with no interactions in the window
// are not returned.
func (db *DB) TrendingContent(ctx context.Context, ct models.ContentType, since time.Time, limit int) ([]models.TrendingItem, error) {
	types := models.AllContentTypes
	if ct != "" {
		if err := checkType(ct); err != nil {
			return nil, err
		}
		types = []models.ContentType{ct}
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(types)), ",")
	args := []any{since.UTC()}
	for _, t := range types {
		args = append(args, string(t))
	}
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT i.content_type, i.content_id, COUNT(*) AS n, MAX(c.popularity_score) AS pop
		FROM user_interactions i
		JOIN `+catalogUnion()+` c ON c.content_type = i.content_type AND c.id = i.content_id
		WHERE i.start_date >= ? AND i.content_type IN (`+placeholders+`)
		GROUP BY i.content_type, i.content_id
		ORDER BY n DESC, pop DESC, i.content_id
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to rank trending content: %w", err)
	}

	type ranked struct {
		ct models.ContentType
		id int64
		n  int64
	}
	var keys []ranked
	for rows.Next() {
		var (
			r   ranked
			t   string
			pop float64
		)
		if err := rows.Scan(&t, &r.id, &r.n, &pop); err != nil {
			closeQuietly(rows)
			return nil, fmt.Errorf("failed to scan trending row: %w", err)
		}
		r.ct = models.ContentType(t)
		keys = append(keys, r)
	}
	err = rows.Err()
	closeWithLog(rows, "rows")
	if err != nil {
		return nil, err
	}

	out := make([]models.TrendingItem, 0, len(keys))
	for _, k := range keys {
		c, err := db.GetContent(ctx, k.ct, k.id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, models.TrendingItem{Content: *c, Interactions: k.n})
	}
	return out, nil
}

// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
database_schema.go - Database Schema Management

Tables:
  - books, movies, games: the catalog. Identical except for the creator
    column (author, director, developer).
  - roles, users: accounts. Preferences are a JSON object.
  - user_interactions: the ledger written by the simulation tracker.
  - admin_actions: audit trail of admin mutations.
  - recommendation_feedback: thumbs up/down on recommendations.

Ids come from sequences. JSON values (tags, preferences, audit snapshots)
are stored as VARCHAR so the json extension is not required. There are no
foreign keys; deleting content leaves ledger rows behind, and the ledger
joins tolerate the missing title.
*/

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/mediarec/internal/models"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func catalogTableQuery(ct models.ContentType) []string {
	seq := "seq_" + ct.Table()
	return []string{
		fmt.Sprintf(`CREATE SEQUENCE IF NOT EXISTS %s START 1`, seq),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGINT PRIMARY KEY DEFAULT nextval('%s'),
			title VARCHAR NOT NULL,
			%s VARCHAR,
			genre VARCHAR,
			year INTEGER,
			popularity_score DOUBLE NOT NULL DEFAULT 0,
			description VARCHAR,
			tags VARCHAR NOT NULL DEFAULT '[]',
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`, ct.Table(), seq, ct.CreatorColumn()),
	}
}

func tableCreationQueries() []string {
	var queries []string
	for _, ct := range models.AllContentTypes {
		queries = append(queries, catalogTableQuery(ct)...)
	}

	queries = append(queries,
		`CREATE TABLE IF NOT EXISTS roles (
			role_id BIGINT PRIMARY KEY,
			role_name VARCHAR NOT NULL UNIQUE,
			permissions VARCHAR NOT NULL DEFAULT '{}'
		)`,

		`CREATE SEQUENCE IF NOT EXISTS seq_users START 1`,
		`CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY DEFAULT nextval('seq_users'),
			username VARCHAR NOT NULL UNIQUE,
			email VARCHAR NOT NULL UNIQUE,
			password_hash VARCHAR NOT NULL,
			role_id BIGINT NOT NULL DEFAULT 2,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			preferences VARCHAR NOT NULL DEFAULT '{"popularity":50,"newness":50}',
			is_active BOOLEAN NOT NULL DEFAULT true
		)`,

		`CREATE SEQUENCE IF NOT EXISTS seq_interactions START 1`,
		`CREATE TABLE IF NOT EXISTS user_interactions (
			interaction_id BIGINT PRIMARY KEY DEFAULT nextval('seq_interactions'),
			user_id BIGINT NOT NULL,
			content_type VARCHAR NOT NULL,
			content_id BIGINT NOT NULL,
			interaction_type VARCHAR NOT NULL,
			rating INTEGER,
			progress_percent INTEGER NOT NULL DEFAULT 0,
			start_date TIMESTAMP NOT NULL,
			completion_date TIMESTAMP,
			simulation_duration INTEGER,
			tags_extracted VARCHAR NOT NULL DEFAULT '[]'
		)`,

		`CREATE SEQUENCE IF NOT EXISTS seq_admin_actions START 1`,
		`CREATE TABLE IF NOT EXISTS admin_actions (
			action_id BIGINT PRIMARY KEY DEFAULT nextval('seq_admin_actions'),
			admin_user_id BIGINT NOT NULL,
			action_type VARCHAR NOT NULL,
			target_table VARCHAR NOT NULL,
			target_id BIGINT NOT NULL,
			old_values VARCHAR,
			new_values VARCHAR,
			timestamp TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		`CREATE SEQUENCE IF NOT EXISTS seq_feedback START 1`,
		`CREATE TABLE IF NOT EXISTS recommendation_feedback (
			feedback_id BIGINT PRIMARY KEY DEFAULT nextval('seq_feedback'),
			user_id BIGINT NOT NULL,
			content_type VARCHAR NOT NULL,
			content_id BIGINT NOT NULL,
			helpful BOOLEAN NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
	)
	return queries
}

func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_interactions_user ON user_interactions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_content ON user_interactions(content_type, content_id)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_start ON user_interactions(start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_admin_actions_admin ON admin_actions(admin_user_id)`,
	}
	for _, q := range indexes {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", q, err)
		}
	}
	return nil
}

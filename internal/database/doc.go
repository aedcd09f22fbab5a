// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

// Package database is the DuckDB-backed persistence layer for Mediarec.
//
// # Architecture
//
//   - database.go: connection lifecycle and pool configuration
//   - database_schema.go: sequences, tables, indexes
//   - crud_content.go: the book, movie and game catalogs, search, and the
//     compare-and-swap popularity update
//   - crud_users.go: roles, accounts, preferences
//   - crud_interactions.go: the interaction ledger, stats, library, trending
//   - crud_admin.go: admin audit trail and recommendation feedback
//   - seed.go: demo accounts and sample catalog
//
// # Concurrency
//
// DuckDB uses optimistic concurrency. Writers that touch the same row may
// fail with a transaction conflict; ApplyRating retries those, other writes
// surface the error to the caller.
//
// Timestamps are stored as TIMESTAMP and always written in UTC.
package database

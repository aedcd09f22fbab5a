// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

// Package logging provides centralized zerolog-based structured logging for Mediarec.
//
// JSON output is the production default; console output is available for
// local development.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("user", "alice").Msg("Login successful")
//	logging.Error().Err(err).Int64("content_id", id).Msg("Rating update failed")
//
//	// Request, correlation and user IDs stored in ctx are attached.
//	logging.Ctx(ctx).Info().Msg("Simulation started")
//
// # Configuration
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Components
//
//   - logger.go: global logger, level parsing, helpers
//   - context.go: request/correlation/user IDs carried on context.Context
//   - slog_adapter.go: slog.Handler backed by zerolog, used by suture
//   - security.go: audit events for login, logout, and access control
package logging

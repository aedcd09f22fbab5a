// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

// Package main provides the Mediarec HTTP server
//
// @title Mediarec API
// @version 1.0
// @description Media catalog, consumption simulation and recommendation service
// @description
// @description ## Features
// @description
// @description - **Catalog**: books, movies and games with tag-based search
// @description - **Simulation**: time-driven consumption sessions with flavor events
// @description - **Ledger**: per-user interaction history, statistics and library
// @description - **Recommendations**: preference and tag-overlap ranking, similar items, trending
// @description - **Real-time Updates**: simulation lifecycle events over WebSocket
// @description
// @description ## Authentication
// @description
// @description Obtain a token from `/api/v1/auth/login` and send it as `Authorization: Bearer <token>`.
// @description Admin routes under `/api/v1/admin` and catalog writes require the admin role.
// @description
// @description ## Rate Limiting
// @description
// @description Login and registration: 5 requests per minute per IP address.
// @description Writes: 30 per minute. Reads: 100 per minute.
// @description
// @description ## Error Responses
// @description
// @description All error responses follow this format:
// @description ```json
// @description {
// @description   "success": false,
// @description   "error": {
// @description     "code": "NOT_FOUND",
// @description     "message": "Book not found"
// @description   },
// @description   "meta": {
// @description     "timestamp": "2026-05-01T12:34:56Z",
// @description     "request_id": "..."
// @description   }
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/mediarec/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8000
// @BasePath /
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token from /api/v1/auth/login, sent as "Bearer <token>".
//
// @tag.name Core
// @tag.description Service information and health
//
// @tag.name Auth
// @tag.description Registration, login and the caller's profile
//
// @tag.name Content
// @tag.description Catalog browsing and search
//
// @tag.name Simulation
// @tag.description Consumption session lifecycle and the event stream
//
// @tag.name Interactions
// @tag.description The caller's interaction ledger
//
// @tag.name Recommendations
// @tag.description Personal recommendations, similar items and trending
//
// @tag.name Admin
// @tag.description Catalog maintenance, account moderation and the audit trail
package main

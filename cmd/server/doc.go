// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
Package main is the entry point for the Mediarec server application.

Mediarec serves a catalog of books, movies and games, simulates users
consuming them in real time, records every interaction in a per-user ledger
and ranks recommendations from those interactions.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("mediarec")
	├── DataSupervisor ("data-layer")
	│   └── Simulation reaper (expires abandoned sessions)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub (per-user simulation events)
	│   └── Event router (cache invalidation, websocket fan-out)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (drains the tracker on shutdown)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB catalog and ledger, seeded when empty
 4. Event bus: Watermill over an in-process channel or NATS JetStream
 5. Simulation tracker and recommendation engine
 6. Authentication: JWT with a badger revocation list, casbin RBAC
 7. Supervisor Tree and HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=8000
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Authentication
	JWT_SECRET=<32+ chars>       # Required
	SESSION_TIMEOUT=24h
	REVOCATION_PATH=/data/revoked   # empty keeps revocations in memory

	# Storage
	DB_PATH=/data/mediarec.duckdb
	DB_SEED=true                 # load the sample catalog into an empty database

	# Events
	EVENTS_BACKEND=memory        # memory or nats
	NATS_EMBEDDED=false
	NATS_URL=nats://127.0.0.1:4222

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Waits for in-flight requests
 3. Records every live simulation session as dropped
 4. Stops the event router and websocket hub
 5. Closes the event bus, revocation list and database

# Usage Examples

Development:

	export JWT_SECRET=$(openssl rand -base64 32)
	export DB_PATH=:memory: LOG_FORMAT=console
	go run ./cmd/server

Seeded accounts are admin/admin123 and testuser/test123.

# API Documentation

Swagger documentation is available at /swagger/index.html when the server
is running.

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/simulation: Consumption session tracker
  - cmd/mediarec-admin: Offline administration CLI
*/
package main

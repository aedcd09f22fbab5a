// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
Package api provides the HTTP REST API layer for Mediarec.

Every response, success or failure, uses the APIResponse envelope:

	{"success": true, "data": {...}, "metadata": {"timestamp": "...", "request_id": "..."}}
	{"success": false, "error": {"code": "NOT_FOUND", "message": "Book not found"}, "metadata": {...}}

Route groups:

 1. Service (/, /health, /metrics, /swagger/*)
 2. Authentication (/api/v1/auth/register, /api/v1/auth/login), IP rate limited
 3. Catalog (/api/v1/content/{kind}), reads for users, writes for admins
 4. Simulation (/api/v1/simulation/...), plus the /simulation/ws event stream
 5. Interactions (/api/v1/interactions/...), the caller's ledger and library
 6. Recommendations (/api/v1/recommendations/...)
 7. Administration (/api/v1/admin/...), accounts and the audit trail

Authentication runs as auth.Middleware; role checks run as authz.Middleware
with one policy object per group. Admin mutations are written to the
admin_actions table after they succeed.

Usage:

	handler := api.NewHandler(api.Deps{
	    Config:  cfg,
	    DB:      db,
	    Tracker: tracker,
	    Engine:  engine,
	    Auth:    authSvc,
	    Hub:     hub,
	})
	router := api.NewRouter(handler, authMw, authzMw, nil)
	srv := &http.Server{Handler: router.SetupChi()}
*/
package api

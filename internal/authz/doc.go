// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

// Package authz provides role-based authorization using Casbin.
//
// Requests pass through authentication first, then authorization:
//
//	Request -> auth.Middleware.Authenticate -> Middleware.Authorize -> Handler
//
// # Model
//
// The embedded model is RBAC with role inheritance. Subjects are role
// names, objects are resource areas and actions are read, write or delete:
//
//	m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
//
// The embedded policy grants user the self-service areas (content read,
// interactions, simulation, recommendations, profile). Admin inherits user
// and adds content write/delete, users and audit.
//
// Both files can be replaced on disk through security.casbin.model_path and
// security.casbin.policy_path.
//
// # Usage
//
//	enforcer, err := authz.NewEnforcer(&cfg.Security.Casbin)
//	if err != nil {
//		return err
//	}
//	defer enforcer.Close()
//
//	mw := authz.NewMiddleware(enforcer, api.WriteError)
//	r.With(mw.Authorize(authz.ObjectUsers, authz.ActionRead)).Get("/admin/users", h.ListUsers)
//
// Decisions are cached per (role, object, action) for security.casbin.cache_ttl.
// Metrics are exported as authz_decisions_total, authz_decision_duration_seconds
// and authz_denied_total.
package authz

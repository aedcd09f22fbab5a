// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
Package auth is the identity gate: registration, login, logout and the
request middleware that turns a bearer token into an AuthSubject.

Key Components:

  - JWTManager: HS256 tokens with sub, username, role, jti, exp, iat, nbf
  - Service: Register, Login, Logout and Authenticate over a UserStore
  - BadgerRevocationList: logged-out jtis, kept until the token expires
  - Middleware: token extraction, active-user check, per-subject rate limit

Tokens are accepted from an "Authorization: Bearer" header or a "token"
cookie. Every request re-reads the user, so blocking an account or deleting
it takes effect on the next request rather than at token expiry.

Usage:

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	revoked, err := auth.OpenRevocationList(cfg.Security.RevocationPath)
	svc := auth.NewService(db, jwtManager, revoked, cfg.Security.BcryptCost)
	mw := auth.NewMiddleware(svc, cfg.Security.RateLimitReqs, cfg.Security.RateLimitWindow, api.WriteError)

	r.With(mw.Authenticate).Get("/auth/me", handler.Me)

Handlers read the caller with SubjectFromContext.
*/
package auth

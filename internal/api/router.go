// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/mediarec/internal/auth"
	"github.com/tomtom215/mediarec/internal/authz"
	"github.com/tomtom215/mediarec/internal/middleware"
)

// Router wires handlers to routes and middleware.
type Router struct {
	handler       *Handler
	authn         *auth.Middleware
	authz         *authz.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil chiMw is built from the handler's
// security config.
func NewRouter(handler *Handler, authn *auth.Middleware, authzMw *authz.Middleware, chiMw *ChiMiddleware) *Router {
	if chiMw == nil {
		var (
			origins  []string
			disabled bool
		)
		if handler.config != nil {
			origins = handler.config.Security.CORSOrigins
			disabled = handler.config.Security.RateLimitDisabled
		}
		chiMw = NewChiMiddlewareFromSecurity(origins, disabled)
	}
	return &Router{
		handler:       handler,
		authn:         authn,
		authz:         authzMw,
		chiMiddleware: chiMw,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler
	can := router.authz.Authorize

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	// ========================
	// Service Endpoints
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", h.Root)
		r.Get("/health", h.Health)
		r.Handle("/metrics", promhttp.Handler())
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		// ========================
		// Authentication Endpoints
		// ========================
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitAuth())
			r.Post("/auth/register", h.Register)
			r.Post("/auth/login", h.Login)
		})

		// ========================
		// Authenticated Reads
		// ========================
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitAPI())
			r.Use(middleware.Compression)
			r.Use(router.authn.Authenticate)

			r.With(can(authz.ObjectProfile, authz.ActionRead)).Get("/auth/me", h.Me)

			r.Group(func(r chi.Router) {
				r.Use(can(authz.ObjectContent, authz.ActionRead))
				r.Get("/content/search", h.SearchContent)
				r.Get("/content/{kind}", h.ListContent)
				r.Get("/content/{kind}/{id}", h.GetContent)
			})

			r.Group(func(r chi.Router) {
				r.Use(can(authz.ObjectSimulation, authz.ActionRead))
				r.Get("/simulation/progress/{id}", h.SimulationProgress)
				r.Get("/simulation/active", h.ActiveSimulations)
				r.Get("/simulation/ws", h.SimulationEvents)
			})

			r.Group(func(r chi.Router) {
				r.Use(can(authz.ObjectInteractions, authz.ActionRead))
				r.Get("/interactions", h.ListInteractions)
				r.Get("/interactions/stats", h.InteractionStats)
				r.Get("/interactions/library", h.Library)
			})

			r.Group(func(r chi.Router) {
				r.Use(can(authz.ObjectRecommendations, authz.ActionRead))
				r.Get("/recommendations", h.Recommendations)
				r.Get("/recommendations/similar/{type}/{id}", h.SimilarContent)
				r.Get("/recommendations/trending", h.Trending)
			})

			r.With(can(authz.ObjectUsers, authz.ActionRead)).Get("/admin/users", h.ListUsers)
			r.With(can(authz.ObjectAudit, authz.ActionRead)).Get("/admin/actions", h.ListAdminActions)
		})

		// ========================
		// Authenticated Writes
		// ========================
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitWrite())
			r.Use(router.authn.Authenticate)

			r.Group(func(r chi.Router) {
				r.Use(can(authz.ObjectProfile, authz.ActionWrite))
				r.Put("/auth/preferences", h.UpdatePreferences)
				r.Post("/auth/logout", h.Logout)
			})

			r.Group(func(r chi.Router) {
				r.Use(router.authz.AuthorizeRequest(authz.ObjectContent))
				r.Post("/content/{kind}", h.CreateContent)
				r.Put("/content/{kind}/{id}", h.UpdateContent)
				r.Delete("/content/{kind}/{id}", h.DeleteContent)
			})

			r.Group(func(r chi.Router) {
				r.Use(can(authz.ObjectSimulation, authz.ActionWrite))
				r.Post("/simulation/start", h.StartSimulation)
				r.Post("/simulation/complete/{id}", h.CompleteSimulation)
				r.Post("/simulation/cancel/{id}", h.CancelSimulation)
			})

			r.With(can(authz.ObjectInteractions, authz.ActionDelete)).Delete("/interactions/{id}", h.DeleteInteraction)
			r.With(can(authz.ObjectRecommendations, authz.ActionWrite)).Post("/recommendations/feedback", h.RecommendationFeedback)

			r.Group(func(r chi.Router) {
				r.Use(can(authz.ObjectUsers, authz.ActionWrite))
				r.Post("/admin/users/{id}/block", h.BlockUser)
				r.Post("/admin/users/{id}/unblock", h.UnblockUser)
				r.Put("/admin/users/{id}/preferences", h.UpdateUserPreferences)
			})
		})
	})

	return r
}

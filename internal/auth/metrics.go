// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttempts counts logins by outcome: success, bad_credentials,
	// disabled, error.
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"outcome"},
	)

	// TokenValidations counts middleware token checks by outcome.
	TokenValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_validations_total",
			Help: "Total number of bearer token validations",
		},
		[]string{"outcome"},
	)

	// RevocationOperations counts revocation store calls.
	RevocationOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_revocation_operations_total",
			Help: "Total number of token revocation store operations",
		},
		[]string{"operation", "outcome"},
	)
)

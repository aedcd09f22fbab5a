// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed at /metrics:

	curl http://localhost:8000/metrics

# Available Metrics

HTTP:
  - api_requests_total (method, endpoint, status_code)
  - api_request_duration_seconds (method, endpoint)
  - api_active_requests
  - api_rate_limit_hits_total (scope)

Simulation:
  - simulation_sessions_active
  - simulation_operations_total (operation, result)
  - simulation_session_duration_seconds (content_type, outcome)
  - simulation_ratings (content_type)
  - simulation_popularity_update_failures_total

Recommendations and cache:
  - recommend_duration_seconds (kind)
  - cache_hits_total, cache_misses_total, cache_evictions_total (cache_type)

Messaging:
  - eventbus_published_total (kind), eventbus_publish_failures_total
  - eventbus_consumed_total (handler)
  - circuit_breaker_state, circuit_breaker_state_transitions_total
  - websocket_connections, websocket_messages_sent_total, websocket_errors_total
*/
package metrics

// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"

	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/metrics"
	"github.com/tomtom215/mediarec/internal/simulation"
)

// Handler consumes decoded lifecycle events. A returned error is retried
// by the router's retry middleware.
type Handler struct {
	Name   string
	Handle func(ctx context.Context, ev simulation.LifecycleEvent) error
}

// Router is a watermill router with one consumer per Handler.
type Router struct {
	router *message.Router
}

// NewRouter builds a router for handlers. Each call returns a new router;
// a stopped router cannot be run again.
func (b *Bus) NewRouter(handlers ...Handler) (*Router, error) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, b.wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	wmRouter.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2,
			Logger:          b.wmLogger,
		}.Middleware,
	)

	for _, h := range handlers {
		sub, err := b.subscriberFor(h.Name)
		if err != nil {
			_ = wmRouter.Close()
			return nil, err
		}
		wmRouter.AddConsumerHandler(h.Name, b.topic, sub, b.consume(h))
	}
	return &Router{router: wmRouter}, nil
}

func (b *Bus) consume(h Handler) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ev, err := DecodeEvent(msg.Payload)
		if err != nil {
			// Undecodable payloads are acked; retrying cannot fix them.
			b.logger.Warn().Err(err).Str("handler", h.Name).Str("message_uuid", msg.UUID).Msg("dropping undecodable event")
			return nil
		}
		ctx := msg.Context()
		if id := msg.Metadata.Get("correlation_id"); id != "" {
			ctx = logging.ContextWithCorrelationID(ctx, id)
		}
		if err := h.Handle(ctx, ev); err != nil {
			return fmt.Errorf("%s: %w", h.Name, err)
		}
		metrics.EventsConsumed.WithLabelValues(h.Name).Inc()
		return nil
	}
}

// DecodeEvent parses a published payload.
func DecodeEvent(payload []byte) (simulation.LifecycleEvent, error) {
	var ev simulation.LifecycleEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ev, fmt.Errorf("decode lifecycle event: %w", err)
	}
	if ev.Kind == "" {
		return ev, fmt.Errorf("decode lifecycle event: missing kind")
	}
	return ev, nil
}

// Run blocks until ctx is canceled or the router is closed.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running is closed once every handler has subscribed.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

func (r *Router) Close() error {
	return r.router.Close()
}

// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// DrainFunc runs after the HTTP server has stopped accepting requests.
type DrainFunc func(ctx context.Context) error

type drainHook struct {
	name string
	fn   DrainFunc
}

// HTTPServerService runs an HTTP server under suture.
//
// On cancellation the server is shut down with a fresh timeout context and
// then each registered drain hook runs in registration order within the same
// deadline. The tracker registers one so that live sessions are recorded as
// dropped only after the last in-flight request has finished.
//
//	server := &http.Server{Addr: ":8000", Handler: router}
//	svc := services.NewHTTPServerService(server, 10*time.Second)
//	svc.OnShutdown("simulation-tracker", drainTracker)
//	tree.AddAPIService(svc)
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string

	mu    sync.Mutex
	hooks []drainHook
	// DrainErrors receives hook failures; nil discards them.
	DrainErrors func(name string, err error)
}

// NewHTTPServerService wraps server. A non-positive shutdownTimeout
// defaults to 10s.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// OnShutdown registers fn to run after a graceful server shutdown.
func (h *HTTPServerService) OnShutdown(name string, fn DrainFunc) {
	h.mu.Lock()
	h.hooks = append(h.hooks, drainHook{name: name, fn: fn})
	h.mu.Unlock()
}

// Serve implements suture.Service. http.ErrServerClosed is not an error.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already canceled; shutdown needs its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh

		h.drain(shutdownCtx)
		return ctx.Err()
	}
}

func (h *HTTPServerService) drain(ctx context.Context) {
	h.mu.Lock()
	hooks := append([]drainHook(nil), h.hooks...)
	h.mu.Unlock()

	for _, hook := range hooks {
		if err := hook.fn(ctx); err != nil && h.DrainErrors != nil {
			h.DrainErrors(hook.name, err)
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (h *HTTPServerService) String() string {
	return h.name
}

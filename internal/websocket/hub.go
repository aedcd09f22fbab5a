// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/metrics"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types
const (
	MessageTypeSimulation = "simulation"
	MessageTypePing       = "ping"
	MessageTypePong       = "pong"
)

// Message is the JSON frame written to clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type delivery struct {
	userID int64
	msg    Message
}

// Hub tracks connected clients per user and delivers messages to every
// connection a user has open.
type Hub struct {
	clients    map[int64]map[*Client]struct{}
	outbound   chan delivery
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates an idle hub. RunWithContext must be running for
// registration and delivery to make progress.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		outbound:   make(chan delivery, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// RunWithContext processes registrations and deliveries until ctx is
// canceled, then closes every client.
//
// Lifecycle events are drained before deliveries so a client registered
// ahead of a message always receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case c := <-h.Register:
			h.add(c)
			continue
		case c := <-h.Unregister:
			h.remove(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case c := <-h.Register:
			h.add(c)
		case c := <-h.Unregister:
			h.remove(c)
		case d := <-h.outbound:
			h.deliver(d)
		}
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	logging.Info().Int64("user_id", c.userID).Int("total_clients", h.GetClientCount()).Msg("websocket client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	removed := h.dropLocked(c)
	h.mu.Unlock()

	if removed {
		logging.Info().Int64("user_id", c.userID).Int("total_clients", h.GetClientCount()).Msg("websocket client disconnected")
	}
}

// dropLocked closes c's send channel once. Caller holds h.mu.
func (h *Hub) dropLocked(c *Client) bool {
	set, ok := h.clients[c.userID]
	if !ok {
		return false
	}
	if _, ok := set[c]; !ok {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	metrics.WSConnections.Dec()
	return true
}

// sortedLocked returns clients in id order. Caller holds h.mu.
func sortedLocked(set map[*Client]struct{}) []*Client {
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (h *Hub) deliver(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range sortedLocked(h.clients[d.userID]) {
		select {
		case c.send <- d.msg:
			metrics.WSMessagesSent.Inc()
		default:
			// Slow consumer; its writePump sees the closed channel and hangs up.
			metrics.WSErrors.WithLabelValues("send_buffer_full").Inc()
			h.dropLocked(c)
		}
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	count := 0
	for _, set := range h.clients {
		for _, c := range sortedLocked(set) {
			h.dropLocked(c)
			count++
		}
	}
	h.mu.Unlock()

	reason := ShutdownReasonContextCanceled
	if ctx.Err() == context.DeadlineExceeded {
		reason = ShutdownReasonContextDeadline
	}
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("clients_closed", count).
		Msg("websocket hub stopped")
}

// SendToUser queues a message for every connection userID has open. It
// never blocks; when the queue is full the message is dropped. Returns false
// if the message was dropped.
func (h *Hub) SendToUser(userID int64, messageType string, data interface{}) bool {
	select {
	case h.outbound <- delivery{userID: userID, msg: Message{Type: messageType, Data: data}}:
		return true
	default:
		metrics.WSErrors.WithLabelValues("outbound_full").Inc()
		logging.Warn().Int64("user_id", userID).Str("message_type", messageType).Msg("websocket outbound queue full, dropping message")
		return false
	}
}

// SendRawToUser decodes a JSON payload and queues it as a message of the
// given type.
func (h *Hub) SendRawToUser(userID int64, messageType string, payload []byte) error {
	var data map[string]interface{}
	if err := json.Unmarshal(payload, &data); err != nil {
		return err
	}
	h.SendToUser(userID, messageType, data)
	return nil
}

// GetClientCount returns the number of open connections across all users.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// UserClientCount returns the number of open connections for userID.
func (h *Hub) UserClientCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

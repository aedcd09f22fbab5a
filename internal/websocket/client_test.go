// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// startServer upgrades every request and registers it as userID.
func startServer(t *testing.T, hub *Hub, userID int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		c := NewClient(hub, conn, userID)
		hub.Register <- c
		c.Start()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestClient_ReceivesUserMessages(t *testing.T) {
	hub := setupHub(t)
	conn := dial(t, startServer(t, hub, 42))
	waitFor(t, func() bool { return hub.UserClientCount(42) == 1 })

	hub.SendToUser(42, MessageTypeSimulation, map[string]string{"kind": "started"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != MessageTypeSimulation {
		t.Errorf("Type = %q", msg.Type)
	}
}

func TestClient_PingPong(t *testing.T) {
	hub := setupHub(t)
	conn := dial(t, startServer(t, hub, 1))

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != MessageTypePong {
		t.Errorf("Type = %q, want pong", msg.Type)
	}
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	hub := setupHub(t)
	conn := dial(t, startServer(t, hub, 9))
	waitFor(t, func() bool { return hub.UserClientCount(9) == 1 })

	_ = conn.Close()
	waitFor(t, func() bool { return hub.UserClientCount(9) == 0 })
}

func TestNewClient_UniqueIDs(t *testing.T) {
	hub := NewHub()
	a, b := NewClient(hub, nil, 1), NewClient(hub, nil, 1)
	if a.ID() == b.ID() {
		t.Error("client ids collide")
	}
	if a.UserID() != 1 {
		t.Errorf("UserID() = %d", a.UserID())
	}
}

// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package websocket

import (
	"context"
	"errors"
	"testing"
	"time"
)

// setupHub runs a hub until the test ends.
func setupHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

// testClient has no connection; tests read its send channel directly.
func testClient(hub *Hub, userID int64) *Client {
	return &Client{
		id:     clientIDCounter.Add(1),
		userID: userID,
		hub:    hub,
		send:   make(chan Message, 4),
		pong:   make(chan struct{}, 1),
	}
}

func register(t *testing.T, hub *Hub, c *Client) {
	t.Helper()
	hub.Register <- c
	waitFor(t, func() bool { return hub.UserClientCount(c.userID) > 0 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return Message{}
}

func TestHub_SendToUserIsScoped(t *testing.T) {
	hub := setupHub(t)
	alice1, alice2 := testClient(hub, 1), testClient(hub, 1)
	bob := testClient(hub, 2)
	register(t, hub, alice1)
	register(t, hub, alice2)
	register(t, hub, bob)

	if got := hub.GetClientCount(); got != 3 {
		t.Fatalf("GetClientCount() = %d, want 3", got)
	}

	if !hub.SendToUser(1, MessageTypeSimulation, map[string]int{"progress": 40}) {
		t.Fatal("SendToUser() dropped message")
	}
	for _, c := range []*Client{alice1, alice2} {
		if msg := receive(t, c); msg.Type != MessageTypeSimulation {
			t.Errorf("Type = %q", msg.Type)
		}
	}

	select {
	case msg := <-bob.send:
		t.Errorf("user 2 received %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := setupHub(t)
	c := testClient(hub, 7)
	register(t, hub, c)

	hub.Unregister <- c
	waitFor(t, func() bool { return hub.UserClientCount(7) == 0 })

	if _, ok := <-c.send; ok {
		t.Error("send channel still open after unregister")
	}

	// Unregistering twice must not close the channel again.
	hub.Unregister <- c
	waitFor(t, func() bool { return hub.GetClientCount() == 0 })
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub := setupHub(t)
	c := testClient(hub, 3)
	register(t, hub, c)

	for i := 0; i < cap(c.send)+1; i++ {
		hub.SendToUser(3, MessageTypeSimulation, i)
	}
	waitFor(t, func() bool { return hub.UserClientCount(3) == 0 })
}

func TestHub_SendWithoutClients(t *testing.T) {
	hub := setupHub(t)
	if !hub.SendToUser(99, MessageTypeSimulation, nil) {
		t.Error("SendToUser() dropped message with idle queue")
	}
}

func TestHub_SendRawToUser(t *testing.T) {
	hub := setupHub(t)
	c := testClient(hub, 5)
	register(t, hub, c)

	if err := hub.SendRawToUser(5, MessageTypeSimulation, []byte(`{"kind":"completed","rating":9}`)); err != nil {
		t.Fatalf("SendRawToUser() error = %v", err)
	}
	msg := receive(t, c)
	data, ok := msg.Data.(map[string]interface{})
	if !ok || data["kind"] != "completed" {
		t.Errorf("Data = %#v", msg.Data)
	}

	if err := hub.SendRawToUser(5, MessageTypeSimulation, []byte("not json")); err == nil {
		t.Error("expected decode error")
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()

	c := testClient(hub, 1)
	register(t, hub, c)
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("RunWithContext() = %v", err)
	}
	if _, ok := <-c.send; ok {
		t.Error("client not closed on shutdown")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("GetClientCount() = %d after shutdown", hub.GetClientCount())
	}
}

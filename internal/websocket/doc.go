// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
Package websocket pushes simulation lifecycle events to the users they
belong to.

Each connection is registered under its authenticated user id. The event
router calls SendToUser for every lifecycle event; messages never cross
users.

	hub := websocket.NewHub()
	tree.AddMessagingService(services.NewWebSocketHubService(hub))

	// in the upgrade handler
	client := websocket.NewClient(hub, conn, subject.UserID)
	hub.Register <- client
	client.Start()

Frames are JSON {"type": "...", "data": ...}. A client may send
{"type":"ping"} and receives {"type":"pong"}.
*/
package websocket

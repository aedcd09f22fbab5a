// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
Package services adapts Mediarec components to suture's Serve(ctx) model.

  - HTTPServerService: ListenAndServe/Shutdown, plus drain hooks that run
    after the server stops accepting requests.
  - ReaperService: periodic simulation.Tracker.Expire sweep.
  - WebSocketHubService: delegates to websocket.Hub.RunWithContext.
  - EventRouterService: runs a freshly built event router per start.

Every wrapper returns ctx.Err() on cancellation and implements fmt.Stringer
so suture logs name the service.
*/
package services

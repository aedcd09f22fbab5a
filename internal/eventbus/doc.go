// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

/*
Package eventbus carries simulation lifecycle events from the tracker to
in-process consumers over watermill.

Two transports are supported:

  - memory: a watermill gochannel pub/sub, the default
  - nats: NATS JetStream through watermill-nats, optionally against an
    embedded nats-server

Bus implements simulation.Notifier. Publishing runs behind a gobreaker
circuit breaker and never fails the tracker operation that produced the
event; failures are logged and counted.

	bus, err := eventbus.New(cfg.Events, logging.Logger())
	tracker := simulation.NewTracker(db, db, simCfg, simulation.WithNotifier(bus))

	factory := func() (services.EventRouter, error) {
	    return bus.NewRouter(
	        eventbus.InvalidateRecommendations(recCache),
	        eventbus.FanOutToUsers(hub),
	    )
	}
	tree.AddMessagingService(services.NewEventRouterService(factory, logging.Logger()))
*/
package eventbus

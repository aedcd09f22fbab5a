// Mediarec - Media Catalog and Consumption Simulation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediarec

package eventbus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/mediarec/internal/config"
	"github.com/tomtom215/mediarec/internal/logging"
	"github.com/tomtom215/mediarec/internal/metrics"
	"github.com/tomtom215/mediarec/internal/simulation"
)

// Backends
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
)

// Metadata keys set on every published message.
const (
	MetaKind   = "kind"
	MetaUserID = "user_id"
)

// ErrClosed is returned by NewRouter after Close.
var ErrClosed = errors.New("eventbus: closed")

// Bus publishes lifecycle events and builds routers that consume them.
type Bus struct {
	topic     string
	publisher message.Publisher
	// subscriberFor returns the subscriber a named handler consumes from.
	subscriberFor func(handler string) (message.Subscriber, error)
	closeFns      []func() error

	breaker  *gobreaker.CircuitBreaker[interface{}]
	logger   zerolog.Logger
	wmLogger watermill.LoggerAdapter
	embedded *EmbeddedServer

	mu     sync.RWMutex
	closed bool
}

var _ simulation.Notifier = (*Bus)(nil)

// New builds the bus for cfg.Backend. With the nats backend and
// EmbeddedNATS set, an in-process nats-server is started first and owned by
// the bus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg config.EventsConfig, logger zerolog.Logger) (*Bus, error) {
	logger = logger.With().Str("component", "eventbus").Logger()
	b := &Bus{
		topic:    cfg.Topic,
		breaker:  newBreaker(cfg.BreakerFailures, cfg.BreakerTimeout, logger),
		logger:   logger,
		wmLogger: logging.NewWatermillAdapter(logger),
	}
	if b.topic == "" {
		b.topic = "simulation.events"
	}

	switch cfg.Backend {
	case "", BackendMemory:
		b.useGoChannel()
	case BackendNATS:
		if err := b.useNATS(cfg); err != nil {
			_ = b.Close()
			return nil, err
		}
	default:
		return nil, fmt.Errorf("eventbus: unknown backend %q", cfg.Backend)
	}

	logger.Info().Str("backend", cfg.Backend).Str("topic", b.topic).Msg("event bus ready")
	return b, nil
}

// NewWithPublisher builds a bus over an existing publisher and subscriber.
// The bus does not close them.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWithPublisher(topic string, pub message.Publisher, sub message.Subscriber, breakerFailures uint32, logger zerolog.Logger) *Bus {
	return &Bus{
		topic:         topic,
		publisher:     pub,
		subscriberFor: func(string) (message.Subscriber, error) { return nopCloseSubscriber{sub}, nil },
		breaker:       newBreaker(breakerFailures, time.Minute, logger),
		logger:        logger,
		wmLogger:      logging.NewWatermillAdapter(logger),
	}
}

func (b *Bus) useGoChannel() {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, b.wmLogger)
	b.publisher = pubSub
	// Routers close their subscribers on shutdown, but the gochannel also
	// backs the publisher and must outlive any single router.
	b.subscriberFor = func(string) (message.Subscriber, error) {
		return nopCloseSubscriber{pubSub}, nil
	}
	b.closeFns = append(b.closeFns, pubSub.Close)
}

func (b *Bus) useNATS(cfg config.EventsConfig) error {
	url := cfg.NATSURL
	if cfg.EmbeddedNATS {
		srv, err := StartEmbeddedServer(cfg.EmbeddedHost, cfg.EmbeddedPort, cfg.StoreDir)
		if err != nil {
			return err
		}
		b.embedded = srv
		url = srv.ClientURL()
	}

	if err := ensureStream(url, cfg.StreamName, b.topic); err != nil {
		return err
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				b.wmLogger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			b.wmLogger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, b.wmLogger)
	if err != nil {
		return fmt.Errorf("create nats publisher: %w", err)
	}
	b.publisher = pub
	b.closeFns = append(b.closeFns, pub.Close)

	streamName := cfg.StreamName
	b.subscriberFor = func(handler string) (message.Subscriber, error) {
		// One durable consumer per handler so every handler sees every event.
		sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
			URL:              url,
			QueueGroupPrefix: handler,
			SubscribersCount: 1,
			AckWaitTimeout:   30 * time.Second,
			CloseTimeout:     10 * time.Second,
			NatsOptions:      natsOpts,
			Unmarshaler:      &wmNats.NATSMarshaler{},
			JetStream: wmNats.JetStreamConfig{
				AutoProvision: false,
				DurablePrefix: handler,
				SubscribeOptions: []natsgo.SubOpt{
					natsgo.DeliverNew(),
					natsgo.MaxDeliver(5),
					natsgo.BindStream(streamName),
				},
			},
		}, b.wmLogger)
		if err != nil {
			return nil, fmt.Errorf("create nats subscriber for %s: %w", handler, err)
		}
		return sub, nil
	}
	return nil
}

// ensureStream creates or updates the JetStream stream that captures topic.
func ensureStream(url, name, topic string) error {
	nc, err := natsgo.Connect(url, natsgo.Timeout(5*time.Second))
	if err != nil {
		return fmt.Errorf("connect nats %s: %w", url, err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("jetstream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     name,
		Subjects: []string{topic},
		Storage:  jetstream.FileStorage,
		MaxAge:   24 * time.Hour,
		Discard:  jetstream.DiscardOld,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", name, err)
	}
	return nil
}

// Topic is the subject events are published on.
func (b *Bus) Topic() string { return b.topic }

// Notify publishes ev. Errors are logged and counted, never returned.
func (b *Bus) Notify(ctx context.Context, ev simulation.LifecycleEvent) {
	if err := b.Publish(ctx, ev); err != nil {
		metrics.EventsPublishFailures.Inc()
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("kind", string(ev.Kind)).
			Str("simulation_id", ev.SessionKey).
			Msg("lifecycle event not published")
	}
}

// Publish encodes ev and publishes it through the circuit breaker.
func (b *Bus) Publish(ctx context.Context, ev simulation.LifecycleEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetaKind, string(ev.Kind))
	msg.Metadata.Set(MetaUserID, strconv.FormatInt(ev.UserID, 10))
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}

	_, err = b.breaker.Execute(func() (interface{}, error) {
		return nil, b.publisher.Publish(b.topic, msg)
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Kind, err)
	}
	metrics.EventsPublished.WithLabelValues(string(ev.Kind)).Inc()
	return nil
}

// BreakerState reports the publisher circuit breaker state.
func (b *Bus) BreakerState() gobreaker.State {
	return b.breaker.State()
}

// Close stops publishing and releases the transport. It is idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	var errs []error
	for i := len(b.closeFns) - 1; i >= 0; i-- {
		if err := b.closeFns[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if b.embedded != nil {
		b.embedded.Shutdown()
	}
	return errors.Join(errs...)
}

type nopCloseSubscriber struct {
	message.Subscriber
}

func (nopCloseSubscriber) Close() error { return nil }

// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// inProcessBuffer is the per-subscriber channel size of the in-process bus.
const inProcessBuffer = 256

// Bus owns every messaging component: an optional embedded server, the
// publisher, the subscriber and the router that feeds consumers.
type Bus struct {
	config     BusConfig
	server     *EmbeddedServer
	publisher  *Publisher
	subscriber message.Subscriber
	router     *Router
	logger     watermill.LoggerAdapter
}

// NewBus assembles the bus. With NATS disabled it runs on an in-process
// Go channel pub/sub; messages then do not survive a restart.
func NewBus(ctx context.Context, cfg BusConfig, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}

	b := &Bus{config: cfg, logger: logger}
	var err error
	if cfg.NATS {
		err = b.initNATS(ctx)
	} else {
		err = b.initInProcess()
	}
	if err != nil {
		b.closeTransports()
		return nil, err
	}

	b.router, err = NewRouter(&cfg.Router, logger)
	if err != nil {
		b.closeTransports()
		return nil, err
	}
	return b, nil
}

func (b *Bus) initInProcess() error {
	gc := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: inProcessBuffer,
	}, b.logger)

	pub, err := NewPublisher(gc, b.logger)
	if err != nil {
		return err
	}
	b.publisher = pub
	b.subscriber = gc
	return nil
}

func (b *Bus) initNATS(ctx context.Context) error {
	url := b.config.Publisher.URL
	if b.config.Embedded {
		srv, err := NewEmbeddedServer(&b.config.Server)
		if err != nil {
			return err
		}
		b.server = srv
		url = srv.ClientURL()
	}
	if url == "" {
		return fmt.Errorf("%w: NATS URL required", ErrInvalidConfig)
	}

	if err := ensureStream(ctx, url, &b.config.Stream); err != nil {
		return err
	}

	pubCfg := b.config.Publisher
	pubCfg.URL = url
	pub, err := NewNATSPublisher(&pubCfg, b.logger)
	if err != nil {
		return err
	}
	b.publisher = pub

	subCfg := b.config.Subscriber
	subCfg.URL = url
	sub, err := NewNATSSubscriber(&subCfg, b.logger)
	if err != nil {
		return err
	}
	b.subscriber = sub
	return nil
}

func ensureStream(ctx context.Context, url string, cfg *StreamConfig) error {
	nc, err := natsgo.Connect(url, natsgo.Timeout(10*time.Second))
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}
	initializer, err := NewStreamInitializer(js, cfg)
	if err != nil {
		return err
	}
	if _, err := initializer.EnsureStream(ctx); err != nil {
		return err
	}
	return nil
}

// Topic is the subject movie messages travel on.
func (b *Bus) Topic() string {
	return b.config.Topic
}

// Publisher returns the movie publisher.
func (b *Bus) Publisher() *Publisher {
	return b.publisher
}

// AddConsumer routes every message on the bus topic to consumer. It must be
// called before Run.
func (b *Bus) AddConsumer(name string, consumer MessageConsumer) *ConsumerHandler {
	handler := NewConsumerHandler(consumer, b.logger)
	b.router.AddConsumerHandler(name, b.config.Topic, b.subscriber, handler.Handle)
	return handler
}

// Run starts delivering messages and blocks until ctx is canceled.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once consumers are subscribed.
func (b *Bus) Running() <-chan struct{} {
	return b.router.Running()
}

// IsRunning reports whether the router is delivering messages.
func (b *Bus) IsRunning() bool {
	return b.router != nil && b.router.IsRunning()
}

// Close stops the router, then the transports.
func (b *Bus) Close() error {
	var errs []error
	if b.router != nil {
		if err := b.router.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close router: %w", err))
		}
	}
	if err := b.closeTransports(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (b *Bus) closeTransports() error {
	var errs []error
	if b.publisher != nil {
		if err := b.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if b.subscriber != nil {
		if err := b.subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	if b.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := b.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown NATS server: %w", err))
		}
	}
	return errors.Join(errs...)
}

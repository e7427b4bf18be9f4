// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package eventprocessor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/cinefeed/internal/metrics"
	"github.com/tomtom215/cinefeed/internal/models"
)

// publishBreakerName labels the publish circuit breaker in metrics.
const publishBreakerName = "bus-publish"

// Publisher wraps a Watermill publisher with a circuit breaker.
type Publisher struct {
	publisher      message.Publisher
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]
	mu             sync.RWMutex
	closed         bool
	logger         watermill.LoggerAdapter
}

// NewPublisher wraps an existing transport, such as a gochannel pub/sub.
func NewPublisher(pub message.Publisher, logger watermill.LoggerAdapter) (*Publisher, error) {
	if pub == nil {
		return nil, ErrNilPublisher
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &Publisher{
		publisher:      pub,
		circuitBreaker: newPublishBreaker(logger),
		logger:         logger,
	}, nil
}

// NewNATSPublisher connects a JetStream publisher. The stream is expected to
// exist already (see StreamInitializer). Message ids are set per message by
// PublishMovie, so Watermill's own id tracking stays off.
func NewNATSPublisher(cfg *PublisherConfig, logger watermill.LoggerAdapter) (*Publisher, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("%w: publisher URL required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.ReconnectBufSize(cfg.ReconnectBuffer),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS publisher disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS publisher reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			TrackMsgId:    false,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return NewPublisher(pub, logger)
}

func newPublishBreaker(logger watermill.LoggerAdapter) *gobreaker.CircuitBreaker[interface{}] {
	settings := gobreaker.Settings{
		Name:        publishBreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Publish circuit breaker state changed", watermill.LogFields{
				"from": from.String(),
				"to":   to.String(),
			})
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	}
	return gobreaker.NewCircuitBreaker[interface{}](settings)
}

// Publish sends msg to topic. A message without a Nats-Msg-Id header gets
// its UUID as the id.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrPublisherClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}
	msg.SetContext(ctx)

	_, err := p.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(topic, msg)
	})
	metrics.RecordPublish(err)
	return err
}

// MovieMessageID is the deduplication id for a movie published on runDate.
// Messages without a film id fall back to a random id.
func MovieMessageID(movie *models.MovieMessage, runDate time.Time) string {
	if movie.FilmID == nil {
		return uuid.NewString()
	}
	return fmt.Sprintf("film-%d-%s", *movie.FilmID, runDate.Format("2006-01-02"))
}

// PublishMovie serializes movie and publishes it on topic.
func (p *Publisher) PublishMovie(ctx context.Context, topic string, movie *models.MovieMessage, runDate time.Time) error {
	data, err := MarshalMovieMessage(movie)
	if err != nil {
		return NewPermanentError("serialize movie", err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set(natsgo.MsgIdHdr, MovieMessageID(movie, runDate))
	msg.Metadata.Set("film_id", movie.FilmIDString())

	if err := p.Publish(ctx, topic, msg); err != nil {
		return fmt.Errorf("publish film %s: %w", movie.FilmIDString(), err)
	}
	return nil
}

// State returns the publish circuit breaker state.
func (p *Publisher) State() gobreaker.State {
	return p.circuitBreaker.State()
}

// Close shuts down the underlying transport. It is safe to call twice.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}

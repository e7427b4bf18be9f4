// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/tomtom215/cinefeed/internal/config"
)

// DefaultTopic is the subject movie messages are published on.
const DefaultTopic = "movie-topic"

// ServerConfig holds embedded NATS server configuration.
type ServerConfig struct {
	Host              string
	Port              int // -1 picks a random port
	StoreDir          string
	JetStreamMaxMem   int64
	JetStreamMaxStore int64
}

// DefaultServerConfig returns production defaults for the embedded server.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "127.0.0.1",
		Port:              4222,
		StoreDir:          "/data/nats/jetstream",
		JetStreamMaxMem:   256 << 20,
		JetStreamMaxStore: 1 << 30,
	}
}

// PublisherConfig holds publisher configuration.
type PublisherConfig struct {
	URL             string
	MaxReconnects   int
	ReconnectWait   time.Duration
	ReconnectBuffer int
}

// DefaultPublisherConfig returns production defaults for the publisher.
func DefaultPublisherConfig(url string) PublisherConfig {
	return PublisherConfig{
		URL:             url,
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		ReconnectBuffer: 8 * 1024 * 1024,
	}
}

// SubscriberConfig holds subscriber configuration.
type SubscriberConfig struct {
	URL              string
	DurableName      string
	QueueGroup       string
	SubscribersCount int
	AckWaitTimeout   time.Duration
	MaxDeliver       int
	MaxAckPending    int
	CloseTimeout     time.Duration
	MaxReconnects    int
	ReconnectWait    time.Duration

	// StreamName binds the subscription to an existing stream instead of
	// letting Watermill provision one.
	StreamName string
}

// DefaultSubscriberConfig returns production defaults for the report consumer.
func DefaultSubscriberConfig(url string) SubscriberConfig {
	return SubscriberConfig{
		URL:              url,
		DurableName:      "movie-email-consumer-group",
		QueueGroup:       "movie-email-consumer-group",
		SubscribersCount: 2,
		AckWaitTimeout:   5 * time.Minute,
		MaxDeliver:       5,
		MaxAckPending:    1000,
		CloseTimeout:     30 * time.Second,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
	}
}

// StreamConfig defines the movie stream.
type StreamConfig struct {
	Name            string
	Subjects        []string
	MaxAge          time.Duration
	MaxBytes        int64
	MaxMsgs         int64
	DuplicateWindow time.Duration
	Replicas        int
}

// DefaultStreamConfig returns the production movie stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Name:            "MOVIES",
		Subjects:        []string{DefaultTopic},
		MaxAge:          7 * 24 * time.Hour,
		MaxBytes:        1 << 30,
		MaxMsgs:         -1,
		DuplicateWindow: 2 * time.Minute,
		Replicas:        1,
	}
}

// RouterConfig holds configuration for the Watermill router.
type RouterConfig struct {
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
}

// DefaultRouterConfig returns production defaults for the router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: time.Second,
		RetryMaxInterval:     30 * time.Second,
		RetryMultiplier:      2.0,
	}
}

// BusConfig collects everything NewBus needs.
type BusConfig struct {
	// NATS selects JetStream; when false the in-process bus is used.
	NATS       bool
	Embedded   bool
	Topic      string
	Server     ServerConfig
	Publisher  PublisherConfig
	Subscriber SubscriberConfig
	Stream     StreamConfig
	Router     RouterConfig
}

// BusConfigFromApp maps application NATS settings onto a BusConfig.
func BusConfigFromApp(cfg *config.NATSConfig) (BusConfig, error) {
	if cfg == nil {
		return BusConfig{}, fmt.Errorf("%w: nats config is nil", ErrInvalidConfig)
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}

	server := DefaultServerConfig()
	if cfg.StoreDir != "" {
		server.StoreDir = cfg.StoreDir
	}
	if cfg.MaxMemory > 0 {
		server.JetStreamMaxMem = cfg.MaxMemory
	}
	if cfg.MaxStore > 0 {
		server.JetStreamMaxStore = cfg.MaxStore
	}

	stream := DefaultStreamConfig()
	stream.Subjects = []string{topic}
	if cfg.StreamName != "" {
		stream.Name = cfg.StreamName
	}
	if cfg.StreamRetentionDays > 0 {
		stream.MaxAge = time.Duration(cfg.StreamRetentionDays) * 24 * time.Hour
	}
	if cfg.DedupWindow > 0 {
		stream.DuplicateWindow = cfg.DedupWindow
	}

	sub := DefaultSubscriberConfig(cfg.URL)
	sub.StreamName = stream.Name
	if cfg.DurableName != "" {
		sub.DurableName = cfg.DurableName
	}
	if cfg.QueueGroup != "" {
		sub.QueueGroup = cfg.QueueGroup
	} else if cfg.DurableName != "" {
		sub.QueueGroup = cfg.DurableName
	}
	if cfg.SubscribersCount > 0 {
		sub.SubscribersCount = cfg.SubscribersCount
	}

	router := DefaultRouterConfig()
	if cfg.RouterCloseTimeout > 0 {
		router.CloseTimeout = cfg.RouterCloseTimeout
	}

	return BusConfig{
		NATS:       cfg.Enabled,
		Embedded:   cfg.EmbeddedServer,
		Topic:      topic,
		Server:     server,
		Publisher:  DefaultPublisherConfig(cfg.URL),
		Subscriber: sub,
		Stream:     stream,
		Router:     router,
	}, nil
}

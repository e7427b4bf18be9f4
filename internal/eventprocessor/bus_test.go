// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

type collectingConsumer struct {
	mu       sync.Mutex
	messages []string
	received chan struct{}
}

func newCollectingConsumer() *collectingConsumer {
	return &collectingConsumer{received: make(chan struct{}, 64)}
}

// Consume parses the payload and rejects malformed input permanently.
func (c *collectingConsumer) Consume(_ context.Context, payload []byte) error {
	defer func() { c.received <- struct{}{} }()

	msg, err := ParseMovieMessage(payload)
	if err != nil {
		return NewPermanentError("parse", err)
	}
	c.mu.Lock()
	c.messages = append(c.messages, msg.FilmIDString())
	c.mu.Unlock()
	return nil
}

func (c *collectingConsumer) filmIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.messages...)
}

func waitFor(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-timeout:
			t.Fatalf("received %d of %d deliveries", i, n)
		}
	}
}

func startInProcessBus(t *testing.T, consumer MessageConsumer) (*Bus, *ConsumerHandler) {
	t.Helper()

	cfg := BusConfig{Topic: DefaultTopic, Router: DefaultRouterConfig()}
	cfg.Router.RetryInitialInterval = time.Millisecond
	cfg.Router.RetryMaxInterval = 10 * time.Millisecond

	bus, err := NewBus(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewBus() error = %v", err)
	}
	handler := bus.AddConsumer("test-consumer", consumer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = bus.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = bus.Close()
		<-done
	})

	select {
	case <-bus.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("bus did not start")
	}
	return bus, handler
}

func TestBus_InProcessDelivery(t *testing.T) {
	t.Parallel()

	consumer := newCollectingConsumer()
	bus, handler := startInProcessBus(t, consumer)

	if !bus.IsRunning() {
		t.Error("IsRunning() = false after start")
	}

	runDate := time.Now()
	for _, id := range []int64{1, 2, 3} {
		if err := bus.Publisher().PublishMovie(context.Background(), bus.Topic(), testMovie(id), runDate); err != nil {
			t.Fatalf("PublishMovie(%d) error = %v", id, err)
		}
	}
	waitFor(t, consumer.received, 3)

	got := map[string]bool{}
	for _, id := range consumer.filmIDs() {
		got[id] = true
	}
	for _, want := range []string{"1", "2", "3"} {
		if !got[want] {
			t.Errorf("film %s not delivered, got %v", want, consumer.filmIDs())
		}
	}

	stats := handler.Stats()
	if stats.Received != 3 || stats.Processed != 3 || stats.Dropped != 0 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestBus_RedeliveryIsNotDeduplicated(t *testing.T) {
	t.Parallel()

	consumer := newCollectingConsumer()
	bus, _ := startInProcessBus(t, consumer)

	// The in-process bus has no JetStream window, so the same film published
	// twice reaches the consumer twice.
	runDate := time.Now()
	for i := 0; i < 2; i++ {
		if err := bus.Publisher().PublishMovie(context.Background(), bus.Topic(), testMovie(7), runDate); err != nil {
			t.Fatalf("PublishMovie() error = %v", err)
		}
	}
	waitFor(t, consumer.received, 2)

	if ids := consumer.filmIDs(); len(ids) != 2 {
		t.Errorf("deliveries = %v, want two copies of film 7", ids)
	}
}

func TestBus_MalformedMessageDropped(t *testing.T) {
	t.Parallel()

	consumer := newCollectingConsumer()
	bus, handler := startInProcessBus(t, consumer)

	bad := message.NewMessage("bad-1", []byte("not json"))
	if err := bus.Publisher().Publish(context.Background(), bus.Topic(), bad); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	waitFor(t, consumer.received, 1)

	// Dropped messages are acked, so nothing is redelivered.
	select {
	case <-consumer.received:
		t.Fatal("malformed message was redelivered")
	case <-time.After(100 * time.Millisecond):
	}

	stats := handler.Stats()
	if stats.Dropped != 1 || stats.Processed != 0 {
		t.Errorf("Stats() = %+v, want one dropped", stats)
	}
	if len(consumer.filmIDs()) != 0 {
		t.Errorf("consumer stored %v", consumer.filmIDs())
	}
}

func TestConsumerHandler_RetryableErrorReturned(t *testing.T) {
	t.Parallel()

	transient := errors.New("smtp busy")
	handler := NewConsumerHandler(ConsumerFunc(func(context.Context, []byte) error {
		return transient
	}), nil)

	err := handler.Handle(message.NewMessage("m-1", []byte(`{}`)))
	if !errors.Is(err, transient) {
		t.Errorf("Handle() error = %v, want transient error", err)
	}
	if stats := handler.Stats(); stats.Received != 1 || stats.Processed != 0 || stats.Dropped != 0 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestPermanentError(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad payload")
	err := NewPermanentError("parse", cause)

	if err.Error() != "parse: bad payload" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if !IsPermanent(err) {
		t.Error("IsPermanent() = false")
	}
	if IsPermanent(cause) {
		t.Error("IsPermanent(plain error) = true")
	}
	if NewPermanentError("only message", nil).Error() != "only message" {
		t.Error("message-only error text mismatch")
	}
}

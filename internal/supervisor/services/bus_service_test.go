// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cinefeed/internal/eventprocessor"
	"github.com/tomtom215/cinefeed/internal/models"
)

var _ suture.Service = (*BusService)(nil)

type mockBus struct {
	runErr error
	closes atomic.Int32
}

func (m *mockBus) Run(ctx context.Context) error {
	if m.runErr != nil {
		return m.runErr
	}
	<-ctx.Done()
	return nil
}

func (m *mockBus) Close() error {
	m.closes.Add(1)
	return nil
}

func TestBusService_StopsOnCancel(t *testing.T) {
	t.Parallel()

	bus := &mockBus{}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- NewBusService(bus).Serve(ctx) }()

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if bus.closes.Load() != 1 {
		t.Errorf("Close calls = %d, want 1", bus.closes.Load())
	}
}

func TestBusService_RouterFailureIsNotRestarted(t *testing.T) {
	t.Parallel()

	bus := &mockBus{runErr: errors.New("subscribe failed")}
	err := NewBusService(bus).Serve(context.Background())
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Errorf("Serve() error = %v, want ErrDoNotRestart", err)
	}
	if bus.closes.Load() != 1 {
		t.Errorf("Close calls = %d, want 1", bus.closes.Load())
	}
}

func TestBusService_DeliversUnderSupervisor(t *testing.T) {
	t.Parallel()

	cfg := eventprocessor.BusConfig{Router: eventprocessor.DefaultRouterConfig()}
	bus, err := eventprocessor.NewBus(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewBus() error = %v", err)
	}

	var received atomic.Int32
	bus.AddConsumer("count", eventprocessor.ConsumerFunc(func(context.Context, []byte) error {
		received.Add(1)
		return nil
	}))

	sup := suture.NewSimple("bus-test")
	sup.Add(NewBusService(bus))
	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)
	defer func() {
		cancel()
		<-errCh
	}()

	select {
	case <-bus.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	filmID := int64(42)
	msg := &models.MovieMessage{FilmID: &filmID, FilmName: "Сталкер", Rating: "8.1"}
	if err := bus.Publisher().PublishMovie(ctx, bus.Topic(), msg, time.Now()); err != nil {
		t.Fatalf("PublishMovie() error = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for received.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if received.Load() != 1 {
		t.Errorf("received = %d, want 1", received.Load())
	}
}

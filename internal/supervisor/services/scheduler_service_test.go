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
)

var _ suture.Service = (*SchedulerService)(nil)

type mockScheduler struct {
	startErr error
	stopErr  error
	starts   atomic.Int32
	stops    atomic.Int32
	started  chan struct{}
}

func newMockScheduler() *mockScheduler {
	return &mockScheduler{started: make(chan struct{}, 1)}
}

func (m *mockScheduler) Start(context.Context) error {
	m.starts.Add(1)
	if m.startErr != nil {
		return m.startErr
	}
	select {
	case m.started <- struct{}{}:
	default:
	}
	return nil
}

func (m *mockScheduler) Stop() error {
	m.stops.Add(1)
	return m.stopErr
}

func TestSchedulerService_Serve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		startErr  error
		stopErr   error
		wantErr   error
		wantStops int32
	}{
		{name: "stops on cancel", wantErr: context.Canceled, wantStops: 1},
		{name: "start failure", startErr: errors.New("already running"), wantStops: 0},
		{name: "stop failure", stopErr: errors.New("stuck"), wantStops: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := newMockScheduler()
			m.startErr, m.stopErr = tt.startErr, tt.stopErr
			svc := NewSchedulerService(m)

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			if tt.startErr == nil {
				<-m.started
			}
			cancel()

			var err error
			select {
			case err = <-errCh:
			case <-time.After(2 * time.Second):
				t.Fatal("Serve did not return")
			}

			switch {
			case tt.wantErr != nil && !errors.Is(err, tt.wantErr):
				t.Errorf("Serve() error = %v, want %v", err, tt.wantErr)
			case tt.startErr != nil && !errors.Is(err, tt.startErr):
				t.Errorf("Serve() error = %v, want start error", err)
			case tt.stopErr != nil && !errors.Is(err, tt.stopErr):
				t.Errorf("Serve() error = %v, want stop error", err)
			}
			if m.stops.Load() != tt.wantStops {
				t.Errorf("Stop calls = %d, want %d", m.stops.Load(), tt.wantStops)
			}
		})
	}
}

func TestSchedulerService_String(t *testing.T) {
	t.Parallel()

	if got := NewSchedulerService(newMockScheduler()).String(); got != "genre-scheduler" {
		t.Errorf("String() = %q", got)
	}
}

// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cinefeed/internal/logging"
)

// BusRunner is the router lifecycle of *eventprocessor.Bus.
type BusRunner interface {
	Run(ctx context.Context) error
	Close() error
}

// BusService runs the message router under suture.
//
// A watermill router cannot be started twice, so an unexpected exit is
// reported with suture.ErrDoNotRestart instead of looping on a dead router.
type BusService struct {
	bus  BusRunner
	name string
}

// NewBusService wraps bus.
func NewBusService(bus BusRunner) *BusService {
	return &BusService{
		bus:  bus,
		name: "message-bus",
	}
}

// Serve runs the router until ctx is canceled, then closes the bus.
func (s *BusService) Serve(ctx context.Context) error {
	runErr := s.bus.Run(ctx)
	closeErr := s.bus.Close()

	if ctx.Err() != nil {
		if closeErr != nil {
			return fmt.Errorf("message bus close failed: %w", closeErr)
		}
		return ctx.Err()
	}
	logging.Error().Err(errors.Join(runErr, closeErr)).Str("service", s.name).Msg("Message bus stopped unexpectedly")
	return suture.ErrDoNotRestart
}

// String names the service in supervisor events.
func (s *BusService) String() string {
	return s.name
}

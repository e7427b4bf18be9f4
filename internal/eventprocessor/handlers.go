// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package eventprocessor

import (
	"context"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/cinefeed/internal/metrics"
)

// MessageConsumer receives raw movie payloads from the bus. Returning a
// PermanentError drops the message; any other error asks for redelivery.
type MessageConsumer interface {
	Consume(ctx context.Context, payload []byte) error
}

// ConsumerFunc adapts a function to MessageConsumer.
type ConsumerFunc func(ctx context.Context, payload []byte) error

// Consume calls f.
func (f ConsumerFunc) Consume(ctx context.Context, payload []byte) error {
	return f(ctx, payload)
}

// ConsumerHandler bridges Watermill messages to a MessageConsumer.
type ConsumerHandler struct {
	consumer MessageConsumer
	logger   watermill.LoggerAdapter

	received  atomic.Int64
	processed atomic.Int64
	dropped   atomic.Int64
}

// HandlerStats is a snapshot of ConsumerHandler counters.
type HandlerStats struct {
	Received  int64
	Processed int64
	Dropped   int64
}

// NewConsumerHandler wraps consumer.
func NewConsumerHandler(consumer MessageConsumer, logger watermill.LoggerAdapter) *ConsumerHandler {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &ConsumerHandler{consumer: consumer, logger: logger}
}

// Handle implements message.NoPublishHandlerFunc.
func (h *ConsumerHandler) Handle(msg *message.Message) error {
	h.received.Add(1)

	if err := h.consumer.Consume(msg.Context(), msg.Payload); err != nil {
		if IsPermanent(err) {
			h.dropped.Add(1)
			metrics.BusMessagesDropped.Inc()
			h.logger.Error("Dropping movie message", err, watermill.LogFields{
				"message_uuid": msg.UUID,
			})
			return nil
		}
		return err
	}

	h.processed.Add(1)
	metrics.BusMessagesConsumed.Inc()
	return nil
}

// Stats returns the current counters.
func (h *ConsumerHandler) Stats() HandlerStats {
	return HandlerStats{
		Received:  h.received.Load(),
		Processed: h.processed.Load(),
		Dropped:   h.dropped.Load(),
	}
}

// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

package batch

import "github.com/tomtom215/cinefeed/internal/models"

// Buffer is the ordered list of messages waiting for the next report.
// It does no locking of its own; Collector serializes every access.
type Buffer struct {
	items []models.MovieMessage
}

// Append adds msg at the end.
func (b *Buffer) Append(msg models.MovieMessage) {
	b.items = append(b.items, msg)
}

// Len returns the number of buffered messages.
func (b *Buffer) Len() int {
	return len(b.items)
}

// Snapshot returns a copy of the buffered messages in arrival order.
func (b *Buffer) Snapshot() []models.MovieMessage {
	out := make([]models.MovieMessage, len(b.items))
	copy(out, b.items)
	return out
}

// SwapAndClear returns the buffered messages and leaves the buffer empty.
func (b *Buffer) SwapAndClear() []models.MovieMessage {
	items := b.items
	b.items = nil
	return items
}

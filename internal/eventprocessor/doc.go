// Cinefeed - Movie catalog ingestion and batch reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinefeed

/*
Package eventprocessor carries movie messages from the scheduler to the report
consumer.

The bus is built on Watermill. In production it runs over NATS JetStream,
optionally with an embedded server, and a single stream (MOVIES by default)
holds the movie topic. Without NATS an in-process gochannel bus is used; it
behaves the same for a single process but keeps nothing across restarts.

Components:
  - Publisher: circuit-breaker protected publish with a Nats-Msg-Id dedup
    header derived from the film id and run date
  - Subscriber: durable JetStream queue subscription
  - Router: Watermill router with recoverer and retry middleware
  - ConsumerHandler: bridges router deliveries to a MessageConsumer
  - EmbeddedServer and StreamInitializer: JetStream lifecycle
  - Bus: wires all of the above from configuration

Delivery is at-least-once. Nothing on the consumer side deduplicates.
*/
package eventprocessor

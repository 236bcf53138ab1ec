// Package store keeps processed batches in memory. It provides a
// thread-safe store keyed by batch id with background TTL eviction, so the
// API and WebSocket feed always serve recent results without unbounded
// growth as export files come and go.
package store

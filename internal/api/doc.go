// Package api serves processed batches over a JSON REST interface:
// overview/health, batch summaries, filterable row listings,
// cannibalization groups, and active alerts. It reads from the batch
// store and never touches the engine directly.
//
// auth.go provides the optional API-key middleware applied to the /api/v1
// subtree.
package api

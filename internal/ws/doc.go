// Package ws streams the live processing overview to dashboard clients over
// WebSocket. The hub broadcasts on a fixed interval and immediately on
// connect, and drops clients whose outgoing buffer stays full.
package ws

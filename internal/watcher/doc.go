// Package watcher observes an input directory for search-performance CSV
// exports and hands each one to a processing callback. Files already present
// at startup are processed first, then filesystem events drive the rest.
package watcher

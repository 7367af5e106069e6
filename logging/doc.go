// Package logging provides a minimal logging interface and adapters for agentgraph.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the graph executor, tool dispatch and prebuilt nodes use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - GraphLogger, a richer slog based logger with run / component context
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	b := graph.NewBuilder(schema, graph.WithLogger(logger))
//
// The interface is kept minimal so that any structured logger can be plugged in.
package logging

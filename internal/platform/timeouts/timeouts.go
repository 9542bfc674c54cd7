// Package timeouts defines the timeout constants shared by dmassist commands.
package timeouts

import "time"

// PoolFill caps the initial randomness pool fill at startup. Rolls fall
// back to the on-demand generator when it expires.
const PoolFill = 5 * time.Second

// ReadHeader limits how long the metrics server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the metrics server waits for in-flight scrapes
// during graceful shutdown.
const Shutdown = 5 * time.Second

// TelemetryShutdown limits how long pending spans are flushed on exit.
const TelemetryShutdown = 5 * time.Second

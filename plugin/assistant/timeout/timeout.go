// Package timeout defines centralized timing constants for assistant operations.
package timeout

import "time"

const (
	// StreamTickInterval is the period between two reveal increments.
	StreamTickInterval = 30 * time.Millisecond

	// StreamStepSize is the number of runes revealed per tick.
	StreamStepSize = 4

	// StreamWatchdog is the hard ceiling on a single stream's lifetime.
	// When it fires the stream is force-completed and the guard released,
	// whatever the tick timer is doing.
	StreamWatchdog = 30 * time.Second

	// GenerateTimeout is the timeout for a single external generation call.
	GenerateTimeout = 30 * time.Second

	// TurnTimeout bounds one full turn (classify, compose, persist).
	TurnTimeout = 2 * time.Minute

	// HistoryWindow is the number of messages kept at the persistence
	// boundary. The in-flight assistant message is always the newest entry
	// and therefore survives trimming.
	HistoryWindow = 50

	// GatewayHistory is the number of recent messages handed to the
	// external generation service as context.
	GatewayHistory = 10

	// MaxSearchResults caps catalog search results per query.
	MaxSearchResults = 3

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 80
)

// Package stream reveals composed answer text incrementally over time.
//
// The emitter is a single state machine with states Idle, Streaming and
// Completed. Two scheduled events drive it: the periodic tick and the
// watchdog expiry. Both funnel into the same completion transition, so
// there is no racing completion logic and the single-stream guard cannot
// leak.
package stream

import (
	"log/slog"
	"sync"
	"time"

	"github.com/edusphere/edusphere/plugin/assistant/timeout"
)

// State is the emitter state.
type State int

const (
	StateIdle State = iota
	StateStreaming
	StateCompleted
)

// RevealFunc receives the full revealed prefix after every tick. Each call
// replaces the target message text; nothing is appended. done is true on
// the final call, whose prefix is the complete text.
type RevealFunc func(prefix string, done bool)

// Config tunes the emitter. Zero values fall back to the defaults in the
// timeout package.
type Config struct {
	TickInterval time.Duration
	StepSize     int
	Watchdog     time.Duration
}

// Emitter reveals one text at a time per conversation. A second Start while
// a stream is active is a no-op: the new text is dropped, not queued, so an
// overlapping reveal can never corrupt the in-flight message.
type Emitter struct {
	mu       sync.Mutex
	state    State
	text     []rune
	revealed int
	reveal   RevealFunc
	done     chan struct{}

	tickInterval time.Duration
	stepSize     int
	watchdog     time.Duration
}

// NewEmitter creates an idle emitter.
func NewEmitter(cfg Config) *Emitter {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = timeout.StreamTickInterval
	}
	if cfg.StepSize <= 0 {
		cfg.StepSize = timeout.StreamStepSize
	}
	if cfg.Watchdog <= 0 {
		cfg.Watchdog = timeout.StreamWatchdog
	}
	return &Emitter{
		state:        StateIdle,
		tickInterval: cfg.TickInterval,
		stepSize:     cfg.StepSize,
		watchdog:     cfg.Watchdog,
	}
}

// Start begins revealing text. It reports whether the stream was started:
// false means another stream is active and the call was dropped.
func (e *Emitter) Start(text string, reveal RevealFunc) bool {
	e.mu.Lock()
	if e.state == StateStreaming {
		e.mu.Unlock()
		slog.Debug("stream already active, dropping text", "len", len(text))
		return false
	}
	e.state = StateStreaming
	e.text = []rune(text)
	e.revealed = 0
	e.reveal = reveal
	e.done = make(chan struct{})
	e.mu.Unlock()

	go e.run()
	return true
}

// Active reports whether a stream is in flight.
func (e *Emitter) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateStreaming
}

// Wait blocks until the active stream completes. It returns immediately
// when no stream is active.
func (e *Emitter) Wait() {
	e.mu.Lock()
	if e.state != StateStreaming {
		e.mu.Unlock()
		return
	}
	done := e.done
	e.mu.Unlock()
	<-done
}

// run drives the periodic reveal and the watchdog.
func (e *Emitter) run() {
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()
	watchdog := time.NewTimer(e.watchdog)
	defer watchdog.Stop()

	for {
		select {
		case <-ticker.C:
			if e.tick() {
				return
			}
		case <-watchdog.C:
			// The watchdog bounds worst-case stream lifetime: force the
			// remaining text out and release the guard.
			slog.Warn("stream watchdog fired, force-completing",
				"revealed", e.revealedCount(),
				"total", len(e.text))
			e.complete()
			return
		}
	}
}

// tick reveals one increment and reports whether the stream completed.
func (e *Emitter) tick() bool {
	e.mu.Lock()
	if e.state != StateStreaming {
		e.mu.Unlock()
		return true
	}
	e.revealed += e.stepSize
	if e.revealed >= len(e.text) {
		e.mu.Unlock()
		e.complete()
		return true
	}
	prefix := string(e.text[:e.revealed])
	reveal := e.reveal
	e.mu.Unlock()

	reveal(prefix, false)
	return false
}

// complete is the single completion transition, shared by the final tick
// and the watchdog. It is idempotent: whichever event arrives second finds
// the state already past Streaming and does nothing.
func (e *Emitter) complete() {
	e.mu.Lock()
	if e.state != StateStreaming {
		e.mu.Unlock()
		return
	}
	full := string(e.text)
	reveal := e.reveal
	done := e.done
	// Completed releases the guard: Start only refuses while Streaming,
	// so the next stream may begin immediately.
	e.state = StateCompleted
	e.mu.Unlock()

	reveal(full, true)
	close(done)
}

func (e *Emitter) revealedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.revealed
}

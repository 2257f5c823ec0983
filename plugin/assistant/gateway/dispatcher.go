package gateway

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// ErrSuperseded is returned when a newer request for the same conversation
// replaced this one. Only the most recent question's answer matters; a
// superseded result must never reach the message.
var ErrSuperseded = errors.New("generation request superseded")

// Dispatcher serializes generation per conversation by supersession: a new
// request cancels the outstanding one instead of queuing behind it. A
// process-wide semaphore bounds concurrent external calls.
type Dispatcher struct {
	gen Generator
	sem *semaphore.Weighted

	mu       sync.Mutex
	inflight map[string]*call
}

type call struct {
	cancel context.CancelFunc
}

// NewDispatcher wraps a generator. maxConcurrent bounds simultaneous
// external calls across all conversations.
func NewDispatcher(gen Generator, maxConcurrent int64) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Dispatcher{
		gen:      gen,
		sem:      semaphore.NewWeighted(maxConcurrent),
		inflight: make(map[string]*call),
	}
}

// Generate issues a generation call for a conversation, cancelling any
// outstanding call for the same key first. When this call is itself
// superseded before its result can be applied, ErrSuperseded is returned.
func (d *Dispatcher) Generate(ctx context.Context, key string, req *Request) (string, error) {
	callCtx, cancel := context.WithCancel(ctx)

	d.mu.Lock()
	if prev, ok := d.inflight[key]; ok {
		prev.cancel()
	}
	// Supersession is decided by identity: whichever call currently owns
	// the inflight slot is the one whose result may be applied.
	cur := &call{cancel: cancel}
	d.inflight[key] = cur
	d.mu.Unlock()

	defer func() {
		cancel()
		d.mu.Lock()
		// Only the owner removes its entry; a superseding call has
		// already replaced it.
		if d.inflight[key] == cur {
			delete(d.inflight, key)
		}
		d.mu.Unlock()
	}()

	if err := d.sem.Acquire(callCtx, 1); err != nil {
		return "", errors.Wrap(err, "gateway busy")
	}
	defer d.sem.Release(1)

	text, err := d.gen.Generate(callCtx, req)

	d.mu.Lock()
	current := d.inflight[key] == cur
	d.mu.Unlock()
	if !current {
		return "", ErrSuperseded
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

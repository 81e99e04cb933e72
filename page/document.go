// Package page models the load lifecycle of a hosting document as a
// two-state machine. Listeners registered before load run once on the
// transition; listeners registered after it run immediately.
package page

import (
	"context"
	"sync"

	"github.com/Swind/go-longtask/core"
)

// LoadState is the document readiness.
type LoadState int

const (
	// Waiting means the load event has not fired yet.
	Waiting LoadState = iota
	// Fired means the load event fired; it never fires again.
	Fired
)

func (s LoadState) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Fired:
		return "complete"
	default:
		return "unknown"
	}
}

// Document holds the load state and the listeners waiting for it.
type Document struct {
	mu        sync.Mutex
	state     LoadState
	listeners []func()
	runner    core.TaskRunner
}

// NewDocument returns a Waiting document. When runner is non-nil, queued
// listeners are dispatched as one task on it when the document loads;
// otherwise, or when the runner reports it is closed, they run on the
// goroutine calling Load.
func NewDocument(runner core.TaskRunner) *Document {
	return &Document{runner: runner}
}

// NewLoadedDocument returns a document that has already fired.
func NewLoadedDocument(runner core.TaskRunner) *Document {
	return &Document{runner: runner, state: Fired}
}

// State returns the current load state.
func (d *Document) State() LoadState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// OnLoad runs fn once the document has loaded. If it already has, fn runs
// synchronously before OnLoad returns.
func (d *Document) OnLoad(fn func()) {
	if fn == nil {
		return
	}

	d.mu.Lock()
	if d.state == Fired {
		d.mu.Unlock()
		fn()
		return
	}
	d.listeners = append(d.listeners, fn)
	d.mu.Unlock()
}

// Load transitions Waiting to Fired and dispatches the queued listeners in
// registration order. It returns true only for the call that performed the
// transition.
func (d *Document) Load() bool {
	d.mu.Lock()
	if d.state == Fired {
		d.mu.Unlock()
		return false
	}
	d.state = Fired
	listeners := d.listeners
	d.listeners = nil
	d.mu.Unlock()

	if len(listeners) == 0 {
		return true
	}

	dispatch := func() {
		for _, fn := range listeners {
			fn()
		}
	}
	if d.runner == nil || runnerClosed(d.runner) {
		dispatch()
		return true
	}
	d.runner.PostTaskWithTraits(func(ctx context.Context) {
		dispatch()
	}, core.TaskTraits{Priority: core.TaskPriorityUserBlocking, Category: "load"})
	return true
}

func runnerClosed(runner core.TaskRunner) bool {
	c, ok := runner.(core.NamedTaskRunner)
	return ok && c.IsClosed()
}

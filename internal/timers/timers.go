// Package timers manages per-player grace and removal timers backed
// by a swappable clock, so disconnect/removal behavior can be driven
// deterministically in tests.
package timers

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

type timerState struct {
	timer *quartz.Timer
	fired bool
}

type entry struct {
	grace   *timerState
	removal *timerState
}

// Registry tracks at most one grace timer and one removal timer per
// player id.
type Registry struct {
	mu      sync.Mutex
	clock   quartz.Clock
	entries map[string]*entry
}

// New builds a Registry driven by clock. A nil clock uses the real
// wall clock.
func New(clock quartz.Clock) *Registry {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Registry{clock: clock, entries: make(map[string]*entry)}
}

// StartGrace (re)starts id's grace timer: callback fires once after d
// unless cancelled first. Restarting an already-running grace timer
// resets its deadline.
func (r *Registry) StartGrace(id string, d time.Duration, callback func()) {
	r.start(id, d, callback, true)
}

// StartRemoval (re)starts id's removal timer, independently of its
// grace timer.
func (r *Registry) StartRemoval(id string, d time.Duration, callback func()) {
	r.start(id, d, callback, false)
}

func (r *Registry) start(id string, d time.Duration, callback func(), isGrace bool) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		e = &entry{}
		r.entries[id] = e
	}

	state := &timerState{}
	if isGrace {
		if e.grace != nil {
			e.grace.timer.Stop()
		}
		e.grace = state
	} else {
		if e.removal != nil {
			e.removal.timer.Stop()
		}
		e.removal = state
	}
	r.mu.Unlock()

	state.timer = r.clock.AfterFunc(d, func() {
		r.mu.Lock()
		state.fired = true
		r.mu.Unlock()
		callback()
	})
}

// Cancel stops both of id's timers, if running, and drops the entry.
// Cancellation after a timer has already fired is a no-op for that
// timer.
func (r *Registry) Cancel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return
	}
	if e.grace != nil {
		e.grace.timer.Stop()
	}
	if e.removal != nil {
		e.removal.timer.Stop()
	}
	delete(r.entries, id)
}

// HasActive reports whether id has a grace or removal timer that has
// been started and has not yet fired or been cancelled.
func (r *Registry) HasActive(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	if e.grace != nil && !e.grace.fired {
		return true
	}
	if e.removal != nil && !e.removal.fired {
		return true
	}
	return false
}

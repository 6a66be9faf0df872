package app

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/postsync/internal/domain"
	"github.com/bft-labs/postsync/pkg/log"
)

// ShutdownTimeout bounds how long Close waits for in-flight requests.
const ShutdownTimeout = 30 * time.Second

// State is the lifecycle state of a Store.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	// StateDetached means the parent context ended without Close being called.
	// Operations are refused until the store is closed or started again.
	StateDetached
)

var stateNames = map[State]string{
	StateStopped:  "Stopped",
	StateStarting: "Starting",
	StateRunning:  "Running",
	StateStopping: "Stopping",
	StateDetached: "Detached",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// transitions lists the states reachable from each state.
var transitions = map[State][]State{
	StateStopped:  {StateStarting},
	StateStarting: {StateRunning, StateStopping},
	StateRunning:  {StateStopping, StateDetached},
	StateStopping: {StateStopped},
	StateDetached: {StateStopping, StateStarting},
}

// EventEmitter observes lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle guards the store state machine and tracks in-flight requests
// so Close can cancel and drain them.
type Lifecycle struct {
	mu       sync.RWMutex
	state    State
	cancel   context.CancelFunc
	inflight sync.WaitGroup
	logger   log.Logger
	emitter  EventEmitter
}

func NewLifecycle(logger log.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:   StateStopped,
		logger:  log.OrDiscard(logger),
		emitter: emitter,
	}
}

func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo moves to next if the transition table allows it. A refused
// transition leaves the state untouched and returns ErrNotRunning when the
// store is idle, ErrAlreadyRunning otherwise.
func (l *Lifecycle) TransitionTo(next State, reason string) error {
	l.mu.Lock()
	prev := l.state
	if !allowed(prev, next) {
		l.mu.Unlock()
		if prev == StateStopped || prev == StateDetached {
			return domain.ErrNotRunning
		}
		return domain.ErrAlreadyRunning
	}
	l.state = next
	l.mu.Unlock()

	if l.emitter != nil {
		l.emitter.OnStateChange(prev, next, reason)
	}
	l.logger.Debug("store state transition",
		log.String("from", prev.String()),
		log.String("to", next.String()),
		log.String("reason", reason),
	)
	return nil
}

func allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanStart reports whether Start may be called.
func (l *Lifecycle) CanStart() bool {
	switch l.State() {
	case StateStopped, StateDetached:
		return true
	}
	return false
}

// CanStop reports whether Close has anything to tear down.
func (l *Lifecycle) CanStop() bool {
	switch l.State() {
	case StateStarting, StateRunning, StateDetached:
		return true
	}
	return false
}

// SetCancel records the function that aborts in-flight requests.
func (l *Lifecycle) SetCancel(cancel context.CancelFunc) {
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()
}

// CancelInFlight aborts in-flight requests. Safe to call when none are set.
func (l *Lifecycle) CancelInFlight() {
	l.mu.RLock()
	cancel := l.cancel
	l.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

// BeginRequest registers a request that Drain must wait for.
func (l *Lifecycle) BeginRequest() { l.inflight.Add(1) }

// EndRequest marks a registered request as finished.
func (l *Lifecycle) EndRequest() { l.inflight.Done() }

// Drain blocks until every registered request has finished, or returns
// ErrShutdownTimeout once timeout elapses.
func (l *Lifecycle) Drain(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.inflight.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		l.logger.Warn("shutdown timeout, abandoning in-flight requests",
			log.Duration("timeout", timeout),
		)
		return domain.ErrShutdownTimeout
	}
}

package app

import (
	"context"
	"sync"
)

// Dispatcher is the single serialized execution context on which all store
// state is mutated. Tasks run one at a time, in submission order, on the
// goroutine that calls Run.
type Dispatcher struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake   chan struct{}
	quit   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// NewDispatcher creates a dispatcher. Call Run to start draining it.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

// Submit enqueues task. It never blocks and reports false once the
// dispatcher has shut down, in which case task will not run.
func (d *Dispatcher) Submit(task func()) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	d.queue = append(d.queue, task)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
	return true
}

// Run executes tasks until ctx is done or Stop is called. Tasks still queued
// at that point are run before Run returns; later submissions are refused.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.exited)

	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return
		case <-d.quit:
			d.shutdown()
			return
		case <-d.wake:
			d.drain()
		}
	}
}

// Stop asks Run to return. Safe to call more than once.
func (d *Dispatcher) Stop() {
	d.once.Do(func() { close(d.quit) })
}

// Done is closed when Run has returned.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.exited
}

func (d *Dispatcher) drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		task := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]
		d.mu.Unlock()

		task()
	}
}

func (d *Dispatcher) shutdown() {
	d.mu.Lock()
	d.closed = true
	pending := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, task := range pending {
		task()
	}
}

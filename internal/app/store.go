package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/postsync/internal/domain"
	"github.com/bft-labs/postsync/internal/ports"
	"github.com/bft-labs/postsync/pkg/log"
)

// Snapshot is the observable state of a Store at one point in time.
// Posts must be treated as read-only.
type Snapshot struct {
	Posts   domain.Posts
	Error   *domain.ErrorState
	Version uint64
}

// Store mirrors a remote posts collection in memory. Its four operations
// each issue one remote call and report their outcome only through the
// published Snapshot. All state changes run on a single Dispatcher.
type Store struct {
	gateway   ports.PostGateway
	opts      options
	logger    log.Logger
	lifecycle *Lifecycle

	// runMu guards the per-run fields below.
	runMu      sync.RWMutex
	runCtx     context.Context
	dispatcher *Dispatcher
	runDone    chan struct{}

	// generation is bumped on Close; completions from an older generation
	// are discarded.
	generation atomic.Uint64

	// Owned by the dispatcher goroutine.
	posts    domain.Posts
	errState *domain.ErrorState
	version  uint64

	pubMu    sync.RWMutex
	snapshot Snapshot
	subs     map[int]chan Snapshot
	nextSub  int
}

// NewStore creates a stopped store backed by gateway. The collection starts empty.
func NewStore(gateway ports.PostGateway, opts ...Option) *Store {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var emitter EventEmitter
	if o.eventHandler != nil {
		emitter = o.eventHandler
	}

	s := &Store{
		gateway:   gateway,
		opts:      o,
		logger:    o.logger,
		lifecycle: NewLifecycle(o.logger, emitter),
		posts:     domain.Posts{},
		subs:      make(map[int]chan Snapshot),
	}
	s.snapshot = Snapshot{Posts: s.posts}
	return s
}

// Start launches the dispatcher. Operations issued before Start, or after
// the parent context ends, are dropped.
func (s *Store) Start(ctx context.Context) error {
	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(StateStarting, "start requested"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.lifecycle.SetCancel(cancel)
	d := NewDispatcher()
	runDone := make(chan struct{})

	s.runMu.Lock()
	s.runCtx = runCtx
	s.dispatcher = d
	s.runDone = runDone
	s.runMu.Unlock()

	// Running must be set before Run can return, or an already canceled
	// ctx would leave a Running store with no dispatcher.
	if err := s.lifecycle.TransitionTo(StateRunning, "dispatcher started"); err != nil {
		cancel()
		close(runDone)
		return err
	}

	go func() {
		defer close(runDone)
		d.Run(runCtx)
		if runCtx.Err() != nil {
			_ = s.lifecycle.TransitionTo(StateDetached, "context done")
		}
	}()
	return nil
}

// Close aborts in-flight requests, discards their completions, closes all
// subscriptions and stops the dispatcher.
func (s *Store) Close() error {
	if !s.lifecycle.CanStop() {
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(StateStopping, "close requested"); err != nil {
		return err
	}

	s.runMu.Lock()
	s.generation.Add(1)
	d, runDone := s.dispatcher, s.runDone
	s.runCtx = nil
	s.dispatcher = nil
	s.runDone = nil
	s.runMu.Unlock()

	s.lifecycle.CancelInFlight()
	if d != nil {
		d.Stop()
		<-runDone
	}
	waitErr := s.lifecycle.Drain(ShutdownTimeout)

	s.pubMu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.pubMu.Unlock()

	if err := s.lifecycle.TransitionTo(StateStopped, "closed"); err != nil {
		return err
	}
	return waitErr
}

// State returns the lifecycle state.
func (s *Store) State() State {
	return s.lifecycle.State()
}

// Snapshot returns a copy of the current published state.
func (s *Store) Snapshot() Snapshot {
	s.pubMu.RLock()
	defer s.pubMu.RUnlock()
	snap := s.snapshot
	snap.Posts = snap.Posts.Clone()
	return snap
}

// Subscribe returns a channel that immediately receives the current snapshot
// and then every later one. A slow reader only sees the most recent
// snapshot. The channel is closed by cancel or by Close.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.pubMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshot
	s.pubMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.pubMu.Lock()
			defer s.pubMu.Unlock()
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
		})
	}
	return ch, cancel
}

// FetchAll replaces the collection with the remote one. On failure the
// collection is kept and the error slot is set.
//
// The returned channel is closed once the outcome has been applied or
// discarded; callers may ignore it.
func (s *Store) FetchAll() <-chan struct{} {
	return s.launch(domain.OpFetch, func(ctx context.Context) (func(), error) {
		posts, err := s.gateway.List(ctx)
		if err != nil {
			return s.fail(domain.OpFetch, "Failed to fetch posts", err), err
		}
		return func() {
			s.posts = domain.Posts(posts).Clone()
			s.publish()
		}, nil
	})
}

// Create submits a new post owned by domain.DefaultUserID and prepends the
// stored version to the collection.
func (s *Store) Create(title, body string) <-chan struct{} {
	return s.launch(domain.OpCreate, func(ctx context.Context) (func(), error) {
		created, err := s.gateway.Create(ctx, title, body, domain.DefaultUserID)
		if err != nil {
			prefix := "Failed to add post"
			if errors.Is(err, domain.ErrDecode) {
				prefix = "Failed to decode post"
			}
			return s.fail(domain.OpCreate, prefix, err), err
		}
		return func() {
			s.posts = s.posts.Prepend(created)
			s.publish()
		}, nil
	})
}

// Update sends post with a new title and body and replaces the first local
// post with the same id, in place. Undecodable responses follow the
// configured UpdateDecodePolicy.
func (s *Store) Update(post domain.Post, title, body string) <-chan struct{} {
	edited := domain.Post{
		ID:     post.ID,
		UserID: post.UserID,
		Title:  title,
		Body:   body,
	}
	return s.launch(domain.OpUpdate, func(ctx context.Context) (func(), error) {
		updated, err := s.gateway.Update(ctx, edited)
		if err != nil {
			if errors.Is(err, domain.ErrDecode) && s.opts.updatePolicy == SwallowUpdateDecodeErrors {
				return func() {
					s.logger.Warn("update response not decodable, collection left as is",
						log.Int("id", post.ID),
						log.Err(err),
					)
				}, err
			}
			return s.fail(domain.OpUpdate, "Failed to update post", err), err
		}
		return func() {
			posts, ok := s.posts.Replace(post.ID, updated)
			if !ok {
				s.logger.Debug("updated post no longer in collection", log.Int("id", post.ID))
				return
			}
			s.posts = posts
			s.publish()
		}, nil
	})
}

// Delete removes the post remotely and then drops every local post with its id.
func (s *Store) Delete(post domain.Post) <-chan struct{} {
	return s.launch(domain.OpDelete, func(ctx context.Context) (func(), error) {
		if err := s.gateway.Delete(ctx, post.ID); err != nil {
			return s.fail(domain.OpDelete, "Failed to delete post", err), err
		}
		return func() {
			posts, n := s.posts.RemoveAll(post.ID)
			if n == 0 {
				return
			}
			s.posts = posts
			s.publish()
		}, nil
	})
}

// DismissError clears the error slot if it still holds the error with id.
func (s *Store) DismissError(id string) <-chan struct{} {
	done := make(chan struct{})

	s.runMu.RLock()
	d := s.dispatcher
	s.runMu.RUnlock()

	if d == nil || !d.Submit(func() {
		defer close(done)
		if s.errState == nil || s.errState.ID != id {
			return
		}
		s.errState = nil
		s.publish()
	}) {
		close(done)
	}
	return done
}

// launch runs call on its own goroutine and applies its outcome on the
// dispatcher, unless the store was closed in the meantime.
func (s *Store) launch(op domain.Operation, call func(ctx context.Context) (func(), error)) <-chan struct{} {
	done := make(chan struct{})

	s.runMu.RLock()
	ctx, d := s.runCtx, s.dispatcher
	gen := s.generation.Load()
	running := ctx != nil && ctx.Err() == nil && s.lifecycle.State() == StateRunning
	if running {
		s.lifecycle.BeginRequest()
	}
	s.runMu.RUnlock()

	if !running {
		s.logger.Warn("operation dropped",
			log.String("op", string(op)),
			log.Err(domain.ErrStoreClosed),
		)
		close(done)
		return done
	}

	go func() {
		defer s.lifecycle.EndRequest()

		start := time.Now()
		apply, err := call(ctx)
		duration := time.Since(start)

		accepted := d.Submit(func() {
			defer close(done)
			if s.generation.Load() != gen {
				s.logger.Debug("discarding stale completion", log.String("op", string(op)))
				return
			}
			apply()
			s.settled(op, err, duration)
		})
		if !accepted {
			close(done)
		}
	}()

	return done
}

// fail returns a task that records err in the error slot.
func (s *Store) fail(op domain.Operation, prefix string, err error) func() {
	return func() {
		s.errState = domain.NewErrorState(op, fmt.Sprintf("%s: %v", prefix, err), err)
		s.publish()
	}
}

func (s *Store) settled(op domain.Operation, err error, duration time.Duration) {
	if err != nil {
		s.logger.Error("operation failed",
			log.String("op", string(op)),
			log.Duration("duration", duration),
			log.Err(err),
		)
	} else {
		s.logger.Info("operation succeeded",
			log.String("op", string(op)),
			log.Int("posts", len(s.posts)),
			log.Duration("duration", duration),
		)
	}
	if s.opts.eventHandler != nil {
		s.opts.eventHandler.OnOperation(op, err, duration)
	}
}

// publish hands the dispatcher-owned state to observers.
func (s *Store) publish() {
	s.version++
	snap := Snapshot{
		Posts:   s.posts,
		Error:   s.errState,
		Version: s.version,
	}

	s.logger.Debug("snapshot published",
		log.Uint64("version", snap.Version),
		log.Int("posts", len(snap.Posts)),
		log.Bool("error", snap.Error != nil),
	)

	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.snapshot = snap
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/bft-labs/postsync/internal/adapters/http"
	"github.com/bft-labs/postsync/internal/domain"
	"github.com/bft-labs/postsync/internal/fakeapi"
	"github.com/bft-labs/postsync/internal/ports"
	"github.com/bft-labs/postsync/pkg/log"
)

// stubGateway implements ports.PostGateway with canned results.
type stubGateway struct {
	mu sync.Mutex

	list      []domain.Post
	listErr   error
	created   domain.Post
	createErr error
	updateErr error
	deleteErr error

	updates []domain.Post
	deletes []int
	userIDs []int
}

func (g *stubGateway) List(ctx context.Context) ([]domain.Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.listErr != nil {
		return nil, g.listErr
	}
	return append([]domain.Post{}, g.list...), nil
}

func (g *stubGateway) Create(ctx context.Context, title, body string, userID int) (domain.Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.userIDs = append(g.userIDs, userID)
	if g.createErr != nil {
		return domain.Post{}, g.createErr
	}
	return g.created, nil
}

func (g *stubGateway) Update(ctx context.Context, post domain.Post) (domain.Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.updates = append(g.updates, post)
	if g.updateErr != nil {
		return domain.Post{}, g.updateErr
	}
	return post, nil
}

func (g *stubGateway) Delete(ctx context.Context, id int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.deletes = append(g.deletes, id)
	return g.deleteErr
}

func (g *stubGateway) set(fn func(g *stubGateway)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g)
}

// blockingGateway holds every call until its context is canceled.
type blockingGateway struct {
	stubGateway
	entered chan struct{}
}

func (g *blockingGateway) List(ctx context.Context) ([]domain.Post, error) {
	close(g.entered)
	<-ctx.Done()
	return []domain.Post{{ID: 99}}, nil
}

type recordingHandler struct {
	mu     sync.Mutex
	ops    []domain.Operation
	errs   []error
	states []State
}

func (h *recordingHandler) OnStateChange(previous, current State, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, current)
}

func (h *recordingHandler) OnOperation(op domain.Operation, err error, duration time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = append(h.ops, op)
	h.errs = append(h.errs, err)
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("operation did not settle")
	}
}

func startStore(t *testing.T, gw ports.PostGateway, opts ...Option) *Store {
	t.Helper()

	s := NewStore(gw, opts...)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		if s.State() != StateStopped {
			_ = s.Close()
		}
	})
	return s
}

func fakeGateway(t *testing.T, seed []domain.Post) *httpadapter.PostGateway {
	t.Helper()

	srv := httptest.NewServer(fakeapi.New(seed, nil))
	t.Cleanup(srv.Close)
	return httpadapter.NewPostGateway(srv.URL+fakeapi.CollectionPath, srv.Client(), nil)
}

func TestStore_InitialState(t *testing.T) {
	s := NewStore(&stubGateway{})

	snap := s.Snapshot()
	assert.NotNil(t, snap.Posts)
	assert.Empty(t, snap.Posts)
	assert.Nil(t, snap.Error)
	assert.Equal(t, StateStopped, s.State())
}

func TestStore_FetchAllScenario(t *testing.T) {
	s := startStore(t, fakeGateway(t, []domain.Post{{ID: 1, UserID: 1, Title: "A", Body: "b1"}}))

	wait(t, s.FetchAll())

	snap := s.Snapshot()
	assert.Equal(t, domain.Posts{{ID: 1, UserID: 1, Title: "A", Body: "b1"}}, snap.Posts)
	assert.Nil(t, snap.Error)
}

func TestStore_FetchAllIdempotent(t *testing.T) {
	s := startStore(t, fakeGateway(t, fakeapi.Seed(10)))

	wait(t, s.FetchAll())
	first := s.Snapshot().Posts
	wait(t, s.FetchAll())
	second := s.Snapshot().Posts

	assert.Len(t, first, 10)
	assert.Equal(t, first, second)
}

func TestStore_FetchAllReplaces(t *testing.T) {
	gw := &stubGateway{list: []domain.Post{{ID: 1}, {ID: 2}}}
	s := startStore(t, gw)

	wait(t, s.FetchAll())
	gw.set(func(g *stubGateway) { g.list = []domain.Post{{ID: 3}} })
	wait(t, s.FetchAll())

	assert.Equal(t, domain.Posts{{ID: 3}}, s.Snapshot().Posts)
}

func TestStore_CreateScenario(t *testing.T) {
	s := startStore(t, fakeGateway(t, fakeapi.Seed(100)))

	wait(t, s.FetchAll())
	wait(t, s.Create("T", "B"))

	posts := s.Snapshot().Posts
	require.Len(t, posts, 101)
	assert.Equal(t, domain.Post{ID: 101, UserID: 1, Title: "T", Body: "B"}, posts[0])

	count := 0
	for _, p := range posts {
		if p.ID == 101 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestStore_CreateUsesDefaultUser(t *testing.T) {
	gw := &stubGateway{created: domain.Post{ID: 5, UserID: 1}}
	s := startStore(t, gw)

	wait(t, s.Create("t", "b"))

	assert.Equal(t, []int{domain.DefaultUserID}, gw.userIDs)
}

func TestStore_UpdateInPlace(t *testing.T) {
	s := startStore(t, fakeGateway(t, fakeapi.Seed(3)))
	wait(t, s.FetchAll())

	original := s.Snapshot().Posts[1]
	wait(t, s.Update(original, "t", "b"))

	posts := s.Snapshot().Posts
	require.Len(t, posts, 3)
	assert.Equal(t, original.ID, posts[1].ID)
	assert.Equal(t, original.UserID, posts[1].UserID)
	assert.Equal(t, "t", posts[1].Title)
	assert.Equal(t, "b", posts[1].Body)
}

func TestStore_UpdateRequestCarriesOwner(t *testing.T) {
	gw := &stubGateway{list: []domain.Post{{ID: 4, UserID: 7, Title: "old", Body: "old"}}}
	s := startStore(t, gw)
	wait(t, s.FetchAll())

	wait(t, s.Update(domain.Post{ID: 4, UserID: 7, Title: "old", Body: "old"}, "new", "nb"))

	require.Len(t, gw.updates, 1)
	assert.Equal(t, domain.Post{ID: 4, UserID: 7, Title: "new", Body: "nb"}, gw.updates[0])
}

func TestStore_UpdateMissingPostIsNoop(t *testing.T) {
	gw := &stubGateway{list: []domain.Post{{ID: 1}}}
	s := startStore(t, gw)
	wait(t, s.FetchAll())
	before := s.Snapshot()

	wait(t, s.Update(domain.Post{ID: 2}, "t", "b"))

	after := s.Snapshot()
	assert.Equal(t, before.Posts, after.Posts)
	assert.Equal(t, before.Version, after.Version)
}

func TestStore_DeleteRemovesAllMatches(t *testing.T) {
	gw := &stubGateway{list: []domain.Post{{ID: 1}, {ID: 2}, {ID: 1, Title: "dup"}}}
	s := startStore(t, gw)
	wait(t, s.FetchAll())

	wait(t, s.Delete(domain.Post{ID: 1}))

	posts := s.Snapshot().Posts
	assert.Equal(t, -1, posts.IndexOf(1))
	assert.Equal(t, domain.Posts{{ID: 2}}, posts)
	assert.Equal(t, []int{1}, gw.deletes)
}

func TestStore_FailuresLeaveCollectionUnchanged(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	transport := fmt.Errorf("%w: %w", domain.ErrTransport, cause)

	tests := []struct {
		name        string
		arrange     func(g *stubGateway)
		act         func(s *Store) <-chan struct{}
		wantOp      domain.Operation
		wantMessage string
	}{
		{
			name:        "fetch",
			arrange:     func(g *stubGateway) { g.listErr = transport },
			act:         func(s *Store) <-chan struct{} { return s.FetchAll() },
			wantOp:      domain.OpFetch,
			wantMessage: "Failed to fetch posts: ",
		},
		{
			name:        "create",
			arrange:     func(g *stubGateway) { g.createErr = transport },
			act:         func(s *Store) <-chan struct{} { return s.Create("t", "b") },
			wantOp:      domain.OpCreate,
			wantMessage: "Failed to add post: ",
		},
		{
			name:        "update",
			arrange:     func(g *stubGateway) { g.updateErr = transport },
			act:         func(s *Store) <-chan struct{} { return s.Update(domain.Post{ID: 1}, "t", "b") },
			wantOp:      domain.OpUpdate,
			wantMessage: "Failed to update post: ",
		},
		{
			name:        "delete",
			arrange:     func(g *stubGateway) { g.deleteErr = transport },
			act:         func(s *Store) <-chan struct{} { return s.Delete(domain.Post{ID: 1}) },
			wantOp:      domain.OpDelete,
			wantMessage: "Failed to delete post: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{list: []domain.Post{{ID: 1, UserID: 1, Title: "A", Body: "b1"}, {ID: 2}}}
			s := startStore(t, gw)
			wait(t, s.FetchAll())
			before := s.Snapshot().Posts

			gw.set(tt.arrange)
			wait(t, tt.act(s))

			snap := s.Snapshot()
			assert.Equal(t, before, snap.Posts)
			require.NotNil(t, snap.Error)
			assert.Equal(t, tt.wantOp, snap.Error.Op)
			assert.Contains(t, snap.Error.Message, tt.wantMessage)
			assert.Contains(t, snap.Error.Message, cause.Error())
			assert.ErrorIs(t, snap.Error, domain.ErrTransport)
		})
	}
}

func TestStore_CreateDecodeFailureMessage(t *testing.T) {
	gw := &stubGateway{createErr: fmt.Errorf("%w: empty response body", domain.ErrDecode)}
	s := startStore(t, gw)

	wait(t, s.Create("t", "b"))

	snap := s.Snapshot()
	require.NotNil(t, snap.Error)
	assert.Contains(t, snap.Error.Message, "Failed to decode post")
	assert.Empty(t, snap.Posts)
}

func TestStore_UpdateDecodeFailureSwallowedByDefault(t *testing.T) {
	gw := &stubGateway{list: []domain.Post{{ID: 1, Title: "A"}}}
	s := startStore(t, gw)
	wait(t, s.FetchAll())
	before := s.Snapshot()

	gw.set(func(g *stubGateway) { g.updateErr = fmt.Errorf("%w: bad json", domain.ErrDecode) })
	wait(t, s.Update(domain.Post{ID: 1}, "t", "b"))

	after := s.Snapshot()
	assert.Equal(t, before.Posts, after.Posts)
	assert.Nil(t, after.Error)
	assert.Equal(t, before.Version, after.Version)
}

func TestStore_UpdateDecodeFailureReported(t *testing.T) {
	gw := &stubGateway{list: []domain.Post{{ID: 1, Title: "A"}}}
	s := startStore(t, gw, WithUpdateDecodePolicy(ReportUpdateDecodeErrors))
	wait(t, s.FetchAll())
	before := s.Snapshot()

	gw.set(func(g *stubGateway) { g.updateErr = fmt.Errorf("%w: bad json", domain.ErrDecode) })
	wait(t, s.Update(domain.Post{ID: 1}, "t", "b"))

	after := s.Snapshot()
	assert.Equal(t, before.Posts, after.Posts)
	require.NotNil(t, after.Error)
	assert.ErrorIs(t, after.Error, domain.ErrDecode)
}

func TestStore_NonSuccessStatusIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := startStore(t, httpadapter.NewPostGateway(srv.URL+"/posts", srv.Client(), nil))
	wait(t, s.Delete(domain.Post{ID: 1}))

	snap := s.Snapshot()
	require.NotNil(t, snap.Error)
	assert.ErrorIs(t, snap.Error, domain.ErrUnexpectedStatus)
	assert.Contains(t, snap.Error.Message, "503")
}

func TestStore_InvalidEndpointIsReported(t *testing.T) {
	s := startStore(t, httpadapter.NewPostGateway("not a url", nil, nil))

	wait(t, s.FetchAll())

	snap := s.Snapshot()
	require.NotNil(t, snap.Error)
	assert.ErrorIs(t, snap.Error, domain.ErrInvalidEndpoint)
}

func TestStore_NewErrorReplacesOld(t *testing.T) {
	gw := &stubGateway{listErr: fmt.Errorf("%w: first", domain.ErrTransport)}
	s := startStore(t, gw)

	wait(t, s.FetchAll())
	first := s.Snapshot().Error
	wait(t, s.FetchAll())
	second := s.Snapshot().Error

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestStore_DismissError(t *testing.T) {
	gw := &stubGateway{listErr: fmt.Errorf("%w: down", domain.ErrTransport)}
	s := startStore(t, gw)
	wait(t, s.FetchAll())
	errState := s.Snapshot().Error
	require.NotNil(t, errState)

	wait(t, s.DismissError("stale-id"))
	assert.NotNil(t, s.Snapshot().Error)

	wait(t, s.DismissError(errState.ID))
	assert.Nil(t, s.Snapshot().Error)
}

func TestStore_SuccessKeepsExistingError(t *testing.T) {
	gw := &stubGateway{listErr: fmt.Errorf("%w: down", domain.ErrTransport), created: domain.Post{ID: 9}}
	s := startStore(t, gw)
	wait(t, s.FetchAll())

	wait(t, s.Create("t", "b"))

	snap := s.Snapshot()
	assert.NotNil(t, snap.Error)
	assert.Equal(t, domain.Posts{{ID: 9}}, snap.Posts)
}

func TestStore_Subscribe(t *testing.T) {
	gw := &stubGateway{list: []domain.Post{{ID: 1}}}
	s := startStore(t, gw)

	ch, cancel := s.Subscribe()
	initial := <-ch
	assert.Empty(t, initial.Posts)

	wait(t, s.FetchAll())

	select {
	case snap := <-ch:
		assert.Equal(t, domain.Posts{{ID: 1}}, snap.Posts)
		assert.Greater(t, snap.Version, initial.Version)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after fetch")
	}

	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok, "channel open after cancel")
}

func TestStore_SlowSubscriberSeesLatest(t *testing.T) {
	gw := &stubGateway{list: []domain.Post{{ID: 1}}, created: domain.Post{ID: 2}}
	s := startStore(t, gw)

	ch, cancel := s.Subscribe()
	defer cancel()

	wait(t, s.FetchAll())
	wait(t, s.Create("t", "b"))

	latest := <-ch
	assert.Equal(t, domain.Posts{{ID: 2}, {ID: 1}}, latest.Posts)
}

func TestStore_CloseClosesSubscriptions(t *testing.T) {
	s := startStore(t, &stubGateway{})
	ch, _ := s.Subscribe()
	<-ch

	require.NoError(t, s.Close())

	_, ok := <-ch
	assert.False(t, ok)
}

func TestStore_CloseDiscardsInFlight(t *testing.T) {
	gw := &blockingGateway{entered: make(chan struct{})}
	s := NewStore(gw)
	require.NoError(t, s.Start(context.Background()))

	done := s.FetchAll()
	<-gw.entered

	require.NoError(t, s.Close())
	wait(t, done)

	snap := s.Snapshot()
	assert.Empty(t, snap.Posts)
	assert.Nil(t, snap.Error)
	assert.Equal(t, StateStopped, s.State())
}

func TestStore_OperationsWhenStopped(t *testing.T) {
	gw := &stubGateway{list: []domain.Post{{ID: 1}}}
	s := NewStore(gw)

	wait(t, s.FetchAll())
	wait(t, s.DismissError("x"))

	assert.Empty(t, s.Snapshot().Posts)
}

func TestStore_StartClose(t *testing.T) {
	handler := &recordingHandler{}
	s := NewStore(&stubGateway{}, WithEventHandler(handler))

	assert.ErrorIs(t, s.Close(), domain.ErrNotRunning)
	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), domain.ErrAlreadyRunning)
	require.NoError(t, s.Close())

	// a closed store can be started again
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Close())

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Equal(t, []State{
		StateStarting, StateRunning, StateStopping, StateStopped,
		StateStarting, StateRunning, StateStopping, StateStopped,
	}, handler.states)
}

func TestStore_DetachedWhenParentContextEnds(t *testing.T) {
	s := NewStore(&stubGateway{list: []domain.Post{{ID: 1}}})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	cancel()

	require.Eventually(t, func() bool { return s.State() == StateDetached }, time.Second, 5*time.Millisecond)
	wait(t, s.FetchAll())
	assert.Empty(t, s.Snapshot().Posts)
	require.NoError(t, s.Close())
}

func TestStore_StartWithCanceledContext(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := NewStore(&stubGateway{list: []domain.Post{{ID: 1}}})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, s.Start(ctx))
		require.Eventually(t, func() bool { return s.State() == StateDetached }, time.Second, time.Millisecond)

		wait(t, s.FetchAll())
		assert.Empty(t, s.Snapshot().Posts)
		require.NoError(t, s.Close())
		assert.Equal(t, StateStopped, s.State())
	}
}

func TestStore_RestartAfterCloseStaysRunning(t *testing.T) {
	gw := &stubGateway{list: []domain.Post{{ID: 1}}}
	s := NewStore(gw)

	for i := 0; i < 20; i++ {
		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Close())
	}
	require.NoError(t, s.Start(context.Background()))
	defer s.Close()

	wait(t, s.FetchAll())
	assert.Equal(t, StateRunning, s.State())
	assert.Equal(t, domain.Posts{{ID: 1}}, s.Snapshot().Posts)
}

func TestStore_OperationEvents(t *testing.T) {
	handler := &recordingHandler{}
	gw := &stubGateway{list: []domain.Post{{ID: 1}}, deleteErr: fmt.Errorf("%w: reset", domain.ErrTransport)}
	s := startStore(t, gw, WithEventHandler(handler))

	wait(t, s.FetchAll())
	wait(t, s.Delete(domain.Post{ID: 1}))

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Equal(t, []domain.Operation{domain.OpFetch, domain.OpDelete}, handler.ops)
	assert.NoError(t, handler.errs[0])
	assert.ErrorIs(t, handler.errs[1], domain.ErrTransport)
}

func TestStore_ConcurrentOperations(t *testing.T) {
	s := startStore(t, fakeGateway(t, fakeapi.Seed(5)))
	wait(t, s.FetchAll())

	var dones []<-chan struct{}
	for i := 0; i < 20; i++ {
		dones = append(dones, s.Create(fmt.Sprintf("t%d", i), "b"))
	}
	for _, d := range dones {
		wait(t, d)
	}

	posts := s.Snapshot().Posts
	assert.Len(t, posts, 25)
	seen := map[int]bool{}
	for _, p := range posts {
		assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
		seen[p.ID] = true
	}
}

// shapeRemote serves a valid collection on GET and answers every write
// with body.
func shapeRemote(t *testing.T, list, body string) *httpadapter.PostGateway {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, list)
			return
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return httpadapter.NewPostGateway(srv.URL+"/posts", srv.Client(), nil)
}

const seededList = `[{"id":1,"userId":1,"title":"A","body":"b1"}]`

var malformedPostBodies = []string{`{}`, `null`, `{"title":"x"}`}

func TestStore_CreateRejectsMalformedPost(t *testing.T) {
	for _, body := range malformedPostBodies {
		t.Run(body, func(t *testing.T) {
			s := startStore(t, shapeRemote(t, seededList, body))
			wait(t, s.FetchAll())

			wait(t, s.Create("t", "b"))

			snap := s.Snapshot()
			assert.Equal(t, domain.Posts{{ID: 1, UserID: 1, Title: "A", Body: "b1"}}, snap.Posts)
			require.NotNil(t, snap.Error)
			assert.ErrorIs(t, snap.Error, domain.ErrDecode)
			assert.Contains(t, snap.Error.Message, "Failed to decode post")
		})
	}
}

func TestStore_UpdateIgnoresMalformedPost(t *testing.T) {
	for _, body := range malformedPostBodies {
		t.Run(body, func(t *testing.T) {
			s := startStore(t, shapeRemote(t, seededList, body))
			wait(t, s.FetchAll())
			before := s.Snapshot()

			wait(t, s.Update(before.Posts[0], "t", "b"))

			after := s.Snapshot()
			assert.Equal(t, before.Posts, after.Posts)
			assert.Nil(t, after.Error)
		})
	}
}

func TestStore_FetchAllRejectsMalformedList(t *testing.T) {
	for _, list := range []string{`null`, `[{}]`, `[{"title":"x"}]`} {
		t.Run(list, func(t *testing.T) {
			gw := shapeRemote(t, seededList, "")
			s := startStore(t, gw)
			wait(t, s.FetchAll())

			bad := shapeRemote(t, list, "")
			gw.SetBaseURL(bad.BaseURL())
			wait(t, s.FetchAll())

			snap := s.Snapshot()
			assert.Equal(t, domain.Posts{{ID: 1, UserID: 1, Title: "A", Body: "b1"}}, snap.Posts)
			require.NotNil(t, snap.Error)
			assert.ErrorIs(t, snap.Error, domain.ErrDecode)
			assert.Contains(t, snap.Error.Message, "Failed to fetch posts")
		})
	}
}

type capturedLine struct {
	msg    string
	fields map[string]any
}

// captureLogger records debug lines.
type captureLogger struct {
	mu    sync.Mutex
	lines []capturedLine
}

func (l *captureLogger) Debug(msg string, fields ...log.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := capturedLine{msg: msg, fields: map[string]any{}}
	for _, f := range fields {
		line.fields[f.Key] = f.Value
	}
	l.lines = append(l.lines, line)
}
func (l *captureLogger) Info(string, ...log.Field)  {}
func (l *captureLogger) Warn(string, ...log.Field)  {}
func (l *captureLogger) Error(string, ...log.Field) {}

func (l *captureLogger) find(msg string) []capturedLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []capturedLine
	for _, line := range l.lines {
		if line.msg == msg {
			out = append(out, line)
		}
	}
	return out
}

func TestStore_PublishLogsSnapshotVersion(t *testing.T) {
	logger := &captureLogger{}
	gw := &stubGateway{list: []domain.Post{{ID: 1}, {ID: 2}}}
	s := startStore(t, gw, WithLogger(logger))

	wait(t, s.FetchAll())
	gw.set(func(g *stubGateway) { g.deleteErr = errors.New("boom") })
	wait(t, s.Delete(domain.Post{ID: 1}))

	lines := logger.find("snapshot published")
	require.Len(t, lines, 2)
	assert.Equal(t, map[string]any{"version": uint64(1), "posts": 2, "error": false}, lines[0].fields)
	assert.Equal(t, map[string]any{"version": uint64(2), "posts": 2, "error": true}, lines[1].fields)
}

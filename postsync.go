// Package postsync keeps an in-memory, observable copy of a remote posts
// collection and edits it through four fire-and-forget operations.
//
// Example usage:
//
//	cfg := postsync.DefaultConfig()
//	store := postsync.NewStore(cfg)
//	if err := store.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	updates, cancel := store.Subscribe()
//	defer cancel()
//	store.FetchAll()
//	for snap := range updates {
//	    render(snap.Posts, snap.Error)
//	}
package postsync

import (
	"net/http"
	"time"

	httpadapter "github.com/bft-labs/postsync/internal/adapters/http"
	"github.com/bft-labs/postsync/internal/app"
	"github.com/bft-labs/postsync/internal/domain"
	"github.com/bft-labs/postsync/internal/ports"
	"github.com/bft-labs/postsync/pkg/log"
)

// DefaultBaseURL is the public demo collection used when none is configured.
const DefaultBaseURL = domain.DefaultBaseURL

type (
	// Post is a single remote post.
	Post = domain.Post

	// Posts is the ordered local collection.
	Posts = domain.Posts

	// ErrorState is the most recent unrecovered failure.
	ErrorState = domain.ErrorState

	// Operation names one of the four remote operations.
	Operation = domain.Operation

	// StatusError describes a non-2xx response.
	StatusError = domain.StatusError

	// Snapshot is the observable state of a Store.
	Snapshot = app.Snapshot

	// Store mirrors the remote collection. See NewStore.
	Store = app.Store

	// State is the lifecycle state of a Store.
	State = app.State

	// Option configures optional behavior of a Store.
	Option = app.Option

	// EventHandler receives lifecycle and operation events.
	EventHandler = app.EventHandler

	// UpdateDecodePolicy decides how undecodable update responses are handled.
	UpdateDecodePolicy = app.UpdateDecodePolicy

	// PostGateway performs the remote calls. Implement it to plug in another transport.
	PostGateway = ports.PostGateway

	// HTTPClient is the interface for making HTTP requests.
	// *http.Client satisfies this interface.
	HTTPClient = ports.HTTPClient

	// Logger is the interface for structured logging.
	Logger = log.Logger
)

const (
	SwallowUpdateDecodeErrors = app.SwallowUpdateDecodeErrors
	ReportUpdateDecodeErrors  = app.ReportUpdateDecodeErrors
)

// Errors reported in ErrorState.Err and by Store methods; match with errors.Is.
var (
	ErrTransport        = domain.ErrTransport
	ErrDecode           = domain.ErrDecode
	ErrInvalidEndpoint  = domain.ErrInvalidEndpoint
	ErrUnexpectedStatus = domain.ErrUnexpectedStatus
	ErrAlreadyRunning   = domain.ErrAlreadyRunning
	ErrNotRunning       = domain.ErrNotRunning
)

// Config holds what NewStore needs to reach the remote collection.
type Config struct {
	// BaseURL is the collection URL; items live at BaseURL/{id}.
	BaseURL string

	// HTTPTimeout applies to the default client. Zero means no timeout.
	HTTPTimeout time.Duration

	// HTTPClient overrides the default client; HTTPTimeout is then ignored.
	HTTPClient HTTPClient

	// Logger receives store and request logs. Nil discards them.
	Logger Logger
}

// DefaultConfig returns a Config pointed at DefaultBaseURL with no timeout.
func DefaultConfig() Config {
	return Config{BaseURL: DefaultBaseURL}
}

// NewStore creates a stopped Store talking JSON over HTTP to cfg.BaseURL.
// A malformed BaseURL is not rejected here; every operation then reports
// ErrInvalidEndpoint through the error slot.
func NewStore(cfg Config, opts ...Option) *Store {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	gateway := httpadapter.NewPostGateway(cfg.BaseURL, client, cfg.Logger)
	if cfg.Logger != nil {
		opts = append([]Option{app.WithLogger(cfg.Logger)}, opts...)
	}
	return app.NewStore(gateway, opts...)
}

// NewStoreWithGateway creates a stopped Store on top of a custom gateway.
func NewStoreWithGateway(gateway PostGateway, opts ...Option) *Store {
	return app.NewStore(gateway, opts...)
}

// WithLogger sets a custom logger for structured logging.
func WithLogger(logger Logger) Option {
	return app.WithLogger(logger)
}

// WithEventHandler sets a handler for store events.
func WithEventHandler(handler EventHandler) Option {
	return app.WithEventHandler(handler)
}

// WithUpdateDecodePolicy selects how undecodable update responses are handled.
// The default, SwallowUpdateDecodeErrors, only logs them.
func WithUpdateDecodePolicy(policy UpdateDecodePolicy) Option {
	return app.WithUpdateDecodePolicy(policy)
}

package ports

import (
	"context"
	"net/http"

	"github.com/bft-labs/postsync/internal/domain"
)

// PostGateway performs single remote calls against the posts collection.
// Errors wrap one of domain.ErrTransport, domain.ErrDecode,
// domain.ErrInvalidEndpoint or domain.ErrUnexpectedStatus.
type PostGateway interface {
	// List returns the whole remote collection.
	List(ctx context.Context) ([]domain.Post, error)

	// Create submits a new post and returns the stored version with its assigned ID.
	Create(ctx context.Context, title, body string, userID int) (domain.Post, error)

	// Update replaces the post identified by post.ID and returns the stored version.
	Update(ctx context.Context, post domain.Post) (domain.Post, error)

	// Delete removes the post with the given ID.
	Delete(ctx context.Context, id int) error
}

// HTTPClient abstracts HTTP operations for dependency injection.
// The standard *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bft-labs/postsync/internal/domain"
	"github.com/bft-labs/postsync/internal/ports"
	"github.com/bft-labs/postsync/pkg/log"
)

const (
	contentType = "application/json; charset=UTF-8"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 8 << 20

	// maxErrorBodyBytes bounds the body excerpt kept in a StatusError.
	maxErrorBodyBytes = 512
)

// UserAgent is sent with every request.
var UserAgent = "postsync/dev"

// PostGateway implements ports.PostGateway against a JSON REST collection
// such as https://jsonplaceholder.typicode.com/posts.
type PostGateway struct {
	mu      sync.RWMutex
	baseURL string

	client ports.HTTPClient
	logger log.Logger
}

// NewPostGateway creates a gateway for the collection at baseURL.
func NewPostGateway(baseURL string, client ports.HTTPClient, logger log.Logger) *PostGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &PostGateway{
		baseURL: baseURL,
		client:  client,
		logger:  log.OrDiscard(logger),
	}
}

// BaseURL returns the collection URL requests are sent to.
func (g *PostGateway) BaseURL() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.baseURL
}

// SetBaseURL re-points the gateway. Requests already in flight keep the old URL.
func (g *PostGateway) SetBaseURL(baseURL string) {
	g.mu.Lock()
	g.baseURL = baseURL
	g.mu.Unlock()
}

// List fetches the whole collection with GET {base}.
func (g *PostGateway) List(ctx context.Context) ([]domain.Post, error) {
	endpoint, err := g.endpoint(nil)
	if err != nil {
		return nil, err
	}
	var list *[]*wirePost
	if err := g.do(ctx, http.MethodGet, endpoint, nil, &list); err != nil {
		return nil, err
	}
	return wirePosts(list)
}

type createRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// Create submits a new post with POST {base}. No id is sent; the remote assigns it.
func (g *PostGateway) Create(ctx context.Context, title, body string, userID int) (domain.Post, error) {
	endpoint, err := g.endpoint(nil)
	if err != nil {
		return domain.Post{}, err
	}
	var created *wirePost
	req := createRequest{Title: title, Body: body, UserID: userID}
	if err := g.do(ctx, http.MethodPost, endpoint, req, &created); err != nil {
		return domain.Post{}, err
	}
	return created.post()
}

// Update replaces a post with PUT {base}/{id}.
func (g *PostGateway) Update(ctx context.Context, post domain.Post) (domain.Post, error) {
	endpoint, err := g.endpoint(&post.ID)
	if err != nil {
		return domain.Post{}, err
	}
	var updated *wirePost
	if err := g.do(ctx, http.MethodPut, endpoint, post, &updated); err != nil {
		return domain.Post{}, err
	}
	return updated.post()
}

// Delete removes a post with DELETE {base}/{id}. The response body is ignored.
func (g *PostGateway) Delete(ctx context.Context, id int) error {
	endpoint, err := g.endpoint(&id)
	if err != nil {
		return err
	}
	return g.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

// endpoint resolves the collection URL, or the item URL when id is set.
func (g *PostGateway) endpoint(id *int) (string, error) {
	base := strings.TrimRight(g.BaseURL(), "/")
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute http(s) URL", domain.ErrInvalidEndpoint, base)
	}
	if id != nil {
		u = u.JoinPath(strconv.Itoa(*id))
	}
	return u.String(), nil
}

// do sends one request and decodes the response into out when out is non-nil.
func (g *PostGateway) do(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidEndpoint, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Debug("request failed",
			log.String("method", method),
			log.String("url", endpoint),
			log.Err(err),
		)
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", domain.ErrTransport, err)
	}

	g.logger.Debug("request completed",
		log.String("method", method),
		log.String("url", endpoint),
		log.Int("status", resp.StatusCode),
		log.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode/100 != 2 {
		excerpt := data
		if len(excerpt) > maxErrorBodyBytes {
			excerpt = excerpt[:maxErrorBodyBytes]
		}
		return &domain.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: empty response body", domain.ErrDecode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	return nil
}

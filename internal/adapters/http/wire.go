package http

import (
	"fmt"

	"github.com/bft-labs/postsync/internal/domain"
)

// wirePost is a post as it arrives from the remote. Every key is required;
// a nil field means the key was absent or null.
type wirePost struct {
	ID     *int    `json:"id"`
	UserID *int    `json:"userId"`
	Title  *string `json:"title"`
	Body   *string `json:"body"`
}

func (w *wirePost) post() (domain.Post, error) {
	if w == nil {
		return domain.Post{}, fmt.Errorf("%w: post is null", domain.ErrDecode)
	}
	missing := ""
	switch {
	case w.ID == nil:
		missing = "id"
	case w.UserID == nil:
		missing = "userId"
	case w.Title == nil:
		missing = "title"
	case w.Body == nil:
		missing = "body"
	}
	if missing != "" {
		return domain.Post{}, fmt.Errorf("%w: post is missing %q", domain.ErrDecode, missing)
	}
	return domain.Post{ID: *w.ID, UserID: *w.UserID, Title: *w.Title, Body: *w.Body}, nil
}

// wirePosts converts a decoded list. A nil list means the body was null.
func wirePosts(list *[]*wirePost) ([]domain.Post, error) {
	if list == nil {
		return nil, fmt.Errorf("%w: post list is null", domain.ErrDecode)
	}
	posts := make([]domain.Post, 0, len(*list))
	for i, w := range *list {
		p, err := w.post()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}

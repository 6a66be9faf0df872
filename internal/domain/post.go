package domain

// DefaultBaseURL is the public demo collection used when none is configured.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com/posts"

// DefaultUserID is the owner assigned to every post created by this client.
const DefaultUserID = 1

// Post is a title/body pair owned by a user. ID is assigned by the remote
// service; a client-supplied ID is ignored on create.
type Post struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Posts is the ordered local collection. Insertion order matters: new posts
// are prepended. IDs are expected to be unique but this is not enforced.
type Posts []Post

// Clone returns a copy that shares no backing array with p.
func (p Posts) Clone() Posts {
	if p == nil {
		return Posts{}
	}
	out := make(Posts, len(p))
	copy(out, p)
	return out
}

// IndexOf returns the position of the first post with the given id, or -1.
func (p Posts) IndexOf(id int) int {
	for i := range p {
		if p[i].ID == id {
			return i
		}
	}
	return -1
}

// Prepend returns a new collection with post at index 0.
func (p Posts) Prepend(post Post) Posts {
	out := make(Posts, 0, len(p)+1)
	out = append(out, post)
	return append(out, p...)
}

// Replace swaps the first post matching id for post, keeping its position.
// It reports false and returns p unchanged when no post matches.
func (p Posts) Replace(id int, post Post) (Posts, bool) {
	i := p.IndexOf(id)
	if i < 0 {
		return p, false
	}
	out := p.Clone()
	out[i] = post
	return out, true
}

// RemoveAll returns a new collection without any post matching id, along
// with the number of removed elements.
func (p Posts) RemoveAll(id int) (Posts, int) {
	out := make(Posts, 0, len(p))
	for _, post := range p {
		if post.ID != id {
			out = append(out, post)
		}
	}
	return out, len(p) - len(out)
}

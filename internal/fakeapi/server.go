// Package fakeapi serves an in-memory posts collection shaped like the
// jsonplaceholder demo API. It backs the tests and the fake-server command.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"github.com/bft-labs/postsync/internal/domain"
	"github.com/bft-labs/postsync/pkg/log"
)

// CollectionPath is where the posts collection is mounted.
const CollectionPath = "/posts"

// Server is an in-memory posts resource. Unlike the public demo API it
// persists writes, so a later list reflects earlier creates and deletes.
type Server struct {
	mu     sync.Mutex
	posts  []domain.Post
	nextID int

	router *mux.Router
	logger log.Logger
}

// Seed generates n posts the way the demo API lays them out: ten per user.
func Seed(n int) []domain.Post {
	posts := make([]domain.Post, 0, n)
	for i := 1; i <= n; i++ {
		posts = append(posts, domain.Post{
			ID:     i,
			UserID: (i-1)/10 + 1,
			Title:  fmt.Sprintf("post %d", i),
			Body:   fmt.Sprintf("body of post %d", i),
		})
	}
	return posts
}

// New creates a server holding a copy of seed.
func New(seed []domain.Post, logger log.Logger) *Server {
	s := &Server{
		posts:  append([]domain.Post{}, seed...),
		nextID: 1,
		logger: log.OrDiscard(logger),
	}
	for _, p := range seed {
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
	}

	r := mux.NewRouter()
	r.HandleFunc(CollectionPath, s.list).Methods(http.MethodGet)
	r.HandleFunc(CollectionPath, s.create).Methods(http.MethodPost)
	r.HandleFunc(CollectionPath+"/{id:[0-9]+}", s.get).Methods(http.MethodGet)
	r.HandleFunc(CollectionPath+"/{id:[0-9]+}", s.update).Methods(http.MethodPut)
	r.HandleFunc(CollectionPath+"/{id:[0-9]+}", s.remove).Methods(http.MethodDelete)
	r.Use(s.logRequests)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Posts returns a snapshot of the stored collection.
func (s *Server) Posts() []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Post{}, s.posts...)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("fake api request",
			log.String("method", r.Method),
			log.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Posts())
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in domain.Post
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	in.ID = s.nextID
	s.nextID++
	s.posts = append(s.posts, in)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, struct{}{})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	var in domain.Post
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	in.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.posts {
		if s.posts[i].ID == id {
			s.posts[i] = in
			writeJSON(w, http.StatusOK, in)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, struct{}{})
}

// remove answers 200 with an empty object whether or not the post existed,
// matching the demo API.
func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	s.mu.Lock()
	kept := s.posts[:0]
	for _, p := range s.posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.posts = kept
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, struct{}{})
}

func pathID(r *http.Request) int {
	// the route pattern guarantees digits
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

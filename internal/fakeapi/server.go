// Package fakeapi is an in-memory implementation of the matchmaking REST API.
// It backs the package tests and `kinmatch sandbox`.
package fakeapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/naveenspark/kinmatch/internal/auth"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

type contextKey string

const userIDKey contextKey = "user_id"

type requestKey struct {
	from, to string // profile ids
}

type storedRequest struct {
	message   string
	createdAt time.Time
}

type storedMessage struct {
	id        string
	sender    string // profile id of the author
	content   string
	createdAt time.Time
}

type storedMatch struct {
	id       string
	a, b     string // profile ids
	messages []storedMessage
}

func (m *storedMatch) peer(of string) (string, bool) {
	switch of {
	case m.a:
		return m.b, true
	case m.b:
		return m.a, true
	}
	return "", false
}

// Server holds all state behind one mutex.
type Server struct {
	auth *auth.Authenticator
	now  func() time.Time

	mu       sync.Mutex
	order    []string                   // profile ids in creation order
	profiles map[string]*domain.Profile // by profile id
	owners   map[string]string          // user id -> profile id
	requests map[requestKey]storedRequest
	matches  []*storedMatch
	views    map[string]int // profile id -> views by others
}

// New returns an empty server that trusts tokens signed by a.
func New(a *auth.Authenticator) *Server {
	return &Server{
		auth:     a,
		now:      time.Now,
		profiles: map[string]*domain.Profile{},
		owners:   map[string]string{},
		requests: map[requestKey]storedRequest{},
		views:    map[string]int{},
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", s.listProfiles)
			r.Post("/", s.createProfile)
			r.Get("/me", s.myProfile)
			r.Get("/{id}", s.getProfile)
			r.Put("/{id}", s.updateProfile)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", s.listMatches)
			r.Get("/pending", s.listPending)
			r.Get("/sent", s.listSent)
			r.Get("/stats", s.stats)
			r.Get("/status/{id}", s.status)
			r.Post("/request/{id}", s.sendRequest)
			r.Delete("/request/{id}", s.cancelRequest)
			r.Post("/accept/{id}", s.acceptRequest)
			r.Post("/reject/{id}", s.rejectRequest)
			r.Post("/message/{matchId}", s.sendMessage)
			r.Get("/{matchId}", s.getMatch)
		})
	})
	return r
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		claims, err := s.auth.Verify(token)
		if err != nil {
			respondError(w, "invalid token", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("fakeapi")
	})
}

func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client gone
}

func decodeBody(r *http.Request, v any) bool {
	if r.Body == nil {
		return true
	}
	err := json.NewDecoder(r.Body).Decode(v)
	return err == nil || errors.Is(err, io.EOF)
}

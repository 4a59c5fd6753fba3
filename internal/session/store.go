// Package session keeps the signed-in credential and identity, both on disk
// and in memory for the running process.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/naveenspark/kinmatch/internal/storage"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

// Storage keys. Other tools reading the session dir rely on these names.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrNoSession means no token is stored.
var ErrNoSession = errors.New("no session")

// Store persists the session in a durable key-value store.
type Store struct {
	kv storage.KV
}

// NewStore wraps kv.
func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv}
}

// SetSession writes the token and user in one storage operation.
func (s *Store) SetSession(ctx context.Context, token string, user domain.User) error {
	if token == "" {
		return fmt.Errorf("session.SetSession: token is required")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session.SetSession: marshal user: %w", err)
	}
	if err := s.kv.SetMany(ctx, map[string]string{KeyToken: token, KeyUser: string(data)}); err != nil {
		return fmt.Errorf("session.SetSession: %w", err)
	}
	return nil
}

// Token returns the stored token and whether one exists.
func (s *Store) Token(ctx context.Context) (string, bool, error) {
	tok, ok, err := s.kv.Get(ctx, KeyToken)
	if err != nil {
		return "", false, fmt.Errorf("session.Token: %w", err)
	}
	return tok, ok && tok != "", nil
}

// User returns the stored identity and whether one exists.
func (s *Store) User(ctx context.Context) (domain.User, bool, error) {
	raw, ok, err := s.kv.Get(ctx, KeyUser)
	if err != nil {
		return domain.User{}, false, fmt.Errorf("session.User: %w", err)
	}
	if !ok || raw == "" {
		return domain.User{}, false, nil
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return domain.User{}, false, fmt.Errorf("session.User: parse: %w", err)
	}
	return u, true, nil
}

// Load returns the stored session or ErrNoSession.
func (s *Store) Load(ctx context.Context) (*domain.Session, error) {
	tok, ok, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoSession
	}
	u, _, err := s.User(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: tok, User: u}, nil
}

// Clear removes both keys.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("session.Clear: %w", err)
	}
	return nil
}

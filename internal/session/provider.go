package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/naveenspark/kinmatch/pkg/domain"
)

// Provider is the one session holder handed to every part of the app.
// It satisfies client.TokenSource.
type Provider struct {
	store *Store

	mu      sync.RWMutex
	current *domain.Session
}

// NewProvider returns a Provider backed by store. Call Load to pick up a
// previously saved session.
func NewProvider(store *Store) *Provider {
	return &Provider{store: store}
}

// Load reads the persisted session into memory. A missing session is not an error.
func (p *Provider) Load(ctx context.Context) error {
	s, err := p.store.Load(ctx)
	if errors.Is(err, ErrNoSession) {
		p.mu.Lock()
		p.current = nil
		p.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("session.Load: %w", err)
	}
	p.mu.Lock()
	p.current = s
	p.mu.Unlock()
	return nil
}

// Set persists s and makes it current. Memory is only updated once the
// write succeeded.
func (p *Provider) Set(ctx context.Context, s domain.Session) error {
	if err := p.store.SetSession(ctx, s.Token, s.User); err != nil {
		return err
	}
	p.mu.Lock()
	p.current = &s
	p.mu.Unlock()
	log.Info().Str("user_id", s.User.ID).Msg("session started")
	return nil
}

// Logout clears the stored and in-memory session.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
	if err := p.store.Clear(ctx); err != nil {
		return err
	}
	log.Info().Msg("session ended")
	return nil
}

// Current returns a copy of the active session, or nil.
func (p *Provider) Current() *domain.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil
	}
	s := *p.current
	return &s
}

// Token returns the active bearer token or "".
func (p *Provider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return ""
	}
	return p.current.Token
}

// Authenticated reports whether a session with a token is active.
func (p *Provider) Authenticated() bool {
	return p.Token() != ""
}

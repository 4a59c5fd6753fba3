// Package conversation is the view model behind one match's message thread.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/naveenspark/kinmatch/pkg/domain"
)

// ErrEmptyMessage is returned by Send for blank input; nothing is sent.
var ErrEmptyMessage = errors.New("message is empty")

// API is the subset of the API client a thread needs.
type API interface {
	GetMatch(ctx context.Context, matchID string) (*domain.Match, error)
	SendMessage(ctx context.Context, matchID, content string) (*domain.Message, error)
}

// Thread holds one loaded conversation.
type Thread struct {
	api API

	mu       sync.Mutex
	matchID  string
	peer     domain.Profile
	messages []domain.Message
	loaded   bool
}

// New returns an unloaded thread.
func New(api API) *Thread {
	return &Thread{api: api}
}

// Load fetches the match with its peer and messages in one call.
func (t *Thread) Load(ctx context.Context, matchID string) error {
	m, err := t.api.GetMatch(ctx, matchID)
	if err != nil {
		return fmt.Errorf("conversation.Load: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.matchID = matchID
	t.peer = m.Profile
	t.messages = append([]domain.Message(nil), m.Messages...)
	t.loaded = true
	return nil
}

// Loaded reports whether Load has succeeded.
func (t *Thread) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loaded
}

// Peer returns the other side's profile.
func (t *Thread) Peer() domain.Profile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.peer
}

// Messages returns a copy of the thread in order.
func (t *Thread) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Message(nil), t.messages...)
}

// Send posts content after trimming it. The stored message is appended
// only on success, so a failed send leaves the caller's draft to retry.
func (t *Thread) Send(ctx context.Context, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	t.mu.Lock()
	id, loaded := t.matchID, t.loaded
	t.mu.Unlock()
	if !loaded {
		return nil, errors.New("conversation.Send: thread not loaded")
	}

	msg, err := t.api.SendMessage(ctx, id, content)
	if err != nil {
		return nil, fmt.Errorf("conversation.Send: %w", err)
	}
	if msg.Sender == "" {
		msg.Sender = domain.SenderSelf
	}
	if msg.Content == "" {
		msg.Content = content
	}
	t.mu.Lock()
	if !t.hasLocked(msg.ID) {
		t.messages = append(t.messages, *msg)
	}
	t.mu.Unlock()
	return msg, nil
}

// hasLocked reports whether a message with id is already in the thread,
// e.g. because a reload raced the send.
func (t *Thread) hasLocked(id string) bool {
	if id == "" {
		return false
	}
	for _, m := range t.messages {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Groups buckets the thread by calendar date in loc.
func (t *Thread) Groups(loc *time.Location) []domain.DateGroup {
	return domain.GroupByDate(t.Messages(), loc)
}

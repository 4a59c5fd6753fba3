// Package match holds the viewer's match lists and the request workflow:
// like, accept, reject and cancel. Local state changes only after the
// server confirms.
package match

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/naveenspark/kinmatch/pkg/client"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

// DefaultLikeMessage is sent when the viewer likes without writing anything.
const DefaultLikeMessage = "I think our children would be a great match!"

var (
	ErrInvalidTransition = errors.New("invalid match transition")
	ErrEmptyMessage      = errors.New("message is empty")
)

// TransitionError reports an operation attempted from the wrong status.
type TransitionError struct {
	Op   string
	From domain.MatchStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s from status %q", e.Op, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// API is the subset of the API client the workflow needs.
type API interface {
	ListMatches(ctx context.Context) ([]domain.Match, error)
	ListPending(ctx context.Context) ([]domain.MatchRequest, error)
	ListSent(ctx context.Context) ([]domain.MatchRequest, error)
	SendRequest(ctx context.Context, id, message string) error
	CancelRequest(ctx context.Context, id string) error
	AcceptRequest(ctx context.Context, id, message string) error
	RejectRequest(ctx context.Context, id string) error
	MatchStatus(ctx context.Context, id string) (domain.MatchStatus, error)
	MatchStats(ctx context.Context) (*domain.MatchStats, error)
}

// Workflow owns the three lists for one viewer.
type Workflow struct {
	api API
	now func() time.Time

	mu      sync.Mutex
	matches []domain.Match
	pending []domain.MatchRequest
	sent    []domain.MatchRequest
}

// NewWorkflow returns an empty Workflow; call Refresh to load it.
func NewWorkflow(api API) *Workflow {
	return &Workflow{api: api, now: time.Now}
}

// Reset forgets all three lists. Call it when the signed-in user changes.
func (w *Workflow) Reset() {
	w.mu.Lock()
	w.matches, w.pending, w.sent = nil, nil, nil
	w.mu.Unlock()
}

// Refresh replaces all three lists with the server's. Nothing changes if
// any fetch fails.
func (w *Workflow) Refresh(ctx context.Context) error {
	matches, err := w.api.ListMatches(ctx)
	if err != nil {
		return fmt.Errorf("match.Refresh: %w", err)
	}
	pending, err := w.api.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("match.Refresh: %w", err)
	}
	sent, err := w.api.ListSent(ctx)
	if err != nil {
		return fmt.Errorf("match.Refresh: %w", err)
	}
	w.mu.Lock()
	w.matches, w.pending, w.sent = matches, pending, sent
	w.mu.Unlock()
	return nil
}

// Matches returns a copy of the accepted matches.
func (w *Workflow) Matches() []domain.Match {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.Match(nil), w.matches...)
}

// Pending returns a copy of the incoming requests.
func (w *Workflow) Pending() []domain.MatchRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.MatchRequest(nil), w.pending...)
}

// Sent returns a copy of the outgoing requests.
func (w *Workflow) Sent() []domain.MatchRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.MatchRequest(nil), w.sent...)
}

// Status derives the status of targetID from the current lists.
func (w *Workflow) Status(targetID string) domain.MatchStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Derive(w.matches, w.pending, w.sent, targetID)
}

// Derive computes the status of id. When lists disagree the strongest
// relationship wins: matched, then pending, then requested.
func Derive(matches []domain.Match, pending, sent []domain.MatchRequest, id string) domain.MatchStatus {
	for _, m := range matches {
		if m.Profile.ID == id {
			return domain.StatusMatched
		}
	}
	if indexOf(pending, id) >= 0 {
		return domain.StatusPending
	}
	if indexOf(sent, id) >= 0 {
		return domain.StatusRequested
	}
	return domain.StatusNone
}

// Like sends a request to targetID. An empty message becomes DefaultLikeMessage.
func (w *Workflow) Like(ctx context.Context, target domain.Profile, message string) error {
	if from := w.Status(target.ID); from != domain.StatusNone {
		return &TransitionError{Op: "like", From: from}
	}
	if strings.TrimSpace(message) == "" {
		message = DefaultLikeMessage
	}
	if err := w.api.SendRequest(ctx, target.ID, message); err != nil {
		return fmt.Errorf("match.Like: %w", err)
	}
	w.mu.Lock()
	if indexOf(w.sent, target.ID) < 0 {
		w.sent = append(w.sent, domain.MatchRequest{Profile: target, Message: message})
	}
	w.mu.Unlock()
	log.Info().Str("target", target.ID).Msg("match request sent")
	return nil
}

// Accept accepts the pending request from targetID with a reply.
func (w *Workflow) Accept(ctx context.Context, targetID, reply string) error {
	if from := w.Status(targetID); from != domain.StatusPending {
		return &TransitionError{Op: "accept", From: from}
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return ErrEmptyMessage
	}
	if err := w.api.AcceptRequest(ctx, targetID, reply); err != nil {
		return fmt.Errorf("match.Accept: %w", err)
	}
	w.mu.Lock()
	if i := indexOf(w.pending, targetID); i >= 0 {
		req := w.pending[i]
		w.pending = append(w.pending[:i:i], w.pending[i+1:]...)
		w.matches = append(w.matches, domain.Match{
			Profile:  req.Profile,
			Messages: []domain.Message{{Sender: domain.SenderSelf, Content: reply, CreatedAt: w.now()}},
		})
	}
	w.mu.Unlock()
	log.Info().Str("target", targetID).Msg("match request accepted")
	return nil
}

// Reject declines the pending request from targetID.
func (w *Workflow) Reject(ctx context.Context, targetID string) error {
	if from := w.Status(targetID); from != domain.StatusPending {
		return &TransitionError{Op: "reject", From: from}
	}
	if err := w.api.RejectRequest(ctx, targetID); err != nil {
		return fmt.Errorf("match.Reject: %w", err)
	}
	w.mu.Lock()
	if i := indexOf(w.pending, targetID); i >= 0 {
		w.pending = append(w.pending[:i:i], w.pending[i+1:]...)
	}
	w.mu.Unlock()
	log.Info().Str("target", targetID).Msg("match request rejected")
	return nil
}

// Cancel withdraws the viewer's request to targetID.
func (w *Workflow) Cancel(ctx context.Context, targetID string) error {
	if from := w.Status(targetID); from != domain.StatusRequested {
		return &TransitionError{Op: "cancel", From: from}
	}
	if err := w.api.CancelRequest(ctx, targetID); err != nil {
		return fmt.Errorf("match.Cancel: %w", err)
	}
	w.mu.Lock()
	if i := indexOf(w.sent, targetID); i >= 0 {
		w.sent = append(w.sent[:i:i], w.sent[i+1:]...)
	}
	w.mu.Unlock()
	log.Info().Str("target", targetID).Msg("match request canceled")
	return nil
}

// Probe asks the server for the status of targetID. A missing profile or
// status reads as none.
func (w *Workflow) Probe(ctx context.Context, targetID string) (domain.MatchStatus, error) {
	st, err := w.api.MatchStatus(ctx, targetID)
	if client.IsNotFound(err) {
		return domain.StatusNone, nil
	}
	if err != nil {
		return domain.StatusNone, fmt.Errorf("match.Probe: %w", err)
	}
	if !domain.ValidStatus(st) {
		return domain.StatusNone, nil
	}
	return st, nil
}

// Stats returns the dashboard counters.
func (w *Workflow) Stats(ctx context.Context) (*domain.MatchStats, error) {
	st, err := w.api.MatchStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("match.Stats: %w", err)
	}
	return st, nil
}

func indexOf(reqs []domain.MatchRequest, id string) int {
	for i, r := range reqs {
		if r.Profile.ID == id {
			return i
		}
	}
	return -1
}

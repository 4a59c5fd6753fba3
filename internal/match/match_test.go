package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/kinmatch/pkg/client"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

// stubAPI records calls and returns canned lists.
type stubAPI struct {
	matches []domain.Match
	pending []domain.MatchRequest
	sent    []domain.MatchRequest
	status  domain.MatchStatus
	err     error
	calls   []string
	lastMsg string
}

func (s *stubAPI) ListMatches(context.Context) ([]domain.Match, error) { return s.matches, s.err }
func (s *stubAPI) ListPending(context.Context) ([]domain.MatchRequest, error) {
	return s.pending, s.err
}
func (s *stubAPI) ListSent(context.Context) ([]domain.MatchRequest, error) { return s.sent, s.err }

func (s *stubAPI) SendRequest(_ context.Context, id, message string) error {
	s.calls = append(s.calls, "request "+id)
	s.lastMsg = message
	return s.err
}

func (s *stubAPI) CancelRequest(_ context.Context, id string) error {
	s.calls = append(s.calls, "cancel "+id)
	return s.err
}

func (s *stubAPI) AcceptRequest(_ context.Context, id, message string) error {
	s.calls = append(s.calls, "accept "+id)
	s.lastMsg = message
	return s.err
}

func (s *stubAPI) RejectRequest(_ context.Context, id string) error {
	s.calls = append(s.calls, "reject "+id)
	return s.err
}

func (s *stubAPI) MatchStatus(context.Context, string) (domain.MatchStatus, error) {
	return s.status, s.err
}

func (s *stubAPI) MatchStats(context.Context) (*domain.MatchStats, error) {
	return &domain.MatchStats{Matches: 1}, s.err
}

func req(id string) domain.MatchRequest {
	return domain.MatchRequest{Profile: domain.Profile{ID: id, ChildName: "kid-" + id}}
}

func loaded(t *testing.T, api *stubAPI) *Workflow {
	t.Helper()
	w := NewWorkflow(api)
	require.NoError(t, w.Refresh(context.Background()))
	api.err = nil
	return w
}

func TestDerivePrecedence(t *testing.T) {
	matches := []domain.Match{{Profile: domain.Profile{ID: "m"}}}
	pending := []domain.MatchRequest{req("p"), req("m")}
	sent := []domain.MatchRequest{req("s"), req("p"), req("m")}

	tests := map[string]domain.MatchStatus{
		"m": domain.StatusMatched,
		"p": domain.StatusPending,
		"s": domain.StatusRequested,
		"x": domain.StatusNone,
	}
	for id, want := range tests {
		assert.Equal(t, want, Derive(matches, pending, sent, id), "id %s", id)
	}
}

func TestLikeFromNone(t *testing.T) {
	api := &stubAPI{}
	w := loaded(t, api)

	require.NoError(t, w.Like(context.Background(), domain.Profile{ID: "p1"}, "Hi"))
	assert.Equal(t, domain.StatusRequested, w.Status("p1"))
	assert.Equal(t, []string{"request p1"}, api.calls)
	assert.Equal(t, "Hi", api.lastMsg)
}

func TestLikeDefaultMessage(t *testing.T) {
	api := &stubAPI{}
	w := loaded(t, api)
	require.NoError(t, w.Like(context.Background(), domain.Profile{ID: "p1"}, "  "))
	assert.Equal(t, DefaultLikeMessage, api.lastMsg)
}

func TestLikeRefusedUnlessNone(t *testing.T) {
	api := &stubAPI{sent: []domain.MatchRequest{req("p1")}, pending: []domain.MatchRequest{req("p2")}}
	w := loaded(t, api)

	err := w.Like(context.Background(), domain.Profile{ID: "p1"}, "Hi")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, domain.StatusRequested, te.From)

	assert.ErrorIs(t, w.Like(context.Background(), domain.Profile{ID: "p2"}, "Hi"), ErrInvalidTransition)
	assert.Empty(t, api.calls, "no request reaches the server")
}

func TestLikeFailureLeavesStateAlone(t *testing.T) {
	api := &stubAPI{}
	w := loaded(t, api)
	api.err = &client.TransportError{Err: errors.New("offline")}

	err := w.Like(context.Background(), domain.Profile{ID: "p1"}, "Hi")
	require.Error(t, err)
	assert.Equal(t, client.FailureTransport, client.Classify(err))
	assert.Equal(t, domain.StatusNone, w.Status("p1"))
	assert.Empty(t, w.Sent())
}

func TestAcceptMovesPendingToMatches(t *testing.T) {
	api := &stubAPI{pending: []domain.MatchRequest{req("p2"), req("p9")}}
	w := loaded(t, api)

	require.NoError(t, w.Accept(context.Background(), "p2", "Sounds great"))
	assert.Equal(t, domain.StatusMatched, w.Status("p2"))
	require.Len(t, w.Pending(), 1)
	assert.Equal(t, "p9", w.Pending()[0].Profile.ID)

	matches := w.Matches()
	require.Len(t, matches, 1)
	assert.Equal(t, "p2", matches[0].Profile.ID)
	require.NotEmpty(t, matches[0].Messages)
	assert.Equal(t, "Sounds great", matches[0].Messages[0].Content)
	assert.True(t, matches[0].Messages[0].FromSelf())
}

func TestAcceptStampsReply(t *testing.T) {
	api := &stubAPI{pending: []domain.MatchRequest{req("p2")}}
	w := loaded(t, api)
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return at }

	require.NoError(t, w.Accept(context.Background(), "p2", "Sounds great"))
	msgs := w.Matches()[0].Messages
	require.Len(t, msgs, 1)
	assert.Equal(t, at, msgs[0].CreatedAt)

	groups := domain.GroupByDate(msgs, time.UTC)
	require.Len(t, groups, 1)
	assert.Equal(t, "2026-03-14", groups[0].Key)
}

func TestResetForgetsLists(t *testing.T) {
	api := &stubAPI{
		matches: []domain.Match{{Profile: domain.Profile{ID: "p1"}}},
		pending: []domain.MatchRequest{req("p2")},
		sent:    []domain.MatchRequest{req("p3")},
	}
	w := loaded(t, api)
	w.Reset()

	assert.Empty(t, w.Matches())
	assert.Empty(t, w.Pending())
	assert.Empty(t, w.Sent())
	assert.Equal(t, domain.StatusNone, w.Status("p3"))

	require.NoError(t, w.Like(context.Background(), domain.Profile{ID: "p3"}, ""))
	assert.Equal(t, []string{"request p3"}, api.calls)
}

func TestAcceptRequiresPending(t *testing.T) {
	api := &stubAPI{matches: []domain.Match{{Profile: domain.Profile{ID: "m1"}}}}
	w := loaded(t, api)
	before := w.Matches()

	err := w.Accept(context.Background(), "p7", "Sounds great")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, before, w.Matches(), "matches unchanged")
	assert.Empty(t, api.calls)
}

func TestAcceptRequiresReply(t *testing.T) {
	api := &stubAPI{pending: []domain.MatchRequest{req("p2")}}
	w := loaded(t, api)
	assert.ErrorIs(t, w.Accept(context.Background(), "p2", " \n"), ErrEmptyMessage)
	assert.Equal(t, domain.StatusPending, w.Status("p2"))
	assert.Empty(t, api.calls)
}

func TestAcceptFailureKeepsPending(t *testing.T) {
	api := &stubAPI{pending: []domain.MatchRequest{req("p2")}}
	w := loaded(t, api)
	api.err = &client.HTTPError{StatusCode: 500, Message: "db down"}

	require.Error(t, w.Accept(context.Background(), "p2", "Sounds great"))
	assert.Equal(t, domain.StatusPending, w.Status("p2"))
	assert.Empty(t, w.Matches())
}

func TestReject(t *testing.T) {
	api := &stubAPI{pending: []domain.MatchRequest{req("p2")}}
	w := loaded(t, api)

	require.NoError(t, w.Reject(context.Background(), "p2"))
	assert.Equal(t, domain.StatusNone, w.Status("p2"))
	assert.ErrorIs(t, w.Reject(context.Background(), "p2"), ErrInvalidTransition)
}

func TestCancel(t *testing.T) {
	api := &stubAPI{sent: []domain.MatchRequest{req("p1")}}
	w := loaded(t, api)

	require.NoError(t, w.Cancel(context.Background(), "p1"))
	assert.Equal(t, domain.StatusNone, w.Status("p1"))
	assert.Empty(t, w.Sent())
	assert.Empty(t, w.Pending())
	assert.Empty(t, w.Matches())
	assert.Equal(t, []string{"cancel p1"}, api.calls)

	assert.ErrorIs(t, w.Cancel(context.Background(), "p1"), ErrInvalidTransition)
}

func TestRefreshFailureKeepsLists(t *testing.T) {
	api := &stubAPI{sent: []domain.MatchRequest{req("p1")}}
	w := loaded(t, api)
	api.sent = nil
	api.err = &client.HTTPError{StatusCode: 401}

	err := w.Refresh(context.Background())
	assert.True(t, client.IsUnauthorized(err))
	assert.Len(t, w.Sent(), 1)
}

func TestProbe(t *testing.T) {
	api := &stubAPI{status: domain.StatusPending}
	w := NewWorkflow(api)
	st, err := w.Probe(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, st)

	api.err = &client.HTTPError{StatusCode: 404}
	st, err = w.Probe(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNone, st)

	api.err = &client.HTTPError{StatusCode: 500}
	st, err = w.Probe(context.Background(), "p1")
	assert.Error(t, err)
	assert.Equal(t, domain.StatusNone, st)
}

func TestCopiesAreIndependent(t *testing.T) {
	api := &stubAPI{sent: []domain.MatchRequest{req("p1")}}
	w := loaded(t, api)
	sent := w.Sent()
	sent[0].Profile.ID = "changed"
	assert.Equal(t, domain.StatusRequested, w.Status("p1"))
}

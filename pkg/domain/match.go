package domain

import "time"

// MatchStatus is the per-(viewer, target) state of a match request.
type MatchStatus string

const (
	StatusNone      MatchStatus = "none"
	StatusRequested MatchStatus = "requested" // outgoing request awaiting the target
	StatusPending   MatchStatus = "pending"   // incoming request awaiting the viewer
	StatusMatched   MatchStatus = "matched"
)

// ValidStatus returns true if s is one of the four known statuses.
func ValidStatus(s MatchStatus) bool {
	switch s {
	case StatusNone, StatusRequested, StatusPending, StatusMatched:
		return true
	}
	return false
}

// MatchRequest is a one-sided expression of interest. In the pending list
// Profile is the requester; in the sent list it is the target.
type MatchRequest struct {
	Profile   Profile   `json:"profile"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Match is a mutually accepted connection with its message thread.
// Profile is always the peer.
type Match struct {
	ID       string    `json:"_id,omitempty"`
	Profile  Profile   `json:"profile"`
	Messages []Message `json:"messages,omitempty"`
}

// ConversationID is the id used to load and post to this match's thread.
// Servers that do not assign match ids route by the peer profile id.
func (m Match) ConversationID() string {
	if m.ID != "" {
		return m.ID
	}
	return m.Profile.ID
}

// LastMessage returns the newest message in the thread, if any.
func (m Match) LastMessage() (Message, bool) {
	if len(m.Messages) == 0 {
		return Message{}, false
	}
	return m.Messages[len(m.Messages)-1], true
}

// MatchStats are the dashboard counters.
type MatchStats struct {
	Matches         int `json:"matches"`
	Views           int `json:"views"`
	PendingRequests int `json:"pendingRequests"`
}

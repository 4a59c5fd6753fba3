// Package browse tracks the browse listing: which filter reload is current
// and which cards are liked or have a like in flight.
package browse

import (
	"sync"

	"github.com/naveenspark/kinmatch/pkg/domain"
)

// LikeState is a card's like button state.
type LikeState int

const (
	LikeIdle LikeState = iota
	LikeInFlight
	LikeDone
)

// Feed is safe for concurrent use.
type Feed struct {
	mu       sync.Mutex
	seq      uint64
	filters  domain.ProfileFilters
	profiles []domain.Profile
	likes    map[string]LikeState
}

// NewFeed returns an empty feed.
func NewFeed() *Feed {
	return &Feed{likes: map[string]LikeState{}}
}

// Begin records filters as current and returns the token the matching
// load must present to Apply.
func (f *Feed) Begin(filters domain.ProfileFilters) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.filters = filters
	return f.seq
}

// Apply installs profiles if token is still the latest. It returns false
// for a stale result, which is dropped.
func (f *Feed) Apply(token uint64, profiles []domain.Profile) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token != f.seq {
		return false
	}
	f.profiles = append([]domain.Profile(nil), profiles...)
	f.likes = map[string]LikeState{}
	for _, p := range profiles {
		if p.HasLiked {
			f.likes[p.ID] = LikeDone
		}
	}
	return true
}

// Current reports whether token is the latest.
func (f *Feed) Current(token uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return token == f.seq
}

// Filters returns the filters of the latest Begin.
func (f *Feed) Filters() domain.ProfileFilters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filters
}

// Profiles returns a copy of the applied listing.
func (f *Feed) Profiles() []domain.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Profile(nil), f.profiles...)
}

// Profile returns the card with id.
func (f *Feed) Profile(id string) (domain.Profile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Profile{}, false
}

// State returns the like state of card id.
func (f *Feed) State(id string) LikeState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.likes[id]
}

// StartLike marks id in flight. It refuses a card that is already liked
// or mid-like.
func (f *Feed) StartLike(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.likes[id] != LikeIdle {
		return false
	}
	f.likes[id] = LikeInFlight
	return true
}

// FinishLike settles an in-flight like: liked on success, idle again on err.
func (f *Feed) FinishLike(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.likes[id] != LikeInFlight {
		return
	}
	if err != nil {
		delete(f.likes, id)
		return
	}
	f.likes[id] = LikeDone
	for i := range f.profiles {
		if f.profiles[i].ID == id {
			f.profiles[i].HasLiked = true
		}
	}
}

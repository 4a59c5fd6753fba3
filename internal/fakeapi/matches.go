package fakeapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/naveenspark/kinmatch/pkg/domain"
)

type messageBody struct {
	Message string `json:"message"`
	Content string `json:"content"`
}

func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Match{}
	if mine, ok := s.owners[userID(r.Context())]; ok {
		for _, m := range s.matches {
			if _, ok := m.peer(mine); ok {
				out = append(out, s.renderMatchLocked(m, mine))
			}
		}
	}
	respondJSON(w, http.StatusOK, map[string][]domain.Match{"matches": out})
}

func (s *Server) listPending(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mine, ok := s.owners[userID(r.Context())]
	out := []domain.MatchRequest{}
	if ok {
		out = s.requestsLocked(func(k requestKey) (string, bool) { return k.from, k.to == mine })
	}
	respondJSON(w, http.StatusOK, map[string][]domain.MatchRequest{"pendingRequests": out})
}

func (s *Server) listSent(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mine, ok := s.owners[userID(r.Context())]
	out := []domain.MatchRequest{}
	if ok {
		out = s.requestsLocked(func(k requestKey) (string, bool) { return k.to, k.from == mine })
	}
	respondJSON(w, http.StatusOK, map[string][]domain.MatchRequest{"sentRequests": out})
}

// requestsLocked lists requests selected by pick, which returns the profile
// to show for each key. Output follows profile creation order.
func (s *Server) requestsLocked(pick func(requestKey) (string, bool)) []domain.MatchRequest {
	shown := map[string]domain.MatchRequest{}
	for k, req := range s.requests {
		id, ok := pick(k)
		if !ok {
			continue
		}
		shown[id] = domain.MatchRequest{Profile: *s.profiles[id], Message: req.message, CreatedAt: req.createdAt}
	}
	out := []domain.MatchRequest{}
	for _, id := range s.order {
		if req, ok := shown[id]; ok {
			out = append(out, req)
		}
	}
	return out
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[target]; !ok {
		respondError(w, "profile not found", http.StatusNotFound)
		return
	}
	mine := s.owners[userID(r.Context())]
	respondJSON(w, http.StatusOK, map[string]domain.MatchStatus{"status": s.statusLocked(mine, target)})
}

func (s *Server) statusLocked(mine, target string) domain.MatchStatus {
	if mine == "" {
		return domain.StatusNone
	}
	if s.findMatchLocked(mine, target) != nil {
		return domain.StatusMatched
	}
	if _, ok := s.requests[requestKey{from: target, to: mine}]; ok {
		return domain.StatusPending
	}
	if _, ok := s.requests[requestKey{from: mine, to: target}]; ok {
		return domain.StatusRequested
	}
	return domain.StatusNone
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st domain.MatchStats
	if mine, ok := s.owners[userID(r.Context())]; ok {
		for _, m := range s.matches {
			if _, ok := m.peer(mine); ok {
				st.Matches++
			}
		}
		for k := range s.requests {
			if k.to == mine {
				st.PendingRequests++
			}
		}
		st.Views = s.views[mine]
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) sendRequest(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "id")
	var body messageBody
	if !decodeBody(r, &body) {
		respondError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	mine, ok := s.callerProfileLocked(w, r)
	if !ok {
		return
	}
	if _, ok := s.profiles[target]; !ok {
		respondError(w, "profile not found", http.StatusNotFound)
		return
	}
	if target == mine {
		respondError(w, "cannot send a request to your own profile", http.StatusBadRequest)
		return
	}
	if st := s.statusLocked(mine, target); st != domain.StatusNone {
		respondError(w, "a request already exists ("+string(st)+")", http.StatusConflict)
		return
	}
	s.requests[requestKey{from: mine, to: target}] = storedRequest{message: body.Message, createdAt: s.now()}
	respondJSON(w, http.StatusCreated, map[string]string{"status": string(domain.StatusRequested)})
}

func (s *Server) cancelRequest(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	mine, ok := s.callerProfileLocked(w, r)
	if !ok {
		return
	}
	key := requestKey{from: mine, to: target}
	if _, ok := s.requests[key]; !ok {
		respondError(w, "request not found", http.StatusNotFound)
		return
	}
	delete(s.requests, key)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) acceptRequest(w http.ResponseWriter, r *http.Request) {
	from := chi.URLParam(r, "id")
	var body messageBody
	if !decodeBody(r, &body) {
		respondError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	mine, ok := s.callerProfileLocked(w, r)
	if !ok {
		return
	}
	key := requestKey{from: from, to: mine}
	req, ok := s.requests[key]
	if !ok {
		respondError(w, "request not found", http.StatusNotFound)
		return
	}
	delete(s.requests, key)
	m := &storedMatch{id: uuid.NewString(), a: from, b: mine}
	if req.message != "" {
		m.messages = append(m.messages, storedMessage{id: uuid.NewString(), sender: from, content: req.message, createdAt: req.createdAt})
	}
	if reply := strings.TrimSpace(body.Message); reply != "" {
		m.messages = append(m.messages, storedMessage{id: uuid.NewString(), sender: mine, content: reply, createdAt: s.now()})
	}
	s.matches = append(s.matches, m)
	respondJSON(w, http.StatusOK, s.renderMatchLocked(m, mine))
}

func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request) {
	from := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	mine, ok := s.callerProfileLocked(w, r)
	if !ok {
		return
	}
	key := requestKey{from: from, to: mine}
	if _, ok := s.requests[key]; !ok {
		respondError(w, "request not found", http.StatusNotFound)
		return
	}
	delete(s.requests, key)
	respondJSON(w, http.StatusOK, map[string]string{"status": string(domain.StatusNone)})
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "matchId")
	s.mu.Lock()
	defer s.mu.Unlock()
	mine, ok := s.callerProfileLocked(w, r)
	if !ok {
		return
	}
	m := s.lookupMatchLocked(mine, id)
	if m == nil {
		respondError(w, "match not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, s.renderMatchLocked(m, mine))
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "matchId")
	var body messageBody
	if !decodeBody(r, &body) {
		respondError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	content := strings.TrimSpace(body.Content)
	if content == "" {
		respondError(w, "message content is required", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	mine, ok := s.callerProfileLocked(w, r)
	if !ok {
		return
	}
	m := s.lookupMatchLocked(mine, id)
	if m == nil {
		respondError(w, "match not found", http.StatusNotFound)
		return
	}
	msg := storedMessage{id: uuid.NewString(), sender: mine, content: content, createdAt: s.now()}
	m.messages = append(m.messages, msg)
	respondJSON(w, http.StatusCreated, renderMessage(msg, mine))
}

func (s *Server) callerProfileLocked(w http.ResponseWriter, r *http.Request) (string, bool) {
	mine, ok := s.owners[userID(r.Context())]
	if !ok {
		respondError(w, "create your profile first", http.StatusBadRequest)
		return "", false
	}
	return mine, true
}

// lookupMatchLocked resolves id as a match id or as the peer's profile id.
func (s *Server) lookupMatchLocked(mine, id string) *storedMatch {
	for _, m := range s.matches {
		if _, ok := m.peer(mine); ok && m.id == id {
			return m
		}
	}
	return s.findMatchLocked(mine, id)
}

func (s *Server) findMatchLocked(mine, peer string) *storedMatch {
	for _, m := range s.matches {
		if p, ok := m.peer(mine); ok && p == peer {
			return m
		}
	}
	return nil
}

func (s *Server) renderMatchLocked(m *storedMatch, viewer string) domain.Match {
	peer, _ := m.peer(viewer)
	out := domain.Match{ID: m.id, Profile: *s.profiles[peer], Messages: []domain.Message{}}
	for _, msg := range m.messages {
		out.Messages = append(out.Messages, renderMessage(msg, viewer))
	}
	return out
}

func renderMessage(msg storedMessage, viewer string) domain.Message {
	sender := msg.sender
	if sender == viewer {
		sender = domain.SenderSelf
	}
	return domain.Message{ID: msg.id, Sender: sender, Content: msg.content, CreatedAt: msg.createdAt}
}

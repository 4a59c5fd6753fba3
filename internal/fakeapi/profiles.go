package fakeapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/naveenspark/kinmatch/pkg/domain"
)

func (s *Server) myProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.ownProfileLocked(userID(r.Context()))
	if !ok {
		respondError(w, "profile not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		respondError(w, "profile not found", http.StatusNotFound)
		return
	}
	if s.owners[userID(r.Context())] != id {
		s.views[id]++
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) listProfiles(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilters(r)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	mine := s.owners[userID(r.Context())]
	out := []domain.Profile{}
	for _, id := range s.order {
		if id == mine {
			continue
		}
		p := *s.profiles[id]
		if !matchesFilters(p, f) {
			continue
		}
		_, p.HasLiked = s.requests[requestKey{from: mine, to: id}]
		out = append(out, p)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) createProfile(w http.ResponseWriter, r *http.Request) {
	var fields domain.ProfileFields
	if !decodeBody(r, &fields) {
		respondError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(fields.ChildName) == "" {
		respondError(w, "childName is required", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(r.Context())
	if _, ok := s.owners[uid]; ok {
		respondError(w, "profile already exists", http.StatusConflict)
		return
	}
	p := s.insertLocked(uid, fields)
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var fields domain.ProfileFields
	if !decodeBody(r, &fields) {
		respondError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(fields.ChildName) == "" {
		respondError(w, "childName is required", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		respondError(w, "profile not found", http.StatusNotFound)
		return
	}
	if s.owners[userID(r.Context())] != id {
		respondError(w, "not your profile", http.StatusForbidden)
		return
	}
	p := applyFields(id, fields)
	s.profiles[id] = &p
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) insertLocked(ownerID string, fields domain.ProfileFields) domain.Profile {
	p := applyFields(uuid.NewString(), fields)
	s.profiles[p.ID] = &p
	s.order = append(s.order, p.ID)
	if ownerID != "" {
		s.owners[ownerID] = p.ID
	}
	return p
}

func (s *Server) ownProfileLocked(uid string) (*domain.Profile, bool) {
	id, ok := s.owners[uid]
	if !ok {
		return nil, false
	}
	p, ok := s.profiles[id]
	return p, ok
}

func applyFields(id string, f domain.ProfileFields) domain.Profile {
	return domain.Profile{
		ID:              id,
		ChildName:       strings.TrimSpace(f.ChildName),
		ChildAge:        f.ChildAge,
		Gender:          f.Gender,
		Location:        f.Location,
		Bio:             f.Bio,
		Interests:       f.Interests,
		Photos:          f.Photos,
		PreferredGender: f.PreferredGender,
		PreferredAgeMin: f.PreferredAgeMin,
		PreferredAgeMax: f.PreferredAgeMax,
		LookingFor:      f.LookingFor,
	}
}

func parseFilters(r *http.Request) (domain.ProfileFilters, error) {
	q := r.URL.Query()
	f := domain.ProfileFilters{
		Gender:   q.Get("gender"),
		Location: q.Get("location"),
	}
	for key, dst := range map[string]*int{"ageMin": &f.AgeMin, "ageMax": &f.AgeMax} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, &paramError{key: key}
		}
		*dst = n
	}
	if raw := q.Get("interests"); raw != "" {
		for _, i := range strings.Split(raw, ",") {
			if i = strings.TrimSpace(i); i != "" {
				f.Interests = append(f.Interests, i)
			}
		}
	}
	return f, nil
}

type paramError struct{ key string }

func (e *paramError) Error() string { return "invalid " + e.key }

// matchesFilters applies the listing filters. Location matches as a
// case-insensitive substring; interests match when any one is shared.
func matchesFilters(p domain.Profile, f domain.ProfileFilters) bool {
	if f.Gender != "" && !strings.EqualFold(p.Gender, f.Gender) {
		return false
	}
	if f.AgeMin > 0 && p.ChildAge < f.AgeMin {
		return false
	}
	if f.AgeMax > 0 && p.ChildAge > f.AgeMax {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(p.Location), strings.ToLower(f.Location)) {
		return false
	}
	if len(f.Interests) > 0 {
		shared := false
		for _, want := range f.Interests {
			for _, have := range p.Interests {
				if strings.EqualFold(want, have) {
					shared = true
				}
			}
		}
		if !shared {
			return false
		}
	}
	return true
}

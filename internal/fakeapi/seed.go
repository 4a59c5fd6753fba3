package fakeapi

import (
	"fmt"
	"time"

	"github.com/naveenspark/kinmatch/pkg/domain"
)

// AddProfile stores a profile owned by ownerID ("" for an ownerless one).
func (s *Server) AddProfile(ownerID string, fields domain.ProfileFields) domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.owners[ownerID]; ok && ownerID != "" {
		p := applyFields(id, fields)
		s.profiles[id] = &p
		return p
	}
	return s.insertLocked(ownerID, fields)
}

// AddRequest records a request from one profile to another.
func (s *Server) AddRequest(fromID, toID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[fromID]; !ok {
		return fmt.Errorf("fakeapi.AddRequest: unknown profile %q", fromID)
	}
	if _, ok := s.profiles[toID]; !ok {
		return fmt.Errorf("fakeapi.AddRequest: unknown profile %q", toID)
	}
	s.requests[requestKey{from: fromID, to: toID}] = storedRequest{message: message, createdAt: s.now()}
	return nil
}

// AddMatch connects two profiles, with optional messages alternating from a
// then b and spaced a day apart ending now.
func (s *Server) AddMatch(a, b string, messages ...string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[a]; !ok {
		return "", fmt.Errorf("fakeapi.AddMatch: unknown profile %q", a)
	}
	if _, ok := s.profiles[b]; !ok {
		return "", fmt.Errorf("fakeapi.AddMatch: unknown profile %q", b)
	}
	m := &storedMatch{id: fmt.Sprintf("m%d", len(s.matches)+1), a: a, b: b}
	now := s.now()
	for i, content := range messages {
		sender := a
		if i%2 == 1 {
			sender = b
		}
		at := now.Add(-time.Duration(len(messages)-1-i) * 24 * time.Hour)
		m.messages = append(m.messages, storedMessage{id: fmt.Sprintf("%s-%d", m.id, i+1), sender: sender, content: content, createdAt: at})
	}
	s.matches = append(s.matches, m)
	return m.id, nil
}

var demoProfiles = []domain.ProfileFields{
	{ChildName: "Maya", ChildAge: 7, Gender: "girl", Location: "Portland", Bio: "Loves painting and long bike rides.",
		Interests: []string{"art", "cycling"}, Photos: []string{"https://picsum.photos/seed/maya/400"}, LookingFor: "playdates"},
	{ChildName: "Leo", ChildAge: 8, Gender: "boy", Location: "Seattle", Bio: "Builds LEGO cities, asks a lot of questions.",
		Interests: []string{"lego", "science"}, Photos: []string{"https://picsum.photos/seed/leo/400"}, LookingFor: "friendship"},
	{ChildName: "Ivy", ChildAge: 6, Gender: "girl", Location: "Portland", Bio: "Dancer in training.",
		Interests: []string{"dance", "music"}, LookingFor: "playdates"},
	{ChildName: "Noah", ChildAge: 9, Gender: "boy", Location: "Tacoma", Bio: "Chess club captain.",
		Interests: []string{"chess", "science"}, Photos: []string{"https://picsum.photos/seed/noah/400"}, LookingFor: "study buddy"},
	{ChildName: "Zara", ChildAge: 7, Gender: "girl", Location: "Seattle", Bio: "Reads everything, climbs everything.",
		Interests: []string{"books", "climbing"}, LookingFor: "friendship"},
}

// SeedDemo fills the server with a small neighbourhood around viewerID: the
// viewer's own profile, a few others, one incoming request and one match.
func (s *Server) SeedDemo(viewerID string) error {
	mine := s.AddProfile(viewerID, domain.ProfileFields{
		ChildName: "Sam", ChildAge: 7, Gender: "boy", Location: "Portland",
		Bio: "Curious, kind, and always outside.", Interests: []string{"science", "cycling"},
		PreferredAgeMin: 5, PreferredAgeMax: 9, LookingFor: "playdates",
	})
	var others []domain.Profile
	for i, f := range demoProfiles {
		others = append(others, s.AddProfile(fmt.Sprintf("demo-owner-%d", i+1), f))
	}
	if err := s.AddRequest(others[1].ID, mine.ID, "Leo would love to build something with Sam!"); err != nil {
		return err
	}
	if _, err := s.AddMatch(others[0].ID, mine.ID,
		"Hi! Maya saw Sam loves cycling too.",
		"Sam would love a ride together this weekend.",
		"Saturday at the park?"); err != nil {
		return err
	}
	return nil
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/naveenspark/kinmatch/pkg/domain"
)

func TestGetMyProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profiles/me" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(domain.Profile{ //nolint:errcheck
			ID:        "p1",
			ChildName: "Ada",
			ChildAge:  7,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("test-token"))
	p, err := c.GetMyProfile(context.Background())
	if err != nil {
		t.Fatalf("GetMyProfile() error: %v", err)
	}
	if p.ID != "p1" {
		t.Errorf("ID = %q, want %q", p.ID, "p1")
	}
	if p.ChildName != "Ada" {
		t.Errorf("ChildName = %q, want %q", p.ChildName, "Ada")
	}
}

func TestGetMyProfile_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "profile not found"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	_, err := c.GetMyProfile(context.Background())
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if got := ServerMessage(err); got != "profile not found" {
		t.Errorf("ServerMessage() = %q, want %q", got, "profile not found")
	}
	if Classify(err) != FailureServer {
		t.Errorf("Classify() = %d, want FailureServer", Classify(err))
	}
}

func TestUnauthorizedPassesStatusThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("bad-token"))
	_, err := c.ListMatches(context.Background())
	if err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	if got := err.Error(); !strings.Contains(got, "HTTP 401") {
		t.Errorf("error = %q, want it to contain 'HTTP 401'", got)
	}
	if !IsUnauthorized(err) {
		t.Error("expected IsUnauthorized to be true")
	}
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]domain.Profile{}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken(""))
	if _, err := c.ListProfiles(context.Background(), domain.ProfileFilters{}); err != nil {
		t.Fatalf("ListProfiles() error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want none", gotAuth)
	}
}

func TestListProfilesSendsFilters(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/profiles" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode([]domain.Profile{ //nolint:errcheck
			{ID: "p3", ChildName: "Bea"},
			{ID: "p4", ChildName: "Cal", HasLiked: true},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	profiles, err := c.ListProfiles(context.Background(), domain.ProfileFilters{Gender: "girl", AgeMin: 4})
	if err != nil {
		t.Fatalf("ListProfiles() error: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("got %d profiles, want 2", len(profiles))
	}
	if !profiles[1].HasLiked {
		t.Error("expected hasLiked to decode on p4")
	}
	if gotQuery != "ageMin=4&gender=girl" {
		t.Errorf("query = %q, want %q", gotQuery, "ageMin=4&gender=girl")
	}
}

func TestListPendingUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/matches/pending" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"pendingRequests":[{"profile":{"_id":"p2","childName":"Dot"},"message":"hello"}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	pending, err := c.ListPending(context.Background())
	if err != nil {
		t.Fatalf("ListPending() error: %v", err)
	}
	if len(pending) != 1 || pending[0].Profile.ID != "p2" || pending[0].Message != "hello" {
		t.Errorf("pending = %+v, want one request from p2", pending)
	}
}

func TestSendRequestPostsMessage(t *testing.T) {
	var got messageBody
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	if err := c.SendRequest(context.Background(), "p1", "Hi"); err != nil {
		t.Fatalf("SendRequest() error: %v", err)
	}
	if method != http.MethodPost || path != "/matches/request/p1" {
		t.Errorf("request = %s %s, want POST /matches/request/p1", method, path)
	}
	if got.Message != "Hi" {
		t.Errorf("message = %q, want %q", got.Message, "Hi")
	}
}

func TestCancelRequestUsesDelete(t *testing.T) {
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	if err := c.CancelRequest(context.Background(), "p1"); err != nil {
		t.Fatalf("CancelRequest() error: %v", err)
	}
	if method != http.MethodDelete {
		t.Errorf("method = %s, want DELETE", method)
	}
}

func TestHTTPErrorRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom\n")) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	_, err := c.MatchStats(context.Background())
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if got := ServerMessage(err); got != "boom" {
		t.Errorf("ServerMessage() = %q, want %q", got, "boom")
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listens any more

	c := New(url, StaticToken("tok"))
	_, err := c.ListSent(context.Background())
	if err == nil {
		t.Fatal("expected error for closed server")
	}
	if Classify(err) != FailureTransport {
		t.Errorf("Classify() = %d, want FailureTransport", Classify(err))
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Errorf("expected *TransportError in chain, got %T", err)
	}
}

func TestRequestCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(5 * time.Second) // slow server
		w.Write([]byte(`{}`))       //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, StaticToken("tok"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := c.GetMatch(ctx, "m1")
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestClassifyForeignError(t *testing.T) {
	if Classify(errors.New("local")) != FailureNone {
		t.Error("expected errors the client did not produce to classify as FailureNone")
	}
	if Classify(nil) != FailureNone {
		t.Error("expected nil to classify as FailureNone")
	}
}

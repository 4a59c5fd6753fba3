package tui

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/kinmatch/internal/auth"
	"github.com/naveenspark/kinmatch/internal/browse"
	"github.com/naveenspark/kinmatch/internal/fakeapi"
	"github.com/naveenspark/kinmatch/internal/profile"
	"github.com/naveenspark/kinmatch/internal/session"
	"github.com/naveenspark/kinmatch/internal/storage"
	"github.com/naveenspark/kinmatch/pkg/client"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

// testEnv is a TUI wired to an in-process API server.
type testEnv struct {
	svc *Services
	srv *fakeapi.Server
	ts  *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	a := auth.New("test-secret")
	srv := fakeapi.New(a)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	kv, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { kv.Close() }) //nolint:errcheck

	prov := session.NewProvider(session.NewStore(kv))
	c := client.New(ts.URL, prov)
	return &testEnv{svc: NewServices(c, prov, a, profile.DefaultAgeBounds), srv: srv, ts: ts}
}

// signIn starts a session for a demo mother and returns her user id.
func (e *testEnv) signIn(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	sess, err := e.svc.Auth.Login(ctx, "mom@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := e.svc.Session.Set(ctx, *sess); err != nil {
		t.Fatalf("Session.Set: %v", err)
	}
	return sess.User.ID
}

// seeded signs in and fills the server with the demo neighbourhood.
func (e *testEnv) seeded(t *testing.T) string {
	t.Helper()
	uid := e.signIn(t)
	if err := e.srv.SeedDemo(uid); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	return uid
}

func (e *testEnv) app() App {
	a := NewApp(e.svc)
	model, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return model.(App)
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to the app and returns the resulting command.
func send(a App, msg tea.Msg) (App, tea.Cmd) {
	model, cmd := a.Update(msg)
	return model.(App), cmd
}

// typeText sends each rune of s as a key press.
func typeText(a App, s string) App {
	for _, r := range s {
		a, _ = send(a, runeKey(string(r)))
	}
	return a
}

// settle runs cmd and feeds its message back, once.
func settle(t *testing.T, a App, cmd tea.Cmd) (App, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return send(a, cmd())
}

func TestNewAppStartsOnWelcomeWithoutSession(t *testing.T) {
	a := newTestEnv(t).app()
	if a.view != viewWelcome {
		t.Errorf("view = %d, want viewWelcome", a.view)
	}
	if !strings.Contains(a.View(), "sign in") {
		t.Error("welcome help bar should offer sign in")
	}
}

func TestNewAppStartsOnDashboardWithSession(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)
	a := env.app()
	if a.view != viewDashboard {
		t.Errorf("view = %d, want viewDashboard", a.view)
	}
}

func TestAppTabSwitching(t *testing.T) {
	tests := []struct {
		key      string
		wantView view
	}{
		{"1", viewDashboard},
		{"2", viewBrowse},
		{"3", viewMatches},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			env := newTestEnv(t)
			env.signIn(t)
			a := env.app()
			a.view = viewMatches
			if tc.wantView == viewMatches {
				a.view = viewDashboard
			}
			a, _ = send(a, runeKey(tc.key))
			if a.view != tc.wantView {
				t.Errorf("after key %q: view = %d, want %d", tc.key, a.view, tc.wantView)
			}
		})
	}
}

func TestAppTabsIgnoredWhenSignedOut(t *testing.T) {
	a := newTestEnv(t).app()
	a, _ = send(a, runeKey("2"))
	if a.view != viewWelcome {
		t.Errorf("view = %d, want viewWelcome", a.view)
	}
}

func TestAppHelpToggle(t *testing.T) {
	a := newTestEnv(t).app()
	a, _ = send(a, runeKey("h"))
	if !a.helpOpen {
		t.Fatal("expected help to open on h")
	}
	if !strings.Contains(a.View(), "kinmatch sandbox") {
		t.Error("help overlay should list the sandbox command")
	}
	a, _ = send(a, tea.KeyMsg{Type: tea.KeyEsc})
	if a.helpOpen {
		t.Error("expected esc to close help")
	}
}

func TestAppQuitKey(t *testing.T) {
	a := newTestEnv(t).app()
	_, cmd := send(a, runeKey("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected q to quit from the welcome view")
	}
}

func TestAppQTypesWhileEditing(t *testing.T) {
	a := newTestEnv(t).app()
	a, _ = send(a, navigateMsg{to: viewLogin})
	a, _ = send(a, runeKey("q"))
	if a.login.fields[loginEmail] != "q" {
		t.Errorf("email = %q, want %q", a.login.fields[loginEmail], "q")
	}
}

func TestAppUnauthorizedEndsSession(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)
	a := env.app()

	a, cmd := send(a, unauthorizedMsg{})
	a, _ = settle(t, a, cmd)

	if env.svc.Session.Authenticated() {
		t.Error("session should be cleared")
	}
	if a.view != viewLogin {
		t.Errorf("view = %d, want viewLogin", a.view)
	}
	if !strings.Contains(a.View(), "sign in again") {
		t.Error("expected an expiry notice")
	}
}

func TestAppLogoutKey(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)
	a := env.app()

	a, cmd := send(a, runeKey("L"))
	a, _ = settle(t, a, cmd)

	if env.svc.Session.Authenticated() {
		t.Error("session should be cleared after L")
	}
	if a.view != viewWelcome {
		t.Errorf("view = %d, want viewWelcome", a.view)
	}
}

func TestAppBackStack(t *testing.T) {
	env := newTestEnv(t)
	env.seeded(t)
	a := env.app()

	a, _ = send(a, runeKey("2"))
	a, _ = send(a, openProfileMsg{id: "p2"})
	if a.view != viewProfile {
		t.Fatalf("view = %d, want viewProfile", a.view)
	}
	a, _ = send(a, navigateBackMsg{})
	if a.view != viewBrowse {
		t.Errorf("after back: view = %d, want viewBrowse", a.view)
	}
	a, _ = send(a, navigateBackMsg{})
	if a.view != viewDashboard {
		t.Errorf("empty history: view = %d, want viewDashboard", a.view)
	}
}

func TestAppResultsReachHiddenViews(t *testing.T) {
	env := newTestEnv(t)
	env.seeded(t)
	a := env.app()

	a, cmd := send(a, runeKey("3"))
	a, _ = send(a, runeKey("1")) // leave before the load lands
	a, _ = settle(t, a, cmd)

	if len(a.matches.matches) != 1 {
		t.Errorf("matches view got %d matches, want 1", len(a.matches.matches))
	}
}

func TestAppHeaderShowsSignedInUser(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)
	a := env.app()
	v := a.View()
	if !strings.Contains(v, "Mother") {
		t.Errorf("header should show the account role, got:\n%s", v)
	}
	if !strings.Contains(v, "Browse") || !strings.Contains(v, "Matches") {
		t.Error("tab bar should be shown when signed in")
	}
}

// switchUser signs a second mother in with her own child profile.
func (e *testEnv) switchUser(t *testing.T) *domain.Session {
	t.Helper()
	ctx := context.Background()
	if err := e.svc.Session.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	sess, err := e.svc.Auth.Login(ctx, "other@example.com", "secret2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := e.svc.Session.Set(ctx, *sess); err != nil {
		t.Fatalf("Session.Set: %v", err)
	}
	e.srv.AddProfile(sess.User.ID, domain.ProfileFields{ChildName: "Bo", ChildAge: 7, Gender: "boy"})
	return sess
}

// likeInBrowse opens the browse tab, selects name and presses l.
func likeInBrowse(t *testing.T, a App, name string) App {
	t.Helper()
	a, cmd := send(a, runeKey("2"))
	a, _ = settle(t, a, cmd)
	found := false
	for i, p := range a.browse.feed.Profiles() {
		if p.ChildName == name {
			a.browse.cursor = i
			found = true
		}
	}
	if !found {
		t.Fatalf("%s not in browse list", name)
	}
	a, cmd = send(a, runeKey("l"))
	a, _ = settle(t, a, cmd)
	return a
}

func zaraProfile(t *testing.T, env *testEnv) domain.Profile {
	t.Helper()
	ps, err := env.svc.Profiles.List(context.Background(), domain.ProfileFilters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, p := range ps {
		if p.ChildName == "Zara" {
			return p
		}
	}
	t.Fatal("Zara not listed")
	return domain.Profile{}
}

func TestAppNewUserDoesNotInheritMatchLists(t *testing.T) {
	env := newTestEnv(t)
	env.seeded(t)
	a := env.app()
	ctx := context.Background()

	zara := zaraProfile(t, env)
	if err := env.svc.Matches.Like(ctx, zara, "hi"); err != nil {
		t.Fatalf("Like as first user: %v", err)
	}
	if err := env.svc.Matches.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	a, _ = send(a, loggedOutMsg{})
	if n := len(env.svc.Matches.Pending()) + len(env.svc.Matches.Sent()); n != 0 {
		t.Errorf("lists after sign out hold %d requests, want 0", n)
	}
	sess := env.switchUser(t)
	a, _ = send(a, loggedInMsg{sess: sess})
	if strings.Contains(a.tabBar(), "●") {
		t.Error("pending badge should not carry over to the new user")
	}

	a = likeInBrowse(t, a, "Zara")
	if a.browse.feed.State(zara.ID) != browse.LikeDone {
		t.Errorf("Zara like state = %v, want done", a.browse.feed.State(zara.ID))
	}
	if err := env.svc.Matches.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if st := env.svc.Matches.Status(zara.ID); st != domain.StatusRequested {
		t.Errorf("server status for new user = %q, want requested", st)
	}
}

func TestBrowseLikeRechecksStaleLists(t *testing.T) {
	env := newTestEnv(t)
	env.seeded(t)
	ctx := context.Background()

	zara := zaraProfile(t, env)
	if err := env.svc.Matches.Like(ctx, zara, "hi"); err != nil {
		t.Fatalf("Like as first user: %v", err)
	}
	// Swap the session underneath the app so the cached lists are stale.
	env.switchUser(t)
	a := env.app()

	a = likeInBrowse(t, a, "Zara")
	if a.browse.status != "request sent" {
		t.Errorf("status = %q, want request sent", a.browse.status)
	}
	sent := env.svc.Matches.Sent()
	if len(sent) != 1 || sent[0].Profile.ID != zara.ID {
		t.Errorf("sent after like = %+v, want only Zara", sent)
	}
}

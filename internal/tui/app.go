package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/naveenspark/kinmatch/internal/auth"
	"github.com/naveenspark/kinmatch/internal/conversation"
	"github.com/naveenspark/kinmatch/internal/match"
	"github.com/naveenspark/kinmatch/internal/profile"
	"github.com/naveenspark/kinmatch/internal/session"
	"github.com/naveenspark/kinmatch/pkg/client"
)

// Services bundles what the views talk to.
type Services struct {
	Session       *session.Provider
	Auth          *auth.Authenticator
	Profiles      *profile.Repository
	Matches       *match.Workflow
	Conversations conversation.API
	AgeBounds     profile.AgeBounds
}

// NewServices wires the domain services around one API client.
func NewServices(c *client.Client, sess *session.Provider, a *auth.Authenticator, bounds profile.AgeBounds) *Services {
	return &Services{
		Session:       sess,
		Auth:          a,
		Profiles:      profile.NewRepository(c),
		Matches:       match.NewWorkflow(c),
		Conversations: c,
		AgeBounds:     bounds,
	}
}

type view int

const (
	viewWelcome view = iota
	viewLogin
	viewRegister
	viewDashboard
	viewBrowse
	viewMatches
	viewProfile
	viewEdit
	viewConversation
)

// -- navigation --

type navigateMsg struct{ to view }

type navigateBackMsg struct{}

type openProfileMsg struct{ id string }

type openConversationMsg struct{ matchID string }

type loggedOutMsg struct {
	expired bool
	err     error
}

func navigate(v view) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: v} }
}

func navigateBack() tea.Cmd {
	return func() tea.Msg { return navigateBackMsg{} }
}

func openProfile(id string) tea.Cmd {
	return func() tea.Msg { return openProfileMsg{id: id} }
}

func openConversation(matchID string) tea.Cmd {
	return func() tea.Msg { return openConversationMsg{matchID: matchID} }
}

// App is the root Bubbletea model.
type App struct {
	svc      *Services
	view     view
	history  []view
	welcome  welcomeModel
	login    loginModel
	register registerModel
	home     dashboardModel
	browse   browseModel
	matches  matchesModel
	profile  profileViewModel
	edit     profileEditModel
	convo    conversationModel
	helpOpen bool
	notice   string
	width    int
	height   int
	frame    int // logo shimmer animation frame
}

// NewApp creates a new TUI application. A stored session starts on the
// dashboard; otherwise the welcome view is shown.
func NewApp(svc *Services) App {
	a := App{
		svc:      svc,
		welcome:  newWelcomeModel(),
		login:    newLoginModel(svc),
		register: newRegisterModel(svc),
		home:     newDashboardModel(svc),
		browse:   newBrowseModel(svc),
		matches:  newMatchesModel(svc),
		profile:  newProfileViewModel(svc),
		edit:     newProfileEditModel(svc),
		convo:    newConversationModel(svc),
	}
	if svc.Session.Authenticated() {
		a.view = viewDashboard
	}
	return a
}

func (a App) Init() tea.Cmd {
	if a.view == viewDashboard {
		return tea.Batch(a.home.Init(), shimmerTickCmd())
	}
	return shimmerTickCmd()
}

func (a App) bodySize() tea.WindowSizeMsg {
	// Chrome: header(2) + tabs(1) + notice(1) + help(1) = 5 lines
	return tea.WindowSizeMsg{Width: a.width, Height: a.height - 5}
}

// show switches to v and returns the command that loads it.
func (a App) show(v view) (App, tea.Cmd) {
	if a.view != v {
		a.history = append(a.history, a.view)
	}
	a.view = v
	a.notice = ""
	switch v {
	case viewLogin:
		a.login = newLoginModel(a.svc)
	case viewRegister:
		a.register = newRegisterModel(a.svc)
	case viewDashboard:
		return a, a.home.Init()
	case viewBrowse:
		return a, a.browse.Init()
	case viewMatches:
		a.matches.loading = true
		return a, a.matches.Init()
	case viewEdit:
		a.edit = newProfileEditModel(a.svc)
		return a, a.edit.Init()
	}
	return a, nil
}

// top switches to a top-level view and forgets the back stack.
func (a App) top(v view) (App, tea.Cmd) {
	a.history = nil
	if a.view == v {
		return a, nil
	}
	a, cmd := a.show(v)
	a.history = nil
	return a, cmd
}

func (a App) back() (App, tea.Cmd) {
	if len(a.history) == 0 {
		if a.svc.Session.Authenticated() {
			return a.top(viewDashboard)
		}
		return a.top(viewWelcome)
	}
	prev := a.history[len(a.history)-1]
	a.history = a.history[:len(a.history)-1]
	a.view = prev
	switch prev {
	case viewDashboard:
		return a, a.home.Init()
	case viewMatches:
		return a, a.matches.Init()
	}
	return a, nil
}

func (a App) logout(expired bool) tea.Cmd {
	sess := a.svc.Session
	return func() tea.Msg {
		return loggedOutMsg{expired: expired, err: sess.Logout(context.Background())}
	}
}

// signedOut resets every per-user view and the cached match lists.
func (a App) signedOut() App {
	svc := a.svc
	svc.Matches.Reset()
	a.home = newDashboardModel(svc)
	a.browse = newBrowseModel(svc)
	a.matches = newMatchesModel(svc)
	a.profile = newProfileViewModel(svc)
	a.edit = newProfileEditModel(svc)
	a.convo = newConversationModel(svc)
	a.history = nil
	a.helpOpen = false
	return a
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		bodyMsg := a.bodySize()
		a.welcome, _ = a.welcome.Update(bodyMsg)
		a.home, _ = a.home.Update(bodyMsg)
		a.browse, _ = a.browse.Update(bodyMsg)
		a.matches, _ = a.matches.Update(bodyMsg)
		a.profile, _ = a.profile.Update(bodyMsg)
		a.convo, _ = a.convo.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case navigateMsg:
		switch msg.to {
		case viewWelcome, viewDashboard, viewBrowse, viewMatches:
			return a.top(msg.to)
		}
		return a.show(msg.to)

	case navigateBackMsg:
		return a.back()

	case openProfileMsg:
		a, _ = a.show(viewProfile)
		a.profile = newProfileViewModel(a.svc)
		a.profile, _ = a.profile.Update(a.bodySize())
		return a, a.profile.load(msg.id)

	case openConversationMsg:
		a, _ = a.show(viewConversation)
		var cmd tea.Cmd
		a.convo, cmd = a.convo.open(msg.matchID)
		return a, cmd

	case loggedInMsg:
		a.login, _ = a.login.Update(msg)
		a.register, _ = a.register.Update(msg)
		if msg.err != nil {
			return a, nil
		}
		a = a.signedOut()
		a.browse, _ = a.browse.Update(a.bodySize())
		a.matches, _ = a.matches.Update(a.bodySize())
		a.home, _ = a.home.Update(a.bodySize())
		a.view = viewDashboard
		return a, a.home.Init()

	case unauthorizedMsg:
		log.Info().Msg("session rejected by server")
		return a, a.logout(true)

	case loggedOutMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("clear session")
		}
		a = a.signedOut()
		if msg.expired {
			a.view = viewLogin
			a.login = newLoginModel(a.svc)
			a.notice = "your session has ended, please sign in again"
		} else {
			a.view = viewWelcome
			a.notice = "signed out"
		}
		return a, nil

	// Results go to their owner even when another view is showing.
	case dashboardLoadedMsg:
		var cmd tea.Cmd
		a.home, cmd = a.home.Update(msg)
		return a, cmd
	case browseLoadedMsg, browseLikedMsg:
		var cmd tea.Cmd
		a.browse, cmd = a.browse.Update(msg)
		return a, cmd
	case matchesLoadedMsg, matchActionMsg:
		var cmd tea.Cmd
		a.matches, cmd = a.matches.Update(msg)
		return a, cmd
	case profileLoadedMsg, profileLikedMsg, profileCopyMsg, profileOpenMsg:
		var cmd tea.Cmd
		a.profile, cmd = a.profile.Update(msg)
		return a, cmd
	case editLoadedMsg:
		var cmd tea.Cmd
		a.edit, cmd = a.edit.Update(msg)
		return a, cmd
	case profileSavedMsg:
		a.home, _ = a.home.Update(msg)
		var cmd tea.Cmd
		a.edit, cmd = a.edit.Update(msg)
		return a, cmd
	case conversationLoadedMsg, conversationSentMsg, conversationPollMsg:
		var cmd tea.Cmd
		a.convo, cmd = a.convo.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			}
			return a, nil
		}
		if !a.isEditing() {
			if next, cmd, ok := a.globalKey(msg.String()); ok {
				return next, cmd
			}
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewWelcome:
		a.welcome, cmd = a.welcome.Update(msg)
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewRegister:
		a.register, cmd = a.register.Update(msg)
	case viewDashboard:
		a.home, cmd = a.home.Update(msg)
	case viewBrowse:
		a.browse, cmd = a.browse.Update(msg)
	case viewMatches:
		a.matches, cmd = a.matches.Update(msg)
	case viewProfile:
		a.profile, cmd = a.profile.Update(msg)
	case viewEdit:
		a.edit, cmd = a.edit.Update(msg)
	case viewConversation:
		a.convo, cmd = a.convo.Update(msg)
	}
	return a, cmd
}

// globalKey handles keys shared by every non-editing view.
func (a App) globalKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "h":
		a.helpOpen = true
		return a, nil, true
	case "q":
		return a, tea.Quit, true
	}
	if !a.svc.Session.Authenticated() {
		return a, nil, false
	}
	switch key {
	case "1":
		a, cmd := a.top(viewDashboard)
		return a, cmd, true
	case "2":
		a, cmd := a.top(viewBrowse)
		return a, cmd, true
	case "3":
		a, cmd := a.top(viewMatches)
		return a, cmd, true
	case "L":
		return a, a.logout(false), true
	case "e":
		if a.view == viewBrowse || a.view == viewMatches {
			a, cmd := a.show(viewEdit)
			return a, cmd, true
		}
	}
	return a, nil, false
}

func (a App) isEditing() bool {
	switch a.view {
	case viewLogin, viewRegister, viewEdit, viewConversation:
		return true
	case viewBrowse:
		return a.browse.editing
	case viewMatches:
		return a.matches.replying
	case viewProfile:
		return a.profile.composing
	}
	return false
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	header := center(logo, a.width)

	userLine := ""
	if s := a.svc.Session.Current(); s != nil {
		userLine = metaStyle.Render(fmt.Sprintf("%s · %s", s.User.Name, roleLabel(s.User.Role)))
	}
	header += "\n" + center(userLine, a.width)

	tabBar := ""
	if a.svc.Session.Authenticated() {
		tabBar = a.tabBar()
	}

	var body, help string
	switch a.view {
	case viewWelcome:
		body = a.welcome.View()
		help = helpBar("l", "sign in", "r", "register", "h", "help", "q", "quit")
	case viewLogin:
		body = a.login.View()
		help = helpBar("tab", "next", "enter", "sign in", "esc", "back")
	case viewRegister:
		body = a.register.View()
		help = helpBar("tab", "next", "enter", "continue", "esc", "back")
	case viewDashboard:
		body = a.home.View()
		help = helpBar("1-3", "tabs", "e", "edit profile", "b", "browse", "m", "matches", "r", "refresh", "L", "log out", "h", "help", "q", "quit")
	case viewBrowse:
		body = a.browse.View()
		if a.browse.editing {
			help = helpBar("tab", "next filter", "enter", "apply", "esc", "cancel")
		} else {
			help = helpBar("1-3", "tabs", "j/k", "nav", "l", "like", "enter", "view", "/", "filter", "x", "clear", "r", "refresh", "q", "quit")
		}
	case viewMatches:
		body = a.matches.View()
		help = " " + helpEntry("1-3", "tabs") + "  " + a.matches.helpKeys()
	case viewProfile:
		body = a.profile.View()
		if a.profile.composing {
			help = helpBar("enter", "send request", "esc", "cancel")
		} else {
			help = helpBar("esc", "back", "h", "help", "q", "quit")
		}
	case viewEdit:
		body = a.edit.View()
		help = helpBar("tab", "next", "ctrl+s", "save", "esc", "back")
	case viewConversation:
		body = a.convo.View()
		help = helpBar("enter", "send", "esc", "back", "ctrl+c", "quit")
	}

	if a.helpOpen {
		body = helpView()
		help = helpBar("esc", "close", "q", "quit")
	}

	notice := ""
	if a.notice != "" {
		notice = " " + warnStyle.Render(a.notice)
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar, body, notice, help)
}

func (a App) tabBar() string {
	tabs := []struct {
		key  string
		name string
		v    view
	}{
		{"1", "Home", viewDashboard},
		{"2", "Browse", viewBrowse},
		{"3", "Matches", viewMatches},
	}
	colWidth := a.width / len(tabs)
	var b strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		if t.v == viewMatches {
			if n := len(a.svc.Matches.Pending()); n > 0 {
				label += " " + warnStyle.Render(fmt.Sprintf("●%d", n))
			}
		}
		w := lipgloss.Width(label)
		left := max((colWidth-w)/2, 0)
		right := max(colWidth-w-left, 0)
		b.WriteString(strings.Repeat(" ", left) + label + strings.Repeat(" ", right))
	}
	return b.String()
}

// center pads s so it sits in the middle of width columns.
func center(s string, width int) string {
	pad := max((width-lipgloss.Width(s))/2, 0)
	return strings.Repeat(" ", pad) + s
}

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/kinmatch/internal/profile"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

type dashboardLoadedMsg struct {
	profile   *domain.Profile
	noProfile bool
	stats     *domain.MatchStats
	err       error
}

type dashboardModel struct {
	svc       *Services
	profile   *domain.Profile
	noProfile bool
	stats     *domain.MatchStats
	loading   bool
	err       string
	width     int
}

func newDashboardModel(svc *Services) dashboardModel {
	return dashboardModel{svc: svc}
}

func (m dashboardModel) Init() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		p, err := svc.Profiles.GetMine(ctx)
		if errors.Is(err, profile.ErrNotFound) {
			return dashboardLoadedMsg{noProfile: true}
		}
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}
		// Stats are decoration; a failure here still shows the profile.
		stats, _ := svc.Matches.Stats(ctx)
		return dashboardLoadedMsg{profile: p, stats: stats}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case dashboardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = describeErr(msg.err)
			return m, authCheck(msg.err)
		}
		m.err = ""
		m.profile = msg.profile
		m.noProfile = msg.noProfile
		m.stats = msg.stats
	case profileSavedMsg:
		if msg.err == nil {
			m.profile = msg.profile
			m.noProfile = false
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "e", "c":
			return m, navigate(viewEdit)
		case "b":
			return m, navigate(viewBrowse)
		case "m":
			return m, navigate(viewMatches)
		case "r":
			m.loading = true
			return m, m.Init()
		}
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if m.err != "" {
		return "\n  " + errorStyle.Render(m.err) + "\n  " + helpEntry("r", "retry")
	}
	if m.noProfile {
		var b strings.Builder
		b.WriteString("\n  " + selectedStyle.Render("Create your child's profile") + "\n")
		b.WriteString("  " + dimStyle.Render("Other moms can find you once your child has a profile.") + "\n\n")
		b.WriteString("  " + helpEntry("c", "create profile") + "\n")
		return b.String()
	}
	if m.profile == nil {
		return "\n  " + dimStyle.Render("loading...")
	}

	p := m.profile
	var sb strings.Builder
	sb.WriteString(selectedStyle.Render(p.ChildName) + "  " + dimStyle.Render(fmt.Sprintf("age %d", p.ChildAge)))
	if p.Gender != "" {
		sb.WriteString(metaStyle.Render(" · " + p.Gender))
	}
	if p.Location != "" {
		sb.WriteString(metaStyle.Render(" · " + p.Location))
	}
	sb.WriteString("\n")
	if p.Bio != "" {
		sb.WriteString("\n" + normalStyle.Render(p.Bio) + "\n")
	}
	if len(p.Interests) > 0 {
		sb.WriteString("\n" + metaStyle.Render("interests ") + accentStyle.Render(strings.Join(p.Interests, ", ")) + "\n")
	}
	if p.LookingFor != "" {
		sb.WriteString(metaStyle.Render("looking for ") + normalStyle.Render(p.LookingFor) + "\n")
	}

	var b strings.Builder
	b.WriteString("\n" + cardStyle(m.width).Render(sb.String()) + "\n\n")
	if m.stats != nil {
		b.WriteString("  " + statBlock(m.stats.Matches, "match", "matches") +
			"   " + statBlock(m.stats.Views, "profile view", "profile views") +
			"   " + statBlock(m.stats.PendingRequests, "pending request", "pending requests") + "\n")
	}
	return b.String()
}

func statBlock(n int, one, many string) string {
	s := plural(n, one, many)
	num, rest, _ := strings.Cut(s, " ")
	return accentStyle.Render(num) + " " + dimStyle.Render(rest)
}

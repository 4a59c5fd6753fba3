package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/kinmatch/internal/browser"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

type profileLoadedMsg struct {
	profile *domain.Profile
	own     bool
	status  domain.MatchStatus
	err     error
}

type profileLikedMsg struct {
	id  string
	err error
}

type profileCopyMsg struct{ err error }

type profileOpenMsg struct{ err error }

type profileViewModel struct {
	svc     *Services
	id      string
	profile *domain.Profile
	own     bool
	status  domain.MatchStatus
	err     string
	note    string
	width   int

	composing bool
	draft     string
	sending   bool
}

func newProfileViewModel(svc *Services) profileViewModel {
	return profileViewModel{svc: svc}
}

// load fetches the profile, whether it is the viewer's own, and the match
// status. A failed status probe reads as none.
func (m profileViewModel) load(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx := context.Background()
		p, err := svc.Profiles.GetByID(ctx, id)
		if err != nil {
			return profileLoadedMsg{err: err}
		}
		own, err := svc.Profiles.IsOwn(ctx, id)
		if err != nil {
			return profileLoadedMsg{err: err}
		}
		status := domain.StatusNone
		if !own {
			if st, err := svc.Matches.Probe(ctx, id); err == nil {
				status = st
			}
		}
		return profileLoadedMsg{profile: p, own: own, status: status}
	}
}

func (m profileViewModel) like(message string) tea.Cmd {
	w := m.svc.Matches
	p := *m.profile
	return func() tea.Msg {
		return profileLikedMsg{id: p.ID, err: w.Like(context.Background(), p, message)}
	}
}

func (m profileViewModel) Update(msg tea.Msg) (profileViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case profileLoadedMsg:
		if msg.err != nil {
			m.err = describeErr(msg.err)
			return m, authCheck(msg.err)
		}
		m.err = ""
		m.profile = msg.profile
		m.own = msg.own
		m.status = msg.status

	case profileLikedMsg:
		m.sending = false
		if m.profile == nil || msg.id != m.profile.ID {
			return m, nil
		}
		if msg.err != nil {
			m.note = "request failed: " + describeErr(msg.err)
			return m, authCheck(msg.err)
		}
		m.composing = false
		m.draft = ""
		m.status = domain.StatusRequested
		m.note = "request sent"

	case profileCopyMsg:
		if msg.err != nil {
			m.note = "copy failed: " + msg.err.Error()
		} else {
			m.note = "profile id copied"
		}

	case profileOpenMsg:
		if msg.err != nil {
			m.note = "could not open photo: " + msg.err.Error()
		}

	case tea.KeyMsg:
		if m.composing {
			return m.updateCompose(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m profileViewModel) updateKeys(msg tea.KeyMsg) (profileViewModel, tea.Cmd) {
	if m.profile == nil || m.sending {
		if msg.String() == "esc" {
			return m, navigateBack()
		}
		return m, nil
	}
	m.note = ""
	switch msg.String() {
	case "esc":
		return m, navigateBack()
	case "l":
		if !m.own && m.status == domain.StatusNone {
			m.sending = true
			return m, m.like("")
		}
	case "m":
		switch {
		case m.own:
		case m.status == domain.StatusMatched:
			return m, openConversation(m.profile.ID)
		case m.status == domain.StatusNone:
			m.composing = true
		}
	case "e":
		if m.own {
			return m, navigate(viewEdit)
		}
	case "c":
		id := m.profile.ID
		return m, func() tea.Msg {
			return profileCopyMsg{err: clipboard.WriteAll(id)}
		}
	case "o":
		if url := m.profile.FirstPhoto(); url != "" {
			return m, func() tea.Msg {
				return profileOpenMsg{err: browser.Open(url)}
			}
		}
		m.note = "no photo yet"
	}
	return m, nil
}

func (m profileViewModel) updateCompose(msg tea.KeyMsg) (profileViewModel, tea.Cmd) {
	if m.sending {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.composing = false
	case "enter":
		if strings.TrimSpace(m.draft) == "" {
			m.note = "write a message first"
			return m, nil
		}
		m.sending = true
		return m, m.like(strings.TrimSpace(m.draft))
	default:
		m.draft = editRune(m.draft, msg.String())
	}
	return m, nil
}

func (m profileViewModel) View() string {
	if m.err != "" {
		return "\n  " + errorStyle.Render(m.err) + "\n  " + helpEntry("esc", "back")
	}
	if m.profile == nil {
		return "\n  " + dimStyle.Render("loading...")
	}
	p := m.profile

	var sb strings.Builder
	sb.WriteString(selectedStyle.Render(p.ChildName) + "  " + dimStyle.Render(fmt.Sprintf("age %d", p.ChildAge)) + "\n")
	var meta []string
	for _, s := range []string{p.Gender, p.Location} {
		if s != "" {
			meta = append(meta, s)
		}
	}
	if len(meta) > 0 {
		sb.WriteString(metaStyle.Render(strings.Join(meta, " · ")) + "\n")
	}
	if m.own {
		sb.WriteString(accentStyle.Render("this is your child's profile") + "\n")
	} else {
		sb.WriteString(StatusStyle(m.status).Render(statusLabel(m.status)) + "\n")
	}
	if p.Bio != "" {
		sb.WriteString("\n" + normalStyle.Render(p.Bio) + "\n")
	}
	if len(p.Interests) > 0 {
		sb.WriteString("\n" + sectionHeaderStyle.Render("── INTERESTS ──") + "\n")
		sb.WriteString(accentStyle.Render(strings.Join(p.Interests, " · ")) + "\n")
	}
	if p.PreferredGender != "" || p.PreferredAgeMin > 0 || p.PreferredAgeMax > 0 || p.LookingFor != "" {
		sb.WriteString("\n" + sectionHeaderStyle.Render("── LOOKING FOR ──") + "\n")
		if p.LookingFor != "" {
			sb.WriteString(normalStyle.Render(p.LookingFor) + "\n")
		}
		if p.PreferredGender != "" {
			sb.WriteString(metaStyle.Render("gender ") + dimStyle.Render(p.PreferredGender) + "\n")
		}
		if p.PreferredAgeMin > 0 || p.PreferredAgeMax > 0 {
			sb.WriteString(metaStyle.Render("ages ") + dimStyle.Render(fmt.Sprintf("%d–%d", p.PreferredAgeMin, p.PreferredAgeMax)) + "\n")
		}
	}
	if n := len(p.Photos); n > 0 {
		sb.WriteString("\n" + metaStyle.Render(plural(n, "photo", "photos")) + "\n")
	}

	sb.WriteString("\n" + m.actions())

	var b strings.Builder
	b.WriteString("\n" + cardStyle(m.width).Render(sb.String()) + "\n")
	if m.composing {
		b.WriteString("\n " + renderInput("message > ", m.draft, "introduce your child...", true) + "\n")
	}
	switch {
	case m.sending:
		b.WriteString("\n  " + dimStyle.Render("sending..."))
	case m.note != "":
		b.WriteString("\n  " + successStyle.Render(m.note))
	}
	return b.String()
}

func (m profileViewModel) actions() string {
	var parts []string
	switch {
	case m.own:
		parts = append(parts, helpEntry("e", "edit"))
	case m.status == domain.StatusNone:
		parts = append(parts, helpEntry("l", "like"), helpEntry("m", "message"))
	case m.status == domain.StatusMatched:
		parts = append(parts, helpEntry("m", "chat"))
	}
	parts = append(parts, helpEntry("c", "copy id"))
	if m.profile.FirstPhoto() != "" {
		parts = append(parts, helpEntry("o", "open photo"))
	}
	parts = append(parts, helpEntry("esc", "back"))
	return strings.Join(parts, "  ")
}

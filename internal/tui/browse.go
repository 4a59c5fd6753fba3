package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/kinmatch/internal/browse"
	"github.com/naveenspark/kinmatch/internal/match"
	"github.com/naveenspark/kinmatch/internal/profile"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

type browseLoadedMsg struct {
	token    uint64
	profiles []domain.Profile
	err      error
}

type browseLikedMsg struct {
	id  string
	err error
}

const (
	filterGender = iota
	filterAgeMin
	filterAgeMax
	filterLocation
	filterInterests
	numFilters
)

var filterLabels = [numFilters]string{"gender", "min age", "max age", "location", "interests"}

type browseModel struct {
	svc     *Services
	feed    *browse.Feed
	cursor  int
	loading bool
	err     string
	status  string
	width   int
	height  int

	editing bool
	filters [numFilters]string
	focus   int
}

func newBrowseModel(svc *Services) browseModel {
	return browseModel{svc: svc, feed: browse.NewFeed()}
}

func (m browseModel) Init() tea.Cmd {
	return m.load()
}

// parseFilters reads the filter bar. Unparseable ages are ignored.
func (m browseModel) parseFilters() domain.ProfileFilters {
	f := domain.ProfileFilters{
		Gender:    strings.TrimSpace(m.filters[filterGender]),
		Location:  strings.TrimSpace(m.filters[filterLocation]),
		Interests: profile.ParseInterests(m.filters[filterInterests]),
	}
	if n, err := strconv.Atoi(strings.TrimSpace(m.filters[filterAgeMin])); err == nil && n > 0 {
		f.AgeMin = n
	}
	if n, err := strconv.Atoi(strings.TrimSpace(m.filters[filterAgeMax])); err == nil && n > 0 {
		f.AgeMax = n
	}
	return f
}

func (m browseModel) load() tea.Cmd {
	filters := m.parseFilters()
	token := m.feed.Begin(filters)
	repo := m.svc.Profiles
	return func() tea.Msg {
		ps, err := repo.List(context.Background(), filters)
		return browseLoadedMsg{token: token, profiles: ps, err: err}
	}
}

func (m browseModel) like(p domain.Profile) tea.Cmd {
	w := m.svc.Matches
	return func() tea.Msg {
		ctx := context.Background()
		err := w.Like(ctx, p, "")
		var te *match.TransitionError
		if errors.As(err, &te) && te.From == domain.StatusRequested {
			// The cached lists may be stale; only the server's say counts.
			if err := w.Refresh(ctx); err != nil {
				return browseLikedMsg{id: p.ID, err: err}
			}
			err = w.Like(ctx, p, "")
			if errors.As(err, &te) && te.From == domain.StatusRequested {
				err = nil
			}
		}
		return browseLikedMsg{id: p.ID, err: err}
	}
}

func (m browseModel) Update(msg tea.Msg) (browseModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case browseLoadedMsg:
		if !m.feed.Current(msg.token) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = describeErr(msg.err)
			return m, authCheck(msg.err)
		}
		m.err = ""
		m.feed.Apply(msg.token, msg.profiles)
		if m.cursor >= len(msg.profiles) {
			m.cursor = max(0, len(msg.profiles)-1)
		}

	case browseLikedMsg:
		m.feed.FinishLike(msg.id, msg.err)
		if msg.err != nil {
			m.status = "like failed: " + describeErr(msg.err)
			return m, authCheck(msg.err)
		}
		m.status = "request sent"

	case tea.KeyMsg:
		if m.editing {
			return m.updateFilters(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m browseModel) updateList(msg tea.KeyMsg) (browseModel, tea.Cmd) {
	profiles := m.feed.Profiles()
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(profiles)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/", "f":
		m.editing = true
		m.focus = 0
	case "x":
		m.filters = [numFilters]string{}
		m.loading = true
		return m, m.load()
	case "r":
		m.loading = true
		return m, m.load()
	case "l":
		if m.cursor < len(profiles) {
			p := profiles[m.cursor]
			if !m.feed.StartLike(p.ID) {
				return m, nil
			}
			m.status = ""
			return m, m.like(p)
		}
	case "enter", "p":
		if m.cursor < len(profiles) {
			return m, openProfile(profiles[m.cursor].ID)
		}
	}
	return m, nil
}

func (m browseModel) updateFilters(msg tea.KeyMsg) (browseModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
	case "tab", "down":
		m.focus = (m.focus + 1) % numFilters
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numFilters) % numFilters
	case "enter":
		m.editing = false
		m.loading = true
		m.cursor = 0
		return m, m.load()
	default:
		m.filters[m.focus] = editRune(m.filters[m.focus], msg.String())
	}
	return m, nil
}

func (m browseModel) View() string {
	var b strings.Builder

	// Filter bar
	b.WriteString("\n ")
	for i := 0; i < numFilters; i++ {
		label := metaStyle.Render(filterLabels[i] + ":")
		value := m.filters[i]
		if value == "" {
			value = "any"
		}
		val := dimStyle.Render(value)
		if m.editing && i == m.focus {
			label = accentStyle.Render(filterLabels[i] + ":")
			val = normalStyle.Render(m.filters[i]) + accentStyle.Render("█")
		}
		b.WriteString(" " + label + " " + val + " ")
	}
	b.WriteString("\n\n")

	profiles := m.feed.Profiles()
	switch {
	case m.err != "":
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
	case m.loading && len(profiles) == 0:
		b.WriteString("  " + dimStyle.Render("loading...") + "\n")
	case len(profiles) == 0:
		b.WriteString("  " + dimStyle.Render("No profiles match these filters. Try widening the age range.") + "\n")
	}

	for i, p := range profiles {
		b.WriteString(m.renderCard(p, i == m.cursor) + "\n")
	}

	if m.status != "" {
		b.WriteString("\n  " + successStyle.Render(m.status))
	}
	return b.String()
}

func (m browseModel) renderCard(p domain.Profile, selected bool) string {
	name := normalStyle.Render(p.ChildName)
	if selected {
		name = selectedStyle.Render(p.ChildName)
	}
	meta := fmt.Sprintf("%d", p.ChildAge)
	if p.Gender != "" {
		meta += " · " + p.Gender
	}
	if p.Location != "" {
		meta += " · " + p.Location
	}

	var like string
	switch m.feed.State(p.ID) {
	case browse.LikeDone:
		like = successStyle.Render("♥ liked")
	case browse.LikeInFlight:
		like = dimStyle.Render("♥ sending...")
	default:
		like = metaStyle.Render("♡ like")
	}

	line := fmt.Sprintf("  %s  %s  %s", name, metaStyle.Render(meta), like)
	if len(p.Interests) > 0 {
		line += "\n     " + dimStyle.Render(truncStr(strings.Join(p.Interests, ", "), max(20, m.width-8)))
	}
	if selected {
		if p.Bio != "" {
			line += "\n     " + chatTextStyle.Render(truncStr(oneLine(p.Bio), max(20, m.width-8)))
		}
		return selectedRowBg.Render(line)
	}
	return line
}

package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/kinmatch/internal/match"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

type matchesTab int

const (
	tabMatches matchesTab = iota
	tabPending
	tabSent
	numMatchesTabs
)

type matchesLoadedMsg struct {
	err error
}

type matchActionMsg struct {
	op  string
	id  string
	err error
}

type matchesModel struct {
	svc     *Services
	tab     matchesTab
	cursor  int
	loading bool
	err     string
	status  string
	width   int

	replying bool
	replyTo  string
	reply    string
	busy     bool

	matches []domain.Match
	pending []domain.MatchRequest
	sent    []domain.MatchRequest
}

func newMatchesModel(svc *Services) matchesModel {
	return matchesModel{svc: svc}
}

func (m matchesModel) Init() tea.Cmd {
	w := m.svc.Matches
	return func() tea.Msg {
		return matchesLoadedMsg{err: w.Refresh(context.Background())}
	}
}

// sync copies the workflow's lists for rendering.
func (m matchesModel) sync() matchesModel {
	w := m.svc.Matches
	m.matches, m.pending, m.sent = w.Matches(), w.Pending(), w.Sent()
	if n := m.count(m.tab); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	return m
}

func (m matchesModel) count(t matchesTab) int {
	switch t {
	case tabMatches:
		return len(m.matches)
	case tabPending:
		return len(m.pending)
	case tabSent:
		return len(m.sent)
	}
	return 0
}

func (m matchesModel) act(op, id string, run func(context.Context, *match.Workflow) error) tea.Cmd {
	w := m.svc.Matches
	return func() tea.Msg {
		return matchActionMsg{op: op, id: id, err: run(context.Background(), w)}
	}
}

func (m matchesModel) Update(msg tea.Msg) (matchesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case matchesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = describeErr(msg.err)
			return m, authCheck(msg.err)
		}
		m.err = ""
		return m.sync(), nil

	case matchActionMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.op + " failed: " + describeErr(msg.err)
			return m, authCheck(msg.err)
		}
		m.replying = false
		m.reply = ""
		switch msg.op {
		case "accept":
			m.status = "matched! say hello"
			m.tab = tabMatches
		case "decline":
			m.status = "request declined"
		case "cancel":
			m.status = "request canceled"
		}
		return m.sync(), nil

	case tea.KeyMsg:
		if m.replying {
			return m.updateReply(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m matchesModel) updateList(msg tea.KeyMsg) (matchesModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch msg.String() {
	case "tab", "right", "l":
		m.tab = (m.tab + 1) % numMatchesTabs
		m.cursor = 0
	case "shift+tab", "left":
		m.tab = (m.tab - 1 + numMatchesTabs) % numMatchesTabs
		m.cursor = 0
	case "j", "down":
		if m.cursor < m.count(m.tab)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "r":
		m.loading = true
		return m, m.Init()
	case "enter":
		switch m.tab {
		case tabMatches:
			if m.cursor < len(m.matches) {
				mt := m.matches[m.cursor]
				return m, openConversation(mt.ConversationID())
			}
		case tabPending:
			if m.cursor < len(m.pending) {
				return m, openProfile(m.pending[m.cursor].Profile.ID)
			}
		case tabSent:
			if m.cursor < len(m.sent) {
				return m, openProfile(m.sent[m.cursor].Profile.ID)
			}
		}
	case "p":
		if id := m.selectedProfileID(); id != "" {
			return m, openProfile(id)
		}
	case "a":
		if m.tab == tabPending && m.cursor < len(m.pending) {
			m.replying = true
			m.replyTo = m.pending[m.cursor].Profile.ID
			m.reply = ""
			m.status = ""
		}
	case "d":
		if m.tab == tabPending && m.cursor < len(m.pending) {
			id := m.pending[m.cursor].Profile.ID
			m.busy = true
			return m, m.act("decline", id, func(ctx context.Context, w *match.Workflow) error {
				return w.Reject(ctx, id)
			})
		}
	case "x":
		if m.tab == tabSent && m.cursor < len(m.sent) {
			id := m.sent[m.cursor].Profile.ID
			m.busy = true
			return m, m.act("cancel", id, func(ctx context.Context, w *match.Workflow) error {
				return w.Cancel(ctx, id)
			})
		}
	}
	return m, nil
}

func (m matchesModel) updateReply(msg tea.KeyMsg) (matchesModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.replying = false
		m.reply = ""
	case "enter":
		if strings.TrimSpace(m.reply) == "" {
			m.status = "write a reply to accept"
			return m, nil
		}
		id, reply := m.replyTo, m.reply
		m.busy = true
		return m, m.act("accept", id, func(ctx context.Context, w *match.Workflow) error {
			return w.Accept(ctx, id, reply)
		})
	default:
		m.reply = editRune(m.reply, msg.String())
	}
	return m, nil
}

func (m matchesModel) selectedProfileID() string {
	switch m.tab {
	case tabMatches:
		if m.cursor < len(m.matches) {
			return m.matches[m.cursor].Profile.ID
		}
	case tabPending:
		if m.cursor < len(m.pending) {
			return m.pending[m.cursor].Profile.ID
		}
	case tabSent:
		if m.cursor < len(m.sent) {
			return m.sent[m.cursor].Profile.ID
		}
	}
	return ""
}

func (m matchesModel) View() string {
	var b strings.Builder

	names := [numMatchesTabs]string{"Matches", "Pending", "Sent"}
	b.WriteString("\n ")
	for i := matchesTab(0); i < numMatchesTabs; i++ {
		label := fmt.Sprintf("%s (%d)", names[i], m.count(i))
		if i == m.tab {
			b.WriteString(" " + selectedStyle.Underline(true).Render(label) + " ")
		} else {
			b.WriteString(" " + dimStyle.Render(label) + " ")
		}
	}
	b.WriteString("\n\n")

	if m.err != "" {
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
		return b.String()
	}

	switch m.tab {
	case tabMatches:
		if len(m.matches) == 0 {
			b.WriteString("  " + dimStyle.Render("No matches yet. Browse profiles and send a like!") + "\n")
		}
		for i, mt := range m.matches {
			line := "  " + m.rowName(mt.Profile, i == m.cursor)
			if last, ok := mt.LastMessage(); ok {
				who := ""
				if last.FromSelf() {
					who = "you: "
				}
				line += "  " + dimStyle.Render(truncStr(who+oneLine(last.Content), max(20, m.width-30)))
			}
			b.WriteString(m.row(line, i == m.cursor))
		}
	case tabPending:
		if len(m.pending) == 0 {
			b.WriteString("  " + dimStyle.Render("No pending requests.") + "\n")
		}
		for i, r := range m.pending {
			b.WriteString(m.row(m.requestLine(r, i == m.cursor), i == m.cursor))
		}
	case tabSent:
		if len(m.sent) == 0 {
			b.WriteString("  " + dimStyle.Render("You haven't sent any requests.") + "\n")
		}
		for i, r := range m.sent {
			b.WriteString(m.row(m.requestLine(r, i == m.cursor), i == m.cursor))
		}
	}

	if m.replying {
		b.WriteString("\n " + renderInput("reply > ", m.reply, "say something to accept...", true) + "\n")
	}
	if m.busy {
		b.WriteString("\n  " + dimStyle.Render("working..."))
	} else if m.status != "" {
		b.WriteString("\n  " + successStyle.Render(m.status))
	}
	return b.String()
}

func (m matchesModel) rowName(p domain.Profile, selected bool) string {
	name := normalStyle.Render(p.ChildName)
	if selected {
		name = selectedStyle.Render(p.ChildName)
	}
	return name + " " + metaStyle.Render(fmt.Sprintf("(%d)", p.ChildAge))
}

func (m matchesModel) requestLine(r domain.MatchRequest, selected bool) string {
	line := "  " + m.rowName(r.Profile, selected)
	if ago := formatAgo(r.CreatedAt); ago != "" {
		line += "  " + metaStyle.Render(ago)
	}
	if r.Message != "" {
		line += "\n     " + chatTextStyle.Render("“"+truncStr(oneLine(r.Message), max(20, m.width-10))+"”")
	}
	return line
}

func (m matchesModel) row(line string, selected bool) string {
	if selected {
		return selectedRowBg.Render(line) + "\n"
	}
	return line + "\n"
}

func (m matchesModel) helpKeys() string {
	if m.replying {
		return helpBar("enter", "accept", "esc", "cancel")
	}
	switch m.tab {
	case tabPending:
		return helpBar("tab", "switch", "j/k", "nav", "a", "accept", "d", "decline", "p", "profile", "q", "quit")
	case tabSent:
		return helpBar("tab", "switch", "j/k", "nav", "x", "cancel", "p", "profile", "q", "quit")
	}
	return helpBar("tab", "switch", "j/k", "nav", "enter", "chat", "p", "profile", "q", "quit")
}

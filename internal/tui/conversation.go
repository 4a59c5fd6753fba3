package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/kinmatch/internal/conversation"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

// conversationPollInterval is how often the open conversation polls for new messages.
const conversationPollInterval = 5 * time.Second

// conversationGen numbers every open, so results and ticks from an
// earlier open of the same match are dropped.
var conversationGen atomic.Uint64

type conversationLoadedMsg struct {
	gen uint64
	err error
}

type conversationSentMsg struct {
	gen uint64
	err error
}

type conversationPollMsg struct{ gen uint64 }

func conversationPollCmd(gen uint64) tea.Cmd {
	return tea.Tick(conversationPollInterval, func(time.Time) tea.Msg {
		return conversationPollMsg{gen: gen}
	})
}

type conversationModel struct {
	svc     *Services
	thread  *conversation.Thread
	matchID string
	gen     uint64
	loc     *time.Location
	input   string
	sending bool
	err     string
	status  string
	width   int
	height  int
}

func newConversationModel(svc *Services) conversationModel {
	return conversationModel{svc: svc, loc: time.Local}
}

// open starts a fresh thread for matchID, which may also be the peer's
// profile id.
func (m conversationModel) open(matchID string) (conversationModel, tea.Cmd) {
	m.thread = conversation.New(m.svc.Conversations)
	m.matchID = matchID
	m.gen = conversationGen.Add(1)
	m.input = ""
	m.err = ""
	m.status = ""
	m.sending = false
	return m, m.load()
}

func (m conversationModel) load() tea.Cmd {
	t, id, gen := m.thread, m.matchID, m.gen
	return func() tea.Msg {
		return conversationLoadedMsg{gen: gen, err: t.Load(context.Background(), id)}
	}
}

func (m conversationModel) Update(msg tea.Msg) (conversationModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case conversationLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			if m.thread.Loaded() {
				// Keep what is shown; the next poll retries.
				return m, tea.Batch(authCheck(msg.err), conversationPollCmd(m.gen))
			}
			m.err = describeErr(msg.err)
			return m, authCheck(msg.err)
		}
		m.err = ""
		return m, conversationPollCmd(m.gen)

	case conversationPollMsg:
		if msg.gen != m.gen || m.thread == nil {
			return m, nil
		}
		return m, m.load()

	case conversationSentMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.sending = false
		if msg.err != nil {
			m.status = "not sent: " + describeErr(msg.err)
			return m, authCheck(msg.err)
		}
		m.input = ""
		m.status = ""

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m conversationModel) updateKeys(msg tea.KeyMsg) (conversationModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.matchID = ""
		m.gen = 0
		return m, navigateBack()
	case "enter":
		if m.sending || m.thread == nil || !m.thread.Loaded() {
			return m, nil
		}
		if strings.TrimSpace(m.input) == "" {
			return m, nil
		}
		m.sending = true
		m.status = ""
		t, gen, content := m.thread, m.gen, m.input
		return m, func() tea.Msg {
			_, err := t.Send(context.Background(), content)
			if errors.Is(err, conversation.ErrEmptyMessage) {
				err = nil
			}
			return conversationSentMsg{gen: gen, err: err}
		}
	default:
		if !m.sending {
			m.input = editRune(m.input, msg.String())
		}
	}
	return m, nil
}

func (m conversationModel) View() string {
	if m.err != "" {
		return "\n  " + errorStyle.Render(m.err) + "\n  " + helpEntry("esc", "back")
	}
	if m.thread == nil || !m.thread.Loaded() {
		return "\n  " + dimStyle.Render("loading...")
	}

	var b strings.Builder
	peer := m.thread.Peer()
	b.WriteString(" " + selectedStyle.Render(peer.ChildName) + dimStyle.Render(fmt.Sprintf("  age %d", peer.ChildAge)) + "\n")
	sep := strings.Repeat("─", max(m.width-2, 4))
	b.WriteString(" " + chatSepStyle.Render(sep) + "\n")

	chrome := 4
	if m.status != "" || m.sending {
		chrome++
	}
	viewportHeight := max(m.height-chrome, 2)

	groups := m.thread.Groups(m.loc)
	if len(groups) == 0 {
		padLines(viewportHeight-1, &b)
		b.WriteString(" " + dimStyle.Render("no messages yet · say hello") + "\n")
	} else {
		var lines []string
		for _, g := range groups {
			lines = append(lines, " "+sectionHeaderStyle.Render("── "+g.Label()+" ──"))
			for _, msg := range g.Messages {
				lines = append(lines, strings.Split(m.renderMessage(peer, msg), "\n")...)
			}
		}
		start := max(len(lines)-viewportHeight, 0)
		visible := lines[start:]
		padLines(viewportHeight-len(visible), &b)
		for _, line := range visible {
			b.WriteString(line + "\n")
		}
	}

	b.WriteString(" " + renderInput("> ", m.input, "type a message...", !m.sending) + "\n")
	switch {
	case m.sending:
		b.WriteString(" " + dimStyle.Render("sending..."))
	case m.status != "":
		b.WriteString(" " + errorStyle.Render(m.status))
	}
	return b.String()
}

func (m conversationModel) renderMessage(peer domain.Profile, msg domain.Message) string {
	timePart := metaStyle.Render(fmt.Sprintf("%8s", formatClock(msg.CreatedAt)))
	sep := chatSepStyle.Render(" · ")

	namePart := chatPeerStyle.Render(peer.ChildName + "'s mom")
	if msg.FromSelf() {
		namePart = chatSelfStyle.Render("you")
	}

	bodyWidth := max(m.width-30, 20)
	wrapped := lipgloss.NewStyle().Width(bodyWidth).Render(msg.Content)
	lines := strings.Split(wrapped, "\n")

	out := " " + timePart + "  " + namePart + sep + chatTextStyle.Render(lines[0])
	indent := strings.Repeat(" ", 11)
	for _, line := range lines[1:] {
		out += "\n" + indent + chatTextStyle.Render(line)
	}
	return out
}

func padLines(n int, b *strings.Builder) {
	for i := 0; i < n; i++ {
		b.WriteByte('\n')
	}
}

package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/kinmatch/pkg/domain"
)

// Shimmer animation for the header logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "K I N M A T C H" as a slow rose-coloured wave.
// Deep rose (#4a1c2c) -> blush (#f9a8c0).
func renderShimmerLogo(frame int) string {
	const text = "KINMATCH"
	n := len(text)

	var out string
	t := float64(frame)
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)
		phase := t*0.1 - x*3.0 + math.Sin(t*0.023)*2.0

		b := math.Pow(math.Sin(phase)*0.5+0.5, 1.3)
		b = b*0.75 + math.Sin(t*0.035)*0.12 + 0.18
		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(74 + b*(249-74))
		g := clampByte(28 + b*(168-28))
		bl := clampByte(44 + b*(192-44))
		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		out += lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(string(text[i]))
		if i < n-1 {
			out += "  "
		}
	}
	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f472a0"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	pitchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c8a84c")).
			Italic(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f472a0")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	chatSelfStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec"))

	chatPeerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f9a8c0"))

	chatTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	chatSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#404858"))

	borderColor  = lipgloss.Color("#2a1e26")
	surfaceColor = lipgloss.Color("#141016")

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#2a1e26"))

	statusColors = map[domain.MatchStatus]lipgloss.Color{
		domain.StatusNone:      lipgloss.Color("#606878"),
		domain.StatusRequested: lipgloss.Color("#d4a844"),
		domain.StatusPending:   lipgloss.Color("#60a0e0"),
		domain.StatusMatched:   lipgloss.Color("#4ade80"),
	}
)

// StatusStyle returns a bold style coloured for a match status.
func StatusStyle(s domain.MatchStatus) lipgloss.Style {
	if c, ok := statusColors[s]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// statusLabel is the human wording for a status, from the viewer's side.
func statusLabel(s domain.MatchStatus) string {
	switch s {
	case domain.StatusRequested:
		return "request sent"
	case domain.StatusPending:
		return "wants to connect"
	case domain.StatusMatched:
		return "matched"
	default:
		return "not connected"
	}
}

// cardStyle is the bordered surface used by profile cards and forms.
func cardStyle(width int) lipgloss.Style {
	w := min(60, width-4)
	if w < 30 {
		w = 30
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Background(surfaceColor).
		Padding(1, 2).
		Width(w)
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins key/label pairs into one help line.
func helpBar(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return " " + strings.Join(parts, "  ")
}

// helpView renders the help overlay.
func helpView() string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f472a0")).
		Bold(true).
		Render("K I N M A T C H")

	quote := pitchStyle.Render(`"Every friendship starts with a hello from mom."`)

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	commands := []struct{ cmd, desc string }{
		{"kinmatch", "Open the app (interactive TUI)"},
		{"kinmatch login", "Sign in with email and password"},
		{"kinmatch register", "Create an account"},
		{"kinmatch logout", "Clear your session"},
		{"kinmatch whoami", "Show the signed-in account"},
		{"kinmatch sandbox", "Try it against a local demo server"},
		{"kinmatch --version", "Show version"},
	}
	keys := []struct{ key, desc string }{
		{"1 2 3", "Home, Browse, Matches"},
		{"e", "Edit your child's profile"},
		{"L", "Log out"},
		{"h", "Toggle this help"},
		{"q", "Quit"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", title, quote)
	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", k.key)), descStyle.Render(k.desc))
	}
	return b.String()
}

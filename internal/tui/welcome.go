package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// welcomeModel is the signed-out landing view.
type welcomeModel struct {
	width int
}

func newWelcomeModel() welcomeModel {
	return welcomeModel{}
}

func (m welcomeModel) Update(msg tea.Msg) (welcomeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "l", "enter":
			return m, navigate(viewLogin)
		case "r":
			return m, navigate(viewRegister)
		}
	}
	return m, nil
}

var welcomeSteps = []struct{ title, body string }{
	{"Create a profile", "Tell other moms about your child: age, interests, what they're looking for."},
	{"Browse and like", "Filter by age, location and interests, then send a hello."},
	{"Connect", "When a mom accepts, chat and plan the first playdate."},
}

func (m welcomeModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + selectedStyle.Render("Find friends for your kids, mom to mom.") + "\n")
	b.WriteString("  " + pitchStyle.Render("kinmatch helps mothers connect their children with like-minded peers.") + "\n\n")
	for i, s := range welcomeSteps {
		b.WriteString("  " + accentStyle.Render(string(rune('1'+i))+".") + " " + normalStyle.Render(s.title) + "\n")
		b.WriteString("     " + dimStyle.Render(s.body) + "\n")
	}
	b.WriteString("\n  " + helpEntry("l", "log in") + "   " + helpEntry("r", "create an account") + "\n")
	return b.String()
}

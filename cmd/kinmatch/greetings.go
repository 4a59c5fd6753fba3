package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var greetings = [...]string{
	"Somewhere nearby, a kid is building a blanket fort for two.",
	"The best friendships start with a mom saying hello.",
	"Playdates don't plan themselves. Well, almost.",
	"Two swings at the park. One is waiting for your kid.",
	"Every bike ride is better with a buddy.",
	"A new friend is one hello away.",
	"Somebody's LEGO city needs a second architect.",
	"Chess is more fun when the other side talks back.",
	"Saturday mornings were made for meeting new friends.",
	"The sandbox has room for one more.",
}

func printHelp(out io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f472a0")).
		Bold(true).
		Render("K I N M A T C H")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(`"Every friendship starts with a hello from mom."`)

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"kinmatch", "Open the app (interactive TUI)"},
		{"kinmatch login", "Sign in (-email, -password)"},
		{"kinmatch register", "Create an account (-name, -email, -password, -phone, -role)"},
		{"kinmatch logout", "Clear your session"},
		{"kinmatch whoami", "Show the signed-in account"},
		{"kinmatch sandbox", "Try it against a seeded local demo server (-serve, -addr)"},
		{"kinmatch --version", "Show version"},
		{"kinmatch help", "You are here"},
	}

	fmt.Fprintf(out, "\n  %s\n\n  %s\n\n  Commands:\n", title, quote)
	for _, c := range commands {
		fmt.Fprintf(out, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}
	env := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).
		Render("Settings: ~/.kinmatch/config.yaml or KINMATCH_* environment variables")
	fmt.Fprintf(out, "\n  %s\n\n", env)
}

func printGreeting(out io.Writer) {
	msg := greetings[rand.IntN(len(greetings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f472a0")).
		Bold(true).
		Render("KINMATCH")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("To start: kinmatch login, or kinmatch sandbox to look around")

	fmt.Fprintf(out, "\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}

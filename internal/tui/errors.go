package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/kinmatch/internal/session"
	"github.com/naveenspark/kinmatch/pkg/client"
)

// unauthorizedMsg sends the user back to the login view.
type unauthorizedMsg struct{}

// describeErr turns an error into the line shown to the user.
func describeErr(err error) string {
	if err == nil {
		return ""
	}
	switch client.Classify(err) {
	case client.FailureTransport:
		return "network trouble, try again"
	case client.FailureServer:
		if msg := client.ServerMessage(err); msg != "" {
			return msg
		}
		return "something went wrong, try again"
	}
	return err.Error()
}

// authCheck returns a command that ends the session when err means the
// caller is not signed in.
func authCheck(err error) tea.Cmd {
	if client.IsUnauthorized(err) || errors.Is(err, session.ErrNoSession) {
		return func() tea.Msg { return unauthorizedMsg{} }
	}
	return nil
}

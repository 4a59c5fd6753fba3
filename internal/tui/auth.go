package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/kinmatch/internal/auth"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

// loggedInMsg carries the result of login or registration.
type loggedInMsg struct {
	sess *domain.Session
	err  error
}

// startSession runs authenticate and stores the resulting session.
func startSession(svc *Services, authenticate func(context.Context) (*domain.Session, error)) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		sess, err := authenticate(ctx)
		if err != nil {
			return loggedInMsg{err: err}
		}
		if err := svc.Session.Set(ctx, *sess); err != nil {
			return loggedInMsg{err: fmt.Errorf("save session: %w", err)}
		}
		return loggedInMsg{sess: sess}
	}
}

// -- login --

const (
	loginEmail = iota
	loginPassword
	numLoginFields
)

type loginModel struct {
	svc        *Services
	fields     [numLoginFields]string
	focus      int
	err        string
	submitting bool
}

func newLoginModel(svc *Services) loginModel {
	return loginModel{svc: svc}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loggedInMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = describeErr(msg.err)
			return m, nil
		}
		m.fields[loginPassword] = ""
		m.err = ""
	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m loginModel) updateKeys(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		return m, navigate(viewWelcome)
	case "tab", "down":
		m.focus = (m.focus + 1) % numLoginFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numLoginFields) % numLoginFields
	case "enter":
		if m.focus == loginEmail {
			m.focus = loginPassword
			return m, nil
		}
		return m.submit()
	default:
		m.fields[m.focus] = editRune(m.fields[m.focus], msg.String())
	}
	m.err = ""
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	email := strings.TrimSpace(m.fields[loginEmail])
	password := m.fields[loginPassword]
	if email == "" || password == "" {
		m.err = "email and password are required"
		return m, nil
	}
	m.submitting = true
	a := m.svc.Auth
	return m, startSession(m.svc, func(ctx context.Context) (*domain.Session, error) {
		return a.Login(ctx, email, password)
	})
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + selectedStyle.Render("Welcome back") + "\n")
	b.WriteString("  " + dimStyle.Render("Log in to continue your kinmatch journey") + "\n\n")
	b.WriteString(formLine("email", m.fields[loginEmail], m.focus == loginEmail))
	b.WriteString(formLine("password", mask(m.fields[loginPassword]), m.focus == loginPassword))
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("logging in..."))
	case m.err != "":
		b.WriteString("  " + errorStyle.Render(m.err))
	}
	return b.String()
}

// formLine renders one labelled form field.
func formLine(label, value string, focused bool) string {
	cursor := " "
	style := metaStyle
	if focused {
		cursor = accentStyle.Render(">")
		style = selectedStyle
		value += accentStyle.Render("█")
	}
	return fmt.Sprintf("  %s %s %s\n", cursor, style.Render(fmt.Sprintf("%-18s", label)), value)
}

// -- register --

type registerStep int

const (
	stepAccount registerStep = iota
	stepDetails
	stepReview
)

var registerSteps = []string{"Account Information", "Personal Details", "Review"}

const (
	regEmail = iota
	regPassword
	regConfirm
	numAccountFields
)

const (
	regName = iota
	regPhone
	regRole
	numDetailFields
)

type registerModel struct {
	svc        *Services
	step       registerStep
	account    [numAccountFields]string
	details    [numDetailFields]string
	role       domain.Role
	focus      int
	err        string
	submitting bool
}

func newRegisterModel(svc *Services) registerModel {
	return registerModel{svc: svc, role: domain.RoleMother}
}

func (m registerModel) registration() auth.Registration {
	return auth.Registration{
		Name:            m.details[regName],
		Email:           m.account[regEmail],
		Password:        m.account[regPassword],
		ConfirmPassword: m.account[regConfirm],
		Phone:           m.details[regPhone],
		Role:            m.role,
	}
}

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loggedInMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = describeErr(msg.err)
		}
	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m registerModel) fieldCount() int {
	switch m.step {
	case stepAccount:
		return numAccountFields
	case stepDetails:
		return numDetailFields
	}
	return 0
}

func (m registerModel) updateKeys(msg tea.KeyMsg) (registerModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	key := msg.String()
	switch key {
	case "esc":
		if m.step == stepAccount {
			return m, navigate(viewWelcome)
		}
		m.step--
		m.focus = 0
		m.err = ""
		return m, nil
	case "tab", "down":
		if n := m.fieldCount(); n > 0 {
			m.focus = (m.focus + 1) % n
		}
		return m, nil
	case "shift+tab", "up":
		if n := m.fieldCount(); n > 0 {
			m.focus = (m.focus - 1 + n) % n
		}
		return m, nil
	case "enter":
		return m.next()
	}

	m.err = ""
	switch m.step {
	case stepAccount:
		m.account[m.focus] = editRune(m.account[m.focus], key)
	case stepDetails:
		if m.focus == regRole {
			if key == "left" || key == "right" || key == "space" || key == " " {
				if m.role == domain.RoleMother {
					m.role = domain.RoleChild
				} else {
					m.role = domain.RoleMother
				}
			}
			return m, nil
		}
		m.details[m.focus] = editRune(m.details[m.focus], key)
	}
	return m, nil
}

// next validates the current step and advances, submitting from review.
func (m registerModel) next() (registerModel, tea.Cmd) {
	r := m.registration()
	switch m.step {
	case stepAccount:
		if err := r.ValidateAccount(); err != nil {
			m.err = err.Error()
			return m, nil
		}
	case stepDetails:
		if err := r.ValidateDetails(); err != nil {
			m.err = err.Error()
			return m, nil
		}
	case stepReview:
		m.submitting = true
		a := m.svc.Auth
		return m, startSession(m.svc, func(ctx context.Context) (*domain.Session, error) {
			return a.Register(ctx, r)
		})
	}
	m.step++
	m.focus = 0
	m.err = ""
	return m, nil
}

func (m registerModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + selectedStyle.Render("Create your account") + "\n  ")
	for i, s := range registerSteps {
		label := metaStyle.Render(s)
		if registerStep(i) == m.step {
			label = accentStyle.Render(s)
		}
		if i > 0 {
			b.WriteString(metaStyle.Render("  ›  "))
		}
		b.WriteString(label)
	}
	b.WriteString("\n\n")

	switch m.step {
	case stepAccount:
		b.WriteString(formLine("email", m.account[regEmail], m.focus == regEmail))
		b.WriteString(formLine("password", mask(m.account[regPassword]), m.focus == regPassword))
		b.WriteString(formLine("confirm password", mask(m.account[regConfirm]), m.focus == regConfirm))
	case stepDetails:
		b.WriteString(formLine("full name", m.details[regName], m.focus == regName))
		b.WriteString(formLine("phone", m.details[regPhone], m.focus == regPhone))
		role := roleLabel(m.role)
		if m.focus == regRole {
			role = "‹ " + accentStyle.Render(role) + " ›"
		}
		cursor := " "
		if m.focus == regRole {
			cursor = accentStyle.Render(">")
		}
		fmt.Fprintf(&b, "  %s %s %s\n", cursor, metaStyle.Render(fmt.Sprintf("%-18s", "i am a")), role)
	case stepReview:
		rows := [][2]string{
			{"name", m.details[regName]},
			{"email", m.account[regEmail]},
			{"phone", m.details[regPhone]},
			{"account type", roleLabel(m.role)},
		}
		for _, r := range rows {
			fmt.Fprintf(&b, "    %s %s\n", metaStyle.Render(fmt.Sprintf("%-18s", r[0])), normalStyle.Render(r[1]))
		}
		b.WriteString("\n  " + dimStyle.Render("press enter to create your account") + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("creating account..."))
	case m.err != "":
		b.WriteString("  " + errorStyle.Render(m.err))
	}
	return b.String()
}

func roleLabel(r domain.Role) string {
	if r == domain.RoleChild {
		return "Child"
	}
	return "Mother"
}

package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/kinmatch/internal/profile"
	"github.com/naveenspark/kinmatch/pkg/domain"
)

const (
	editName = iota
	editAge
	editGender
	editLocation
	editBio
	editInterests
	editPhotos
	editPrefGender
	editPrefAgeMin
	editPrefAgeMax
	editLookingFor
	numEditFields
)

var editLabels = [numEditFields]string{
	"child's name", "age", "gender", "location", "bio", "interests",
	"photo urls", "preferred gender", "preferred min age", "preferred max age", "looking for",
}

// profileSavedMsg reports the result of saving the caller's profile.
type profileSavedMsg struct {
	profile *domain.Profile
	err     error
}

type editLoadedMsg struct {
	profile *domain.Profile
	err     error
}

type profileEditModel struct {
	svc      *Services
	fields   [numEditFields]string
	focus    int
	existing bool
	loaded   bool
	saving   bool
	err      string
	errField int
}

func newProfileEditModel(svc *Services) profileEditModel {
	return profileEditModel{svc: svc, errField: -1}
}

func (m profileEditModel) Init() tea.Cmd {
	repo := m.svc.Profiles
	return func() tea.Msg {
		p, err := repo.GetMine(context.Background())
		if errors.Is(err, profile.ErrNotFound) {
			return editLoadedMsg{}
		}
		return editLoadedMsg{profile: p, err: err}
	}
}

func (m *profileEditModel) fill(p *domain.Profile) {
	f := p.Fields()
	m.fields = [numEditFields]string{
		editName:       f.ChildName,
		editAge:        itoaOrEmpty(f.ChildAge),
		editGender:     f.Gender,
		editLocation:   f.Location,
		editBio:        f.Bio,
		editInterests:  strings.Join(f.Interests, ", "),
		editPhotos:     strings.Join(f.Photos, ", "),
		editPrefGender: f.PreferredGender,
		editPrefAgeMin: itoaOrEmpty(f.PreferredAgeMin),
		editPrefAgeMax: itoaOrEmpty(f.PreferredAgeMax),
		editLookingFor: f.LookingFor,
	}
	m.existing = true
}

func itoaOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// form converts the text fields into profile fields. Number fields that do
// not parse are reported against their field.
func (m profileEditModel) form() (domain.ProfileFields, error) {
	f := domain.ProfileFields{
		ChildName:       strings.TrimSpace(m.fields[editName]),
		Gender:          strings.TrimSpace(m.fields[editGender]),
		Location:        strings.TrimSpace(m.fields[editLocation]),
		Bio:             strings.TrimSpace(m.fields[editBio]),
		Interests:       profile.ParseInterests(m.fields[editInterests]),
		Photos:          profile.ParseInterests(m.fields[editPhotos]),
		PreferredGender: strings.TrimSpace(m.fields[editPrefGender]),
		LookingFor:      strings.TrimSpace(m.fields[editLookingFor]),
	}
	nums := []struct {
		idx  int
		name string
		dst  *int
	}{
		{editAge, "childAge", &f.ChildAge},
		{editPrefAgeMin, "preferredAgeMin", &f.PreferredAgeMin},
		{editPrefAgeMax, "preferredAgeMax", &f.PreferredAgeMax},
	}
	for _, n := range nums {
		s := strings.TrimSpace(m.fields[n.idx])
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return f, &profile.FieldError{Field: n.name, Message: "must be a number"}
		}
		*n.dst = v
	}
	return f, nil
}

var fieldIndex = map[string]int{
	"childName":       editName,
	"childAge":        editAge,
	"preferredAgeMin": editPrefAgeMin,
	"preferredAgeMax": editPrefAgeMax,
}

func (m profileEditModel) Update(msg tea.Msg) (profileEditModel, tea.Cmd) {
	switch msg := msg.(type) {
	case editLoadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.err = describeErr(msg.err)
			return m, authCheck(msg.err)
		}
		if msg.profile != nil {
			m.fill(msg.profile)
		}

	case profileSavedMsg:
		m.saving = false
		if msg.err != nil {
			m.err = describeErr(msg.err)
			return m, authCheck(msg.err)
		}
		return m, navigate(viewDashboard)

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m profileEditModel) updateKeys(msg tea.KeyMsg) (profileEditModel, tea.Cmd) {
	if m.saving {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		return m, navigateBack()
	case "ctrl+s":
		return m.submit()
	case "tab", "down", "enter":
		m.focus = (m.focus + 1) % numEditFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numEditFields) % numEditFields
	default:
		m.fields[m.focus] = editRune(m.fields[m.focus], msg.String())
	}
	return m, nil
}

func (m profileEditModel) submit() (profileEditModel, tea.Cmd) {
	m.err = ""
	m.errField = -1
	fields, err := m.form()
	if err == nil {
		err = profile.Validate(fields, m.svc.AgeBounds)
	}
	if err != nil {
		var fe *profile.FieldError
		if errors.As(err, &fe) {
			if idx, ok := fieldIndex[fe.Field]; ok {
				m.errField = idx
				m.focus = idx
			}
			m.err = fe.Message
		} else {
			m.err = err.Error()
		}
		return m, nil
	}

	m.saving = true
	repo := m.svc.Profiles
	return m, func() tea.Msg {
		p, err := repo.Save(context.Background(), fields)
		return profileSavedMsg{profile: p, err: err}
	}
}

func (m profileEditModel) View() string {
	if !m.loaded {
		return "\n  " + dimStyle.Render("loading...")
	}
	var b strings.Builder
	title := "Create your child's profile"
	if m.existing {
		title = "Edit your child's profile"
	}
	b.WriteString("\n  " + selectedStyle.Render(title) + "\n\n")
	for i := 0; i < numEditFields; i++ {
		if i == editPrefGender {
			b.WriteString("\n  " + sectionHeaderStyle.Render("── LOOKING FOR ──") + "\n")
		}
		line := strings.TrimSuffix(formLine(editLabels[i], m.fields[i], m.focus == i), "\n")
		if i == m.errField {
			line += "  " + errorStyle.Render("!")
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n  " + dimStyle.Render("separate interests and photo urls with commas") + "\n")
	switch {
	case m.saving:
		b.WriteString("\n  " + dimStyle.Render("saving..."))
	case m.err != "":
		b.WriteString("\n  " + errorStyle.Render(m.err))
	}
	b.WriteString("\n\n" + helpBar("tab", "next", "ctrl+s", "save", "esc", "back"))
	return b.String()
}

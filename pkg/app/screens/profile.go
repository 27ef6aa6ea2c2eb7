package screens

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"go.uber.org/zap"
)

type profileSavedMsg struct {
	gen  uint64
	user *data.User
	err  error
}

// ProfileScreen shows the signed-in user and edits the mutable fields.
type ProfileScreen struct {
	deps    Deps
	scope   *Scope
	logger  *zap.Logger
	form    *form
	editing bool
	saving  bool
	notice  string
	err     string
}

func NewProfileScreen(deps Deps) *ProfileScreen {
	f := newForm("Email", "Bio", "Profile picture URL")
	f.input(1).CharLimit = 1000
	return &ProfileScreen{deps: deps, scope: NewScope(deps.Ctx), logger: deps.logger("profile"), form: f}
}

func (s *ProfileScreen) Init() tea.Cmd { return nil }

func (s *ProfileScreen) Leave() { s.scope.Close() }

func (s *ProfileScreen) Capturing() bool { return s.editing }

func (s *ProfileScreen) startEdit() {
	u := s.deps.Session.User()
	if u == nil {
		return
	}
	s.form.set(0, u.Email)
	s.form.set(1, u.Bio)
	s.form.set(2, u.ProfilePictureURL)
	s.form.setFocus(0)
	s.editing = true
	s.notice, s.err = "", ""
}

// update only carries the fields that changed.
func (s *ProfileScreen) update() data.UserUpdate {
	var up data.UserUpdate
	u := s.deps.Session.User()
	if u == nil {
		return up
	}
	if v := s.form.value(0); v != u.Email {
		up.Email = &v
	}
	if v := s.form.value(1); v != u.Bio {
		up.Bio = &v
	}
	if v := s.form.value(2); v != u.ProfilePictureURL {
		up.ProfilePictureURL = &v
	}
	return up
}

func (s *ProfileScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case profileSavedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.saving = false
		if msg.err != nil {
			s.logger.Warn("update profile", zap.Error(msg.err))
			s.err = saveError(msg.err, "Failed to update profile")
			return s, nil
		}
		s.deps.Session.UpdateUser(msg.user)
		s.editing = false
		s.notice = "Profile updated"
		return s, nil

	case tea.KeyMsg:
		if s.saving {
			return s, nil
		}
		if !s.editing {
			switch msg.String() {
			case "e":
				s.startEdit()
			case "L":
				s.deps.Session.Logout()
			}
			return s, nil
		}
		switch msg.String() {
		case "esc":
			s.editing = false
			s.err = ""
			return s, nil
		case "enter", "ctrl+s":
			return s, s.save()
		}
		return s, s.form.update(msg)
	}
	return s, nil
}

func (s *ProfileScreen) save() tea.Cmd {
	up := s.update()
	if up.Email != nil && !strings.Contains(*up.Email, "@") {
		s.err = "Please enter a valid email"
		return nil
	}
	if up == (data.UserUpdate{}) {
		s.editing = false
		return nil
	}
	s.err = ""
	s.saving = true
	ctx, gen := s.scope.Context()
	users := s.deps.Services.Users
	return func() tea.Msg {
		u, err := users.UpdateProfile(ctx, up)
		return profileSavedMsg{gen: gen, user: u, err: err}
	}
}

func (s *ProfileScreen) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Profile"))
	b.WriteString("\n\n")

	u := s.deps.Session.User()
	if u == nil {
		return b.String() + styles.MutedStyle.Render("Not signed in.")
	}
	if s.editing {
		b.WriteString(s.form.view())
		b.WriteString(errorLine(s.err))
		if s.saving {
			b.WriteString(styles.MutedStyle.Render("Saving...") + "\n")
		}
		b.WriteString(styles.HelpStyle.Render("enter/ctrl+s: save • tab: next field • esc: cancel"))
		return b.String()
	}

	row := func(label, value string) {
		if value == "" {
			value = styles.MutedStyle.Render("not set")
		}
		b.WriteString(fmt.Sprintf("%-10s %s\n", styles.SubtitleStyle.Render(label), value))
	}
	row("Username", u.Username)
	row("Email", u.Email)
	row("Role", roleLabel(u.Role))
	row("Bio", u.Bio)
	row("Picture", u.ProfilePictureURL)
	if t := data.ParseTime(u.CreatedAt); !t.IsZero() {
		row("Joined", t.Format("January 2, 2006"))
	}
	b.WriteString("\n")
	if s.notice != "" {
		b.WriteString(styles.StatusCompleted.Render(s.notice) + "\n")
	}
	b.WriteString(errorLine(s.err))
	b.WriteString(styles.HelpStyle.Render("e: edit profile • L: log out"))
	return b.String()
}

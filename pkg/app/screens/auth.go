package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/session"
)

type authDoneMsg struct {
	gen uint64
	err error
}

type LoginScreen struct {
	deps       Deps
	scope      *Scope
	form       *form
	submitting bool
	err        string
}

func NewLoginScreen(deps Deps) *LoginScreen {
	f := newForm("Username", "Password")
	f.input(1).EchoMode = textinput.EchoPassword
	f.input(1).EchoCharacter = '•'
	return &LoginScreen{deps: deps, scope: NewScope(deps.Ctx), form: f}
}

func (s *LoginScreen) Init() tea.Cmd { return textinput.Blink }

func (s *LoginScreen) Leave() { s.scope.Close() }

func (s *LoginScreen) Capturing() bool { return true }

func (s *LoginScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.submitting {
			return s, nil
		}
		switch msg.String() {
		case "enter":
			return s, s.submit()
		case "ctrl+r":
			return s, Navigate(session.RouteRegister, "", "")
		case "esc":
			return s, Navigate(session.RouteHome, "", "")
		}
	case authDoneMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.submitting = false
		if msg.err != nil {
			s.err = s.deps.Session.Err()
		}
		return s, nil
	}
	return s, s.form.update(msg)
}

func (s *LoginScreen) submit() tea.Cmd {
	creds := data.Credentials{Username: s.form.value(0), Password: s.form.fields[1].input.Value()}
	if creds.Username == "" || creds.Password == "" {
		s.err = "Please fill in all fields"
		return nil
	}
	s.err = ""
	s.submitting = true
	ctx, gen := s.scope.Begin()
	sess := s.deps.Session
	return func() tea.Msg {
		return authDoneMsg{gen: gen, err: sess.Login(ctx, creds)}
	}
}

func (s *LoginScreen) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Sign in to your account"))
	b.WriteString("\n")
	b.WriteString(s.form.view())
	b.WriteString(errorLine(s.err))
	if s.submitting {
		b.WriteString(styles.MutedStyle.Render("Signing in..."))
		b.WriteString("\n")
	}
	b.WriteString(styles.HelpStyle.Render("enter: sign in • tab: next field • ctrl+r: create an account • esc: back"))
	return b.String()
}

const minPasswordLength = 8

type RegisterScreen struct {
	deps       Deps
	scope      *Scope
	form       *form
	role       data.Role
	submitting bool
	err        string
}

func NewRegisterScreen(deps Deps) *RegisterScreen {
	f := newForm("Username", "Email", "Password", "Confirm password")
	for _, i := range []int{2, 3} {
		f.input(i).EchoMode = textinput.EchoPassword
		f.input(i).EchoCharacter = '•'
	}
	return &RegisterScreen{deps: deps, scope: NewScope(deps.Ctx), form: f, role: data.RoleReader}
}

func (s *RegisterScreen) Init() tea.Cmd { return textinput.Blink }

func (s *RegisterScreen) Leave() { s.scope.Close() }

func (s *RegisterScreen) Capturing() bool { return true }

func (s *RegisterScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.submitting {
			return s, nil
		}
		switch msg.String() {
		case "enter":
			return s, s.submit()
		case "ctrl+a":
			if s.role == data.RoleReader {
				s.role = data.RoleAuthor
			} else {
				s.role = data.RoleReader
			}
			return s, nil
		case "ctrl+l":
			return s, Navigate(session.RouteLogin, "", "")
		case "esc":
			return s, Navigate(session.RouteHome, "", "")
		}
	case authDoneMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.submitting = false
		if msg.err != nil {
			s.err = s.deps.Session.Err()
		}
		return s, nil
	}
	return s, s.form.update(msg)
}

// validate mirrors the checks the backend would reject with a 422.
func (s *RegisterScreen) validate() (data.RegisterRequest, string) {
	req := data.RegisterRequest{
		Username: s.form.value(0),
		Email:    s.form.value(1),
		Password: s.form.fields[2].input.Value(),
		Role:     s.role,
	}
	confirm := s.form.fields[3].input.Value()
	switch {
	case req.Username == "" || req.Email == "" || req.Password == "":
		return req, "Please fill in all fields"
	case req.Password != confirm:
		return req, "Passwords do not match"
	case len(req.Password) < minPasswordLength:
		return req, fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
	}
	return req, ""
}

func (s *RegisterScreen) submit() tea.Cmd {
	req, problem := s.validate()
	if problem != "" {
		s.err = problem
		return nil
	}
	s.err = ""
	s.submitting = true
	ctx, gen := s.scope.Begin()
	sess := s.deps.Session
	return func() tea.Msg {
		return authDoneMsg{gen: gen, err: sess.Register(ctx, req)}
	}
}

func (s *RegisterScreen) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Create your account"))
	b.WriteString("\n")
	b.WriteString(s.form.view())
	b.WriteString(fmt.Sprintf("I want to: %s\n", styles.SelectedStyle.Render(roleLabel(s.role))))
	b.WriteString(errorLine(s.err))
	if s.submitting {
		b.WriteString(styles.MutedStyle.Render("Creating account..."))
		b.WriteString("\n")
	}
	b.WriteString(styles.HelpStyle.Render("enter: register • tab: next field • ctrl+a: reader/author • ctrl+l: sign in • esc: back"))
	return b.String()
}

func roleLabel(r data.Role) string {
	if r == data.RoleAuthor {
		return "Write stories (author)"
	}
	return "Read stories (reader)"
}

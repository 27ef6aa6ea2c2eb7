package screens

import (
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/fakeapi"
	"github.com/ethan2004g/interactive-web-novels/pkg/prefs"
	"github.com/ethan2004g/interactive-web-novels/pkg/services"
	"github.com/ethan2004g/interactive-web-novels/pkg/session"
	"go.uber.org/zap"
)

type harness struct {
	backend *fakeapi.Server
	deps    Deps
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := fakeapi.New()
	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL+fakeapi.Prefix, data.NewMemoryTokens())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	svc := services.New(client, zap.NewNop())
	store := prefs.Open(filepath.Join(t.TempDir(), "prefs.toml"))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &harness{
		backend: backend,
		deps: Deps{
			Ctx:      ctx,
			Services: svc,
			Session:  session.New(svc.Auth, svc.Users, nil, zap.NewNop()),
			Prefs:    store,
			Logger:   zap.NewNop(),
		},
	}
}

// signIn seeds a user and stores its tokens without loading the session.
func (h *harness) signIn(t *testing.T, name string, role data.Role) data.User {
	t.Helper()
	u := h.backend.SeedUser(name, "password1", role)
	if _, err := h.deps.Services.Auth.Login(context.Background(), data.Credentials{Username: name, Password: "password1"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	return u
}

// pump runs cmd and feeds every message it produces back into m until no
// commands remain. Timer driven messages are dropped so the loop settles.
func pump(t *testing.T, m tea.Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 500 {
			t.Fatalf("pump did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		switch msg := msg.(type) {
		case nil, tea.QuitMsg, spinner.TickMsg:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		}
		if strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink") {
			continue
		}
		_, out := m.Update(msg)
		queue = append(queue, out)
	}
}

func send(t *testing.T, m tea.Model, msg tea.Msg) {
	t.Helper()
	_, cmd := m.Update(msg)
	pump(t, m, cmd)
}

func typeText(t *testing.T, m tea.Model, text string) {
	t.Helper()
	send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func key(t *testing.T, m tea.Model, k tea.KeyType) {
	t.Helper()
	send(t, m, tea.KeyMsg{Type: k})
}

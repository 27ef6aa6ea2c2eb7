package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/session"
	"go.uber.org/zap"
)

const headerHeight = 3

type sessionLoadedMsg struct{ err error }

type tab struct {
	label string
	route session.Route
}

// RootScreen owns the active screen, the tab bar and route guarding.
type RootScreen struct {
	deps    Deps
	logger  *zap.Logger
	queue   *routeQueue
	spinner spinner.Model

	current   Screen
	route     session.Route
	bookID    data.ID
	chapterID data.ID
	// pending is set while a guarded route waits for the session to load.
	pending bool
	userKey data.ID

	width  int
	height int
}

func NewRootScreen(deps Deps) *RootScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SelectedStyle
	return &RootScreen{
		deps:    deps,
		logger:  deps.logger("root"),
		queue:   &routeQueue{},
		spinner: sp,
		route:   session.RouteHome,
	}
}

// Navigator is installed on the session so its redirects reach the root.
func (r *RootScreen) Navigator() session.Navigator { return r.queue }

func (r *RootScreen) Current() Screen { return r.current }

func (r *RootScreen) Route() session.Route { return r.route }

func (r *RootScreen) Init() tea.Cmd {
	sess := r.deps.Session
	ctx := r.deps.Ctx
	load := func() tea.Msg {
		return sessionLoadedMsg{err: sess.Load(ctx)}
	}
	return tea.Batch(r.spinner.Tick, load, r.open(session.RouteHome, "", ""))
}

func (r *RootScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{r.update(msg)}

	// Sign in and sign out happen inside commands; notice them here.
	if after := r.currentUser(); after != r.userKey {
		r.userKey = after
		cmds = append(cmds, r.forward(SessionChangedMsg{}))
	}
	if routes := r.queue.drain(); len(routes) > 0 {
		last := routes[len(routes)-1]
		r.logger.Debug("redirect", zap.String("route", string(last)))
		cmds = append(cmds, r.open(last, "", ""))
	}
	return r, tea.Batch(cmds...)
}

func (r *RootScreen) currentUser() data.ID {
	if u := r.deps.Session.User(); u != nil {
		return u.ID
	}
	return ""
}

func (r *RootScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width, r.height = msg.Width, msg.Height
		return r.forward(r.screenSize())

	case spinner.TickMsg:
		var cmd tea.Cmd
		r.spinner, cmd = r.spinner.Update(msg)
		return cmd

	case sessionLoadedMsg:
		if msg.err != nil {
			r.logger.Warn("session load", zap.Error(msg.err))
		}
		r.userKey = r.currentUser()
		if r.pending {
			return r.open(r.route, r.bookID, r.chapterID)
		}
		return r.forward(SessionChangedMsg{})

	case NavigateMsg:
		return r.open(msg.Route, msg.BookID, msg.ChapterID)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return tea.Quit
		}
		if !r.capturing() {
			switch msg.String() {
			case "q":
				return tea.Quit
			case "tab":
				return r.cycleTab(1)
			case "shift+tab":
				return r.cycleTab(-1)
			}
		}
	}
	return r.forward(msg)
}

func (r *RootScreen) forward(msg tea.Msg) tea.Cmd {
	if r.current == nil {
		return nil
	}
	model, cmd := r.current.Update(msg)
	if s, ok := model.(Screen); ok {
		r.current = s
	}
	return cmd
}

func (r *RootScreen) capturing() bool {
	c, ok := r.current.(capturer)
	return ok && c.Capturing()
}

func (r *RootScreen) screenSize() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: r.width, Height: max(r.height-headerHeight, 0)}
}

// guardRoles reports whether route needs a user and which roles it accepts.
// No roles means any signed-in user.
func guardRoles(route session.Route) (bool, []data.Role) {
	switch route {
	case session.RouteBookmarks, session.RouteProfile:
		return true, nil
	case session.RouteDashboard, RouteManageChapters, RouteBookForm, RouteChapterForm:
		return true, []data.Role{data.RoleAuthor, data.RoleAdmin}
	}
	return false, nil
}

func (r *RootScreen) open(route session.Route, bookID, chapterID data.ID) tea.Cmd {
	if r.current != nil {
		r.current.Leave()
		r.current = nil
	}
	r.route, r.bookID, r.chapterID = route, bookID, chapterID
	r.pending = false

	if protected, roles := guardRoles(route); protected {
		switch r.deps.Session.Guard(roles...) {
		case session.Pending:
			r.pending = true
			return nil
		case session.Deny:
			// The guard queued a redirect; it is applied after this message.
			return nil
		}
	}

	r.current = r.build(route, bookID, chapterID)
	cmds := []tea.Cmd{r.current.Init()}
	if r.width > 0 {
		size := r.screenSize()
		cmds = append(cmds, func() tea.Msg { return size })
	}
	return tea.Batch(cmds...)
}

func (r *RootScreen) build(route session.Route, bookID, chapterID data.ID) Screen {
	d := r.deps
	switch route {
	case session.RouteLogin:
		return NewLoginScreen(d)
	case session.RouteRegister:
		return NewRegisterScreen(d)
	case session.RouteBookmarks:
		return NewBookmarksScreen(d)
	case session.RouteDashboard:
		return NewDashboardScreen(d)
	case session.RouteProfile:
		return NewProfileScreen(d)
	case RouteBook:
		return NewBookScreen(d, bookID)
	case RouteChapter:
		return NewReaderScreen(d, bookID, chapterID)
	case RouteComments:
		return NewCommentsScreen(d, bookID, chapterID)
	case RouteManageChapters:
		return NewChaptersScreen(d, bookID)
	case RouteBookForm:
		return NewBookFormScreen(d, bookID)
	case RouteChapterForm:
		return NewChapterFormScreen(d, bookID, chapterID)
	default:
		r.route = session.RouteBooks
		return NewBrowseScreen(d)
	}
}

func (r *RootScreen) tabs() []tab {
	tabs := []tab{{"Browse", session.RouteBooks}}
	sess := r.deps.Session
	if !sess.IsAuthenticated() {
		return append(tabs, tab{"Sign in", session.RouteLogin})
	}
	tabs = append(tabs, tab{"Bookmarks", session.RouteBookmarks})
	if sess.HasRole(data.RoleAuthor, data.RoleAdmin) {
		tabs = append(tabs, tab{"Dashboard", session.RouteDashboard})
	}
	return append(tabs, tab{"Profile", session.RouteProfile})
}

func (r *RootScreen) activeTab(tabs []tab) int {
	for i, t := range tabs {
		if t.route == r.route {
			return i
		}
	}
	return -1
}

func (r *RootScreen) cycleTab(delta int) tea.Cmd {
	tabs := r.tabs()
	i := r.activeTab(tabs)
	if i < 0 {
		i = 0
	} else {
		i = (i + delta + len(tabs)) % len(tabs)
	}
	return r.open(tabs[i].route, "", "")
}

func (r *RootScreen) View() string {
	tabs := r.tabs()
	active := r.activeTab(tabs)
	rendered := make([]string, 0, len(tabs))
	for i, t := range tabs {
		if i == active {
			rendered = append(rendered, styles.ActiveTabStyle.Render(t.label))
		} else {
			rendered = append(rendered, styles.InactiveTabStyle.Render(t.label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	var who string
	snap := r.deps.Session.Snapshot()
	switch {
	case snap.Loading:
		who = r.spinner.View() + styles.MutedStyle.Render(" signing in")
	case snap.User != nil:
		who = styles.MutedStyle.Render(fmt.Sprintf("%s (%s)", snap.User.Username, snap.User.Role))
	default:
		who = styles.MutedStyle.Render("guest")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center, bar, "  ", who)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	switch {
	case r.pending:
		b.WriteString(r.spinner.View() + styles.MutedStyle.Render(" Loading..."))
	case r.current != nil:
		b.WriteString(r.current.View())
	}
	return b.String()
}

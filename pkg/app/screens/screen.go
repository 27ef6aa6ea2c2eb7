package screens

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/prefs"
	"github.com/ethan2004g/interactive-web-novels/pkg/services"
	"github.com/ethan2004g/interactive-web-novels/pkg/session"
	"go.uber.org/zap"
)

// Routes that only exist in the terminal client. The rest come from
// package session.
const (
	RouteBook           session.Route = "/books/:id"
	RouteChapter        session.Route = "/books/:id/chapters/:cid"
	RouteComments       session.Route = "/chapters/:cid/comments"
	RouteManageChapters session.Route = "/dashboard/books/:id/chapters"
	RouteBookForm       session.Route = "/dashboard/books/:id/edit"
	RouteChapterForm    session.Route = "/dashboard/books/:id/chapters/:cid/edit"
)

// Deps is what every screen gets from the composition root.
type Deps struct {
	Ctx       context.Context
	Services  *services.Services
	Session   *session.Session
	Prefs     *prefs.Store
	Logger    *zap.Logger
	PageSize  int
	ExportDir string
}

func (d Deps) logger(name string) *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger.Named(name)
}

// Screen is a view the root can switch to. Leave is called when the root
// switches away and must cancel anything the screen has in flight.
type Screen interface {
	tea.Model
	Leave()
}

// capturer is implemented by screens that consume every key while a text
// field is focused.
type capturer interface {
	Capturing() bool
}

// NavigateMsg asks the root to open a route.
type NavigateMsg struct {
	Route     session.Route
	BookID    data.ID
	ChapterID data.ID
}

func Navigate(route session.Route, bookID, chapterID data.ID) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Route: route, BookID: bookID, ChapterID: chapterID}
	}
}

// SessionChangedMsg is sent to the active screen after the session loaded or
// the user changed.
type SessionChangedMsg struct{}

// routeQueue is the session's navigator inside the TUI. Redirects requested
// from commands or guards are queued and applied by the root after the
// current message.
type routeQueue struct {
	mu      sync.Mutex
	pending []session.Route
}

func (q *routeQueue) Navigate(r session.Route) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, r)
}

func (q *routeQueue) drain() []session.Route {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

package screens

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"go.uber.org/zap"
)

type bookmarksLoadedMsg struct {
	gen       uint64
	bookmarks []data.Bookmark
	err       error
}

type bookmarkRemovedMsg struct {
	gen      uint64
	bookmark data.Bookmark
	index    int
	err      error
}

type BookmarksScreen struct {
	deps      Deps
	scope     *Scope
	logger    *zap.Logger
	bookmarks []data.Bookmark
	selected  int
	loading   bool
	err       string
}

func NewBookmarksScreen(deps Deps) *BookmarksScreen {
	return &BookmarksScreen{deps: deps, scope: NewScope(deps.Ctx), logger: deps.logger("bookmarks")}
}

func (s *BookmarksScreen) Init() tea.Cmd {
	s.loading = true
	ctx, gen := s.scope.Begin()
	reader := s.deps.Services.Reader
	return func() tea.Msg {
		bookmarks, err := reader.Bookmarks(ctx)
		return bookmarksLoadedMsg{gen: gen, bookmarks: bookmarks, err: err}
	}
}

func (s *BookmarksScreen) Leave() { s.scope.Close() }

func (s *BookmarksScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case bookmarksLoadedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.logger.Warn("load bookmarks", zap.Error(msg.err))
			s.err = "Could not load bookmarks"
		}
		s.bookmarks = msg.bookmarks
		s.selected = min(s.selected, max(len(s.bookmarks)-1, 0))

	case bookmarkRemovedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		if msg.err != nil {
			s.logger.Warn("remove bookmark", zap.Error(msg.err))
			s.err = "Failed to remove bookmark"
			i := min(msg.index, len(s.bookmarks))
			s.bookmarks = append(s.bookmarks[:i], append([]data.Bookmark{msg.bookmark}, s.bookmarks[i:]...)...)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.bookmarks)-1 {
				s.selected++
			}
		case "enter":
			if len(s.bookmarks) > 0 {
				return s, Navigate(RouteBook, s.bookmarks[s.selected].BookID, "")
			}
		case "d":
			if len(s.bookmarks) > 0 {
				return s, s.remove(s.selected)
			}
		case "r":
			return s, s.Init()
		}
	}
	return s, nil
}

// remove takes the bookmark off the list immediately and puts it back if the
// request fails.
func (s *BookmarksScreen) remove(i int) tea.Cmd {
	bm := s.bookmarks[i]
	s.bookmarks = append(s.bookmarks[:i:i], s.bookmarks[i+1:]...)
	s.selected = min(s.selected, max(len(s.bookmarks)-1, 0))
	s.err = ""

	ctx, gen := s.scope.Context()
	reader := s.deps.Services.Reader
	return func() tea.Msg {
		err := reader.DeleteBookmark(ctx, bm.ID)
		return bookmarkRemovedMsg{gen: gen, bookmark: bm, index: i, err: err}
	}
}

func (s *BookmarksScreen) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("My Bookmarks"))
	b.WriteString("\n")
	switch {
	case s.loading:
		b.WriteString(styles.MutedStyle.Render("Loading bookmarks..."))
		b.WriteString("\n")
	case len(s.bookmarks) == 0:
		b.WriteString(styles.MutedStyle.Render("No bookmarks yet. Start exploring books and bookmark your favorites!"))
		b.WriteString("\n")
	}
	for i, bm := range s.bookmarks {
		title := fmt.Sprintf("Book #%s", bm.BookID)
		meta := ""
		if bm.Book != nil {
			title = bm.Book.Title
			meta = styles.MutedStyle.Render(fmt.Sprintf("  %s · %.1f", bm.Book.Status, bm.Book.AverageRating))
		}
		if i == s.selected {
			b.WriteString(styles.SelectedStyle.Render("› "+title) + meta)
		} else {
			b.WriteString("  " + title + meta)
		}
		b.WriteString("\n")
	}
	b.WriteString(errorLine(s.err))
	b.WriteString(styles.HelpStyle.Render("enter: open • d: remove • r: reload"))
	return b.String()
}

package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/components"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"go.uber.org/zap"
)

type myBooksLoadedMsg struct {
	gen  uint64
	page data.Page[data.Book]
	err  error
}

type bookDeletedMsg struct {
	gen  uint64
	book data.Book
	err  error
}

type statsLoadedMsg struct {
	gen   uint64
	id    data.ID
	stats *data.BookStats
	err   error
}

// DashboardScreen is the author's book management view.
type DashboardScreen struct {
	deps    Deps
	scope   *Scope
	logger  *zap.Logger
	filters browse.Filters
	search  textinput.Model
	list    *components.BookList
	page    data.Page[data.Book]
	stats   map[data.ID]*data.BookStats
	confirm *confirmation
	loading bool
	err     string
}

func NewDashboardScreen(deps Deps) *DashboardScreen {
	ti := textinput.New()
	ti.Placeholder = "Filter my books..."
	ti.Width = 40
	f := browse.DefaultFilters()
	f.PageSize = 0
	list := components.NewBookList()
	list.EmptyMessage = "You haven't written any books yet. Press n to start."
	return &DashboardScreen{
		deps:    deps,
		scope:   NewScope(deps.Ctx),
		logger:  deps.logger("dashboard"),
		filters: f,
		search:  ti,
		list:    list,
		stats:   make(map[data.ID]*data.BookStats),
	}
}

func (s *DashboardScreen) Init() tea.Cmd { return s.load() }

func (s *DashboardScreen) Leave() { s.scope.Close() }

func (s *DashboardScreen) Capturing() bool { return s.search.Focused() }

func (s *DashboardScreen) load() tea.Cmd {
	s.loading = true
	ctx, gen := s.scope.Begin()
	books := s.deps.Services.Books
	filters := s.filters
	return func() tea.Msg {
		page, err := books.MyBooks(ctx, filters)
		return myBooksLoadedMsg{gen: gen, page: page, err: err}
	}
}

func (s *DashboardScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.list.Width = msg.Width - 4
		s.list.Height = msg.Height - 16

	case myBooksLoadedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.logger.Warn("load my books", zap.Error(msg.err))
			s.err = "Could not load your books"
			return s, nil
		}
		s.err = ""
		s.page = msg.page
		s.list.SetItems(msg.page.Items)
		return s, s.loadStats()

	case statsLoadedMsg:
		if msg.err == nil && s.scope.Current(msg.gen) {
			s.stats[msg.id] = msg.stats
		}

	case bookDeletedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		if msg.err != nil {
			s.logger.Warn("delete book", zap.Error(msg.err))
			s.err = "Failed to delete book"
			return s, s.load()
		}

	case tea.KeyMsg:
		if s.confirm != nil {
			c := s.confirm
			s.confirm = nil
			if msg.String() == "y" {
				return s, c.yes()
			}
			return s, nil
		}
		if s.search.Focused() {
			switch msg.String() {
			case "enter", "esc":
				s.search.Blur()
				s.filters.Search = strings.TrimSpace(s.search.Value())
				return s, s.load()
			}
			var cmd tea.Cmd
			s.search, cmd = s.search.Update(msg)
			return s, cmd
		}
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *DashboardScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "/":
		s.search.Focus()
		return textinput.Blink
	case "up", "k":
		s.list.Prev()
		return s.loadStats()
	case "down", "j":
		s.list.Next()
		return s.loadStats()
	case "t":
		s.filters = s.filters.CycleStatus()
		return s.load()
	case "s":
		s.filters = s.filters.CycleSort()
		return s.load()
	case "r":
		return s.load()
	case "n":
		return Navigate(RouteBookForm, "", "")
	}

	book := s.list.Selected()
	if book == nil {
		return nil
	}
	switch msg.String() {
	case "enter":
		return Navigate(RouteManageChapters, book.ID, "")
	case "e":
		return Navigate(RouteBookForm, book.ID, "")
	case "v":
		return Navigate(RouteBook, book.ID, "")
	case "d":
		target := *book
		s.confirm = &confirmation{
			prompt: fmt.Sprintf("Delete %q? This action cannot be undone.", target.Title),
			yes:    func() tea.Cmd { return s.remove(target) },
		}
	}
	return nil
}

// remove drops the book from the list right away. A failure reloads the list.
func (s *DashboardScreen) remove(book data.Book) tea.Cmd {
	s.list.Remove(book.ID)
	s.page.Total = max(s.page.Total-1, 0)
	ctx, gen := s.scope.Context()
	books := s.deps.Services.Books
	return func() tea.Msg {
		return bookDeletedMsg{gen: gen, book: book, err: books.Delete(ctx, book.ID)}
	}
}

func (s *DashboardScreen) loadStats() tea.Cmd {
	book := s.list.Selected()
	if book == nil {
		return nil
	}
	if _, ok := s.stats[book.ID]; ok {
		return nil
	}
	ctx, gen := s.scope.Context()
	books := s.deps.Services.Books
	id := book.ID
	return func() tea.Msg {
		stats, err := books.Stats(ctx, id)
		return statsLoadedMsg{gen: gen, id: id, stats: stats, err: err}
	}
}

func (s *DashboardScreen) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("My Books"))
	b.WriteString("\n")

	inputStyle := styles.InputStyle
	if s.search.Focused() {
		inputStyle = styles.FocusedInputStyle
	}
	b.WriteString(inputStyle.Render(s.search.View()))
	b.WriteString("\n")

	status := string(s.filters.Status)
	if status == "" {
		status = "all"
	}
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("status: %s · %s · %d books", status, s.filters.SortLabel(), s.page.Total)))
	b.WriteString("\n\n")

	if s.loading && len(s.list.Items) == 0 {
		b.WriteString(styles.MutedStyle.Render("Loading your books..."))
	} else {
		b.WriteString(s.list.View())
	}
	b.WriteString("\n")

	if book := s.list.Selected(); book != nil {
		if st := s.stats[book.ID]; st != nil {
			b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf(
				"%d views · %d likes · %d ratings (%.1f) · %d comments · %d bookmarks",
				st.TotalViews, st.TotalLikes, st.TotalRatings, st.AverageRating, st.TotalComments, st.TotalBookmarks)))
			b.WriteString("\n")
		}
	}
	b.WriteString(errorLine(s.err))
	b.WriteString(s.confirm.view())
	b.WriteString(styles.HelpStyle.Render("n: new book • e: edit • d: delete • enter: chapters • v: view • /: filter • t: status • s: sort"))
	return b.String()
}

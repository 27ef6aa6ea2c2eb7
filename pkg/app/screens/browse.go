package screens

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/components"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/prefs"
	"go.uber.org/zap"
)

type booksLoadedMsg struct {
	gen  uint64
	page data.Page[data.Book]
	err  error
}

// BrowseScreen lists published books with search, filters and paging. The
// filter state is restored from and saved to prefs.
type BrowseScreen struct {
	deps    Deps
	scope   *Scope
	logger  *zap.Logger
	filters browse.Filters
	search  textinput.Model
	list    *components.BookList
	page    data.Page[data.Book]
	loading bool
	err     string
	width   int
	height  int
}

func NewBrowseScreen(deps Deps) *BrowseScreen {
	ti := textinput.New()
	ti.Placeholder = "Search books..."
	ti.CharLimit = 100
	ti.Width = 40

	s := &BrowseScreen{
		deps:    deps,
		scope:   NewScope(deps.Ctx),
		logger:  deps.logger("browse"),
		filters: initialFilters(deps),
		search:  ti,
		list:    components.NewBookList(),
	}
	s.search.SetValue(s.filters.Search)
	return s
}

func initialFilters(deps Deps) browse.Filters {
	f := browse.DefaultFilters()
	if deps.Prefs != nil {
		if v, err := url.ParseQuery(deps.Prefs.Get().LastBrowse); err == nil {
			f = browse.ParseFilters(v)
		}
	}
	if deps.PageSize > 0 && f.PageSize == browse.DefaultPageSize {
		f.PageSize = deps.PageSize
	}
	return f
}

func (s *BrowseScreen) Init() tea.Cmd { return s.load() }

func (s *BrowseScreen) Leave() { s.scope.Close() }

func (s *BrowseScreen) Capturing() bool { return s.search.Focused() }

// Filters returns the active browse state.
func (s *BrowseScreen) Filters() browse.Filters { return s.filters }

func (s *BrowseScreen) load() tea.Cmd {
	s.loading = true
	s.err = ""
	ctx, gen := s.scope.Begin()
	books := s.deps.Services.Books
	filters := s.filters
	s.remember()
	return func() tea.Msg {
		page, err := books.List(ctx, filters)
		return booksLoadedMsg{gen: gen, page: page, err: err}
	}
}

func (s *BrowseScreen) remember() {
	if s.deps.Prefs == nil {
		return
	}
	query := s.filters.String()
	if err := s.deps.Prefs.Update(func(p prefs.Prefs) prefs.Prefs {
		p.LastBrowse = query
		return p
	}); err != nil {
		s.logger.Debug("save browse state", zap.Error(err))
	}
}

func (s *BrowseScreen) apply(f browse.Filters) tea.Cmd {
	s.filters = f
	return s.load()
}

func (s *BrowseScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		s.list.Width = msg.Width - 4
		s.list.Height = msg.Height - 14

	case booksLoadedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.logger.Warn("list books", zap.Error(msg.err))
			s.err = "Could not load books"
			s.page = data.Page[data.Book]{Page: s.filters.Page}
			s.list.SetItems(nil)
			return s, nil
		}
		s.page = msg.page
		s.list.SetItems(msg.page.Items)

	case tea.KeyMsg:
		if s.search.Focused() {
			switch msg.String() {
			case "enter":
				s.search.Blur()
				f := s.filters
				f.Search = strings.TrimSpace(s.search.Value())
				f.Page = 1
				return s, s.apply(f)
			case "esc":
				s.search.Blur()
				return s, nil
			}
			var cmd tea.Cmd
			s.search, cmd = s.search.Update(msg)
			return s, cmd
		}

		switch msg.String() {
		case "/":
			s.search.Focus()
			return s, textinput.Blink
		case "up", "k":
			s.list.Prev()
		case "down", "j":
			s.list.Next()
		case "left", "h":
			if s.filters.Page > 1 {
				f := s.filters
				f.Page--
				return s, s.apply(f)
			}
		case "right", "l":
			if s.filters.Page < s.page.Pages {
				f := s.filters
				f.Page++
				return s, s.apply(f)
			}
		case "g":
			return s, s.apply(s.filters.CycleGenre())
		case "s":
			return s, s.apply(s.filters.CycleSort())
		case "t":
			return s, s.apply(s.filters.CycleStatus())
		case "f":
			return s, s.apply(s.preset("featured"))
		case "T":
			return s, s.apply(s.preset("trending"))
		case "x":
			s.search.SetValue("")
			return s, s.apply(s.preset(""))
		case "r":
			return s, s.load()
		case "enter":
			if b := s.list.Selected(); b != nil {
				return s, Navigate(RouteBook, b.ID, "")
			}
		}
	}
	return s, nil
}

func (s *BrowseScreen) preset(name string) browse.Filters {
	v := url.Values{}
	if name != "" {
		v.Set("filter", name)
	}
	v.Set("page_size", fmt.Sprint(s.filters.PageSize))
	return browse.ParseFilters(v)
}

func (s *BrowseScreen) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Browse Books"))
	b.WriteString("\n")

	inputStyle := styles.InputStyle
	if s.search.Focused() {
		inputStyle = styles.FocusedInputStyle
	}
	b.WriteString(inputStyle.Render(s.search.View()))
	b.WriteString("\n")

	genre, status := s.filters.Genre, string(s.filters.Status)
	if genre == "" {
		genre = "All genres"
	}
	if status == "" {
		status = "any status"
	}
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%s · %s · %s", genre, status, s.filters.SortLabel())))
	b.WriteString("\n\n")

	switch {
	case s.loading:
		b.WriteString(styles.MutedStyle.Render("Loading books..."))
	case s.err != "":
		b.WriteString(errorLine(s.err))
	default:
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%d books", s.page.Total)))
		b.WriteString("\n")
		b.WriteString(s.list.View())
	}
	b.WriteString("\n")
	b.WriteString(components.Pager(s.filters.Page, s.page.Pages))
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("/: search • g: genre • t: status • s: sort • f: featured • T: trending • x: reset • h/l: page • enter: open"))
	return b.String()
}

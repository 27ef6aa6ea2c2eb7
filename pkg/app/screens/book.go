package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/components"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/services"
	"github.com/ethan2004g/interactive-web-novels/pkg/session"
	"go.uber.org/zap"
)

type bookLoadedMsg struct {
	gen  uint64
	page *services.BookPage
	err  error
}

type bookmarkToggledMsg struct {
	gen        uint64
	bookmarked bool
	err        error
}

type ratedMsg struct {
	gen    uint64
	rating *data.Rating
	book   *data.Book
	err    error
}

type likedMsg struct {
	gen  uint64
	book *data.Book
	err  error
}

type exportProgressMsg struct {
	progress services.CollectProgress
}

type exportDoneMsg struct {
	result *services.ExportResult
	err    error
}

// BookScreen shows one book with its chapters and the signed-in reader's
// bookmark, rating and progress.
type BookScreen struct {
	deps   Deps
	scope  *Scope
	logger *zap.Logger
	bookID data.ID

	page     *services.BookPage
	selected int
	loading  bool
	busy     bool
	err      string
	notice   string

	exporting    bool
	exportCtx    context.Context
	exportCancel context.CancelFunc
	exportCh     chan services.CollectProgress
	tracker      *components.ProgressTracker

	width, height int
}

func NewBookScreen(deps Deps, bookID data.ID) *BookScreen {
	return &BookScreen{
		deps:    deps,
		scope:   NewScope(deps.Ctx),
		logger:  deps.logger("book"),
		bookID:  bookID,
		tracker: components.NewProgressTracker(60),
	}
}

func (s *BookScreen) Init() tea.Cmd { return s.load() }

func (s *BookScreen) Leave() {
	if s.exportCancel != nil {
		s.exportCancel()
	}
	s.scope.Close()
}

func (s *BookScreen) load() tea.Cmd {
	s.loading = true
	ctx, gen := s.scope.Begin()
	svc := s.deps.Services
	id := s.bookID
	signedIn := s.deps.Session.IsAuthenticated()
	return func() tea.Msg {
		page, err := svc.LoadBookPage(ctx, id, signedIn)
		return bookLoadedMsg{gen: gen, page: page, err: err}
	}
}

func (s *BookScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height

	case SessionChangedMsg:
		return s, s.load()

	case bookLoadedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.loading = false
		// A reload supersedes any mutation still in flight.
		s.busy = false
		if msg.err != nil {
			s.logger.Warn("load book", zap.String("book_id", s.bookID.String()), zap.Error(msg.err))
			s.page = nil
			s.err = "Book not found"
			return s, nil
		}
		s.err = ""
		s.page = msg.page
		s.selected = min(s.selected, max(len(msg.page.Chapters)-1, 0))

	case bookmarkToggledMsg:
		s.busy = false
		if !s.scope.Current(msg.gen) || s.page == nil {
			return s, nil
		}
		if msg.err != nil {
			s.logger.Warn("toggle bookmark", zap.Error(msg.err))
			s.err = "Failed to update bookmark"
			return s, nil
		}
		s.page.Bookmarked = services.Lookup[bool]{Value: msg.bookmarked, Status: services.Found}

	case ratedMsg:
		s.busy = false
		if !s.scope.Current(msg.gen) || s.page == nil {
			return s, nil
		}
		if msg.err != nil {
			s.logger.Warn("rate book", zap.Error(msg.err))
			s.err = "Failed to rate book"
			return s, nil
		}
		s.page.MyRating = services.Lookup[data.Rating]{Value: *msg.rating, Status: services.Found}
		if msg.book != nil {
			s.page.Book = *msg.book
		}

	case likedMsg:
		s.busy = false
		if !s.scope.Current(msg.gen) || s.page == nil {
			return s, nil
		}
		if msg.err != nil {
			s.err = "Failed to like book"
			return s, nil
		}
		s.page.Book = *msg.book

	case exportProgressMsg:
		if !s.exporting {
			return s, nil
		}
		s.tracker.Update(msg.progress)
		return s, s.waitExport()

	case exportDoneMsg:
		s.exporting = false
		if s.exportCancel != nil {
			s.exportCancel()
			s.exportCancel = nil
		}
		if msg.err != nil {
			s.err = fmt.Sprintf("Export failed: %s", msg.err)
			return s, nil
		}
		s.tracker.Clear()
		s.notice = fmt.Sprintf("Exported %d chapters to %s", msg.result.Chapters, msg.result.Path)

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *BookScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "backspace":
		return Navigate(session.RouteBooks, "", "")
	case "r":
		return s.load()
	}
	if s.page == nil || s.busy {
		return nil
	}

	chapters := s.page.Chapters
	switch key := msg.String(); key {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(chapters)-1 {
			s.selected++
		}
	case "enter":
		if len(chapters) > 0 {
			return Navigate(RouteChapter, s.bookID, chapters[s.selected].ID)
		}
	case "c":
		if id := s.continueChapter(); id != "" {
			return Navigate(RouteChapter, s.bookID, id)
		}
	case "b":
		return s.requireUser(s.toggleBookmark)
	case "L":
		return s.requireUser(s.like)
	case "1", "2", "3", "4", "5":
		stars := int(key[0] - '0')
		return s.requireUser(func() tea.Cmd { return s.rate(stars) })
	case "e":
		if !s.exporting {
			return s.export()
		}
	}
	return nil
}

// continueChapter picks the chapter from the reader's progress, falling back
// to the first published chapter.
func (s *BookScreen) continueChapter() data.ID {
	if len(s.page.Chapters) == 0 {
		return ""
	}
	if s.page.Progress.Ok() {
		for _, ch := range s.page.Chapters {
			if ch.ID == s.page.Progress.Value.ChapterID {
				return ch.ID
			}
		}
	}
	return s.page.Chapters[0].ID
}

func (s *BookScreen) requireUser(fn func() tea.Cmd) tea.Cmd {
	if !s.deps.Session.IsAuthenticated() {
		return Navigate(session.RouteLogin, "", "")
	}
	return fn()
}

func (s *BookScreen) toggleBookmark() tea.Cmd {
	s.busy = true
	s.err = ""
	ctx, gen := s.scope.Context()
	reader := s.deps.Services.Reader
	id := s.bookID
	bookmarked := s.page.Bookmarked.Ok() && s.page.Bookmarked.Value
	return func() tea.Msg {
		if bookmarked {
			_, err := reader.RemoveBookmark(ctx, id)
			return bookmarkToggledMsg{gen: gen, bookmarked: err != nil, err: err}
		}
		_, err := reader.AddBookmark(ctx, id)
		return bookmarkToggledMsg{gen: gen, bookmarked: err == nil, err: err}
	}
}

// rate stores the rating and refetches the book so the average updates.
func (s *BookScreen) rate(stars int) tea.Cmd {
	s.busy = true
	s.err = ""
	ctx, gen := s.scope.Context()
	svc := s.deps.Services
	id := s.bookID
	return func() tea.Msg {
		rating, err := svc.Reader.SetRating(ctx, id, stars)
		if err != nil {
			return ratedMsg{gen: gen, err: err}
		}
		book, err := svc.Books.Get(ctx, id)
		if err != nil {
			book = nil
		}
		return ratedMsg{gen: gen, rating: rating, book: book}
	}
}

func (s *BookScreen) like() tea.Cmd {
	s.busy = true
	ctx, gen := s.scope.Context()
	books := s.deps.Services.Books
	id := s.bookID
	return func() tea.Msg {
		book, err := books.Like(ctx, id)
		return likedMsg{gen: gen, book: book, err: err}
	}
}

func (s *BookScreen) export() tea.Cmd {
	s.exporting = true
	s.err, s.notice = "", ""
	s.tracker.Clear()

	life, _ := s.scope.Context()
	ctx, cancel := context.WithCancel(life)
	s.exportCtx, s.exportCancel = ctx, cancel
	s.exportCh = make(chan services.CollectProgress, 32)

	svc := s.deps.Services
	id, dir, ch := s.bookID, s.deps.ExportDir, s.exportCh
	run := func() tea.Msg {
		result, err := svc.Export(ctx, id, dir, func(p services.CollectProgress) {
			select {
			case ch <- p:
			default:
			}
		})
		return exportDoneMsg{result: result, err: err}
	}
	return tea.Batch(run, s.waitExport())
}

// waitExport delivers the next progress update. It returns nil once the
// export is cancelled or finished.
func (s *BookScreen) waitExport() tea.Cmd {
	if !s.exporting || s.exportCh == nil {
		return nil
	}
	ctx, ch := s.exportCtx, s.exportCh
	return func() tea.Msg {
		select {
		case p := <-ch:
			return exportProgressMsg{progress: p}
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *BookScreen) View() string {
	if s.loading && s.page == nil {
		return styles.MutedStyle.Render("Loading book...")
	}
	if s.page == nil {
		return errorLine(s.err) + styles.HelpStyle.Render("esc: back • r: retry")
	}

	book := s.page.Book
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(book.Title))
	b.WriteString("\n")
	b.WriteString(styles.StatusStyle(book.Status).Render(string(book.Status)))
	if book.Genre != "" {
		b.WriteString(styles.MutedStyle.Render(" · " + book.Genre))
	}
	if len(book.Tags) > 0 {
		b.WriteString(styles.MutedStyle.Render(" · #" + strings.Join(book.Tags, " #")))
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%d views · %d likes · %.1f avg from %d ratings · %d chapters",
		book.TotalViews, book.TotalLikes, book.AverageRating, book.TotalRatings, len(s.page.Chapters))))
	b.WriteString("\n\n")

	if book.Description != "" {
		width := 80
		if s.width > 0 {
			width = min(s.width-4, 100)
		}
		b.WriteString(lipgloss.NewStyle().Width(width).Render(components.PlainText(book.Description)))
		b.WriteString("\n\n")
	}

	b.WriteString(s.readerLine())
	b.WriteString("\n\n")

	b.WriteString(styles.SubtitleStyle.Render("Chapters"))
	b.WriteString("\n")
	if len(s.page.Chapters) == 0 {
		b.WriteString(styles.MutedStyle.Render("No chapters published yet"))
		b.WriteString("\n")
	}
	for i, ch := range s.page.Chapters {
		line := fmt.Sprintf("%3d. %s", ch.ChapterNumber, ch.Title)
		if ch.ContentType == data.ContentInteractive {
			line += " (interactive)"
		}
		line += styles.MutedStyle.Render(fmt.Sprintf("  %d words", ch.WordCount))
		if i == s.selected {
			b.WriteString(styles.SelectedStyle.Render("› ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if s.exporting || s.tracker.HasActive() {
		b.WriteString("\n")
		b.WriteString(s.tracker.View())
	}
	b.WriteString(errorLine(s.err))
	if s.notice != "" {
		b.WriteString(styles.StatusCompleted.Render(s.notice))
		b.WriteString("\n")
	}
	b.WriteString(styles.HelpStyle.Render("enter: read • c: continue • b: bookmark • 1-5: rate • L: like • e: export epub • esc: back"))
	return b.String()
}

func (s *BookScreen) readerLine() string {
	if !s.deps.Session.IsAuthenticated() {
		return styles.MutedStyle.Render("Sign in to bookmark, rate and track progress")
	}
	var parts []string

	switch s.page.Bookmarked.Status {
	case services.Found:
		if s.page.Bookmarked.Value {
			parts = append(parts, styles.StatusCompleted.Render("Bookmarked"))
		} else {
			parts = append(parts, styles.MutedStyle.Render("Not bookmarked"))
		}
	case services.Failed:
		parts = append(parts, styles.MutedStyle.Render("Bookmark unavailable"))
	}

	if s.page.MyRating.Ok() {
		parts = append(parts, "Your rating "+styles.Stars(s.page.MyRating.Value.Rating))
	} else {
		parts = append(parts, styles.MutedStyle.Render("Not rated"))
	}

	if s.page.Progress.Ok() {
		parts = append(parts, components.ReadingProgress(s.page.Progress.Value.ProgressPercentage, 20))
	}
	return strings.Join(parts, "   ")
}

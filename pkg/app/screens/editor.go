package screens

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/services"
	"github.com/ethan2004g/interactive-web-novels/pkg/session"
	"go.uber.org/zap"
)

type editLoadedMsg struct {
	gen     uint64
	book    *data.Book
	chapter *data.Chapter
	err     error
}

type editSavedMsg struct {
	gen uint64
	err error
}

// saveError prefers the validation or backend message over a generic one.
func saveError(err error, fallback string) string {
	var v *services.ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

var bookStatuses = []data.BookStatus{data.StatusDraft, data.StatusOngoing, data.StatusCompleted}

// BookFormScreen creates a book, or edits one when bookID is set.
type BookFormScreen struct {
	deps    Deps
	scope   *Scope
	logger  *zap.Logger
	bookID  data.ID
	form    *form
	status  data.BookStatus
	loading bool
	saving  bool
	err     string
}

func NewBookFormScreen(deps Deps, bookID data.ID) *BookFormScreen {
	f := newForm("Title", "Description", "Genre", "Tags (comma separated)", "Cover image URL")
	f.input(1).CharLimit = 2000
	return &BookFormScreen{
		deps:   deps,
		scope:  NewScope(deps.Ctx),
		logger: deps.logger("book-form"),
		bookID: bookID,
		form:   f,
		status: data.StatusDraft,
	}
}

func (s *BookFormScreen) Init() tea.Cmd {
	if s.bookID == "" {
		return nil
	}
	s.loading = true
	ctx, gen := s.scope.Begin()
	books := s.deps.Services.Books
	id := s.bookID
	return func() tea.Msg {
		book, err := books.Get(ctx, id)
		return editLoadedMsg{gen: gen, book: book, err: err}
	}
}

func (s *BookFormScreen) Leave() { s.scope.Close() }

func (s *BookFormScreen) Capturing() bool { return true }

func (s *BookFormScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case editLoadedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.err = "Book not found"
			return s, nil
		}
		b := msg.book
		s.form.set(0, b.Title)
		s.form.set(1, b.Description)
		s.form.set(2, b.Genre)
		s.form.set(3, strings.Join(b.Tags, ", "))
		s.form.set(4, b.CoverImageURL)
		s.status = b.Status
		return s, nil

	case editSavedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.saving = false
		if msg.err != nil {
			s.logger.Warn("save book", zap.Error(msg.err))
			s.err = saveError(msg.err, "Failed to save book")
			return s, nil
		}
		return s, Navigate(session.RouteDashboard, "", "")

	case tea.KeyMsg:
		if s.saving || s.loading {
			return s, nil
		}
		switch msg.String() {
		case "esc":
			return s, Navigate(session.RouteDashboard, "", "")
		case "ctrl+t":
			s.status = nextStatus(s.status)
			return s, nil
		case "ctrl+s", "enter":
			return s, s.save()
		}
	}
	return s, s.form.update(msg)
}

func nextStatus(st data.BookStatus) data.BookStatus {
	for i, v := range bookStatuses {
		if v == st {
			return bookStatuses[(i+1)%len(bookStatuses)]
		}
	}
	return bookStatuses[0]
}

func (s *BookFormScreen) input() data.BookInput {
	var tags []string
	for _, t := range strings.Split(s.form.value(3), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return data.BookInput{
		Title:         s.form.value(0),
		Description:   s.form.value(1),
		Genre:         s.form.value(2),
		Tags:          tags,
		CoverImageURL: s.form.value(4),
		Status:        s.status,
	}
}

func (s *BookFormScreen) save() tea.Cmd {
	in := s.input()
	if in.Title == "" {
		s.err = "Title is required"
		return nil
	}
	s.err = ""
	s.saving = true
	ctx, gen := s.scope.Context()
	books := s.deps.Services.Books
	id := s.bookID
	return func() tea.Msg {
		var err error
		if id == "" {
			_, err = books.Create(ctx, in)
		} else {
			_, err = books.Update(ctx, id, in)
		}
		return editSavedMsg{gen: gen, err: err}
	}
}

func (s *BookFormScreen) View() string {
	title := "Create New Book"
	if s.bookID != "" {
		title = "Edit Book"
	}
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")
	if s.loading {
		return b.String() + styles.MutedStyle.Render("Loading book...")
	}
	b.WriteString(s.form.view())
	b.WriteString("Status: " + styles.StatusStyle(s.status).Render(string(s.status)) + "\n")
	b.WriteString(errorLine(s.err))
	if s.saving {
		b.WriteString(styles.MutedStyle.Render("Saving...") + "\n")
	}
	b.WriteString(styles.HelpStyle.Render("enter/ctrl+s: save • tab: next field • ctrl+t: status • esc: cancel"))
	return b.String()
}

type chaptersLoadedMsg struct {
	gen      uint64
	book     *data.Book
	chapters []data.Chapter
	err      error
}

type chapterChangedMsg struct {
	gen      uint64
	chapters []data.Chapter
	err      error
}

// ChaptersScreen manages the chapters of one of the author's books.
type ChaptersScreen struct {
	deps     Deps
	scope    *Scope
	logger   *zap.Logger
	bookID   data.ID
	book     *data.Book
	chapters []data.Chapter
	selected int
	confirm  *confirmation
	loading  bool
	err      string
}

func NewChaptersScreen(deps Deps, bookID data.ID) *ChaptersScreen {
	return &ChaptersScreen{deps: deps, scope: NewScope(deps.Ctx), logger: deps.logger("chapters"), bookID: bookID}
}

func (s *ChaptersScreen) Init() tea.Cmd {
	s.loading = true
	ctx, gen := s.scope.Begin()
	svc := s.deps.Services
	id := s.bookID
	return func() tea.Msg {
		book, err := svc.Books.Get(ctx, id)
		if err != nil {
			return chaptersLoadedMsg{gen: gen, err: err}
		}
		chapters, err := svc.Chapters.List(ctx, id, services.ChapterFilters{})
		return chaptersLoadedMsg{gen: gen, book: book, chapters: chapters, err: err}
	}
}

func (s *ChaptersScreen) Leave() { s.scope.Close() }

func sortedChapters(chapters []data.Chapter) []data.Chapter {
	out := append([]data.Chapter(nil), chapters...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ChapterNumber < out[j].ChapterNumber })
	return out
}

func (s *ChaptersScreen) setChapters(chapters []data.Chapter) {
	s.chapters = sortedChapters(chapters)
	s.selected = min(s.selected, max(len(s.chapters)-1, 0))
}

func (s *ChaptersScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chaptersLoadedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.logger.Warn("load chapters", zap.Error(msg.err))
			s.err = "Could not load chapters"
			s.chapters = nil
			return s, nil
		}
		s.book = msg.book
		s.setChapters(msg.chapters)

	case chapterChangedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		if msg.err != nil {
			s.logger.Warn("change chapter", zap.Error(msg.err))
			s.err = saveError(msg.err, "Failed to update chapters")
			return s, s.Init()
		}
		if msg.chapters != nil {
			s.setChapters(msg.chapters)
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
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *ChaptersScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "backspace":
		return Navigate(session.RouteDashboard, "", "")
	case "n":
		return Navigate(RouteChapterForm, s.bookID, "")
	case "r":
		return s.Init()
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
		return nil
	case "down", "j":
		if s.selected < len(s.chapters)-1 {
			s.selected++
		}
		return nil
	}
	if len(s.chapters) == 0 {
		return nil
	}
	ch := s.chapters[s.selected]
	switch msg.String() {
	case "e", "enter":
		return Navigate(RouteChapterForm, s.bookID, ch.ID)
	case "v":
		return Navigate(RouteChapter, s.bookID, ch.ID)
	case "p":
		return s.togglePublish(s.selected)
	case "d":
		s.confirm = &confirmation{
			prompt: fmt.Sprintf("Delete chapter %d %q? This action cannot be undone.", ch.ChapterNumber, ch.Title),
			yes:    func() tea.Cmd { return s.remove(ch.ID) },
		}
	case "K", "shift+up":
		return s.move(-1)
	case "J", "shift+down":
		return s.move(1)
	}
	return nil
}

func (s *ChaptersScreen) togglePublish(i int) tea.Cmd {
	ch := &s.chapters[i]
	published := !ch.IsPublished
	ch.IsPublished = published
	s.err = ""

	ctx, gen := s.scope.Context()
	svc := s.deps.Services.Chapters
	bookID, id := s.bookID, ch.ID
	return func() tea.Msg {
		_, err := svc.Update(ctx, bookID, id, data.ChapterInput{IsPublished: &published})
		return chapterChangedMsg{gen: gen, err: err}
	}
}

// remove deletes locally first; a failure reloads the list from the server.
func (s *ChaptersScreen) remove(id data.ID) tea.Cmd {
	kept := make([]data.Chapter, 0, len(s.chapters))
	for _, c := range s.chapters {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.setChapters(kept)
	s.err = ""

	ctx, gen := s.scope.Context()
	svc := s.deps.Services.Chapters
	bookID := s.bookID
	return func() tea.Msg {
		return chapterChangedMsg{gen: gen, err: svc.Delete(ctx, bookID, id)}
	}
}

// move swaps the selected chapter with its neighbour and sends the new order.
func (s *ChaptersScreen) move(delta int) tea.Cmd {
	j := s.selected + delta
	if j < 0 || j >= len(s.chapters) {
		return nil
	}
	s.chapters[s.selected], s.chapters[j] = s.chapters[j], s.chapters[s.selected]
	s.selected = j

	ids := make([]data.ID, len(s.chapters))
	for i := range s.chapters {
		ids[i] = s.chapters[i].ID
		s.chapters[i].ChapterNumber = i + 1
	}

	ctx, gen := s.scope.Context()
	svc := s.deps.Services.Chapters
	bookID := s.bookID
	return func() tea.Msg {
		chapters, err := svc.Reorder(ctx, bookID, ids)
		return chapterChangedMsg{gen: gen, chapters: chapters, err: err}
	}
}

func (s *ChaptersScreen) View() string {
	var b strings.Builder
	title := "Chapters"
	if s.book != nil {
		title = "Chapters of " + s.book.Title
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")
	if s.loading && len(s.chapters) == 0 {
		return b.String() + styles.MutedStyle.Render("Loading chapters...")
	}

	published, interactive := 0, 0
	for _, ch := range s.chapters {
		if ch.IsPublished {
			published++
		}
		if ch.ContentType == data.ContentInteractive {
			interactive++
		}
	}
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%d chapters · %d published · %d interactive", len(s.chapters), published, interactive)))
	b.WriteString("\n\n")

	if len(s.chapters) == 0 {
		b.WriteString(styles.MutedStyle.Render("No chapters yet. Press n to write the first one."))
		b.WriteString("\n")
	}
	for i, ch := range s.chapters {
		state := styles.StatusDraft.Render("draft")
		if ch.IsPublished {
			state = styles.StatusCompleted.Render("published")
		}
		line := fmt.Sprintf("%3d. %-40s %s %s", ch.ChapterNumber, ch.Title, state,
			styles.MutedStyle.Render(fmt.Sprintf("%d words", ch.WordCount)))
		if i == s.selected {
			b.WriteString(styles.SelectedStyle.Render("› ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(errorLine(s.err))
	b.WriteString(s.confirm.view())
	b.WriteString(styles.HelpStyle.Render("n: new • e: edit • p: publish/unpublish • d: delete • J/K: move • v: read • esc: back"))
	return b.String()
}

// ChapterFormScreen writes a new chapter, or edits one when chapterID is set.
type ChapterFormScreen struct {
	deps        Deps
	scope       *Scope
	logger      *zap.Logger
	bookID      data.ID
	chapterID   data.ID
	form        *form
	published   bool
	interactive bool
	loading     bool
	saving      bool
	err         string
}

func NewChapterFormScreen(deps Deps, bookID, chapterID data.ID) *ChapterFormScreen {
	f := newForm("Title", "Chapter number (blank for next)").withArea("Content", 80, 12)
	return &ChapterFormScreen{
		deps:      deps,
		scope:     NewScope(deps.Ctx),
		logger:    deps.logger("chapter-form"),
		bookID:    bookID,
		chapterID: chapterID,
		form:      f,
	}
}

func (s *ChapterFormScreen) Init() tea.Cmd {
	if s.chapterID == "" {
		return nil
	}
	s.loading = true
	ctx, gen := s.scope.Begin()
	chapters := s.deps.Services.Chapters
	bookID, id := s.bookID, s.chapterID
	return func() tea.Msg {
		ch, err := chapters.Get(ctx, bookID, id)
		return editLoadedMsg{gen: gen, chapter: ch, err: err}
	}
}

func (s *ChapterFormScreen) Leave() { s.scope.Close() }

func (s *ChapterFormScreen) Capturing() bool { return true }

func (s *ChapterFormScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if s.form.area != nil {
			s.form.area.SetWidth(max(msg.Width-6, 20))
			s.form.area.SetHeight(max(msg.Height-20, 5))
		}

	case editLoadedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.err = "Chapter not found"
			return s, nil
		}
		ch := msg.chapter
		s.form.set(0, ch.Title)
		s.form.set(1, strconv.Itoa(ch.ChapterNumber))
		s.form.area.SetValue(ch.Text())
		s.published = ch.IsPublished
		s.interactive = ch.ContentType == data.ContentInteractive
		return s, nil

	case editSavedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.saving = false
		if msg.err != nil {
			s.logger.Warn("save chapter", zap.Error(msg.err))
			s.err = saveError(msg.err, "Failed to save chapter")
			return s, nil
		}
		return s, Navigate(RouteManageChapters, s.bookID, "")

	case tea.KeyMsg:
		if s.saving || s.loading {
			return s, nil
		}
		switch msg.String() {
		case "esc":
			return s, Navigate(RouteManageChapters, s.bookID, "")
		case "ctrl+p":
			s.published = !s.published
			return s, nil
		case "ctrl+s":
			return s, s.save()
		}
	}
	return s, s.form.update(msg)
}

func (s *ChapterFormScreen) chapterInput() (data.ChapterInput, string) {
	in := data.ChapterInput{Title: s.form.value(0)}
	published := s.published
	in.IsPublished = &published

	if raw := s.form.value(1); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return in, "Chapter number must be 1 or greater"
		}
		in.ChapterNumber = n
	}
	if in.Title == "" {
		return in, "Title is required"
	}
	// Interactive node graphs are edited elsewhere; leave them untouched.
	if !s.interactive {
		text := s.form.areaValue()
		if strings.TrimSpace(text) == "" {
			return in, "Content is required"
		}
		in.ContentType = data.ContentSimple
		in.ContentData = data.SimpleContent(text)
	}
	return in, ""
}

func (s *ChapterFormScreen) save() tea.Cmd {
	in, problem := s.chapterInput()
	if problem != "" {
		s.err = problem
		return nil
	}
	s.err = ""
	s.saving = true
	ctx, gen := s.scope.Context()
	chapters := s.deps.Services.Chapters
	bookID, id := s.bookID, s.chapterID
	return func() tea.Msg {
		var err error
		if id == "" {
			_, err = chapters.Create(ctx, bookID, in)
		} else {
			_, err = chapters.Update(ctx, bookID, id, in)
		}
		return editSavedMsg{gen: gen, err: err}
	}
}

func (s *ChapterFormScreen) View() string {
	title := "New Chapter"
	if s.chapterID != "" {
		title = "Edit Chapter"
	}
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")
	if s.loading {
		return b.String() + styles.MutedStyle.Render("Loading chapter...")
	}
	b.WriteString(s.form.view())
	state := styles.StatusDraft.Render("draft")
	if s.published {
		state = styles.StatusCompleted.Render("published")
	}
	b.WriteString("State: " + state + "\n")
	if s.interactive {
		b.WriteString(styles.MutedStyle.Render("Interactive content is kept as is; only title, number and state are saved.") + "\n")
	}
	b.WriteString(errorLine(s.err))
	if s.saving {
		b.WriteString(styles.MutedStyle.Render("Saving...") + "\n")
	}
	b.WriteString(styles.HelpStyle.Render("ctrl+s: save • tab: next field • ctrl+p: publish/draft • esc: cancel"))
	return b.String()
}

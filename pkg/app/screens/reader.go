package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/components"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/prefs"
	"github.com/ethan2004g/interactive-web-novels/pkg/services"
	"go.uber.org/zap"
)

type chapterLoadedMsg struct {
	gen  uint64
	view *services.ChapterView
	err  error
}

type progressSavedMsg struct {
	gen uint64
	err error
}

// ReaderScreen shows one chapter. Opening a chapter while signed in marks it
// as fully read, once per visit.
type ReaderScreen struct {
	deps      Deps
	scope     *Scope
	logger    *zap.Logger
	bookID    data.ID
	chapterID data.ID

	view         *services.ChapterView
	prev, next   *data.Chapter
	viewport     viewport.Model
	loading      bool
	err          string
	progressSent bool

	width, height int
}

func NewReaderScreen(deps Deps, bookID, chapterID data.ID) *ReaderScreen {
	return &ReaderScreen{
		deps:      deps,
		scope:     NewScope(deps.Ctx),
		logger:    deps.logger("reader"),
		bookID:    bookID,
		chapterID: chapterID,
		viewport:  viewport.New(80, 20),
	}
}

func (s *ReaderScreen) Init() tea.Cmd {
	s.loading = true
	ctx, gen := s.scope.Begin()
	svc := s.deps.Services
	bookID, chapterID := s.bookID, s.chapterID
	return func() tea.Msg {
		view, err := svc.LoadChapter(ctx, bookID, chapterID)
		return chapterLoadedMsg{gen: gen, view: view, err: err}
	}
}

func (s *ReaderScreen) Leave() { s.scope.Close() }

// ProgressSent reports whether this visit already recorded progress.
func (s *ReaderScreen) ProgressSent() bool { return s.progressSent }

func (s *ReaderScreen) prefs() prefs.Prefs {
	if s.deps.Prefs == nil {
		return prefs.Default()
	}
	return s.deps.Prefs.Get()
}

func (s *ReaderScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		s.viewport.Width = msg.Width
		s.viewport.Height = max(msg.Height-8, 5)
		s.render()
		return s, nil

	case chapterLoadedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.logger.Warn("load chapter", zap.String("chapter_id", s.chapterID.String()), zap.Error(msg.err))
			s.err = "Chapter not found"
			return s, nil
		}
		s.view = msg.view
		s.prev, s.next = browse.Adjacent(msg.view.Siblings, s.chapterID)
		s.render()
		return s, s.trackProgress()

	case SessionChangedMsg:
		return s, s.trackProgress()

	case progressSavedMsg:
		if msg.err != nil && s.scope.Current(msg.gen) {
			s.logger.Warn("update progress", zap.Error(msg.err))
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "backspace":
			return s, Navigate(RouteBook, s.bookID, "")
		case "n", "right":
			if s.next != nil {
				return s, Navigate(RouteChapter, s.bookID, s.next.ID)
			}
			return s, nil
		case "p", "left":
			if s.prev != nil {
				return s, Navigate(RouteChapter, s.bookID, s.prev.ID)
			}
			return s, nil
		case "m":
			return s, Navigate(RouteComments, s.bookID, s.chapterID)
		case "+", "=":
			s.updatePrefs(prefs.Prefs.Wider)
			return s, nil
		case "-":
			s.updatePrefs(prefs.Prefs.Narrower)
			return s, nil
		case "T":
			s.updatePrefs(prefs.Prefs.NextTheme)
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

// trackProgress sends one 100% update once both the chapter and the user are
// known.
func (s *ReaderScreen) trackProgress() tea.Cmd {
	if s.progressSent || s.view == nil || !s.deps.Session.IsAuthenticated() {
		return nil
	}
	s.progressSent = true
	ctx, gen := s.scope.Context()
	reader := s.deps.Services.Reader
	bookID, chapterID := s.bookID, s.chapterID
	return func() tea.Msg {
		_, err := reader.UpdateProgress(ctx, bookID, chapterID, 100)
		return progressSavedMsg{gen: gen, err: err}
	}
}

func (s *ReaderScreen) updatePrefs(fn func(prefs.Prefs) prefs.Prefs) {
	if s.deps.Prefs == nil {
		return
	}
	if err := s.deps.Prefs.Update(fn); err != nil {
		s.logger.Debug("save prefs", zap.Error(err))
	}
	s.render()
}

func (s *ReaderScreen) render() {
	if s.view == nil {
		return
	}
	p := s.prefs()
	width := p.ReadingWidth
	if s.width > 0 {
		width = min(width, s.width-2)
	}
	out, err := components.RenderChapter(s.view.Chapter, width, p.Theme)
	if err != nil {
		s.logger.Warn("render chapter", zap.Error(err))
		out = components.PlainText(s.view.Chapter.Text())
	}
	offset := s.viewport.YOffset
	s.viewport.SetContent(out)
	s.viewport.SetYOffset(offset)
}

func (s *ReaderScreen) View() string {
	if s.loading {
		return styles.MutedStyle.Render("Loading chapter...")
	}
	if s.view == nil {
		return errorLine(s.err) + styles.HelpStyle.Render("esc: back to book")
	}

	ch := s.view.Chapter
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("Chapter %d: %s", ch.ChapterNumber, ch.Title)))
	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%d words · width %d · %s", ch.WordCount, s.prefs().ReadingWidth, s.prefs().Theme)))
	b.WriteString("\n")
	b.WriteString(s.viewport.View())
	b.WriteString("\n")

	var nav []string
	if s.prev != nil {
		nav = append(nav, fmt.Sprintf("← %d. %s", s.prev.ChapterNumber, s.prev.Title))
	}
	if s.next != nil {
		nav = append(nav, fmt.Sprintf("%d. %s →", s.next.ChapterNumber, s.next.Title))
	}
	b.WriteString(styles.MutedStyle.Render(strings.Join(nav, "    ")))
	b.WriteString(fmt.Sprintf("  %3.0f%%", s.viewport.ScrollPercent()*100))
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("j/k: scroll • p/n: prev/next chapter • +/-: width • T: theme • m: comments • esc: back"))
	return b.String()
}

package screens

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/components"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/session"
	"go.uber.org/zap"
)

type commentsLoadedMsg struct {
	gen      uint64
	comments []data.Comment
	err      error
}

type commentSavedMsg struct {
	gen uint64
	err error
}

// CommentsScreen is the discussion under a chapter.
type CommentsScreen struct {
	deps      Deps
	scope     *Scope
	logger    *zap.Logger
	bookID    data.ID
	chapterID data.ID

	thread   *components.CommentThread
	input    textinput.Model
	replyTo  *data.Comment
	confirm  *confirmation
	comments []data.Comment
	loading  bool
	saving   bool
	err      string
}

func NewCommentsScreen(deps Deps, bookID, chapterID data.ID) *CommentsScreen {
	ti := textinput.New()
	ti.Placeholder = "Write a comment..."
	ti.CharLimit = 2000
	ti.Width = 60
	return &CommentsScreen{
		deps:      deps,
		scope:     NewScope(deps.Ctx),
		logger:    deps.logger("comments"),
		bookID:    bookID,
		chapterID: chapterID,
		thread:    components.NewCommentThread(),
		input:     ti,
	}
}

func (s *CommentsScreen) Init() tea.Cmd { return s.load() }

func (s *CommentsScreen) Leave() { s.scope.Close() }

func (s *CommentsScreen) Capturing() bool { return s.input.Focused() }

func (s *CommentsScreen) load() tea.Cmd {
	s.loading = true
	ctx, gen := s.scope.Begin()
	reader := s.deps.Services.Reader
	id := s.chapterID
	return func() tea.Msg {
		comments, err := reader.Comments(ctx, id)
		return commentsLoadedMsg{gen: gen, comments: comments, err: err}
	}
}

func (s *CommentsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.thread.Width = msg.Width - 4
		s.input.Width = min(msg.Width-8, 100)

	case commentsLoadedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.logger.Warn("load comments", zap.Error(msg.err))
			msg.comments = nil
		}
		s.comments = msg.comments
		s.thread.SetComments(msg.comments)

	case commentSavedMsg:
		if !s.scope.Current(msg.gen) {
			return s, nil
		}
		s.saving = false
		if msg.err != nil {
			s.logger.Warn("save comment", zap.Error(msg.err))
			s.err = "Failed to save comment"
			s.thread.SetComments(s.comments)
			return s, nil
		}
		return s, s.load()

	case tea.KeyMsg:
		if s.confirm != nil {
			c := s.confirm
			s.confirm = nil
			if msg.String() == "y" {
				return s, c.yes()
			}
			return s, nil
		}
		if s.input.Focused() {
			return s, s.handleInput(msg)
		}
		switch msg.String() {
		case "esc", "backspace":
			return s, Navigate(RouteChapter, s.bookID, s.chapterID)
		case "up", "k":
			s.thread.Prev()
		case "down", "j":
			s.thread.Next()
		case "a":
			return s, s.compose(nil)
		case "R":
			if c := s.thread.Selected(); c != nil {
				return s, s.compose(c)
			}
		case "d":
			if c := s.thread.Selected(); c != nil && s.ownComment(*c) {
				id := c.ID
				s.confirm = &confirmation{
					prompt: "Are you sure you want to delete this comment?",
					yes:    func() tea.Cmd { return s.remove(id) },
				}
			}
		case "r":
			return s, s.load()
		}
	}
	return s, nil
}

func (s *CommentsScreen) handleInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.input.Blur()
		s.replyTo = nil
		return nil
	case "enter":
		return s.submit()
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

func (s *CommentsScreen) compose(parent *data.Comment) tea.Cmd {
	if !s.deps.Session.IsAuthenticated() {
		return Navigate(session.RouteLogin, "", "")
	}
	s.replyTo = parent
	s.err = ""
	s.input.Focus()
	return textinput.Blink
}

func (s *CommentsScreen) ownComment(c data.Comment) bool {
	u := s.deps.Session.User()
	return u != nil && (u.ID == c.UserID || u.Role == data.RoleAdmin)
}

func (s *CommentsScreen) submit() tea.Cmd {
	content := strings.TrimSpace(s.input.Value())
	if content == "" {
		s.err = "Comment cannot be empty"
		return nil
	}
	var parent data.ID
	if s.replyTo != nil {
		parent = s.replyTo.ID
	}
	s.input.SetValue("")
	s.input.Blur()
	s.replyTo = nil
	s.saving = true

	ctx, gen := s.scope.Context()
	reader := s.deps.Services.Reader
	chapterID := s.chapterID
	return func() tea.Msg {
		_, err := reader.AddComment(ctx, chapterID, content, parent)
		return commentSavedMsg{gen: gen, err: err}
	}
}

// remove drops the comment and its replies from view right away and
// restores them if the request fails.
func (s *CommentsScreen) remove(id data.ID) tea.Cmd {
	var kept []data.Comment
	var keep func([]*browse.CommentNode)
	keep = func(nodes []*browse.CommentNode) {
		for _, n := range nodes {
			if n.Comment.ID == id {
				continue
			}
			kept = append(kept, n.Comment)
			keep(n.Replies)
		}
	}
	keep(browse.CommentTree(s.comments))
	s.thread.SetComments(kept)
	s.saving = true

	ctx, gen := s.scope.Context()
	reader := s.deps.Services.Reader
	return func() tea.Msg {
		return commentSavedMsg{gen: gen, err: reader.DeleteComment(ctx, id)}
	}
}

func (s *CommentsScreen) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Comments"))
	b.WriteString("\n")
	if s.loading && len(s.comments) == 0 {
		b.WriteString(styles.MutedStyle.Render("Loading comments..."))
		b.WriteString("\n")
	} else {
		b.WriteString(s.thread.View())
		b.WriteString("\n")
	}

	if s.input.Focused() {
		if s.replyTo != nil {
			author := "comment"
			if s.replyTo.User != nil {
				author = s.replyTo.User.Username
			}
			b.WriteString(styles.MutedStyle.Render("Replying to " + author))
			b.WriteString("\n")
		}
		b.WriteString(styles.FocusedInputStyle.Render(s.input.View()))
		b.WriteString("\n")
	} else if !s.deps.Session.IsAuthenticated() {
		b.WriteString(styles.MutedStyle.Render("Sign in to join the discussion"))
		b.WriteString("\n")
	}
	if s.saving {
		b.WriteString(styles.MutedStyle.Render("Saving..."))
		b.WriteString("\n")
	}
	b.WriteString(errorLine(s.err))
	b.WriteString(s.confirm.view())
	b.WriteString(styles.HelpStyle.Render("a: comment • R: reply • d: delete • j/k: move • esc: back to chapter"))
	return b.String()
}

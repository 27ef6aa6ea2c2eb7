package screens

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentsPostAndDelete(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "reader", data.RoleReader)
	book := h.backend.SeedBook(data.Book{Title: "Lanterns"})
	ch := h.backend.SeedChapter(data.Chapter{BookID: book.ID, ChapterNumber: 1, Title: "Dusk", IsPublished: true,
		ContentData: data.SimpleContent("The lanterns came on.")})
	root := startRoot(t, h)
	send(t, root, NavigateMsg{Route: RouteComments, BookID: book.ID, ChapterID: ch.ID})

	typeText(t, root, "a")
	typeText(t, root, "Lovely opening")
	key(t, root, tea.KeyEnter)

	comments, err := h.deps.Services.Reader.Comments(context.Background(), ch.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Lovely opening", comments[0].Content)
	assert.Contains(t, root.View(), "Lovely opening")

	typeText(t, root, "d")
	assert.Contains(t, root.View(), "Are you sure")
	typeText(t, root, "y")

	comments, err = h.deps.Services.Reader.Comments(context.Background(), ch.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentsRejectEmpty(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "reader", data.RoleReader)
	book := h.backend.SeedBook(data.Book{Title: "Lanterns"})
	ch := h.backend.SeedChapter(data.Chapter{BookID: book.ID, ChapterNumber: 1, Title: "Dusk", IsPublished: true})
	root := startRoot(t, h)
	send(t, root, NavigateMsg{Route: RouteComments, BookID: book.ID, ChapterID: ch.ID})

	typeText(t, root, "a")
	typeText(t, root, "   ")
	key(t, root, tea.KeyEnter)

	assert.Contains(t, root.View(), "Comment cannot be empty")
}

func TestDashboardDeleteBook(t *testing.T) {
	h := newHarness(t)
	author := h.signIn(t, "writer", data.RoleAuthor)
	h.backend.SeedBook(data.Book{Title: "Keep Me", AuthorID: author.ID})
	h.backend.SeedBook(data.Book{Title: "Drop Me", AuthorID: author.ID})
	root := startRoot(t, h)
	send(t, root, NavigateMsg{Route: session.RouteDashboard})

	dash, ok := root.Current().(*DashboardScreen)
	require.True(t, ok)
	require.Len(t, dash.list.Items, 2)
	if dash.list.Selected().Title != "Drop Me" {
		typeText(t, root, "j")
	}
	require.Equal(t, "Drop Me", dash.list.Selected().Title)

	typeText(t, root, "d")
	typeText(t, root, "n")
	assert.Len(t, dash.list.Items, 2)

	typeText(t, root, "d")
	typeText(t, root, "y")
	assert.Len(t, dash.list.Items, 1)
	assert.Equal(t, "Keep Me", dash.list.Items[0].Title)
}

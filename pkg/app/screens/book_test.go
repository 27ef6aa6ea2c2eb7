package screens

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/services"
	"github.com/ethan2004g/interactive-web-novels/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReadableBook(t *testing.T, h *harness) data.Book {
	t.Helper()
	book := h.backend.SeedBook(data.Book{Title: "Salt and Sails", Genre: "Adventure"})
	for n, title := range []string{"Harbor", "Open Water"} {
		h.backend.SeedChapter(data.Chapter{
			BookID: book.ID, ChapterNumber: n + 1, Title: title, IsPublished: true,
			ContentData: data.SimpleContent(title + " text."),
		})
	}
	h.backend.SeedChapter(data.Chapter{BookID: book.ID, ChapterNumber: 3, Title: "Hidden", ContentData: data.SimpleContent("draft")})
	return book
}

func TestBookScreenShowsPublishedChapters(t *testing.T) {
	h := newHarness(t)
	book := seedReadableBook(t, h)
	root := startRoot(t, h)

	send(t, root, NavigateMsg{Route: RouteBook, BookID: book.ID})

	view := root.View()
	assert.Contains(t, view, "Salt and Sails")
	assert.Contains(t, view, "Open Water")
	assert.NotContains(t, view, "Hidden")
	assert.Contains(t, view, "Sign in to bookmark")
}

func TestBookScreenGuestActionsGoToLogin(t *testing.T) {
	h := newHarness(t)
	book := seedReadableBook(t, h)
	root := startRoot(t, h)
	send(t, root, NavigateMsg{Route: RouteBook, BookID: book.ID})

	typeText(t, root, "b")

	assert.Equal(t, session.RouteLogin, root.Route())
}

func TestBookScreenBookmarkAndRate(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "reader", data.RoleReader)
	book := seedReadableBook(t, h)
	root := startRoot(t, h)
	send(t, root, NavigateMsg{Route: RouteBook, BookID: book.ID})
	assert.Contains(t, root.View(), "Not bookmarked")

	typeText(t, root, "b")
	assert.Contains(t, root.View(), "Bookmarked")
	check := h.deps.Services.Reader.CheckBookmark(context.Background(), book.ID)
	require.Equal(t, services.Found, check.Status)
	assert.True(t, check.Value)

	typeText(t, root, "4")
	mine := h.deps.Services.Reader.MyRating(context.Background(), book.ID)
	require.Equal(t, services.Found, mine.Status)
	assert.Equal(t, 4, mine.Value.Rating)

	// Rating again replaces the earlier one.
	typeText(t, root, "2")
	ratings, err := h.deps.Services.Reader.Ratings(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Len(t, ratings, 1)

	typeText(t, root, "b")
	check = h.deps.Services.Reader.CheckBookmark(context.Background(), book.ID)
	assert.False(t, check.Value)
}

func TestBookScreenContinueUsesProgress(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "reader", data.RoleReader)
	book := seedReadableBook(t, h)
	chapters, err := h.deps.Services.Chapters.Published(context.Background(), book.ID)
	require.NoError(t, err)
	_, err = h.deps.Services.Reader.UpdateProgress(context.Background(), book.ID, chapters[1].ID, 100)
	require.NoError(t, err)
	root := startRoot(t, h)
	send(t, root, NavigateMsg{Route: RouteBook, BookID: book.ID})

	typeText(t, root, "c")

	reader, ok := root.Current().(*ReaderScreen)
	require.True(t, ok)
	assert.Equal(t, chapters[1].ID, reader.chapterID)
}

func TestBookScreenExport(t *testing.T) {
	h := newHarness(t)
	h.deps.ExportDir = t.TempDir()
	book := seedReadableBook(t, h)
	root := startRoot(t, h)
	send(t, root, NavigateMsg{Route: RouteBook, BookID: book.ID})

	typeText(t, root, "e")

	assert.Contains(t, root.View(), "Exported 2 chapters")
	entries, err := os.ReadDir(h.deps.ExportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".epub", filepath.Ext(entries[0].Name()))
}

func TestBookScreenReloadDuringMutationKeepsKeysWorking(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "reader", data.RoleReader)
	book := seedReadableBook(t, h)
	root := startRoot(t, h)
	send(t, root, NavigateMsg{Route: RouteBook, BookID: book.ID})
	screen, ok := root.Current().(*BookScreen)
	require.True(t, ok)

	// Hold the bookmark request back until a reload has started.
	_, toggle := root.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	require.NotNil(t, toggle)
	assert.True(t, screen.busy)

	typeText(t, root, "r")
	pump(t, root, toggle)
	assert.False(t, screen.busy)

	key(t, root, tea.KeyEnter)
	_, reading := root.Current().(*ReaderScreen)
	assert.True(t, reading)
}

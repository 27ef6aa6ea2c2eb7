package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// E2E tests against the in-memory backend.

func TestE2E_AuthorPublishesReaderReads(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping E2E test in short mode")
	}
	ctx := context.Background()
	author, backend := newFakeBackend(t)

	_, err := author.Auth.Register(ctx, data.RegisterRequest{
		Username: "writer", Email: "writer@example.com", Password: "password1", Role: data.RoleAuthor,
	})
	require.NoError(t, err)
	require.True(t, author.Auth.IsAuthenticated())

	me, err := author.Users.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, data.RoleAuthor, me.Role)

	book, err := author.Books.Create(ctx, data.BookInput{Title: "The Long Road", Genre: "Fantasy"})
	require.NoError(t, err)
	assert.Equal(t, data.StatusDraft, book.Status)

	published := true
	first, err := author.Chapters.Create(ctx, book.ID, data.ChapterInput{
		Title: "Departure", ContentData: data.SimpleContent("It began at dawn."), IsPublished: &published,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ChapterNumber)

	second, err := author.Chapters.Create(ctx, book.ID, data.ChapterInput{
		Title: "Crossing", ContentData: data.SimpleContent("The river was wide."), IsPublished: &published,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.ChapterNumber)

	_, err = author.Chapters.Create(ctx, book.ID, data.ChapterInput{
		Title: "Unfinished", ContentData: data.SimpleContent("draft"),
	})
	require.NoError(t, err)

	mine, err := author.Books.MyBooks(ctx, browse.Filters{Status: data.StatusDraft})
	require.NoError(t, err)
	assert.Equal(t, 1, mine.Total)

	backend.SeedUser("reader", "password2", data.RoleReader)
	reader, _ := newFakeBackendClient(t, author)
	_, err = reader.Auth.Login(ctx, data.Credentials{Username: "reader", Password: "password2"})
	require.NoError(t, err)

	page, err := reader.LoadBookPage(ctx, book.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "The Long Road", page.Book.Title)
	require.Len(t, page.Chapters, 2)
	assert.Equal(t, NotFound, page.MyRating.Status)
	assert.Equal(t, NotFound, page.Progress.Status)
	assert.Equal(t, Found, page.Bookmarked.Status)
	assert.False(t, page.Bookmarked.Value)

	view, err := reader.LoadChapter(ctx, book.ID, first.ID)
	require.NoError(t, err)
	prev, next := browse.Adjacent(view.Siblings, view.Chapter.ID)
	assert.Nil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, second.ID, next.ID)

	_, err = reader.Reader.UpdateProgress(ctx, book.ID, first.ID, 100)
	require.NoError(t, err)
	progress := reader.Reader.Progress(ctx, book.ID)
	require.True(t, progress.Ok())
	assert.Equal(t, 100.0, progress.Value.ProgressPercentage)

	_, err = reader.Reader.AddBookmark(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, reader.Reader.CheckBookmark(ctx, book.ID).Value)
	removed, err := reader.Reader.RemoveBookmark(ctx, book.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, reader.Reader.CheckBookmark(ctx, book.ID).Value)

	rating, err := reader.Reader.SetRating(ctx, book.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, rating.Rating)
	rating, err = reader.Reader.SetRating(ctx, book.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, rating.Rating)

	root, err := reader.Reader.AddComment(ctx, first.ID, "Loved it", "")
	require.NoError(t, err)
	_, err = author.Reader.AddComment(ctx, first.ID, "Thanks!", root.ID)
	require.NoError(t, err)
	comments, err := reader.Reader.Comments(ctx, first.ID)
	require.NoError(t, err)
	tree := browse.CommentTree(comments)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, "writer", tree[0].Replies[0].Comment.User.Username)

	err = author.Reader.DeleteComment(ctx, root.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrForbidden))
}

func TestE2E_LoginFailureSurfacesDetail(t *testing.T) {
	ctx := context.Background()
	svc, backend := newFakeBackend(t)
	backend.SeedUser("ada", "correct-horse", data.RoleReader)

	_, err := svc.Auth.Login(ctx, data.Credentials{Username: "ada", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrUnauthorized))
	assert.Equal(t, "Incorrect username or password", api.Message(err))
	assert.False(t, svc.Auth.IsAuthenticated())
}

func TestE2E_RegisterValidationDetail(t *testing.T) {
	svc, _ := newFakeBackend(t)

	_, err := svc.Auth.Register(context.Background(), data.RegisterRequest{
		Username: "ab", Email: "ab@example.com", Password: "password1",
	})
	require.Error(t, err)
	assert.Equal(t, "body.username: String should have at least 3 characters", api.Message(err))
}

func TestE2E_RefreshRotatesTokens(t *testing.T) {
	ctx := context.Background()
	svc, backend := newFakeBackend(t)
	backend.SeedUser("ada", "correct-horse", data.RoleReader)

	first, err := svc.Auth.Login(ctx, data.Credentials{Username: "ada", Password: "correct-horse"})
	require.NoError(t, err)

	second, err := svc.Auth.Refresh(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.Equal(t, second.AccessToken, svc.Auth.AccessToken())

	require.NoError(t, svc.Auth.Logout())
	_, err = svc.Auth.Refresh(ctx)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestE2E_CollectorFetchesPublished(t *testing.T) {
	ctx := context.Background()
	svc, backend := newFakeBackend(t)
	author := backend.SeedUser("writer", "password1", data.RoleAuthor)
	book := backend.SeedBook(data.Book{AuthorID: author.ID, Title: "Collected"})
	for i := 1; i <= 4; i++ {
		backend.SeedChapter(data.Chapter{
			BookID: book.ID, ChapterNumber: i, Title: "Part", IsPublished: i != 3,
			ContentData: data.SimpleContent("words words"),
		})
	}

	collector := NewCollector(svc.Chapters, nil)
	chapters, err := collector.Collect(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, chapters, 3)
	assert.Equal(t, []int{1, 2, 4}, []int{chapters[0].ChapterNumber, chapters[1].ChapterNumber, chapters[2].ChapterNumber})
	assert.Equal(t, "words words", chapters[0].Text())

	var completes int
	for len(collector.Progress()) > 0 {
		if p := <-collector.Progress(); p.Status == "complete" {
			completes++
		}
	}
	assert.Equal(t, 3, completes)
}

func TestE2E_ExportWritesEPub(t *testing.T) {
	ctx := context.Background()
	svc, backend := newFakeBackend(t)
	author := backend.SeedUser("writer", "password1", data.RoleAuthor)
	book := backend.SeedBook(data.Book{AuthorID: author.ID, Title: "Exported"})
	for i := 1; i <= 2; i++ {
		backend.SeedChapter(data.Chapter{
			BookID: book.ID, ChapterNumber: i, Title: "Part", IsPublished: true,
			ContentData: data.SimpleContent("once upon a time"),
		})
	}

	var updates atomic.Int32
	result, err := svc.Export(ctx, book.ID, t.TempDir(), func(CollectProgress) { updates.Add(1) })
	require.NoError(t, err)
	assert.FileExists(t, result.Path)
	assert.Equal(t, 2, result.Chapters)
	assert.Equal(t, "Exported", result.Book.Title)
	assert.Positive(t, updates.Load())
}

func TestE2E_ExportUnknownBook(t *testing.T) {
	svc, _ := newFakeBackend(t)
	_, err := svc.Export(context.Background(), "404", t.TempDir(), nil)
	assert.ErrorIs(t, err, api.ErrNotFound)
}

package cmd

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/config"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/fakeapi"
	"github.com/ethan2004g/interactive-web-novels/pkg/prefs"
	"github.com/ethan2004g/interactive-web-novels/pkg/services"
	"github.com/ethan2004g/interactive-web-novels/pkg/session"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRuntime(t *testing.T) (*runtime, *fakeapi.Server) {
	t.Helper()
	backend := fakeapi.New()
	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL+fakeapi.Prefix, data.NewMemoryTokens())
	require.NoError(t, err)
	svc := services.New(client, zap.NewNop())

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	r := &runtime{
		cfg:      cfg,
		logger:   zap.NewNop(),
		services: svc,
		session:  session.New(svc.Auth, svc.Users, nil, zap.NewNop()),
		prefs:    prefs.Open(filepath.Join(t.TempDir(), "prefs.toml")),
	}
	rt = r
	t.Cleanup(func() { rt = nil })
	return r, backend
}

// run resets the flags of c, sets the given ones and calls RunE directly.
func run(t *testing.T, c *cobra.Command, args []string, flags map[string]string) error {
	t.Helper()
	resetFlags(c)
	t.Cleanup(func() { resetFlags(c) })
	c.SetContext(context.Background())
	for name, value := range flags {
		require.NoError(t, c.Flags().Set(name, value), "flag %s", name)
	}
	return c.RunE(c, args)
}

func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

func TestFiltersFromFlags(t *testing.T) {
	testRuntime(t)
	resetFlags(booksCmd)
	t.Cleanup(func() { resetFlags(booksCmd) })
	c := &cobra.Command{Use: "books"}
	c.Flags().AddFlagSet(booksCmd.Flags())
	require.NoError(t, c.Flags().Set("query", "?sort_by=rating&order=desc&page=3"))
	require.NoError(t, c.Flags().Set("genre", "Fantasy"))

	f, err := filtersFromFlags(c)
	require.NoError(t, err)
	assert.Equal(t, "Fantasy", f.Genre)
	assert.Equal(t, "rating", f.SortBy)
	assert.Equal(t, "desc", f.Order)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, config.Default().PageSize, f.PageSize)
}

func TestFiltersFromFlagsFeatured(t *testing.T) {
	testRuntime(t)
	resetFlags(booksCmd)
	t.Cleanup(func() { resetFlags(booksCmd) })
	c := &cobra.Command{Use: "books"}
	c.Flags().AddFlagSet(booksCmd.Flags())
	require.NoError(t, c.Flags().Set("featured", "true"))
	require.NoError(t, c.Flags().Set("page-size", "5"))

	f, err := filtersFromFlags(c)
	require.NoError(t, err)
	assert.Equal(t, data.StatusCompleted, f.Status)
	assert.Equal(t, "rating", f.SortBy)
	assert.Equal(t, 5, f.PageSize)
}

func TestBookInputFromFlagsOnlyChanged(t *testing.T) {
	c := &cobra.Command{Use: "update"}
	addBookFlags(c.Flags())
	require.NoError(t, c.Flags().Set("title", "Renamed"))
	require.NoError(t, c.Flags().Set("tags", "sea, ships,,storm"))

	in := bookInputFromFlags(c.Flags())
	assert.Equal(t, "Renamed", in.Title)
	assert.Equal(t, []string{"sea", "ships", "storm"}, in.Tags)
	assert.Empty(t, in.Description)
	assert.Empty(t, in.Status)
}

func TestChapterInputPublishFlags(t *testing.T) {
	c := &cobra.Command{Use: "create"}
	addChapterFlags(c.Flags())
	require.NoError(t, c.Flags().Set("title", "One"))
	require.NoError(t, c.Flags().Set("text", "Once upon a time."))
	require.NoError(t, c.Flags().Set("draft", "true"))

	in, err := chapterInputFromFlags(c.Flags())
	require.NoError(t, err)
	assert.Equal(t, "One", in.Title)
	assert.Equal(t, data.ContentSimple, in.ContentType)
	require.NotNil(t, in.IsPublished)
	assert.False(t, *in.IsPublished)
}

func TestAuthorCommandsAgainstBackend(t *testing.T) {
	r, backend := testRuntime(t)
	ctx := context.Background()
	backend.SeedUser("writer", "password1", data.RoleAuthor)
	require.NoError(t, r.session.Login(ctx, data.Credentials{Username: "writer", Password: "password1"}))

	require.NoError(t, run(t, myBooksCreateCmd, nil, map[string]string{
		"title": "Harbor Lights", "genre": "Romance", "status": "ongoing",
	}))
	mine, err := r.services.Books.MyBooks(ctx, browse.Filters{})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	book := mine.Items[0]
	assert.Equal(t, data.StatusOngoing, book.Status)

	require.NoError(t, run(t, chaptersCreateCmd, []string{book.ID.String()}, map[string]string{
		"title": "Arrival", "text": "The ferry was late.", "publish": "true",
	}))
	require.NoError(t, run(t, chaptersCreateCmd, []string{book.ID.String()}, map[string]string{
		"title": "Departure", "text": "The ferry was early.",
	}))

	published, err := r.services.Chapters.Published(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, "Arrival", published[0].Title)

	all, err := r.services.Chapters.List(ctx, book.ID, services.ChapterFilters{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	ordered := sortByNumber(all)

	require.NoError(t, run(t, chaptersReorderCmd,
		[]string{book.ID.String(), ordered[1].ID.String(), ordered[0].ID.String()}, nil))
	all, err = r.services.Chapters.List(ctx, book.ID, services.ChapterFilters{})
	require.NoError(t, err)
	assert.Equal(t, "Departure", sortByNumber(all)[0].Title)
}

func TestReaderCommandsRequireLogin(t *testing.T) {
	testRuntime(t)
	err := run(t, bookmarksCmd, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestReaderCannotManageBooks(t *testing.T) {
	r, backend := testRuntime(t)
	backend.SeedUser("reader", "password1", data.RoleReader)
	require.NoError(t, r.session.Login(context.Background(), data.Credentials{Username: "reader", Password: "password1"}))

	err := run(t, myBooksCreateCmd, nil, map[string]string{"title": "Nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only authors")
}

func TestRateAndBookmark(t *testing.T) {
	r, backend := testRuntime(t)
	ctx := context.Background()
	book := backend.SeedBook(data.Book{Title: "Short Tales"})
	backend.SeedUser("reader", "password1", data.RoleReader)
	require.NoError(t, r.session.Login(ctx, data.Credentials{Username: "reader", Password: "password1"}))

	require.NoError(t, run(t, rateCmd, []string{book.ID.String(), "4"}, nil))
	mine := r.services.Reader.MyRating(ctx, book.ID)
	require.Equal(t, services.Found, mine.Status)
	assert.Equal(t, 4, mine.Value.Rating)

	assert.Error(t, run(t, rateCmd, []string{book.ID.String(), "six"}, nil))

	require.NoError(t, run(t, bookmarksAddCmd, []string{book.ID.String()}, nil))
	check := r.services.Reader.CheckBookmark(ctx, book.ID)
	require.Equal(t, services.Found, check.Status)
	assert.True(t, check.Value)

	require.NoError(t, run(t, bookmarksRemoveCmd, []string{book.ID.String()}, nil))
	check = r.services.Reader.CheckBookmark(ctx, book.ID)
	assert.False(t, check.Value)
}

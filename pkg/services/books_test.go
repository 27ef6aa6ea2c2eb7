package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBooksNormalizesEnvelope(t *testing.T) {
	svc, _ := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/books" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("page_size"); got != "12" {
			t.Errorf("page_size = %q, want 12", got)
		}
		_, _ = w.Write([]byte(`{
			"books": [{"id": 1, "title": "A"}, {"id": 2, "title": "B"}, {"id": 3, "title": "C"}, {"id": 4, "title": "D"}, {"id": 5, "title": "E"}],
			"total": 5, "page": 1, "page_size": 12, "total_pages": 1
		}`))
	}))

	page, err := svc.Books.List(context.Background(), browse.DefaultFilters())
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 12, page.Size)
	assert.Equal(t, 1, page.Pages)
	assert.Equal(t, "A", page.Items[0].Title)
}

func TestListBooksEmptyIsNotNil(t *testing.T) {
	svc, _ := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"books": null, "total": 0, "page": 1, "page_size": 12, "total_pages": 0}`))
	}))

	page, err := svc.Books.List(context.Background(), browse.DefaultFilters())
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 0, page.Pages)
}

func TestMyBooksFiltersClientSide(t *testing.T) {
	svc, _ := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/books/my-books" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("expected no query, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[
			{"id": 1, "title": "One", "status": "draft"},
			{"id": 2, "title": "Two", "status": "ongoing"},
			{"id": 3, "title": "Three", "status": "completed"}
		]`))
	}))

	page, err := svc.Books.MyBooks(context.Background(), browse.Filters{Status: data.StatusOngoing})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, data.ID("2"), page.Items[0].ID)
}

func TestChapterListUnwraps(t *testing.T) {
	svc, _ := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/books/7/chapters" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("published_only") != "true" {
			t.Errorf("published_only = %q", r.URL.Query().Get("published_only"))
		}
		_, _ = w.Write([]byte(`{"chapters": [{"id": 1, "chapter_number": 1, "is_published": true}], "total": 1}`))
	}))

	chapters, err := svc.Chapters.List(context.Background(), "7", ChapterFilters{PublishedOnly: true})
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	assert.Equal(t, data.ID("1"), chapters[0].ID)
}

func TestCreateBookValidatesBeforeRequest(t *testing.T) {
	called := false
	svc, _ := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := svc.Books.Create(context.Background(), data.BookInput{Title: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Title is required", err.Error())
	assert.False(t, called)
}

func TestCreateChapterRequiresContent(t *testing.T) {
	svc, _ := newTestServices(t, http.NotFoundHandler())

	_, err := svc.Chapters.Create(context.Background(), "1", data.ChapterInput{Title: "One"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Chapters.Create(context.Background(), "1", data.ChapterInput{ContentData: data.SimpleContent("text")})
	assert.ErrorIs(t, err, ErrValidation)
}

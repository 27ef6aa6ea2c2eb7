package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupVariants(t *testing.T) {
	svc, _ := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/books/1/ratings/me":
			_, _ = w.Write([]byte(`{"id": 9, "book_id": 1, "rating": 4}`))
		case "/books/2/ratings/me":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail": "Rating not found"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	ctx := context.Background()

	ok := svc.Reader.MyRating(ctx, "1")
	assert.Equal(t, Found, ok.Status)
	assert.True(t, ok.Ok())
	assert.Equal(t, 4, ok.Value.Rating)

	missing := svc.Reader.MyRating(ctx, "2")
	assert.Equal(t, NotFound, missing.Status)
	assert.NoError(t, missing.Err)

	failed := svc.Reader.MyRating(ctx, "3")
	assert.Equal(t, Failed, failed.Status)
	assert.Error(t, failed.Err)
	assert.False(t, failed.Ok())
}

func TestCheckBookmarkReadsFlag(t *testing.T) {
	svc, _ := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bookmarks/check/5" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"bookmarked": true}`))
	}))

	got := svc.Reader.CheckBookmark(context.Background(), "5")
	assert.True(t, got.Ok())
	assert.True(t, got.Value)

	other := svc.Reader.CheckBookmark(context.Background(), "6")
	assert.Equal(t, NotFound, other.Status)
	assert.False(t, other.Value)
}

func TestLookupStatusString(t *testing.T) {
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "found", Found.String())
	assert.Equal(t, "not found", NotFound.String())
	assert.Equal(t, "failed", Failed.String())
}

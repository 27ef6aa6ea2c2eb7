package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chapterBackend(t *testing.T, failChapter string, gets *atomic.Int32) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/books/9/chapters":
			_, _ = w.Write([]byte(`{"chapters": [
				{"id": 13, "book_id": 9, "chapter_number": 3, "title": "C", "is_published": true},
				{"id": 11, "book_id": 9, "chapter_number": 1, "title": "A", "is_published": true},
				{"id": 12, "book_id": 9, "chapter_number": 2, "title": "B", "is_published": true}
			], "total": 3}`))
		case strings.HasPrefix(r.URL.Path, "/books/9/chapters/"):
			gets.Add(1)
			id := strings.TrimPrefix(r.URL.Path, "/books/9/chapters/")
			if id == failChapter {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"detail": "boom"}`))
				return
			}
			fmt.Fprintf(w, `{"id": %s, "book_id": 9, "chapter_number": %d, "is_published": true, "content_type": "simple", "content_data": {"text": "body %s"}}`, id, int(id[1]-'0'), id)
		default:
			http.NotFound(w, r)
		}
	})
}

func TestCollectorFetchesInOrder(t *testing.T) {
	var gets atomic.Int32
	svc, _ := newTestServices(t, chapterBackend(t, "", &gets))

	collector := NewCollector(svc.Chapters, nil)
	chapters, err := collector.Collect(context.Background(), "9")
	require.NoError(t, err)
	require.Len(t, chapters, 3)

	for i, ch := range chapters {
		assert.Equal(t, i+1, ch.ChapterNumber)
		assert.Equal(t, fmt.Sprintf("body 1%d", i+1), ch.Text())
	}
	assert.Equal(t, int32(3), gets.Load())

	var complete int
	for len(collector.Progress()) > 0 {
		p := <-collector.Progress()
		if p.Status == "complete" {
			complete++
			assert.Equal(t, 3, p.Total)
		}
	}
	assert.Equal(t, 3, complete)
}

func TestCollectorReportsChapterFailure(t *testing.T) {
	var gets atomic.Int32
	svc, _ := newTestServices(t, chapterBackend(t, "12", &gets))

	collector := NewCollector(svc.Chapters, nil)
	_, err := collector.Collect(context.Background(), "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chapter 2")

	var sawError bool
	for len(collector.Progress()) > 0 {
		if p := <-collector.Progress(); p.Status == "error" {
			sawError = true
			assert.Error(t, p.Err)
		}
	}
	assert.True(t, sawError)
}

func TestCollectorNoPublishedChapters(t *testing.T) {
	svc, _ := newTestServices(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chapters": [], "total": 0}`))
	}))

	_, err := NewCollector(svc.Chapters, nil).Collect(context.Background(), "9")
	assert.Error(t, err)
}

func TestCollectorProgressDropsWhenFull(t *testing.T) {
	c := NewCollector(nil, nil)
	for i := 0; i < cap(c.progress)+10; i++ {
		c.send(CollectProgress{Done: i})
	}
	assert.Len(t, c.progress, cap(c.progress))
}

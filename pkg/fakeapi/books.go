package fakeapi

import (
	"net/http"
	"sort"

	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/gin-gonic/gin"
)

// SeedBook stores a copy of b with a fresh id and returns it.
func (s *Server) SeedBook(b data.Book) data.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.newID()
	if b.Status == "" {
		b.Status = data.StatusOngoing
	}
	if b.CreatedAt == "" {
		b.CreatedAt = s.timestamp()
	}
	s.books[b.ID] = &b
	return b
}

// SeedChapter stores a copy of ch with a fresh id and returns it.
func (s *Server) SeedChapter(ch data.Chapter) data.Chapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch.ID = s.newID()
	if ch.ContentType == "" {
		ch.ContentType = data.ContentSimple
	}
	ch.WordCount = wordCount(ch)
	ch.CreatedAt = s.timestamp()
	s.chapters[ch.ID] = &ch
	return ch
}

func (s *Server) listBooks(c *gin.Context) {
	filters := browse.ParseFilters(c.Request.URL.Query())
	if c.Query("page_size") == "" {
		filters.PageSize = 20
	}

	s.mu.Lock()
	all := make([]data.Book, 0, len(s.books))
	for _, b := range s.books {
		all = append(all, *b)
	}
	s.mu.Unlock()
	sortByID(all, bookID)

	page := browse.FilterBooks(all, filters)
	c.JSON(http.StatusOK, gin.H{
		"books":       page.Items,
		"total":       page.Total,
		"page":        page.Page,
		"page_size":   page.Size,
		"total_pages": page.Pages,
	})
}

func (s *Server) myBooks(c *gin.Context) {
	user := currentUser(c)
	s.mu.Lock()
	out := []data.Book{}
	for _, b := range s.books {
		if b.AuthorID == user.ID {
			out = append(out, *b)
		}
	}
	s.mu.Unlock()
	sortByID(out, bookID)
	c.JSON(http.StatusOK, out)
}

func (s *Server) getBook(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[data.ID(c.Param("id"))]
	if !ok {
		detail(c, http.StatusNotFound, "Book not found")
		return
	}
	b.TotalViews++
	c.JSON(http.StatusOK, b)
}

func (s *Server) bookStats(c *gin.Context) {
	id := data.ID(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		detail(c, http.StatusNotFound, "Book not found")
		return
	}
	stats := data.BookStats{
		TotalViews:    b.TotalViews,
		TotalLikes:    b.TotalLikes,
		TotalRatings:  b.TotalRatings,
		AverageRating: b.AverageRating,
	}
	for _, bm := range s.bookmarks {
		if bm.BookID == id {
			stats.TotalBookmarks++
		}
	}
	for _, cm := range s.comments {
		if ch, ok := s.chapters[cm.ChapterID]; ok && ch.BookID == id {
			stats.TotalComments++
		}
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) createBook(c *gin.Context) {
	user := currentUser(c)
	if user.Role != data.RoleAuthor && user.Role != data.RoleAdmin {
		detail(c, http.StatusForbidden, "Only authors can create books")
		return
	}
	var in data.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Title == "" {
		validation(c, "title", "Field required")
		return
	}
	book := s.SeedBook(data.Book{
		AuthorID:      user.ID,
		Title:         in.Title,
		Description:   in.Description,
		CoverImageURL: in.CoverImageURL,
		Genre:         in.Genre,
		Tags:          in.Tags,
		Status:        in.Status,
	})
	c.JSON(http.StatusCreated, book)
}

// ownedBook must be called with mu held. It writes the error response when
// the book is missing or owned by someone else.
func (s *Server) ownedBook(c *gin.Context, id data.ID) *data.Book {
	b, ok := s.books[id]
	if !ok {
		detail(c, http.StatusNotFound, "Book not found")
		return nil
	}
	user := currentUser(c)
	if b.AuthorID != user.ID && user.Role != data.RoleAdmin {
		detail(c, http.StatusForbidden, "Not enough permissions")
		return nil
	}
	return b
}

func (s *Server) updateBook(c *gin.Context) {
	var in data.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.ownedBook(c, data.ID(c.Param("id")))
	if b == nil {
		return
	}
	if in.Title != "" {
		b.Title = in.Title
	}
	if in.Description != "" {
		b.Description = in.Description
	}
	if in.CoverImageURL != "" {
		b.CoverImageURL = in.CoverImageURL
	}
	if in.Genre != "" {
		b.Genre = in.Genre
	}
	if in.Tags != nil {
		b.Tags = in.Tags
	}
	if in.Status != "" {
		b.Status = in.Status
	}
	b.UpdatedAt = s.timestamp()
	c.JSON(http.StatusOK, b)
}

func (s *Server) deleteBook(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.ownedBook(c, data.ID(c.Param("id")))
	if b == nil {
		return
	}
	delete(s.books, b.ID)
	for id, ch := range s.chapters {
		if ch.BookID == b.ID {
			delete(s.chapters, id)
		}
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) likeBook(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[data.ID(c.Param("id"))]
	if !ok {
		detail(c, http.StatusNotFound, "Book not found")
		return
	}
	b.TotalLikes++
	c.JSON(http.StatusOK, b)
}

func sortByID[T any](items []T, id func(T) data.ID) {
	sort.SliceStable(items, func(i, j int) bool { return atoi(id(items[i])) < atoi(id(items[j])) })
}

func bookID(b data.Book) data.ID { return b.ID }

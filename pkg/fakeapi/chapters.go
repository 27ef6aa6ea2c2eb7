package fakeapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/gin-gonic/gin"
)

func (s *Server) bookChapters(bookID data.ID, publishedOnly bool) []data.Chapter {
	out := []data.Chapter{}
	for _, ch := range s.chapters {
		if ch.BookID != bookID || (publishedOnly && !ch.IsPublished) {
			continue
		}
		out = append(out, *ch)
	}
	sortByID(out, func(ch data.Chapter) data.ID { return ch.ID })
	return out
}

func (s *Server) listChapters(c *gin.Context) {
	bookID := data.ID(c.Param("id"))
	publishedOnly, _ := strconv.ParseBool(c.Query("published_only"))
	contentType := data.ContentType(c.Query("content_type"))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[bookID]; !ok {
		detail(c, http.StatusNotFound, "Book not found")
		return
	}
	chapters := []data.Chapter{}
	for _, ch := range s.bookChapters(bookID, publishedOnly) {
		if contentType == "" || ch.ContentType == contentType {
			chapters = append(chapters, ch)
		}
	}
	c.JSON(http.StatusOK, gin.H{"chapters": chapters, "total": len(chapters)})
}

func (s *Server) getChapter(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.chapters[data.ID(c.Param("cid"))]
	if !ok || ch.BookID != data.ID(c.Param("id")) {
		detail(c, http.StatusNotFound, "Chapter not found")
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (s *Server) createChapter(c *gin.Context) {
	var in data.ChapterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if in.Title == "" {
		validation(c, "title", "Field required")
		return
	}
	if in.ChapterNumber < 1 {
		validation(c, "chapter_number", "Input should be greater than or equal to 1")
		return
	}

	s.mu.Lock()
	b := s.ownedBook(c, data.ID(c.Param("id")))
	s.mu.Unlock()
	if b == nil {
		return
	}
	ch := data.Chapter{
		BookID:        b.ID,
		ChapterNumber: in.ChapterNumber,
		Title:         in.Title,
		ContentType:   in.ContentType,
		ContentData:   in.ContentData,
	}
	if in.IsPublished != nil && *in.IsPublished {
		ch.IsPublished = true
		ch.PublishedAt = s.timestamp()
	}
	c.JSON(http.StatusCreated, s.SeedChapter(ch))
}

func (s *Server) updateChapter(c *gin.Context) {
	var in data.ChapterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownedBook(c, data.ID(c.Param("id"))) == nil {
		return
	}
	ch, ok := s.chapters[data.ID(c.Param("cid"))]
	if !ok {
		detail(c, http.StatusNotFound, "Chapter not found")
		return
	}
	if in.Title != "" {
		ch.Title = in.Title
	}
	if in.ChapterNumber > 0 {
		ch.ChapterNumber = in.ChapterNumber
	}
	if in.ContentType != "" {
		ch.ContentType = in.ContentType
	}
	if in.ContentData != nil {
		ch.ContentData = in.ContentData
		ch.WordCount = wordCount(*ch)
	}
	if in.IsPublished != nil {
		ch.IsPublished = *in.IsPublished
		if ch.IsPublished && ch.PublishedAt == "" {
			ch.PublishedAt = s.timestamp()
		}
	}
	ch.UpdatedAt = s.timestamp()
	c.JSON(http.StatusOK, ch)
}

func (s *Server) deleteChapter(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownedBook(c, data.ID(c.Param("id"))) == nil {
		return
	}
	id := data.ID(c.Param("cid"))
	if _, ok := s.chapters[id]; !ok {
		detail(c, http.StatusNotFound, "Chapter not found")
		return
	}
	delete(s.chapters, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) reorderChapters(c *gin.Context) {
	var req struct {
		ChapterIDs []data.ID `json:"chapter_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.ownedBook(c, data.ID(c.Param("id")))
	if b == nil {
		return
	}
	for i, id := range req.ChapterIDs {
		ch, ok := s.chapters[id]
		if !ok || ch.BookID != b.ID {
			detail(c, http.StatusBadRequest, "Chapter "+id.String()+" does not belong to this book")
			return
		}
		ch.ChapterNumber = i + 1
	}
	chapters := s.bookChapters(b.ID, false)
	c.JSON(http.StatusOK, gin.H{"chapters": chapters, "total": len(chapters)})
}

func wordCount(ch data.Chapter) int {
	return len(strings.Fields(ch.Text()))
}

func atoi(id data.ID) int {
	n, _ := strconv.Atoi(id.String())
	return n
}

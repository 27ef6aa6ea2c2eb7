package fakeapi

import (
	"net/http"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/gin-gonic/gin"
)

func (s *Server) listBookmarks(c *gin.Context) {
	user := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []data.Bookmark{}
	for _, bm := range s.bookmarks {
		if bm.UserID == user.ID {
			item := *bm
			if b, ok := s.books[bm.BookID]; ok {
				book := *b
				item.Book = &book
			}
			out = append(out, item)
		}
	}
	sortByID(out, func(b data.Bookmark) data.ID { return b.ID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) addBookmark(c *gin.Context) {
	var req struct {
		BookID data.ID `json:"book_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	user := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[req.BookID]; !ok {
		detail(c, http.StatusNotFound, "Book not found")
		return
	}
	for _, bm := range s.bookmarks {
		if bm.UserID == user.ID && bm.BookID == req.BookID {
			c.JSON(http.StatusCreated, bm)
			return
		}
	}
	bm := &data.Bookmark{ID: s.newID(), UserID: user.ID, BookID: req.BookID, CreatedAt: s.timestamp()}
	s.bookmarks[bm.ID] = bm
	c.JSON(http.StatusCreated, bm)
}

func (s *Server) deleteBookmark(c *gin.Context) {
	user := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	bm, ok := s.bookmarks[data.ID(c.Param("id"))]
	if !ok || bm.UserID != user.ID {
		detail(c, http.StatusNotFound, "Bookmark not found")
		return
	}
	delete(s.bookmarks, bm.ID)
	c.Status(http.StatusNoContent)
}

func (s *Server) checkBookmark(c *gin.Context) {
	user := currentUser(c)
	bookID := data.ID(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, bm := range s.bookmarks {
		if bm.UserID == user.ID && bm.BookID == bookID {
			c.JSON(http.StatusOK, gin.H{"bookmarked": true})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"bookmarked": false})
}

func (s *Server) listRatings(c *gin.Context) {
	bookID := data.ID(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []data.Rating{}
	for _, r := range s.ratings {
		if r.BookID == bookID {
			out = append(out, *r)
		}
	}
	sortByID(out, func(r data.Rating) data.ID { return r.ID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) myRating(c *gin.Context) {
	user := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.findRating(user.ID, data.ID(c.Param("id"))); r != nil {
		c.JSON(http.StatusOK, r)
		return
	}
	detail(c, http.StatusNotFound, "Rating not found")
}

// findRating must be called with mu held.
func (s *Server) findRating(userID, bookID data.ID) *data.Rating {
	for _, r := range s.ratings {
		if r.UserID == userID && r.BookID == bookID {
			return r
		}
	}
	return nil
}

func (s *Server) rate(c *gin.Context) {
	var req struct {
		Rating int `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		validation(c, "rating", "Input should be less than or equal to 5")
		return
	}
	user := currentUser(c)
	bookID := data.ID(c.Param("id"))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[bookID]; !ok {
		detail(c, http.StatusNotFound, "Book not found")
		return
	}
	if s.findRating(user.ID, bookID) != nil {
		detail(c, http.StatusBadRequest, "You have already rated this book")
		return
	}
	r := &data.Rating{ID: s.newID(), UserID: user.ID, BookID: bookID, Rating: req.Rating, CreatedAt: s.timestamp()}
	s.ratings[r.ID] = r
	s.recomputeRating(bookID)
	c.JSON(http.StatusCreated, r)
}

func (s *Server) updateRating(c *gin.Context) {
	var req struct {
		Rating int `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Rating < 1 || req.Rating > 5 {
		validation(c, "rating", "Input should be between 1 and 5")
		return
	}
	user := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.ratings[data.ID(c.Param("rid"))]
	if !ok || r.UserID != user.ID {
		detail(c, http.StatusNotFound, "Rating not found")
		return
	}
	r.Rating = req.Rating
	r.UpdatedAt = s.timestamp()
	s.recomputeRating(r.BookID)
	c.JSON(http.StatusOK, r)
}

func (s *Server) deleteRating(c *gin.Context) {
	user := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.ratings[data.ID(c.Param("rid"))]
	if !ok || r.UserID != user.ID {
		detail(c, http.StatusNotFound, "Rating not found")
		return
	}
	delete(s.ratings, r.ID)
	s.recomputeRating(r.BookID)
	c.Status(http.StatusNoContent)
}

// recomputeRating must be called with mu held.
func (s *Server) recomputeRating(bookID data.ID) {
	b, ok := s.books[bookID]
	if !ok {
		return
	}
	sum, n := 0, 0
	for _, r := range s.ratings {
		if r.BookID == bookID {
			sum += r.Rating
			n++
		}
	}
	b.TotalRatings = n
	b.AverageRating = 0
	if n > 0 {
		b.AverageRating = float64(sum) / float64(n)
	}
}

func (s *Server) listComments(c *gin.Context) {
	chapterID := data.ID(c.Param("cid"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []data.Comment{}
	for _, cm := range s.comments {
		if cm.ChapterID == chapterID {
			out = append(out, *cm)
		}
	}
	sortByID(out, func(cm data.Comment) data.ID { return cm.ID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) addComment(c *gin.Context) {
	var req struct {
		Content         string  `json:"content"`
		ParentCommentID data.ID `json:"parent_comment_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Content == "" {
		validation(c, "content", "String should have at least 1 character")
		return
	}
	user := currentUser(c)
	chapterID := data.ID(c.Param("cid"))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chapters[chapterID]; !ok {
		detail(c, http.StatusNotFound, "Chapter not found")
		return
	}
	if req.ParentCommentID != "" {
		if _, ok := s.comments[req.ParentCommentID]; !ok {
			detail(c, http.StatusNotFound, "Parent comment not found")
			return
		}
	}
	cm := &data.Comment{
		ID:              s.newID(),
		UserID:          user.ID,
		ChapterID:       chapterID,
		ParentCommentID: req.ParentCommentID,
		Content:         req.Content,
		User:            &data.CommentAuthor{ID: user.ID, Username: user.Username},
		CreatedAt:       s.timestamp(),
	}
	s.comments[cm.ID] = cm
	c.JSON(http.StatusCreated, cm)
}

func (s *Server) updateComment(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		validation(c, "content", "String should have at least 1 character")
		return
	}
	user := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	cm, ok := s.comments[data.ID(c.Param("id"))]
	if !ok {
		detail(c, http.StatusNotFound, "Comment not found")
		return
	}
	if cm.UserID != user.ID {
		detail(c, http.StatusForbidden, "Not enough permissions")
		return
	}
	cm.Content = req.Content
	cm.UpdatedAt = s.timestamp()
	c.JSON(http.StatusOK, cm)
}

func (s *Server) deleteComment(c *gin.Context) {
	user := currentUser(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	cm, ok := s.comments[data.ID(c.Param("id"))]
	if !ok {
		detail(c, http.StatusNotFound, "Comment not found")
		return
	}
	if cm.UserID != user.ID && user.Role != data.RoleAdmin {
		detail(c, http.StatusForbidden, "Not enough permissions")
		return
	}
	delete(s.comments, cm.ID)
	c.Status(http.StatusNoContent)
}

func (s *Server) getProgress(c *gin.Context) {
	user := currentUser(c)
	bookID := data.ID(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.progress {
		if p.UserID == user.ID && p.BookID == bookID {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	detail(c, http.StatusNotFound, "Reading progress not found")
}

func (s *Server) updateProgress(c *gin.Context) {
	var req struct {
		ProgressPercentage float64 `json:"progress_percentage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	user := currentUser(c)
	bookID := data.ID(c.Param("id"))
	chapterID := data.ID(c.Param("cid"))

	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.chapters[chapterID]
	if !ok || ch.BookID != bookID {
		detail(c, http.StatusNotFound, "Chapter not found")
		return
	}
	var rec *data.ReadingProgress
	for _, p := range s.progress {
		if p.UserID == user.ID && p.BookID == bookID {
			rec = p
			break
		}
	}
	if rec == nil {
		rec = &data.ReadingProgress{ID: s.newID(), UserID: user.ID, BookID: bookID}
		s.progress[rec.ID] = rec
	}
	rec.ChapterID = chapterID
	rec.ProgressPercentage = req.ProgressPercentage
	rec.LastReadAt = s.timestamp()
	c.JSON(http.StatusOK, rec)
}

// ProgressFor returns the stored progress of a user on a book, for tests.
func (s *Server) ProgressFor(userID, bookID data.ID) (data.ReadingProgress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.progress {
		if p.UserID == userID && p.BookID == bookID {
			return *p, true
		}
	}
	return data.ReadingProgress{}, false
}

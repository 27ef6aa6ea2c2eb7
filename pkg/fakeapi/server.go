// Package fakeapi is an in-memory stand-in for the novels REST backend. It
// serves the same routes and response shapes and is used by end-to-end tests
// and the "novels dev-server" command.
package fakeapi

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxUserKey = "fakeapi_user"
	Prefix     = "/api/v1"
)

type userRecord struct {
	data.User
	passwordHash []byte
}

type Server struct {
	mu sync.Mutex

	nextID    int
	users     map[data.ID]*userRecord
	books     map[data.ID]*data.Book
	chapters  map[data.ID]*data.Chapter
	bookmarks map[data.ID]*data.Bookmark
	ratings   map[data.ID]*data.Rating
	comments  map[data.ID]*data.Comment
	progress  map[data.ID]*data.ReadingProgress

	tokens *tokenIssuer
	engine *gin.Engine
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Server)

// WithLogger logs every request at info level.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func New(opts ...Option) *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		users:     make(map[data.ID]*userRecord),
		books:     make(map[data.ID]*data.Book),
		chapters:  make(map[data.ID]*data.Chapter),
		bookmarks: make(map[data.ID]*data.Bookmark),
		ratings:   make(map[data.ID]*data.Rating),
		comments:  make(map[data.ID]*data.Comment),
		progress:  make(map[data.ID]*data.ReadingProgress),
		tokens:    newTokenIssuer([]byte("fakeapi-signing-key"), 30*time.Minute),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	if s.logger != nil {
		s.engine.Use(s.logRequests)
	}
	s.registerRoutes(s.engine.Group(Prefix))
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) registerRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", s.login)
	rg.POST("/auth/register", s.register)
	rg.POST("/auth/refresh", s.refresh)

	rg.GET("/books", s.listBooks)
	rg.GET("/books/:id", s.getBook)
	rg.GET("/books/:id/stats", s.bookStats)
	rg.GET("/books/:id/chapters", s.listChapters)
	rg.GET("/books/:id/chapters/:cid", s.getChapter)
	rg.GET("/books/:id/ratings", s.listRatings)
	rg.GET("/chapters/:cid/comments", s.listComments)
	rg.GET("/users/:id", s.getUser)

	authed := rg.Group("", s.requireUser)
	authed.GET("/users/me", s.me)
	authed.PUT("/users/me", s.updateMe)

	authed.GET("/books/my-books", s.myBooks)
	authed.POST("/books", s.createBook)
	authed.PUT("/books/:id", s.updateBook)
	authed.DELETE("/books/:id", s.deleteBook)
	authed.POST("/books/:id/like", s.likeBook)

	authed.POST("/books/:id/chapters", s.createChapter)
	authed.POST("/books/:id/chapters/reorder", s.reorderChapters)
	authed.PUT("/books/:id/chapters/:cid", s.updateChapter)
	authed.DELETE("/books/:id/chapters/:cid", s.deleteChapter)

	authed.GET("/bookmarks", s.listBookmarks)
	authed.POST("/bookmarks", s.addBookmark)
	authed.DELETE("/bookmarks/:id", s.deleteBookmark)
	authed.GET("/bookmarks/check/:id", s.checkBookmark)

	authed.GET("/books/:id/ratings/me", s.myRating)
	authed.POST("/books/:id/ratings", s.rate)
	authed.PUT("/books/:id/ratings/:rid", s.updateRating)
	authed.DELETE("/books/:id/ratings/:rid", s.deleteRating)

	authed.POST("/chapters/:cid/comments", s.addComment)
	authed.PUT("/comments/:id", s.updateComment)
	authed.DELETE("/comments/:id", s.deleteComment)

	authed.GET("/books/:id/progress", s.getProgress)
	authed.POST("/books/:id/chapters/:cid/progress", s.updateProgress)
}

func (s *Server) logRequests(c *gin.Context) {
	start := s.now()
	c.Next()
	s.logger.Info("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("took", s.now().Sub(start)),
		zap.String("request_id", c.GetHeader("X-Request-ID")))
}

func (s *Server) requireUser(c *gin.Context) {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(strings.ToLower(h), "bearer ") {
		detail(c, http.StatusUnauthorized, "Not authenticated")
		c.Abort()
		return
	}
	userID, err := s.tokens.parse(strings.TrimSpace(h[len("Bearer "):]), "access")
	if err != nil {
		detail(c, http.StatusUnauthorized, "Could not validate credentials")
		c.Abort()
		return
	}

	s.mu.Lock()
	user, ok := s.users[userID]
	s.mu.Unlock()
	if !ok {
		detail(c, http.StatusUnauthorized, "User not found")
		c.Abort()
		return
	}
	c.Set(ctxUserKey, user.User)
	c.Next()
}

func currentUser(c *gin.Context) data.User {
	v, _ := c.Get(ctxUserKey)
	u, _ := v.(data.User)
	return u
}

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

type validationItem struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

func validation(c *gin.Context, field, msg string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []validationItem{
		{Loc: []any{"body", field}, Msg: msg, Type: "value_error"},
	}})
}

// newID must be called with mu held.
func (s *Server) newID() data.ID {
	s.nextID++
	return data.ID(strconv.Itoa(s.nextID))
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05.999999")
}

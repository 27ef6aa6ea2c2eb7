package fakeapi

import (
	"net/http"
	"strings"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// The fake backend only needs hashes to be real, not slow.
const hashCost = bcrypt.MinCost

// SeedUser adds an account and returns it.
func (s *Server) SeedUser(username, password string, role data.Role) data.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.addUser(username, username+"@example.com", password, role)
	if err != nil {
		panic(err)
	}
	return u
}

// addUser must be called with mu held.
func (s *Server) addUser(username, email, password string, role data.Role) (data.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return data.User{}, err
	}
	id := s.newID()
	u := &userRecord{
		User: data.User{
			ID:        id,
			Username:  username,
			Email:     email,
			Role:      role,
			CreatedAt: s.timestamp(),
		},
		passwordHash: hash,
	}
	s.users[id] = u
	return u.User, nil
}

func (s *Server) findUser(username string) *userRecord {
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u
		}
	}
	return nil
}

func (s *Server) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	s.mu.Lock()
	u := s.findUser(username)
	s.mu.Unlock()
	if u == nil || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		detail(c, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	tokens, err := s.tokens.issue(u.ID)
	if err != nil {
		detail(c, http.StatusInternalServerError, "token error")
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// register answers with the created user, not tokens, like the real backend.
func (s *Server) register(c *gin.Context) {
	var req data.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Username) < 3 {
		validation(c, "username", "String should have at least 3 characters")
		return
	}
	if len(req.Password) < 8 {
		validation(c, "password", "String should have at least 8 characters")
		return
	}
	if req.Role == "" {
		req.Role = data.RoleReader
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findUser(req.Username) != nil {
		detail(c, http.StatusBadRequest, "Username already registered")
		return
	}
	u, err := s.addUser(req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		validation(c, "password", err.Error())
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (s *Server) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}
	userID, err := s.tokens.parse(req.RefreshToken, "refresh")
	if err != nil {
		detail(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	tokens, err := s.tokens.issue(userID)
	if err != nil {
		detail(c, http.StatusInternalServerError, "token error")
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) updateMe(c *gin.Context) {
	var update data.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		detail(c, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[currentUser(c).ID]
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.ProfilePictureURL != nil {
		u.ProfilePictureURL = *update.ProfilePictureURL
	}
	u.UpdatedAt = s.timestamp()
	c.JSON(http.StatusOK, u.User)
}

func (s *Server) getUser(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[data.ID(c.Param("id"))]
	if !ok {
		detail(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, u.User)
}

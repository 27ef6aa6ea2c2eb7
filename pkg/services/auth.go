package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"go.uber.org/zap"
)

// AuthService exchanges credentials for tokens and keeps them in the
// client's token store.
type AuthService struct {
	client *api.Client
	logger *zap.Logger
}

func NewAuthService(client *api.Client, logger *zap.Logger) *AuthService {
	return &AuthService{client: client, logger: logger}
}

// Login posts form-encoded credentials and persists the returned tokens.
func (s *AuthService) Login(ctx context.Context, creds data.Credentials) (data.AuthTokens, error) {
	if strings.TrimSpace(creds.Username) == "" {
		return data.AuthTokens{}, invalid("username", "Username is required")
	}
	if creds.Password == "" {
		return data.AuthTokens{}, invalid("password", "Password is required")
	}

	form := url.Values{}
	form.Set("username", strings.TrimSpace(creds.Username))
	form.Set("password", creds.Password)

	var tokens data.AuthTokens
	if err := s.client.PostForm(ctx, "/auth/login", form, &tokens); err != nil {
		return data.AuthTokens{}, fmt.Errorf("login: %w", err)
	}
	if tokens.AccessToken == "" {
		return data.AuthTokens{}, errors.New("login: response carried no access token")
	}
	if err := s.client.Tokens().Save(tokens); err != nil {
		return data.AuthTokens{}, fmt.Errorf("save tokens: %w", err)
	}
	s.logger.Info("logged in", zap.String("username", creds.Username))
	return tokens, nil
}

// Register creates an account. When the backend answers with the new user
// instead of tokens, the same credentials are used to log in.
func (s *AuthService) Register(ctx context.Context, req data.RegisterRequest) (data.AuthTokens, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	switch {
	case req.Username == "":
		return data.AuthTokens{}, invalid("username", "Username is required")
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return data.AuthTokens{}, invalid("email", "A valid email is required")
	case len(req.Password) < 8:
		return data.AuthTokens{}, invalid("password", "Password must be at least 8 characters")
	}
	if req.Role == "" {
		req.Role = data.RoleReader
	}

	var raw json.RawMessage
	if err := s.client.Post(ctx, "/auth/register", req, &raw); err != nil {
		return data.AuthTokens{}, fmt.Errorf("register: %w", err)
	}

	var tokens data.AuthTokens
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &tokens); err != nil {
			s.logger.Debug("register response is not a token pair", zap.Error(err))
		}
	}
	if tokens.AccessToken == "" {
		s.logger.Debug("register returned no tokens, logging in", zap.String("username", req.Username))
		return s.Login(ctx, data.Credentials{Username: req.Username, Password: req.Password})
	}
	if err := s.client.Tokens().Save(tokens); err != nil {
		return data.AuthTokens{}, fmt.Errorf("save tokens: %w", err)
	}
	return tokens, nil
}

// Refresh trades the stored refresh token for a new pair. Nothing calls it
// automatically on 401.
func (s *AuthService) Refresh(ctx context.Context) (data.AuthTokens, error) {
	current, err := s.client.Tokens().Tokens()
	if err != nil {
		return data.AuthTokens{}, fmt.Errorf("load tokens: %w", err)
	}
	if current.RefreshToken == "" {
		return data.AuthTokens{}, fmt.Errorf("refresh: %w", api.ErrUnauthorized)
	}

	var tokens data.AuthTokens
	body := map[string]string{"refresh_token": current.RefreshToken}
	if err := s.client.Post(ctx, "/auth/refresh", body, &tokens); err != nil {
		return data.AuthTokens{}, fmt.Errorf("refresh: %w", err)
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = current.RefreshToken
	}
	if err := s.client.Tokens().Save(tokens); err != nil {
		return data.AuthTokens{}, fmt.Errorf("save tokens: %w", err)
	}
	return tokens, nil
}

func (s *AuthService) Logout() error {
	return s.client.Tokens().Clear()
}

// IsAuthenticated only checks that an access token is stored.
func (s *AuthService) IsAuthenticated() bool {
	return s.client.Tokens().HasAccessToken()
}

func (s *AuthService) AccessToken() string {
	tokens, err := s.client.Tokens().Tokens()
	if err != nil {
		return ""
	}
	return tokens.AccessToken
}

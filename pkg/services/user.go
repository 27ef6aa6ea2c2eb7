package services

import (
	"context"
	"fmt"

	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"go.uber.org/zap"
)

type UserService struct {
	client *api.Client
	logger *zap.Logger
}

func NewUserService(client *api.Client, logger *zap.Logger) *UserService {
	return &UserService{client: client, logger: logger}
}

func (s *UserService) Me(ctx context.Context) (*data.User, error) {
	var user data.User
	if err := s.client.Get(ctx, "/users/me", nil, &user); err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, update data.UserUpdate) (*data.User, error) {
	var user data.User
	if err := s.client.Put(ctx, "/users/me", update, &user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id data.ID) (*data.User, error) {
	var user data.User
	if err := s.client.Get(ctx, "/users/"+id.String(), nil, &user); err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	return &user, nil
}

package services

import (
	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"go.uber.org/zap"
)

// Services bundles the domain services over one API client.
type Services struct {
	Auth     *AuthService
	Users    *UserService
	Books    *BookService
	Chapters *ChapterService
	Reader   *ReaderService

	logger *zap.Logger
}

func New(client *api.Client, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Services{
		Auth:     NewAuthService(client, logger.Named("auth")),
		Users:    NewUserService(client, logger.Named("users")),
		Books:    NewBookService(client, logger.Named("books")),
		Chapters: NewChapterService(client, logger.Named("chapters")),
		Reader:   NewReaderService(client, logger.Named("reader")),
		logger:   logger,
	}
}

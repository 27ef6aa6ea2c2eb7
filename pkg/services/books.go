package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"go.uber.org/zap"
)

// bookListResponse is the backend's listing shape.
type bookListResponse struct {
	Books      []data.Book `json:"books"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

func (r bookListResponse) toPage() data.Page[data.Book] {
	items := r.Books
	if items == nil {
		items = []data.Book{}
	}
	return data.Page[data.Book]{
		Items: items,
		Total: r.Total,
		Page:  r.Page,
		Size:  r.PageSize,
		Pages: r.TotalPages,
	}
}

type BookService struct {
	client *api.Client
	logger *zap.Logger
}

func NewBookService(client *api.Client, logger *zap.Logger) *BookService {
	return &BookService{client: client, logger: logger}
}

// List returns one page of the public catalogue.
func (s *BookService) List(ctx context.Context, filters browse.Filters) (data.Page[data.Book], error) {
	var resp bookListResponse
	if err := s.client.Get(ctx, "/books", filters.Query(), &resp); err != nil {
		return data.Page[data.Book]{}, fmt.Errorf("list books: %w", err)
	}
	return resp.toPage(), nil
}

// MyBooks lists the signed-in author's books. The backend returns every
// book unfiltered, so filtering and paging happen here.
func (s *BookService) MyBooks(ctx context.Context, filters browse.Filters) (data.Page[data.Book], error) {
	var books []data.Book
	if err := s.client.Get(ctx, "/books/my-books", nil, &books); err != nil {
		return data.Page[data.Book]{}, fmt.Errorf("my books: %w", err)
	}
	return browse.FilterBooks(books, filters), nil
}

func (s *BookService) Get(ctx context.Context, id data.ID) (*data.Book, error) {
	var book data.Book
	if err := s.client.Get(ctx, "/books/"+id.String(), nil, &book); err != nil {
		return nil, fmt.Errorf("book %s: %w", id, err)
	}
	return &book, nil
}

func (s *BookService) Create(ctx context.Context, in data.BookInput) (*data.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, invalid("title", "Title is required")
	}
	if len(in.Title) > 200 {
		return nil, invalid("title", "Title must be at most 200 characters")
	}
	if in.Status == "" {
		in.Status = data.StatusDraft
	}
	var book data.Book
	if err := s.client.Post(ctx, "/books", in, &book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	s.logger.Info("book created", zap.String("book_id", book.ID.String()))
	return &book, nil
}

func (s *BookService) Update(ctx context.Context, id data.ID, in data.BookInput) (*data.Book, error) {
	if len(in.Title) > 200 {
		return nil, invalid("title", "Title must be at most 200 characters")
	}
	var book data.Book
	if err := s.client.Put(ctx, "/books/"+id.String(), in, &book); err != nil {
		return nil, fmt.Errorf("update book %s: %w", id, err)
	}
	return &book, nil
}

func (s *BookService) Delete(ctx context.Context, id data.ID) error {
	if err := s.client.Delete(ctx, "/books/"+id.String()); err != nil {
		return fmt.Errorf("delete book %s: %w", id, err)
	}
	return nil
}

func (s *BookService) Stats(ctx context.Context, id data.ID) (*data.BookStats, error) {
	var stats data.BookStats
	if err := s.client.Get(ctx, "/books/"+id.String()+"/stats", nil, &stats); err != nil {
		return nil, fmt.Errorf("book stats %s: %w", id, err)
	}
	return &stats, nil
}

func (s *BookService) Like(ctx context.Context, id data.ID) (*data.Book, error) {
	var book data.Book
	if err := s.client.Post(ctx, "/books/"+id.String()+"/like", nil, &book); err != nil {
		return nil, fmt.Errorf("like book %s: %w", id, err)
	}
	return &book, nil
}

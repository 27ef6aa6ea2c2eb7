package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"go.uber.org/zap"
)

type chapterListResponse struct {
	Chapters []data.Chapter `json:"chapters"`
	Total    int            `json:"total"`
}

type ChapterFilters struct {
	PublishedOnly bool
	ContentType   data.ContentType
}

func (f ChapterFilters) values() url.Values {
	v := url.Values{}
	if f.PublishedOnly {
		v.Set("published_only", "true")
	}
	if f.ContentType != "" {
		v.Set("content_type", string(f.ContentType))
	}
	return v
}

type ChapterService struct {
	client *api.Client
	logger *zap.Logger
}

func NewChapterService(client *api.Client, logger *zap.Logger) *ChapterService {
	return &ChapterService{client: client, logger: logger}
}

// List returns the chapters of a book as a plain slice.
func (s *ChapterService) List(ctx context.Context, bookID data.ID, filters ChapterFilters) ([]data.Chapter, error) {
	var resp chapterListResponse
	path := "/books/" + bookID.String() + "/chapters"
	if err := s.client.Get(ctx, path, filters.values(), &resp); err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	if resp.Chapters == nil {
		return []data.Chapter{}, nil
	}
	return resp.Chapters, nil
}

// Published fetches every chapter and keeps the published ones in reading
// order.
func (s *ChapterService) Published(ctx context.Context, bookID data.ID) ([]data.Chapter, error) {
	chapters, err := s.List(ctx, bookID, ChapterFilters{})
	if err != nil {
		return nil, err
	}
	return browse.Published(chapters), nil
}

func (s *ChapterService) Get(ctx context.Context, bookID, chapterID data.ID) (*data.Chapter, error) {
	var ch data.Chapter
	if err := s.client.Get(ctx, s.chapterPath(bookID, chapterID), nil, &ch); err != nil {
		return nil, fmt.Errorf("chapter %s: %w", chapterID, err)
	}
	return &ch, nil
}

func (s *ChapterService) Create(ctx context.Context, bookID data.ID, in data.ChapterInput) (*data.Chapter, error) {
	if err := validateChapter(in, true); err != nil {
		return nil, err
	}
	if in.ContentType == "" {
		in.ContentType = data.ContentSimple
	}
	if in.ChapterNumber == 0 {
		next, err := s.NextNumber(ctx, bookID)
		if err != nil {
			return nil, err
		}
		in.ChapterNumber = next
	}
	var ch data.Chapter
	if err := s.client.Post(ctx, "/books/"+bookID.String()+"/chapters", in, &ch); err != nil {
		return nil, fmt.Errorf("create chapter: %w", err)
	}
	s.logger.Info("chapter created",
		zap.String("book_id", bookID.String()),
		zap.String("chapter_id", ch.ID.String()),
	)
	return &ch, nil
}

func (s *ChapterService) Update(ctx context.Context, bookID, chapterID data.ID, in data.ChapterInput) (*data.Chapter, error) {
	if err := validateChapter(in, false); err != nil {
		return nil, err
	}
	var ch data.Chapter
	if err := s.client.Put(ctx, s.chapterPath(bookID, chapterID), in, &ch); err != nil {
		return nil, fmt.Errorf("update chapter %s: %w", chapterID, err)
	}
	return &ch, nil
}

func (s *ChapterService) Delete(ctx context.Context, bookID, chapterID data.ID) error {
	if err := s.client.Delete(ctx, s.chapterPath(bookID, chapterID)); err != nil {
		return fmt.Errorf("delete chapter %s: %w", chapterID, err)
	}
	return nil
}

// Reorder sets the chapter order to the given ids.
func (s *ChapterService) Reorder(ctx context.Context, bookID data.ID, chapterIDs []data.ID) ([]data.Chapter, error) {
	if len(chapterIDs) == 0 {
		return nil, invalid("chapter_ids", "At least one chapter is required")
	}
	var resp chapterListResponse
	body := map[string][]data.ID{"chapter_ids": chapterIDs}
	if err := s.client.Post(ctx, "/books/"+bookID.String()+"/chapters/reorder", body, &resp); err != nil {
		return nil, fmt.Errorf("reorder chapters: %w", err)
	}
	return resp.Chapters, nil
}

// NextNumber is one past the highest chapter number of the book.
func (s *ChapterService) NextNumber(ctx context.Context, bookID data.ID) (int, error) {
	chapters, err := s.List(ctx, bookID, ChapterFilters{})
	if err != nil {
		return 0, err
	}
	next := 1
	for _, ch := range chapters {
		if ch.ChapterNumber >= next {
			next = ch.ChapterNumber + 1
		}
	}
	return next, nil
}

func (s *ChapterService) chapterPath(bookID, chapterID data.ID) string {
	return "/books/" + bookID.String() + "/chapters/" + chapterID.String()
}

func validateChapter(in data.ChapterInput, create bool) error {
	title := strings.TrimSpace(in.Title)
	if create && title == "" {
		return invalid("title", "Title is required")
	}
	if len(title) > 200 {
		return invalid("title", "Title must be at most 200 characters")
	}
	if create && in.ContentType != data.ContentInteractive {
		text, _ := in.ContentData["text"].(string)
		if strings.TrimSpace(text) == "" {
			return invalid("content", "Content is required")
		}
	}
	if in.ChapterNumber < 0 {
		return invalid("chapter_number", "Chapter number must be 1 or greater")
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"go.uber.org/zap"
)

// ReaderService covers the per-reader features: bookmarks, ratings,
// comments and reading progress.
type ReaderService struct {
	client *api.Client
	logger *zap.Logger
}

func NewReaderService(client *api.Client, logger *zap.Logger) *ReaderService {
	return &ReaderService{client: client, logger: logger}
}

func (s *ReaderService) Bookmarks(ctx context.Context) ([]data.Bookmark, error) {
	var bookmarks []data.Bookmark
	if err := s.client.Get(ctx, "/bookmarks", nil, &bookmarks); err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return bookmarks, nil
}

func (s *ReaderService) AddBookmark(ctx context.Context, bookID data.ID) (*data.Bookmark, error) {
	var bookmark data.Bookmark
	body := map[string]data.ID{"book_id": bookID}
	if err := s.client.Post(ctx, "/bookmarks", body, &bookmark); err != nil {
		return nil, fmt.Errorf("add bookmark: %w", err)
	}
	return &bookmark, nil
}

// RemoveBookmark deletes the bookmark for bookID. The backend only deletes by
// bookmark id, so the list is fetched first. It reports whether a bookmark
// was found.
func (s *ReaderService) RemoveBookmark(ctx context.Context, bookID data.ID) (bool, error) {
	bookmarks, err := s.Bookmarks(ctx)
	if err != nil {
		return false, err
	}
	for _, b := range bookmarks {
		if b.BookID == bookID {
			return true, s.DeleteBookmark(ctx, b.ID)
		}
	}
	return false, nil
}

func (s *ReaderService) DeleteBookmark(ctx context.Context, bookmarkID data.ID) error {
	if err := s.client.Delete(ctx, "/bookmarks/"+bookmarkID.String()); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

func (s *ReaderService) CheckBookmark(ctx context.Context, bookID data.ID) Lookup[bool] {
	var resp struct {
		Bookmarked bool `json:"bookmarked"`
	}
	if err := s.client.Get(ctx, "/bookmarks/check/"+bookID.String(), nil, &resp); err != nil {
		s.logger.Debug("bookmark check failed", zap.String("book_id", bookID.String()), zap.Error(err))
		return lookupError[bool](err)
	}
	return found(resp.Bookmarked)
}

func (s *ReaderService) Ratings(ctx context.Context, bookID data.ID) ([]data.Rating, error) {
	var ratings []data.Rating
	if err := s.client.Get(ctx, "/books/"+bookID.String()+"/ratings", nil, &ratings); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

// MyRating returns the signed-in user's rating of a book. NotFound means the
// user has not rated it.
func (s *ReaderService) MyRating(ctx context.Context, bookID data.ID) Lookup[data.Rating] {
	var rating data.Rating
	if err := s.client.Get(ctx, "/books/"+bookID.String()+"/ratings/me", nil, &rating); err != nil {
		s.logger.Debug("rating lookup failed", zap.String("book_id", bookID.String()), zap.Error(err))
		return lookupError[data.Rating](err)
	}
	return found(rating)
}

func (s *ReaderService) Rate(ctx context.Context, bookID data.ID, stars int) (*data.Rating, error) {
	if err := validateStars(stars); err != nil {
		return nil, err
	}
	var rating data.Rating
	body := map[string]any{"book_id": bookID, "rating": stars}
	if err := s.client.Post(ctx, "/books/"+bookID.String()+"/ratings", body, &rating); err != nil {
		return nil, fmt.Errorf("rate book: %w", err)
	}
	return &rating, nil
}

func (s *ReaderService) UpdateRating(ctx context.Context, bookID, ratingID data.ID, stars int) (*data.Rating, error) {
	if err := validateStars(stars); err != nil {
		return nil, err
	}
	var rating data.Rating
	path := "/books/" + bookID.String() + "/ratings/" + ratingID.String()
	if err := s.client.Put(ctx, path, map[string]int{"rating": stars}, &rating); err != nil {
		return nil, fmt.Errorf("update rating: %w", err)
	}
	return &rating, nil
}

func (s *ReaderService) DeleteRating(ctx context.Context, bookID, ratingID data.ID) error {
	path := "/books/" + bookID.String() + "/ratings/" + ratingID.String()
	if err := s.client.Delete(ctx, path); err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	return nil
}

// SetRating creates or updates the user's rating depending on whether one
// already exists.
func (s *ReaderService) SetRating(ctx context.Context, bookID data.ID, stars int) (*data.Rating, error) {
	mine := s.MyRating(ctx, bookID)
	switch mine.Status {
	case Found:
		return s.UpdateRating(ctx, bookID, mine.Value.ID, stars)
	case Failed:
		return nil, mine.Err
	default:
		return s.Rate(ctx, bookID, stars)
	}
}

func (s *ReaderService) Comments(ctx context.Context, chapterID data.ID) ([]data.Comment, error) {
	var comments []data.Comment
	if err := s.client.Get(ctx, "/chapters/"+chapterID.String()+"/comments", nil, &comments); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// AddComment posts a comment on a chapter. parentID is empty for a top level
// comment.
func (s *ReaderService) AddComment(ctx context.Context, chapterID data.ID, content string, parentID data.ID) (*data.Comment, error) {
	content = strings.TrimSpace(content)
	if err := validateComment(content); err != nil {
		return nil, err
	}
	body := struct {
		ChapterID       data.ID `json:"chapter_id"`
		Content         string  `json:"content"`
		ParentCommentID data.ID `json:"parent_comment_id,omitempty"`
	}{chapterID, content, parentID}

	var comment data.Comment
	if err := s.client.Post(ctx, "/chapters/"+chapterID.String()+"/comments", body, &comment); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return &comment, nil
}

func (s *ReaderService) UpdateComment(ctx context.Context, commentID data.ID, content string) (*data.Comment, error) {
	content = strings.TrimSpace(content)
	if err := validateComment(content); err != nil {
		return nil, err
	}
	var comment data.Comment
	if err := s.client.Put(ctx, "/comments/"+commentID.String(), map[string]string{"content": content}, &comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &comment, nil
}

func (s *ReaderService) DeleteComment(ctx context.Context, commentID data.ID) error {
	if err := s.client.Delete(ctx, "/comments/"+commentID.String()); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *ReaderService) Progress(ctx context.Context, bookID data.ID) Lookup[data.ReadingProgress] {
	var progress data.ReadingProgress
	if err := s.client.Get(ctx, "/books/"+bookID.String()+"/progress", nil, &progress); err != nil {
		s.logger.Debug("progress lookup failed", zap.String("book_id", bookID.String()), zap.Error(err))
		return lookupError[data.ReadingProgress](err)
	}
	return found(progress)
}

func (s *ReaderService) UpdateProgress(ctx context.Context, bookID, chapterID data.ID, percentage float64) (*data.ReadingProgress, error) {
	percentage = min(max(percentage, 0), 100)
	path := "/books/" + bookID.String() + "/chapters/" + chapterID.String() + "/progress"
	var progress data.ReadingProgress
	if err := s.client.Post(ctx, path, map[string]float64{"progress_percentage": percentage}, &progress); err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}
	return &progress, nil
}

func validateStars(stars int) error {
	if stars < 1 || stars > 5 {
		return invalid("rating", "Rating must be between 1 and 5")
	}
	return nil
}

func validateComment(content string) error {
	if content == "" {
		return invalid("content", "Comment cannot be empty")
	}
	if len(content) > 2000 {
		return invalid("content", "Comment must be at most 2000 characters")
	}
	return nil
}

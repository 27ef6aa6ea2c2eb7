package data

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ID is a backend identifier. The API emits integers but the client treats
// them as opaque strings.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	// Only canonical integers go out bare; "007" or "+5" stay strings.
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

type Role string

const (
	RoleReader Role = "reader"
	RoleAuthor Role = "author"
	RoleAdmin  Role = "admin"
)

type BookStatus string

const (
	StatusDraft     BookStatus = "draft"
	StatusOngoing   BookStatus = "ongoing"
	StatusCompleted BookStatus = "completed"
)

type ContentType string

const (
	ContentSimple      ContentType = "simple"
	ContentInteractive ContentType = "interactive"
)

type User struct {
	ID                ID     `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Role              Role   `json:"role"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	Bio               string `json:"bio,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
	UpdatedAt         string `json:"updated_at,omitempty"`
}

type UserUpdate struct {
	Email             *string `json:"email,omitempty"`
	Bio               *string `json:"bio,omitempty"`
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`
}

type Credentials struct {
	Username string
	Password string
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type Book struct {
	ID            ID         `json:"id"`
	AuthorID      ID         `json:"author_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	ThumbnailURL  string     `json:"thumbnail_url,omitempty"`
	Genre         string     `json:"genre,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Status        BookStatus `json:"status"`
	TotalViews    int        `json:"total_views"`
	TotalLikes    int        `json:"total_likes"`
	AverageRating float64    `json:"average_rating"`
	TotalRatings  int        `json:"total_ratings"`
	CreatedAt     string     `json:"created_at,omitempty"`
	UpdatedAt     string     `json:"updated_at,omitempty"`
}

func (b Book) ParsedUpdatedAt() time.Time { return ParseTime(b.UpdatedAt) }

type BookInput struct {
	Title         string     `json:"title,omitempty"`
	Description   string     `json:"description,omitempty"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	Genre         string     `json:"genre,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Status        BookStatus `json:"status,omitempty"`
}

type BookStats struct {
	TotalViews     int     `json:"total_views"`
	TotalLikes     int     `json:"total_likes"`
	TotalRatings   int     `json:"total_ratings"`
	AverageRating  float64 `json:"average_rating"`
	TotalComments  int     `json:"total_comments"`
	TotalBookmarks int     `json:"total_bookmarks"`
}

type Chapter struct {
	ID            ID             `json:"id"`
	BookID        ID             `json:"book_id"`
	ChapterNumber int            `json:"chapter_number"`
	Title         string         `json:"title"`
	ContentType   ContentType    `json:"content_type"`
	ContentData   map[string]any `json:"content_data,omitempty"`
	WordCount     int            `json:"word_count"`
	IsPublished   bool           `json:"is_published"`
	PublishedAt   string         `json:"published_at,omitempty"`
	CreatedAt     string         `json:"created_at,omitempty"`
	UpdatedAt     string         `json:"updated_at,omitempty"`
}

// Text returns the readable body of the chapter. Interactive chapters are
// flattened to the text of their nodes in order.
func (c Chapter) Text() string {
	if c.ContentData == nil {
		return ""
	}
	if s, ok := c.ContentData["text"].(string); ok {
		return s
	}
	nodes, ok := c.ContentData["nodes"].([]any)
	if !ok {
		return ""
	}
	var parts []string
	for _, n := range nodes {
		node, ok := n.(map[string]any)
		if !ok {
			continue
		}
		for _, key := range []string{"text", "content"} {
			if s, ok := node[key].(string); ok && s != "" {
				parts = append(parts, s)
				break
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

type ChapterInput struct {
	Title         string         `json:"title,omitempty"`
	ChapterNumber int            `json:"chapter_number,omitempty"`
	ContentType   ContentType    `json:"content_type,omitempty"`
	ContentData   map[string]any `json:"content_data,omitempty"`
	IsPublished   *bool          `json:"is_published,omitempty"`
}

// SimpleContent builds content_data for a plain text chapter.
func SimpleContent(text string) map[string]any {
	return map[string]any{"text": text}
}

type CommentAuthor struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
}

type Comment struct {
	ID              ID             `json:"id"`
	UserID          ID             `json:"user_id"`
	ChapterID       ID             `json:"chapter_id"`
	ParentCommentID ID             `json:"parent_comment_id,omitempty"`
	Content         string         `json:"content"`
	User            *CommentAuthor `json:"user,omitempty"`
	Replies         []Comment      `json:"replies,omitempty"`
	CreatedAt       string         `json:"created_at,omitempty"`
	UpdatedAt       string         `json:"updated_at,omitempty"`
}

func (c Comment) ParsedCreatedAt() time.Time { return ParseTime(c.CreatedAt) }

type Bookmark struct {
	ID        ID     `json:"id"`
	UserID    ID     `json:"user_id"`
	BookID    ID     `json:"book_id"`
	Book      *Book  `json:"book,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Rating struct {
	ID        ID     `json:"id"`
	UserID    ID     `json:"user_id"`
	BookID    ID     `json:"book_id"`
	Rating    int    `json:"rating"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type ReadingProgress struct {
	ID                 ID      `json:"id"`
	UserID             ID      `json:"user_id"`
	BookID             ID      `json:"book_id"`
	ChapterID          ID      `json:"chapter_id"`
	ProgressPercentage float64 `json:"progress_percentage"`
	LastReadAt         string  `json:"last_read_at,omitempty"`
}

// Page is the paginated envelope every listing is normalized to.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
	Pages int `json:"pages"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTime parses a backend timestamp. The zero time is returned for empty
// or unparseable input.
func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

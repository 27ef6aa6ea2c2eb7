package browse

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
)

const DefaultPageSize = 12

var Genres = []string{
	"Fantasy",
	"Science Fiction",
	"Romance",
	"Mystery",
	"Thriller",
	"Horror",
	"Adventure",
	"Historical",
	"Contemporary",
	"Young Adult",
}

type SortOption struct {
	Label string
	Field string
	Order string
}

var SortOptions = []SortOption{
	{Label: "Most Recent", Field: "created_at", Order: "desc"},
	{Label: "Most Popular", Field: "views", Order: "desc"},
	{Label: "Highest Rated", Field: "rating", Order: "desc"},
	{Label: "Most Liked", Field: "likes", Order: "desc"},
	{Label: "Title (A-Z)", Field: "title", Order: "asc"},
}

var Statuses = []data.BookStatus{"", data.StatusOngoing, data.StatusCompleted, data.StatusDraft}

// Filters is the browse state. It round-trips through url.Values so it can
// be persisted and restored as a query string.
type Filters struct {
	Search   string
	Genre    string
	Status   data.BookStatus
	AuthorID data.ID
	Tags     []string
	SortBy   string
	Order    string
	Page     int
	PageSize int
}

func DefaultFilters() Filters {
	return Filters{
		SortBy:   SortOptions[0].Field,
		Order:    SortOptions[0].Order,
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// ParseFilters reads browse state from query parameters. The "filter" preset
// featured selects completed books by rating; trending sorts by views.
func ParseFilters(v url.Values) Filters {
	f := DefaultFilters()

	switch v.Get("filter") {
	case "featured":
		f.Status = data.StatusCompleted
		f.SortBy, f.Order = SortOptions[2].Field, SortOptions[2].Order
	case "trending":
		f.SortBy, f.Order = SortOptions[1].Field, SortOptions[1].Order
	}

	f.Search = strings.TrimSpace(v.Get("search"))
	f.Genre = v.Get("genre")
	if s := v.Get("status"); s != "" {
		f.Status = data.BookStatus(s)
	}
	f.AuthorID = data.ID(v.Get("author_id"))
	f.Tags = splitTags(v["tags"])
	if s := v.Get("sort_by"); s != "" {
		f.SortBy = s
	}
	if o := v.Get("order"); o == "asc" || o == "desc" {
		f.Order = o
	}
	if n, err := strconv.Atoi(v.Get("page")); err == nil && n > 0 {
		f.Page = n
	}
	if n, err := strconv.Atoi(v.Get("page_size")); err == nil && n > 0 {
		f.PageSize = min(n, 100)
	}
	return f
}

// Values encodes the state, omitting fields that hold their defaults.
func (f Filters) Values() url.Values {
	v := url.Values{}
	def := DefaultFilters()
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Genre != "" {
		v.Set("genre", f.Genre)
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.AuthorID != "" {
		v.Set("author_id", string(f.AuthorID))
	}
	if len(f.Tags) > 0 {
		v.Set("tags", strings.Join(f.Tags, ","))
	}
	if f.SortBy != "" && f.SortBy != def.SortBy {
		v.Set("sort_by", f.SortBy)
	}
	if f.Order != "" && f.Order != def.Order {
		v.Set("order", f.Order)
	}
	if f.Page > 1 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.PageSize > 0 && f.PageSize != def.PageSize {
		v.Set("page_size", strconv.Itoa(f.PageSize))
	}
	return v
}

// Query is the request form of the state: paging is always explicit.
func (f Filters) Query() url.Values {
	v := f.Values()
	v.Set("page", strconv.Itoa(max(f.Page, 1)))
	size := f.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	v.Set("page_size", strconv.Itoa(size))
	if f.SortBy != "" {
		v.Set("sort_by", f.SortBy)
	}
	if f.Order != "" {
		v.Set("order", f.Order)
	}
	return v
}

// String is the encoded query string.
func (f Filters) String() string { return f.Values().Encode() }

// SortLabel names the active sort option.
func (f Filters) SortLabel() string {
	for _, opt := range SortOptions {
		if opt.Field == f.SortBy && opt.Order == f.Order {
			return opt.Label
		}
	}
	return f.SortBy + " " + f.Order
}

// CycleSort advances to the next sort option and resets to the first page.
func (f Filters) CycleSort() Filters {
	idx := -1
	for i, opt := range SortOptions {
		if opt.Field == f.SortBy && opt.Order == f.Order {
			idx = i
			break
		}
	}
	next := SortOptions[(idx+1)%len(SortOptions)]
	f.SortBy, f.Order = next.Field, next.Order
	f.Page = 1
	return f
}

// CycleGenre advances through "" and Genres.
func (f Filters) CycleGenre() Filters {
	options := append([]string{""}, Genres...)
	f.Genre = options[(indexOf(options, f.Genre)+1)%len(options)]
	f.Page = 1
	return f
}

// CycleStatus advances through Statuses.
func (f Filters) CycleStatus() Filters {
	idx := 0
	for i, s := range Statuses {
		if s == f.Status {
			idx = i
			break
		}
	}
	f.Status = Statuses[(idx+1)%len(Statuses)]
	f.Page = 1
	return f
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}

func splitTags(raw []string) []string {
	var tags []string
	for _, r := range raw {
		for _, t := range strings.Split(r, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}

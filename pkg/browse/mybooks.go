package browse

import (
	"sort"
	"strings"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
)

// FilterBooks applies the browse filters to an already fetched list and wraps
// the result in the paginated envelope. Total counts the filtered set. A
// zero page size returns every match on a single page.
func FilterBooks(books []data.Book, f Filters) data.Page[data.Book] {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	matched := make([]data.Book, 0, len(books))
	for _, b := range books {
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.Genre != "" && !strings.EqualFold(b.Genre, f.Genre) {
			continue
		}
		if f.AuthorID != "" && b.AuthorID != f.AuthorID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.Description), search) {
			continue
		}
		if !sharesTag(b.Tags, f.Tags) {
			continue
		}
		matched = append(matched, b)
	}

	sortBooks(matched, f.SortBy, f.Order)

	total := len(matched)
	page := max(f.Page, 1)
	size := f.PageSize
	if size <= 0 {
		return data.Page[data.Book]{Items: matched, Total: total, Page: 1, Size: total, Pages: min(total, 1)}
	}

	start := min((page-1)*size, total)
	end := min(start+size, total)
	return data.Page[data.Book]{
		Items: matched[start:end],
		Total: total,
		Page:  page,
		Size:  size,
		Pages: TotalPages(total, size),
	}
}

// sharesTag reports whether the book carries any of the wanted tags, the same
// overlap match the backend applies to /books. No wanted tags matches all.
func sharesTag(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

func sortBooks(books []data.Book, field, order string) {
	var less func(a, b data.Book) bool
	switch field {
	case "views":
		less = func(a, b data.Book) bool { return a.TotalViews < b.TotalViews }
	case "likes":
		less = func(a, b data.Book) bool { return a.TotalLikes < b.TotalLikes }
	case "rating":
		less = func(a, b data.Book) bool { return a.AverageRating < b.AverageRating }
	case "title":
		less = func(a, b data.Book) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case "created_at":
		less = func(a, b data.Book) bool {
			return data.ParseTime(a.CreatedAt).Before(data.ParseTime(b.CreatedAt))
		}
	default:
		return
	}
	sort.SliceStable(books, func(i, j int) bool {
		if order == "desc" {
			return less(books[j], books[i])
		}
		return less(books[i], books[j])
	})
}

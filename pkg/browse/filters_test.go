package browse

import (
	"net/url"
	"testing"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/stretchr/testify/assert"
)

func TestFiltersRoundTrip(t *testing.T) {
	f := DefaultFilters()
	f.Search = "dragon"
	f.Genre = "Fantasy"
	f.Status = data.StatusOngoing
	f.Tags = []string{"magic", "quest"}
	f.Page = 3

	parsed := ParseFilters(f.Values())
	assert.Equal(t, f, parsed)
}

func TestFiltersValuesOmitDefaults(t *testing.T) {
	assert.Equal(t, "", DefaultFilters().String())
}

func TestFiltersQueryIsExplicit(t *testing.T) {
	q := DefaultFilters().Query()
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "12", q.Get("page_size"))
	assert.Equal(t, "created_at", q.Get("sort_by"))
	assert.Equal(t, "desc", q.Get("order"))
}

func TestParseFiltersPresets(t *testing.T) {
	featured := ParseFilters(url.Values{"filter": {"featured"}})
	assert.Equal(t, data.StatusCompleted, featured.Status)
	assert.Equal(t, "rating", featured.SortBy)

	trending := ParseFilters(url.Values{"filter": {"trending"}})
	assert.Equal(t, "views", trending.SortBy)
	assert.Equal(t, data.BookStatus(""), trending.Status)
}

func TestParseFiltersTagsAndBounds(t *testing.T) {
	f := ParseFilters(url.Values{
		"tags":      {"a, b", "c"},
		"page":      {"-2"},
		"page_size": {"500"},
		"order":     {"sideways"},
	})
	assert.Equal(t, []string{"a", "b", "c"}, f.Tags)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 100, f.PageSize)
	assert.Equal(t, "desc", f.Order)
}

func TestCycleHelpersResetPage(t *testing.T) {
	f := DefaultFilters()
	f.Page = 4

	sorted := f.CycleSort()
	assert.Equal(t, "Most Popular", sorted.SortLabel())
	assert.Equal(t, 1, sorted.Page)

	genre := f.CycleGenre()
	assert.Equal(t, Genres[0], genre.Genre)
	for i := 0; i < len(Genres); i++ {
		genre = genre.CycleGenre()
	}
	assert.Equal(t, "", genre.Genre)

	status := f.CycleStatus()
	assert.Equal(t, data.StatusOngoing, status.Status)
}

package browse

import (
	"testing"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chapters() []data.Chapter {
	return []data.Chapter{
		{ID: "30", ChapterNumber: 3, IsPublished: true},
		{ID: "10", ChapterNumber: 1, IsPublished: true},
		{ID: "25", ChapterNumber: 2, IsPublished: false},
		{ID: "20", ChapterNumber: 2, IsPublished: true},
	}
}

func TestAdjacentMiddle(t *testing.T) {
	prev, next := Adjacent(chapters(), "20")
	require.NotNil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, data.ID("10"), prev.ID)
	assert.Equal(t, data.ID("30"), next.ID)
}

func TestAdjacentBoundaries(t *testing.T) {
	prev, next := Adjacent(chapters(), "10")
	assert.Nil(t, prev)
	require.NotNil(t, next)
	assert.Equal(t, data.ID("20"), next.ID)

	prev, next = Adjacent(chapters(), "30")
	require.NotNil(t, prev)
	assert.Equal(t, data.ID("20"), prev.ID)
	assert.Nil(t, next)
}

func TestAdjacentUnknownOrDraft(t *testing.T) {
	prev, next := Adjacent(chapters(), "99")
	assert.Nil(t, prev)
	assert.Nil(t, next)

	prev, next = Adjacent(chapters(), "25")
	assert.Nil(t, prev)
	assert.Nil(t, next)
}

func TestPublishedSortsAndFilters(t *testing.T) {
	got := Published(chapters())
	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].ChapterNumber, got[1].ChapterNumber, got[2].ChapterNumber})
}

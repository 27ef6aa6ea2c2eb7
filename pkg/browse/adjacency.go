package browse

import (
	"sort"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
)

// Published returns the published chapters ordered by chapter number.
func Published(chapters []data.Chapter) []data.Chapter {
	out := make([]data.Chapter, 0, len(chapters))
	for _, ch := range chapters {
		if ch.IsPublished {
			out = append(out, ch)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ChapterNumber < out[j].ChapterNumber
	})
	return out
}

// Adjacent finds the neighbours of current among the published chapters.
// prev is nil on the first chapter, next is nil on the last, and both are nil
// when current is not in the list.
func Adjacent(chapters []data.Chapter, current data.ID) (prev, next *data.Chapter) {
	published := Published(chapters)
	idx := -1
	for i := range published {
		if published[i].ID == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil
	}
	if idx > 0 {
		p := published[idx-1]
		prev = &p
	}
	if idx < len(published)-1 {
		n := published[idx+1]
		next = &n
	}
	return prev, next
}

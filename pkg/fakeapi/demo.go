package fakeapi

import (
	"fmt"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
)

// SeedDemo fills the server with a small catalogue: an author, a reader and
// a few books with published and draft chapters. Both accounts use the
// password "password".
func (s *Server) SeedDemo() {
	author := s.SeedUser("author", "password", data.RoleAuthor)
	s.SeedUser("reader", "password", data.RoleReader)

	books := []data.Book{
		{Title: "The Lantern Keeper", Genre: "Fantasy", Tags: []string{"magic", "lighthouse"}, Status: data.StatusOngoing,
			Description: "A girl inherits a lighthouse that guides ships between worlds.", TotalViews: 1520, TotalLikes: 210, AverageRating: 4.6, TotalRatings: 48},
		{Title: "Orbitfall", Genre: "Science Fiction", Tags: []string{"space", "survival"}, Status: data.StatusCompleted,
			Description: "The last station above a dying planet decides who gets to land.", TotalViews: 3410, TotalLikes: 402, AverageRating: 4.8, TotalRatings: 133},
		{Title: "Letters to Marrow Street", Genre: "Romance", Tags: []string{"letters", "slow-burn"}, Status: data.StatusOngoing,
			Description: "Two neighbours who never meet write to each other for a year.", TotalViews: 870, TotalLikes: 96, AverageRating: 4.1, TotalRatings: 22},
		{Title: "Untitled Draft", Genre: "Mystery", Status: data.StatusDraft},
	}
	for _, b := range books {
		b.AuthorID = author.ID
		book := s.SeedBook(b)
		for n := 1; n <= 3; n++ {
			s.SeedChapter(data.Chapter{
				BookID:        book.ID,
				ChapterNumber: n,
				Title:         fmt.Sprintf("Part %d", n),
				ContentType:   data.ContentSimple,
				ContentData:   data.SimpleContent(fmt.Sprintf("# %s, part %d\n\nThe story of *%s* continues.\n\nEvery chapter here is sample text.", book.Title, n, book.Title)),
				IsPublished:   book.Status != data.StatusDraft && n < 3,
			})
		}
	}
}

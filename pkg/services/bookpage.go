package services

import (
	"context"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"golang.org/x/sync/errgroup"
)

// BookPage is everything the book detail view shows.
type BookPage struct {
	Book       data.Book
	Chapters   []data.Chapter
	Bookmarked Lookup[bool]
	MyRating   Lookup[data.Rating]
	Progress   Lookup[data.ReadingProgress]
}

// LoadBookPage fetches the book and its published chapters in parallel and
// fails if either fails. The reader lookups run alongside when signedIn is
// true; their failures are reported in the lookups and never fail the load.
func (s *Services) LoadBookPage(ctx context.Context, bookID data.ID, signedIn bool) (*BookPage, error) {
	page := &BookPage{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		book, err := s.Books.Get(gctx, bookID)
		if err != nil {
			return err
		}
		page.Book = *book
		return nil
	})
	g.Go(func() error {
		chapters, err := s.Chapters.Published(gctx, bookID)
		if err != nil {
			return err
		}
		page.Chapters = chapters
		return nil
	})
	if signedIn {
		g.Go(func() error {
			page.Bookmarked = s.Reader.CheckBookmark(gctx, bookID)
			return nil
		})
		g.Go(func() error {
			page.MyRating = s.Reader.MyRating(gctx, bookID)
			return nil
		})
		g.Go(func() error {
			page.Progress = s.Reader.Progress(gctx, bookID)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return page, nil
}

// ChapterView is a chapter together with its published siblings, used to
// work out previous and next.
type ChapterView struct {
	Chapter  data.Chapter
	Siblings []data.Chapter
}

func (s *Services) LoadChapter(ctx context.Context, bookID, chapterID data.ID) (*ChapterView, error) {
	view := &ChapterView{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ch, err := s.Chapters.Get(gctx, bookID, chapterID)
		if err != nil {
			return err
		}
		view.Chapter = *ch
		return nil
	})
	g.Go(func() error {
		siblings, err := s.Chapters.Published(gctx, bookID)
		if err != nil {
			return err
		}
		view.Siblings = siblings
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

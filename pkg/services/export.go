package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/integrations"
	"go.uber.org/zap"
)

// ExportResult describes a written EPub.
type ExportResult struct {
	Path     string
	Book     data.Book
	Chapters int
}

// Export writes the published chapters of a book to an EPub in outputDir.
// The author name and cover art are best effort. onProgress, when set, is
// called from a separate goroutine for every collector update.
func (s *Services) Export(ctx context.Context, bookID data.ID, outputDir string, onProgress func(CollectProgress)) (*ExportResult, error) {
	logger := s.logger.Named("export")

	book, err := s.Books.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}

	collector := NewCollector(s.Chapters, logger)
	done := make(chan struct{})
	var wg sync.WaitGroup
	if onProgress != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case p := <-collector.Progress():
					onProgress(p)
				case <-done:
					for {
						select {
						case p := <-collector.Progress():
							onProgress(p)
						default:
							return
						}
					}
				}
			}
		}()
	}
	chapters, err := collector.Collect(ctx, bookID)
	close(done)
	wg.Wait()
	if err != nil {
		return nil, fmt.Errorf("collect chapters: %w", err)
	}

	author := ""
	if book.AuthorID != "" {
		if u, err := s.Users.Get(ctx, book.AuthorID); err == nil {
			author = u.Username
		} else {
			logger.Debug("author lookup", zap.Error(err))
		}
	}

	var cover []byte
	if book.CoverImageURL != "" {
		cover, err = integrations.FetchCover(ctx, nil, book.CoverImageURL)
		if err != nil {
			logger.Warn("cover download", zap.String("url", book.CoverImageURL), zap.Error(err))
			cover = nil
		}
	}

	path, err := integrations.NewEPubBuilder(outputDir).CreateEPub(*book, author, chapters, cover)
	if err != nil && cover != nil {
		logger.Warn("retrying export without cover", zap.Error(err))
		path, err = integrations.NewEPubBuilder(outputDir).CreateEPub(*book, author, chapters, nil)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("exported book", zap.String("book_id", bookID.String()), zap.String("path", path))
	return &ExportResult{Path: path, Book: *book, Chapters: len(chapters)}, nil
}

package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const collectConcurrency = 3

// CollectProgress reports the state of a Collect run.
type CollectProgress struct {
	BookID        data.ID
	ChapterID     data.ID
	ChapterNumber int
	Done          int
	Total         int
	Status        string // "fetching", "complete", "error"
	Err           error
}

// Collector fetches the full content of every published chapter of a book,
// a few at a time, for offline export.
type Collector struct {
	chapters *ChapterService
	logger   *zap.Logger
	progress chan CollectProgress
}

func NewCollector(chapters *ChapterService, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		chapters: chapters,
		logger:   logger,
		progress: make(chan CollectProgress, 100),
	}
}

// Progress returns the channel progress updates are sent on. Updates are
// dropped when nobody is reading.
func (c *Collector) Progress() <-chan CollectProgress {
	return c.progress
}

// Collect returns the published chapters of bookID in reading order with
// their content loaded.
func (c *Collector) Collect(ctx context.Context, bookID data.ID) ([]data.Chapter, error) {
	listed, err := c.chapters.Published(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if len(listed) == 0 {
		return nil, fmt.Errorf("book %s has no published chapters", bookID)
	}

	out := make([]data.Chapter, len(listed))
	var done atomic.Int32
	total := len(listed)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(collectConcurrency)
	for i, ch := range listed {
		g.Go(func() error {
			c.send(CollectProgress{BookID: bookID, ChapterID: ch.ID, ChapterNumber: ch.ChapterNumber, Done: int(done.Load()), Total: total, Status: "fetching"})

			full := ch
			if full.ContentData == nil {
				got, err := c.chapters.Get(gctx, bookID, ch.ID)
				if err != nil {
					c.send(CollectProgress{BookID: bookID, ChapterID: ch.ID, ChapterNumber: ch.ChapterNumber, Total: total, Status: "error", Err: err})
					return fmt.Errorf("chapter %d: %w", ch.ChapterNumber, err)
				}
				full = *got
			}
			out[i] = full

			n := int(done.Add(1))
			c.send(CollectProgress{BookID: bookID, ChapterID: ch.ID, ChapterNumber: ch.ChapterNumber, Done: n, Total: total, Status: "complete"})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.logger.Debug("collected chapters", zap.String("book_id", bookID.String()), zap.Int("count", total))
	return out, nil
}

func (c *Collector) send(p CollectProgress) {
	select {
	case c.progress <- p:
	default:
	}
}

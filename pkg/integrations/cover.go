package integrations

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

type CoverSettings struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

func DefaultCoverSettings() CoverSettings {
	return CoverSettings{MaxWidth: 600, MaxHeight: 900, Quality: 85}
}

// CoverProcessor normalizes cover art to a JPEG that fits the reader screen.
// Backends commonly serve webp, which most EPub readers cannot display.
type CoverProcessor struct {
	settings CoverSettings
}

func NewCoverProcessor(settings CoverSettings) *CoverProcessor {
	return &CoverProcessor{settings: settings}
}

func (p *CoverProcessor) Process(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := p.fit(bounds.Dx(), bounds.Dy())
	if w != bounds.Dx() || h != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.settings.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales width and height down to the configured bounds, keeping the
// aspect ratio. Smaller images are left alone.
func (p *CoverProcessor) fit(width, height int) (int, int) {
	if width <= p.settings.MaxWidth && height <= p.settings.MaxHeight {
		return width, height
	}
	scale := min(
		float64(p.settings.MaxWidth)/float64(width),
		float64(p.settings.MaxHeight)/float64(height),
	)
	return max(int(float64(width)*scale), 1), max(int(float64(height)*scale), 1)
}

// FetchCover downloads cover art. A nil client uses http.DefaultClient.
func FetchCover(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch cover: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch cover: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}

package integrations

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/go-shiori/go-epub"
	"github.com/microcosm-cc/bluemonday"
)

type EPubBuilder struct {
	outputDir string
	policy    *bluemonday.Policy
	cover     *CoverProcessor
}

func NewEPubBuilder(outputDir string) *EPubBuilder {
	if outputDir == "" {
		outputDir, _ = os.MkdirTemp("", "novels-epub-*")
	}
	return &EPubBuilder{
		outputDir: outputDir,
		policy:    bluemonday.UGCPolicy(),
		cover:     NewCoverProcessor(DefaultCoverSettings()),
	}
}

func (p *EPubBuilder) OutputDir() string { return p.outputDir }

// CreateEPub compiles the published chapters of a book into a single EPub.
// cover may be nil.
func (p *EPubBuilder) CreateEPub(book data.Book, author string, chapters []data.Chapter, cover []byte) (string, error) {
	published := make([]data.Chapter, 0, len(chapters))
	for _, c := range chapters {
		if c.IsPublished {
			published = append(published, c)
		}
	}
	if len(published) == 0 {
		return "", fmt.Errorf("no published chapters to compile")
	}
	sort.SliceStable(published, func(i, j int) bool {
		return published[i].ChapterNumber < published[j].ChapterNumber
	})

	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	e, err := epub.NewEpub(book.Title)
	if err != nil {
		return "", fmt.Errorf("failed to create EPub: %w", err)
	}
	if author != "" {
		e.SetAuthor(author)
	}
	if book.Description != "" {
		e.SetDescription(p.policy.Sanitize(book.Description))
	}
	e.SetLang("en")
	e.SetIdentifier("urn:novels:book:" + book.ID.String())

	if len(cover) > 0 {
		// go-epub reads media files at Write time.
		coverPath, err := p.addCover(e, book, cover)
		if coverPath != "" {
			defer os.Remove(coverPath)
		}
		if err != nil {
			return "", err
		}
	}

	for _, chapter := range published {
		title := ChapterTitle(chapter)
		if _, err := e.AddSection(p.chapterHTML(title, chapter), title, "", ""); err != nil {
			return "", fmt.Errorf("failed to add chapter %d: %w", chapter.ChapterNumber, err)
		}
	}

	outputPath := filepath.Join(p.outputDir, sanitizeFilename(book.Title)+".epub")
	if err := e.Write(outputPath); err != nil {
		return "", fmt.Errorf("failed to write EPub: %w", err)
	}
	return outputPath, nil
}

func (p *EPubBuilder) addCover(e *epub.Epub, book data.Book, raw []byte) (string, error) {
	processed, err := p.cover.Process(raw)
	if err != nil {
		return "", fmt.Errorf("cover: %w", err)
	}
	coverPath := filepath.Join(p.outputDir, sanitizeFilename(book.Title)+"-cover.jpg")
	if err := os.WriteFile(coverPath, processed, 0o644); err != nil {
		return "", fmt.Errorf("write cover: %w", err)
	}

	internal, err := e.AddImage(coverPath, "cover.jpg")
	if err != nil {
		return coverPath, fmt.Errorf("add cover: %w", err)
	}
	if err := e.SetCover(internal, ""); err != nil {
		return coverPath, fmt.Errorf("set cover: %w", err)
	}
	return coverPath, nil
}

// chapterHTML renders paragraphs separated by blank lines. Any markup in the
// chapter text goes through the sanitizer first.
func (p *EPubBuilder) chapterHTML(title string, chapter data.Chapter) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title))
	for _, para := range strings.Split(chapter.Text(), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		clean := p.policy.Sanitize(para)
		clean = strings.ReplaceAll(clean, "\n", "<br/>")
		fmt.Fprintf(&b, "<p>%s</p>\n", clean)
	}
	return b.String()
}

func ChapterTitle(c data.Chapter) string {
	if c.Title == "" {
		return fmt.Sprintf("Chapter %d", c.ChapterNumber)
	}
	return fmt.Sprintf("Chapter %d: %s", c.ChapterNumber, c.Title)
}

// sanitizeFilename removes characters that are invalid in filenames
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	result = strings.Trim(result, ".")
	if result == "" {
		return "book"
	}
	return result
}

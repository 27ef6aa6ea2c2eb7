package components

import (
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/microcosm-cc/bluemonday"
)

const interactiveNotice = "> **Interactive chapter.** Choices are not supported in the terminal yet; showing the text of every node.\n\n"

var (
	stripPolicy = bluemonday.StrictPolicy()
	blockTags   = regexp.MustCompile(`(?i)</p\s*>|<br\s*/?>|</div\s*>|</h[1-6]\s*>`)
	blankRuns   = regexp.MustCompile(`\n{3,}`)
)

// PlainText turns chapter HTML into paragraphs of plain text.
func PlainText(raw string) string {
	text := blockTags.ReplaceAllString(raw, "\n\n")
	text = stripPolicy.Sanitize(text)
	text = html.UnescapeString(text)
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	text = strings.Join(lines, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// RenderChapter renders chapter content for the terminal, wrapped to width.
// theme is a glamour standard style name.
func RenderChapter(ch data.Chapter, width int, theme string) (string, error) {
	body := PlainText(ch.Text())
	if ch.ContentType == data.ContentInteractive {
		body = interactiveNotice + body
	}
	if body == "" {
		body = "_This chapter has no content._"
	}
	if theme == "" {
		theme = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(body)
}

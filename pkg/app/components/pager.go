package components

import (
	"fmt"
	"strings"

	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
)

// Pager renders the page window with the current page highlighted.
func Pager(current, total int) string {
	if total <= 1 {
		return ""
	}
	var parts []string
	if current > 1 {
		parts = append(parts, styles.MutedStyle.Render("‹"))
	}
	for _, p := range browse.PageWindow(current, total) {
		if p == current {
			parts = append(parts, styles.SelectedStyle.Render(fmt.Sprintf("[%d]", p)))
			continue
		}
		parts = append(parts, styles.MutedStyle.Render(fmt.Sprintf("%d", p)))
	}
	if current < total {
		parts = append(parts, styles.MutedStyle.Render("›"))
	}
	return strings.Join(parts, " ")
}

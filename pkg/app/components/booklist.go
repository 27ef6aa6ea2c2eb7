package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
)

type BookList struct {
	Items         []data.Book
	SelectedIndex int
	Width         int
	Height        int
	EmptyMessage  string
}

func NewBookList() *BookList {
	return &BookList{
		Items:        []data.Book{},
		Width:        80,
		Height:       20,
		EmptyMessage: "No books found",
	}
}

func (l *BookList) SetItems(items []data.Book) {
	l.Items = items
	if l.SelectedIndex >= len(items) && len(items) > 0 {
		l.SelectedIndex = len(items) - 1
	}
	if len(items) == 0 {
		l.SelectedIndex = 0
	}
}

func (l *BookList) Next() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex++
	if l.SelectedIndex >= len(l.Items) {
		l.SelectedIndex = 0
	}
}

func (l *BookList) Prev() {
	if len(l.Items) == 0 {
		return
	}
	l.SelectedIndex--
	if l.SelectedIndex < 0 {
		l.SelectedIndex = len(l.Items) - 1
	}
}

func (l *BookList) Selected() *data.Book {
	if len(l.Items) == 0 || l.SelectedIndex >= len(l.Items) {
		return nil
	}
	return &l.Items[l.SelectedIndex]
}

// Remove drops the book with id and keeps the selection in range.
func (l *BookList) Remove(id data.ID) {
	out := l.Items[:0:0]
	for _, b := range l.Items {
		if b.ID != id {
			out = append(out, b)
		}
	}
	l.SetItems(out)
}

// visible returns the window of items that fits in Height, keeping the
// selection on screen. Each card takes four lines.
func (l *BookList) visible() (int, int) {
	per := max(l.Height/4, 1)
	start := 0
	if l.SelectedIndex >= per {
		start = l.SelectedIndex - per + 1
	}
	return start, min(start+per, len(l.Items))
}

func (l *BookList) View() string {
	if len(l.Items) == 0 {
		return lipgloss.Place(l.Width, min(l.Height, 5), lipgloss.Center, lipgloss.Center,
			styles.MutedStyle.Render(l.EmptyMessage))
	}

	var b strings.Builder
	start, end := l.visible()
	for i := start; i < end; i++ {
		book := l.Items[i]
		cardStyle := styles.CardStyle
		if i == l.SelectedIndex {
			cardStyle = styles.ActiveCardStyle
		}

		title := styles.SelectedStyle.Render(book.Title)
		status := styles.StatusStyle(book.Status).Render(string(book.Status))
		meta := styles.MutedStyle.Render(fmt.Sprintf("%s · %d views · %d likes · %.1f (%d)",
			orDash(book.Genre), book.TotalViews, book.TotalLikes, book.AverageRating, book.TotalRatings))

		header := lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", status)
		card := cardStyle.Width(max(l.Width-4, 20)).Render(lipgloss.JoinVertical(lipgloss.Left, header, meta))
		b.WriteString(card)
		b.WriteString("\n")
	}
	if end < len(l.Items) || start > 0 {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%d/%d", l.SelectedIndex+1, len(l.Items))))
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
)

// printTable renders rows once, without focus, the way list views do.
func printTable(columns []table.Column, rows []table.Row) {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	// Nothing is focused; keep the first row from looking selected.
	s.Selected = s.Cell
	t.SetStyles(s)

	fmt.Println(t.View())
}

func bookColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Title", Width: 36},
		{Title: "Genre", Width: 16},
		{Title: "Status", Width: 10},
		{Title: "Rating", Width: 8},
		{Title: "Views", Width: 8},
		{Title: "Likes", Width: 6},
	}
}

func bookRow(b data.Book) table.Row {
	return table.Row{
		b.ID.String(),
		styles.Truncate(b.Title, 34),
		styles.Truncate(b.Genre, 14),
		string(b.Status),
		fmt.Sprintf("%.1f", b.AverageRating),
		fmt.Sprintf("%d", b.TotalViews),
		fmt.Sprintf("%d", b.TotalLikes),
	}
}

func printBooks(books []data.Book) {
	rows := make([]table.Row, 0, len(books))
	for _, b := range books {
		rows = append(rows, bookRow(b))
	}
	printTable(bookColumns(), rows)
}

func chapterState(ch data.Chapter) string {
	var parts []string
	if ch.IsPublished {
		parts = append(parts, "published")
	} else {
		parts = append(parts, "draft")
	}
	if ch.ContentType == data.ContentInteractive {
		parts = append(parts, "interactive")
	}
	return strings.Join(parts, ", ")
}

func printChapters(chapters []data.Chapter) {
	columns := []table.Column{
		{Title: "No.", Width: 5},
		{Title: "ID", Width: 6},
		{Title: "Title", Width: 40},
		{Title: "Words", Width: 7},
		{Title: "State", Width: 22},
	}
	rows := make([]table.Row, 0, len(chapters))
	for _, ch := range chapters {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", ch.ChapterNumber),
			ch.ID.String(),
			styles.Truncate(ch.Title, 38),
			fmt.Sprintf("%d", ch.WordCount),
			chapterState(ch),
		})
	}
	printTable(columns, rows)
}

package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ethan2004g/interactive-web-novels/pkg/app/components"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/services"
	"github.com/spf13/cobra"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Browse published books",
	Long: `Browse published books.

Filters can be given as flags or as a browse query string, e.g.
  novels books --query 'genre=Fantasy&sort_by=rating&order=desc'
  novels books --featured
  novels books --search dragons --page 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := filtersFromFlags(cmd)
		if err != nil {
			return err
		}
		page, err := rt.services.Books.List(cmd.Context(), filters)
		if err != nil {
			return fmt.Errorf("list books: %w", err)
		}
		if len(page.Items) == 0 {
			fmt.Println("📚 No books found. Try adjusting your search or filters.")
			return nil
		}
		fmt.Printf("\n📚 Books (%d found, sorted by %s)\n\n", page.Total, filters.SortLabel())
		printBooks(page.Items)
		fmt.Println(components.Pager(page.Page, page.Pages))
		return nil
	},
}

// filtersFromFlags starts from --query and lets the explicit flags win.
func filtersFromFlags(cmd *cobra.Command) (browse.Filters, error) {
	flags := cmd.Flags()
	query, _ := flags.GetString("query")
	values, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return browse.Filters{}, fmt.Errorf("parse --query: %w", err)
	}
	if featured, _ := flags.GetBool("featured"); featured {
		values.Set("filter", "featured")
	}
	if trending, _ := flags.GetBool("trending"); trending {
		values.Set("filter", "trending")
	}
	for _, name := range []string{"search", "genre", "status", "author", "tags", "sort", "order"} {
		if !flags.Changed(name) {
			continue
		}
		v, _ := flags.GetString(name)
		switch name {
		case "author":
			values.Set("author_id", v)
		case "sort":
			values.Set("sort_by", v)
		default:
			values.Set(name, v)
		}
	}
	if flags.Changed("page") {
		n, _ := flags.GetInt("page")
		values.Set("page", fmt.Sprint(n))
	}
	if !values.Has("page_size") {
		n, _ := flags.GetInt("page-size")
		if n <= 0 {
			n = rt.cfg.PageSize
		}
		values.Set("page_size", fmt.Sprint(n))
	}
	return browse.ParseFilters(values), nil
}

var bookCmd = &cobra.Command{
	Use:   "book <book-id>",
	Short: "Show a book and its published chapters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		bookID := data.ID(args[0])
		signedIn := rt.session.Load(ctx) == nil && rt.session.IsAuthenticated()

		page, err := rt.services.LoadBookPage(ctx, bookID, signedIn)
		if err != nil {
			return fmt.Errorf("load book %s: %w", bookID, err)
		}
		b := page.Book

		fmt.Println(styles.TitleStyle.Render(b.Title))
		author := "unknown author"
		if u, err := rt.services.Users.Get(ctx, b.AuthorID); err == nil {
			author = u.Username
		}
		fmt.Printf("by %s · %s · %s\n", author, orDash(b.Genre), styles.StatusStyle(b.Status).Render(string(b.Status)))
		fmt.Printf("%s %.1f (%d ratings) · %d views · %d likes\n",
			styles.Stars(int(b.AverageRating+0.5)), b.AverageRating, b.TotalRatings, b.TotalViews, b.TotalLikes)
		if len(b.Tags) > 0 {
			fmt.Printf("tags: %s\n", strings.Join(b.Tags, ", "))
		}
		if b.Description != "" {
			fmt.Printf("\n%s\n", b.Description)
		}

		if signedIn {
			fmt.Println()
			printLookup("Bookmarked", page.Bookmarked, func(v bool) string {
				if v {
					return "yes"
				}
				return "no"
			})
			printLookup("Your rating", page.MyRating, func(r data.Rating) string { return styles.Stars(r.Rating) })
			printLookup("Progress", page.Progress, func(p data.ReadingProgress) string {
				return fmt.Sprintf("chapter %s, %.0f%%", p.ChapterID, p.ProgressPercentage)
			})
		}

		fmt.Printf("\n📖 Chapters (%d)\n\n", len(page.Chapters))
		if len(page.Chapters) == 0 {
			fmt.Println("No chapters published yet.")
			return nil
		}
		printChapters(page.Chapters)
		return nil
	},
}

func printLookup[T any](label string, l services.Lookup[T], format func(T) string) {
	switch l.Status {
	case services.Found:
		fmt.Printf("%-12s %s\n", label+":", format(l.Value))
	case services.NotFound:
		fmt.Printf("%-12s %s\n", label+":", "none")
	case services.Failed:
		fmt.Printf("%-12s %s\n", label+":", styles.StatusError.Render("unavailable"))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	f := booksCmd.Flags()
	f.String("query", "", "Browse query string (search, genre, status, tags, sort_by, order, page, page_size, filter)")
	f.StringP("search", "s", "", "Search title and description")
	f.StringP("genre", "g", "", "Genre")
	f.String("status", "", "Status: ongoing, completed or draft")
	f.String("author", "", "Author id")
	f.String("tags", "", "Comma separated tags")
	f.String("sort", "", "Sort field: created_at, views, rating, likes or title")
	f.String("order", "", "asc or desc")
	f.Int("page", 1, "Page number")
	f.Int("page-size", 0, "Books per page (default from config)")
	f.Bool("featured", false, "Completed books by rating")
	f.Bool("trending", false, "Most viewed books")
}

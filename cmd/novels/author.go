package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/ethan2004g/interactive-web-novels/pkg/services"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var myBooksCmd = &cobra.Command{
	Use:   "mybooks",
	Short: "List the books you have written",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireAuthor(cmd.Context()); err != nil {
			return err
		}
		filters, err := filtersFromFlags(cmd)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("page-size") {
			filters.PageSize = 0
		}
		page, err := rt.services.Books.MyBooks(cmd.Context(), filters)
		if err != nil {
			return fmt.Errorf("list my books: %w", err)
		}
		if page.Total == 0 {
			fmt.Println("✍️  No books yet. Start with 'novels mybooks create --title ...'.")
			return nil
		}
		fmt.Printf("\n✍️  My books (%d)\n\n", page.Total)
		printBooks(page.Items)
		return nil
	},
}

var myBooksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a book",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireAuthor(cmd.Context()); err != nil {
			return err
		}
		in := bookInputFromFlags(cmd.Flags())
		b, err := rt.services.Books.Create(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("create book: %w", err)
		}
		fmt.Printf("✅ Created %q (ID: %s, %s)\n", b.Title, b.ID, b.Status)
		return nil
	},
}

var myBooksUpdateCmd = &cobra.Command{
	Use:   "update <book-id>",
	Short: "Update fields of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireAuthor(cmd.Context()); err != nil {
			return err
		}
		in := bookInputFromFlags(cmd.Flags())
		b, err := rt.services.Books.Update(cmd.Context(), data.ID(args[0]), in)
		if err != nil {
			return fmt.Errorf("update book: %w", err)
		}
		fmt.Printf("✅ Updated %q\n", b.Title)
		return nil
	},
}

var myBooksDeleteCmd = &cobra.Command{
	Use:   "delete <book-id>",
	Short: "Delete a book and all of its chapters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireAuthor(cmd.Context()); err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm("Are you sure you want to delete this book? This action cannot be undone.") {
			return errors.New("cancelled")
		}
		if err := rt.services.Books.Delete(cmd.Context(), data.ID(args[0])); err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		fmt.Println("🗑️  Book deleted.")
		return nil
	},
}

var myBooksStatsCmd = &cobra.Command{
	Use:   "stats <book-id>",
	Short: "Show the statistics of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := rt.services.Books.Stats(cmd.Context(), data.ID(args[0]))
		if err != nil {
			return fmt.Errorf("book stats: %w", err)
		}
		fmt.Printf("views:     %d\n", stats.TotalViews)
		fmt.Printf("likes:     %d\n", stats.TotalLikes)
		fmt.Printf("ratings:   %d (avg %.1f)\n", stats.TotalRatings, stats.AverageRating)
		fmt.Printf("comments:  %d\n", stats.TotalComments)
		fmt.Printf("bookmarks: %d\n", stats.TotalBookmarks)
		return nil
	},
}

// bookInputFromFlags only carries the flags that were given, so update
// leaves the rest untouched.
func bookInputFromFlags(f *pflag.FlagSet) data.BookInput {
	var in data.BookInput
	if f.Changed("title") {
		in.Title, _ = f.GetString("title")
	}
	if f.Changed("description") {
		in.Description, _ = f.GetString("description")
	}
	if f.Changed("genre") {
		in.Genre, _ = f.GetString("genre")
	}
	if f.Changed("cover") {
		in.CoverImageURL, _ = f.GetString("cover")
	}
	if f.Changed("status") {
		s, _ := f.GetString("status")
		in.Status = data.BookStatus(s)
	}
	if f.Changed("tags") {
		tags, _ := f.GetStringSlice("tags")
		for _, t := range tags {
			if t = strings.TrimSpace(t); t != "" {
				in.Tags = append(in.Tags, t)
			}
		}
	}
	return in
}

func addBookFlags(f *pflag.FlagSet) {
	f.String("title", "", "Title")
	f.String("description", "", "Description")
	f.String("genre", "", "Genre, e.g. "+strings.Join(browse.Genres[:3], ", "))
	f.StringSlice("tags", nil, "Comma separated tags")
	f.String("cover", "", "Cover image URL")
	f.String("status", "", "draft, ongoing or completed")
}

var chaptersCmd = &cobra.Command{
	Use:   "chapters <book-id>",
	Short: "List every chapter of one of your books, drafts included",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireAuthor(cmd.Context()); err != nil {
			return err
		}
		chapters, err := rt.services.Chapters.List(cmd.Context(), data.ID(args[0]), services.ChapterFilters{})
		if err != nil {
			return fmt.Errorf("list chapters: %w", err)
		}
		if len(chapters) == 0 {
			fmt.Println("No chapters yet. Use 'novels chapters create <book-id> --title ...'.")
			return nil
		}
		printChapters(sortByNumber(chapters))
		return nil
	},
}

var chaptersCreateCmd = &cobra.Command{
	Use:   "create <book-id>",
	Short: "Write a new chapter",
	Long: `Write a new chapter. The text comes from --text, --file or stdin ("-").
Without --number the chapter goes after the last one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireAuthor(cmd.Context()); err != nil {
			return err
		}
		in, err := chapterInputFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		ch, err := rt.services.Chapters.Create(cmd.Context(), data.ID(args[0]), in)
		if err != nil {
			return fmt.Errorf("create chapter: %w", err)
		}
		fmt.Printf("✅ Chapter %d %q created (ID: %s, %s)\n", ch.ChapterNumber, ch.Title, ch.ID, chapterState(*ch))
		return nil
	},
}

var chaptersUpdateCmd = &cobra.Command{
	Use:   "update <book-id> <chapter-id>",
	Short: "Update a chapter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireAuthor(cmd.Context()); err != nil {
			return err
		}
		in, err := chapterInputFromFlags(cmd.Flags())
		if err != nil {
			return err
		}
		ch, err := rt.services.Chapters.Update(cmd.Context(), data.ID(args[0]), data.ID(args[1]), in)
		if err != nil {
			return fmt.Errorf("update chapter: %w", err)
		}
		fmt.Printf("✅ Chapter %d %q updated (%s)\n", ch.ChapterNumber, ch.Title, chapterState(*ch))
		return nil
	},
}

var chaptersDeleteCmd = &cobra.Command{
	Use:   "delete <book-id> <chapter-id>",
	Short: "Delete a chapter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireAuthor(cmd.Context()); err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm("Are you sure you want to delete this chapter? This action cannot be undone.") {
			return errors.New("cancelled")
		}
		if err := rt.services.Chapters.Delete(cmd.Context(), data.ID(args[0]), data.ID(args[1])); err != nil {
			return fmt.Errorf("delete chapter: %w", err)
		}
		fmt.Println("🗑️  Chapter deleted.")
		return nil
	},
}

var chaptersReorderCmd = &cobra.Command{
	Use:   "reorder <book-id> <chapter-id>...",
	Short: "Set the chapter order; chapters are renumbered from 1",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireAuthor(cmd.Context()); err != nil {
			return err
		}
		ids := make([]data.ID, 0, len(args)-1)
		for _, a := range args[1:] {
			ids = append(ids, data.ID(a))
		}
		chapters, err := rt.services.Chapters.Reorder(cmd.Context(), data.ID(args[0]), ids)
		if err != nil {
			return fmt.Errorf("reorder chapters: %w", err)
		}
		printChapters(sortByNumber(chapters))
		return nil
	},
}

func chapterInputFromFlags(f *pflag.FlagSet) (data.ChapterInput, error) {
	var in data.ChapterInput
	in.Title, _ = f.GetString("title")
	in.ChapterNumber, _ = f.GetInt("number")

	text, _ := f.GetString("text")
	if path, _ := f.GetString("file"); path != "" {
		var raw []byte
		var err error
		if path == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(path)
		}
		if err != nil {
			return in, fmt.Errorf("read chapter text: %w", err)
		}
		text = string(raw)
	}
	if text != "" {
		in.ContentType = data.ContentSimple
		in.ContentData = data.SimpleContent(text)
	}

	switch {
	case f.Changed("publish"):
		v, _ := f.GetBool("publish")
		in.IsPublished = &v
	case f.Changed("draft"):
		v, _ := f.GetBool("draft")
		published := !v
		in.IsPublished = &published
	}
	return in, nil
}

func addChapterFlags(f *pflag.FlagSet) {
	f.String("title", "", "Chapter title")
	f.Int("number", 0, "Chapter number")
	f.String("text", "", "Chapter text")
	f.String("file", "", "Read the chapter text from a file, - for stdin")
	f.Bool("publish", false, "Publish the chapter")
	f.Bool("draft", false, "Keep the chapter as a draft")
}

func sortByNumber(chapters []data.Chapter) []data.Chapter {
	out := append([]data.Chapter(nil), chapters...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ChapterNumber < out[j].ChapterNumber })
	return out
}

func init() {
	f := myBooksCmd.Flags()
	f.String("query", "", "Filter query string (search, genre, status, tags, sort_by, order)")
	f.StringP("search", "s", "", "Search title and description")
	f.StringP("genre", "g", "", "Genre")
	f.String("status", "", "Status: ongoing, completed or draft")
	f.String("author", "", "unused for my books")
	f.String("tags", "", "Comma separated tags")
	f.String("sort", "", "Sort field: created_at, views, rating, likes or title")
	f.String("order", "", "asc or desc")
	f.Int("page", 1, "Page number")
	f.Int("page-size", 0, "Books per page (default: all)")
	f.Bool("featured", false, "Completed books by rating")
	f.Bool("trending", false, "Most viewed books")
	_ = f.MarkHidden("author")

	addBookFlags(myBooksCreateCmd.Flags())
	addBookFlags(myBooksUpdateCmd.Flags())
	myBooksDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	myBooksCmd.AddCommand(myBooksCreateCmd, myBooksUpdateCmd, myBooksDeleteCmd, myBooksStatsCmd)

	addChapterFlags(chaptersCreateCmd.Flags())
	addChapterFlags(chaptersUpdateCmd.Flags())
	chaptersDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	chaptersCmd.AddCommand(chaptersCreateCmd, chaptersUpdateCmd, chaptersDeleteCmd, chaptersReorderCmd)
}

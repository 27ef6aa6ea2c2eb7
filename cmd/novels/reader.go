package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/spf13/cobra"
)

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "List your bookmarked books",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireUser(cmd.Context()); err != nil {
			return err
		}
		bookmarks, err := rt.services.Reader.Bookmarks(cmd.Context())
		if err != nil {
			return fmt.Errorf("list bookmarks: %w", err)
		}
		if len(bookmarks) == 0 {
			fmt.Println("🔖 No bookmarks yet. Use 'novels bookmarks add <book-id>'.")
			return nil
		}
		books := make([]data.Book, 0, len(bookmarks))
		for _, bm := range bookmarks {
			if bm.Book != nil {
				books = append(books, *bm.Book)
			} else {
				books = append(books, data.Book{ID: bm.BookID, Title: "(unavailable)"})
			}
		}
		fmt.Printf("\n🔖 Bookmarks (%d)\n\n", len(books))
		printBooks(books)
		return nil
	},
}

var bookmarksAddCmd = &cobra.Command{
	Use:   "add <book-id>",
	Short: "Bookmark a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireUser(cmd.Context()); err != nil {
			return err
		}
		if _, err := rt.services.Reader.AddBookmark(cmd.Context(), data.ID(args[0])); err != nil {
			return fmt.Errorf("add bookmark: %w", err)
		}
		fmt.Println("🔖 Bookmarked.")
		return nil
	},
}

var bookmarksRemoveCmd = &cobra.Command{
	Use:     "rm <book-id>",
	Aliases: []string{"remove"},
	Short:   "Remove a bookmark",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireUser(cmd.Context()); err != nil {
			return err
		}
		removed, err := rt.services.Reader.RemoveBookmark(cmd.Context(), data.ID(args[0]))
		if err != nil {
			return fmt.Errorf("remove bookmark: %w", err)
		}
		if !removed {
			fmt.Println("That book was not bookmarked.")
			return nil
		}
		fmt.Println("🗑️  Bookmark removed.")
		return nil
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate <book-id> <1-5>",
	Short: "Rate a book, replacing any earlier rating",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stars, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("rating must be a number from 1 to 5")
		}
		if _, err := rt.requireUser(cmd.Context()); err != nil {
			return err
		}
		r, err := rt.services.Reader.SetRating(cmd.Context(), data.ID(args[0]), stars)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		fmt.Printf("Rated %s\n", styles.Stars(r.Rating))
		return nil
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments <chapter-id>",
	Short: "Show the comment thread of a chapter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comments, err := rt.services.Reader.Comments(cmd.Context(), data.ID(args[0]))
		if err != nil {
			return fmt.Errorf("list comments: %w", err)
		}
		if len(comments) == 0 {
			fmt.Println("💬 No comments yet. Be the first to comment!")
			return nil
		}
		columns := []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Author", Width: 14},
			{Title: "When", Width: 16},
			{Title: "Comment", Width: 60},
		}
		var rows []table.Row
		browse.Walk(browse.CommentTree(comments), func(n *browse.CommentNode) {
			author := "anonymous"
			if n.Comment.User != nil {
				author = n.Comment.User.Username
			}
			when := ""
			if t := n.Comment.ParsedCreatedAt(); !t.IsZero() {
				when = t.Local().Format("2006-01-02 15:04")
			}
			text := strings.Repeat("  ", n.Depth) + strings.ReplaceAll(n.Comment.Content, "\n", " ")
			rows = append(rows, table.Row{n.Comment.ID.String(), author, when, styles.Truncate(text, 58)})
		})
		fmt.Printf("\n💬 Comments (%d)\n\n", len(rows))
		printTable(columns, rows)
		return nil
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <chapter-id> <text>",
	Short: "Post a comment, or a reply with --reply-to",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireUser(cmd.Context()); err != nil {
			return err
		}
		parent, _ := cmd.Flags().GetString("reply-to")
		text := strings.Join(args[1:], " ")
		c, err := rt.services.Reader.AddComment(cmd.Context(), data.ID(args[0]), text, data.ID(parent))
		if err != nil {
			return fmt.Errorf("add comment: %w", err)
		}
		fmt.Printf("💬 Comment %s posted.\n", c.ID)
		return nil
	},
}

var commentsRemoveCmd = &cobra.Command{
	Use:     "rm <comment-id>",
	Aliases: []string{"remove"},
	Short:   "Delete one of your comments",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireUser(cmd.Context()); err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes && !confirm("Are you sure you want to delete this comment?") {
			return errors.New("cancelled")
		}
		if err := rt.services.Reader.DeleteComment(cmd.Context(), data.ID(args[0])); err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		fmt.Println("🗑️  Comment deleted.")
		return nil
	},
}

// confirm asks a y/N question on stdin.
func confirm(question string) bool {
	answer, err := prompt(question + " [y/N] ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func init() {
	bookmarksCmd.AddCommand(bookmarksAddCmd, bookmarksRemoveCmd)

	commentsAddCmd.Flags().String("reply-to", "", "Parent comment id")
	commentsRemoveCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	commentsCmd.AddCommand(commentsAddCmd, commentsRemoveCmd)
}

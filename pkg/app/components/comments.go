package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/browse"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
)

// CommentThread is a navigable, flattened view of a comment tree.
type CommentThread struct {
	Nodes         []*browse.CommentNode
	SelectedIndex int
	Width         int
}

func NewCommentThread() *CommentThread {
	return &CommentThread{Width: 80}
}

// SetComments rebuilds the thread from a flat or nested comment list.
func (c *CommentThread) SetComments(comments []data.Comment) {
	c.Nodes = c.Nodes[:0]
	browse.Walk(browse.CommentTree(comments), func(n *browse.CommentNode) {
		c.Nodes = append(c.Nodes, n)
	})
	c.SelectedIndex = min(c.SelectedIndex, max(len(c.Nodes)-1, 0))
}

func (c *CommentThread) Next() {
	if c.SelectedIndex < len(c.Nodes)-1 {
		c.SelectedIndex++
	}
}

func (c *CommentThread) Prev() {
	if c.SelectedIndex > 0 {
		c.SelectedIndex--
	}
}

func (c *CommentThread) Selected() *data.Comment {
	if len(c.Nodes) == 0 {
		return nil
	}
	return &c.Nodes[c.SelectedIndex].Comment
}

func (c *CommentThread) View() string {
	if len(c.Nodes) == 0 {
		return styles.MutedStyle.Render("No comments yet. Be the first to comment!")
	}

	var b strings.Builder
	for i, n := range c.Nodes {
		indent := strings.Repeat("  ", min(n.Depth, 6))
		author := "anonymous"
		if n.Comment.User != nil && n.Comment.User.Username != "" {
			author = n.Comment.User.Username
		}
		when := ""
		if t := n.Comment.ParsedCreatedAt(); !t.IsZero() {
			when = t.Format("2006-01-02 15:04")
		}

		head := fmt.Sprintf("%s%s %s", indent, styles.SubtitleStyle.Render(author), styles.MutedStyle.Render(when))
		if i == c.SelectedIndex {
			head = styles.SelectedStyle.Render("›") + head
		} else {
			head = " " + head
		}
		body := lipgloss.NewStyle().
			PaddingLeft(len(indent) + 3).
			Width(max(c.Width-2, 20)).
			Render(n.Comment.Content)

		b.WriteString(head)
		b.WriteString("\n")
		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}

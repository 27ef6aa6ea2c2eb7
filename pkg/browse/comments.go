package browse

import (
	"slices"
	"sort"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
)

// CommentNode is a comment with its replies attached.
type CommentNode struct {
	Comment data.Comment
	Replies []*CommentNode
	Depth   int
}

// CommentTree assembles flat comments into threads by parent_comment_id.
// Replies whose parent is missing, or that sit in a parent cycle, are
// promoted to roots. Siblings are ordered
// by creation time.
func CommentTree(comments []data.Comment) []*CommentNode {
	nodes := make(map[data.ID]*CommentNode, len(comments))
	flat := flatten(comments)
	for _, c := range flat {
		c.Replies = nil
		nodes[c.ID] = &CommentNode{Comment: c}
	}

	var roots []*CommentNode
	for _, c := range flat {
		node := nodes[c.ID]
		parent, ok := nodes[c.ParentCommentID]
		if c.ParentCommentID == "" || !ok || parent == node {
			roots = append(roots, node)
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}

	// Comments in a parent cycle are unreachable from any root. The first one
	// of each cycle is cut loose and becomes a root itself.
	reached := make(map[*CommentNode]bool, len(nodes))
	Walk(roots, func(n *CommentNode) { reached[n] = true })
	for _, c := range flat {
		node := nodes[c.ID]
		if reached[node] {
			continue
		}
		parent := nodes[c.ParentCommentID]
		parent.Replies = slices.DeleteFunc(parent.Replies, func(n *CommentNode) bool { return n == node })
		roots = append(roots, node)
		Walk([]*CommentNode{node}, func(n *CommentNode) { reached[n] = true })
	}

	sortNodes(roots, 0)
	return roots
}

// Walk visits every node depth first.
func Walk(nodes []*CommentNode, fn func(*CommentNode)) {
	for _, n := range nodes {
		fn(n)
		Walk(n.Replies, fn)
	}
}

// flatten unrolls replies that the backend already nested, dropping duplicates.
func flatten(comments []data.Comment) []data.Comment {
	seen := make(map[data.ID]bool)
	var out []data.Comment
	var visit func([]data.Comment, data.ID)
	visit = func(list []data.Comment, parent data.ID) {
		for _, c := range list {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			if c.ParentCommentID == "" && parent != "" {
				c.ParentCommentID = parent
			}
			out = append(out, c)
			visit(c.Replies, c.ID)
		}
	}
	visit(comments, "")
	return out
}

func sortNodes(nodes []*CommentNode, depth int) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Comment.ParsedCreatedAt().Before(nodes[j].Comment.ParsedCreatedAt())
	})
	for _, n := range nodes {
		n.Depth = depth
		sortNodes(n.Replies, depth+1)
	}
}

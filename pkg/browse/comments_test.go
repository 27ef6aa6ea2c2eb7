package browse

import (
	"testing"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentTreeFromFlatList(t *testing.T) {
	flat := []data.Comment{
		{ID: "3", ParentCommentID: "1", Content: "reply b", CreatedAt: "2024-01-01T10:05:00"},
		{ID: "1", Content: "root", CreatedAt: "2024-01-01T10:00:00"},
		{ID: "2", ParentCommentID: "1", Content: "reply a", CreatedAt: "2024-01-01T10:01:00"},
		{ID: "4", ParentCommentID: "2", Content: "nested", CreatedAt: "2024-01-01T10:02:00"},
		{ID: "5", ParentCommentID: "404", Content: "orphan", CreatedAt: "2024-01-01T09:00:00"},
	}

	roots := CommentTree(flat)
	require.Len(t, roots, 2)
	assert.Equal(t, "orphan", roots[0].Comment.Content)
	assert.Equal(t, "root", roots[1].Comment.Content)

	replies := roots[1].Replies
	require.Len(t, replies, 2)
	assert.Equal(t, "reply a", replies[0].Comment.Content)
	assert.Equal(t, "reply b", replies[1].Comment.Content)
	require.Len(t, replies[0].Replies, 1)
	assert.Equal(t, 2, replies[0].Replies[0].Depth)
}

func TestCommentTreeFlattensNestedReplies(t *testing.T) {
	nested := []data.Comment{
		{ID: "1", Content: "root", Replies: []data.Comment{
			{ID: "2", Content: "child"},
		}},
		{ID: "2", ParentCommentID: "1", Content: "child"},
	}

	roots := CommentTree(nested)
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Replies, 1)

	var visited []data.ID
	Walk(roots, func(n *CommentNode) { visited = append(visited, n.Comment.ID) })
	assert.Equal(t, []data.ID{"1", "2"}, visited)
}

func TestCommentTreeBreaksParentCycles(t *testing.T) {
	flat := []data.Comment{
		{ID: "1", Content: "root", CreatedAt: "2024-01-01T10:00:00"},
		{ID: "2", ParentCommentID: "3", Content: "a", CreatedAt: "2024-01-01T10:01:00"},
		{ID: "3", ParentCommentID: "2", Content: "b", CreatedAt: "2024-01-01T10:02:00"},
	}

	roots := CommentTree(flat)

	var visited []data.ID
	Walk(roots, func(n *CommentNode) { visited = append(visited, n.Comment.ID) })
	assert.ElementsMatch(t, []data.ID{"1", "2", "3"}, visited)
	require.Len(t, roots, 2)
	assert.Equal(t, data.ID("2"), roots[1].Comment.ID)
	require.Len(t, roots[1].Replies, 1)
	assert.Equal(t, data.ID("3"), roots[1].Replies[0].Comment.ID)
	assert.Equal(t, 1, roots[1].Replies[0].Depth)
}

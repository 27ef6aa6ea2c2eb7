package components

import (
	"strings"
	"testing"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
)

func TestPlainTextStripsMarkup(t *testing.T) {
	raw := `<p>First &amp; <b>bold</b></p><script>alert(1)</script><p>Second<br/>line</p>`
	got := PlainText(raw)

	if strings.Contains(got, "<") {
		t.Errorf("Expected tags removed, got %q", got)
	}
	if strings.Contains(got, "alert") {
		t.Errorf("Expected script body removed, got %q", got)
	}
	if !strings.Contains(got, "First & bold") {
		t.Errorf("Expected unescaped text, got %q", got)
	}
	if !strings.Contains(got, "\n\nSecond") {
		t.Errorf("Expected paragraph break, got %q", got)
	}
}

func TestRenderChapterNotty(t *testing.T) {
	ch := data.Chapter{
		ContentType: data.ContentSimple,
		ContentData: data.SimpleContent("<p>Once upon a time</p>"),
	}
	out, err := RenderChapter(ch, 40, "notty")
	if err != nil {
		t.Fatalf("RenderChapter: %v", err)
	}
	if !strings.Contains(out, "Once upon a time") {
		t.Errorf("Expected text in output, got %q", out)
	}
}

func TestRenderChapterInteractiveNotice(t *testing.T) {
	ch := data.Chapter{
		ContentType: data.ContentInteractive,
		ContentData: map[string]any{"nodes": []any{map[string]any{"text": "Pick a door"}}},
	}
	out, err := RenderChapter(ch, 60, "notty")
	if err != nil {
		t.Fatalf("RenderChapter: %v", err)
	}
	if !strings.Contains(out, "Interactive chapter") || !strings.Contains(out, "Pick a door") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestPager(t *testing.T) {
	if Pager(1, 1) != "" {
		t.Error("Expected no pager for a single page")
	}
	got := Pager(5, 10)
	for _, want := range []string{"[5]", "3", "7", "‹", "›"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in %q", want, got)
		}
	}
	if strings.Contains(Pager(1, 10), "‹") {
		t.Error("Expected no previous marker on first page")
	}
}

func TestCommentThreadFlattensTree(t *testing.T) {
	thread := NewCommentThread()
	thread.SetComments([]data.Comment{
		{ID: "1", Content: "root", CreatedAt: "2024-01-01T10:00:00"},
		{ID: "2", ParentCommentID: "1", Content: "reply", CreatedAt: "2024-01-01T11:00:00", User: &data.CommentAuthor{Username: "bo"}},
		{ID: "3", Content: "later root", CreatedAt: "2024-01-02T10:00:00"},
	})

	if len(thread.Nodes) != 3 {
		t.Fatalf("Expected 3 nodes, got %d", len(thread.Nodes))
	}
	if thread.Nodes[1].Comment.ID != "2" || thread.Nodes[1].Depth != 1 {
		t.Errorf("Expected reply second at depth 1, got %+v", thread.Nodes[1])
	}

	thread.Next()
	thread.Next()
	thread.Next()
	if thread.Selected().ID != "3" {
		t.Errorf("Expected selection clamped at last comment, got %s", thread.Selected().ID)
	}
	if !strings.Contains(thread.View(), "bo") {
		t.Error("Expected author name in view")
	}
}

func TestCommentThreadEmpty(t *testing.T) {
	thread := NewCommentThread()
	if thread.Selected() != nil {
		t.Error("Expected nil selection")
	}
	if !strings.Contains(thread.View(), "No comments yet") {
		t.Error("Expected empty message")
	}
}

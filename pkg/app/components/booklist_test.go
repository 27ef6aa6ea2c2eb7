package components

import (
	"strings"
	"testing"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
)

func threeBooks() []data.Book {
	return []data.Book{
		{ID: "1", Title: "Book 1", Status: data.StatusOngoing},
		{ID: "2", Title: "Book 2", Status: data.StatusDraft},
		{ID: "3", Title: "Book 3", Status: data.StatusCompleted},
	}
}

func TestNewBookList(t *testing.T) {
	list := NewBookList()
	if list == nil {
		t.Fatal("Expected book list to be created")
	}
	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex 0, got %d", list.SelectedIndex)
	}
	if len(list.Items) != 0 {
		t.Errorf("Expected 0 items, got %d", len(list.Items))
	}
}

func TestSetItemsClampsSelection(t *testing.T) {
	list := NewBookList()
	list.SetItems(threeBooks())
	list.SelectedIndex = 2

	list.SetItems(threeBooks()[:1])
	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex clamped to 0, got %d", list.SelectedIndex)
	}

	list.SetItems(nil)
	if list.Selected() != nil {
		t.Error("Expected no selection for empty list")
	}
}

func TestNextPrevWrap(t *testing.T) {
	list := NewBookList()
	list.SetItems(threeBooks())

	list.Next()
	list.Next()
	if list.Selected().ID != "3" {
		t.Errorf("Expected book 3, got %s", list.Selected().ID)
	}
	list.Next()
	if list.SelectedIndex != 0 {
		t.Errorf("Expected wrap to 0, got %d", list.SelectedIndex)
	}
	list.Prev()
	if list.SelectedIndex != 2 {
		t.Errorf("Expected wrap to 2, got %d", list.SelectedIndex)
	}
}

func TestNextPrevEmpty(t *testing.T) {
	list := NewBookList()
	list.Next()
	list.Prev()
	if list.SelectedIndex != 0 {
		t.Errorf("Expected SelectedIndex 0, got %d", list.SelectedIndex)
	}
}

func TestRemove(t *testing.T) {
	list := NewBookList()
	list.SetItems(threeBooks())
	list.SelectedIndex = 2

	list.Remove("3")
	if len(list.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(list.Items))
	}
	if list.Selected().ID != "2" {
		t.Errorf("Expected selection to move to book 2, got %s", list.Selected().ID)
	}
}

func TestRemoveDoesNotAliasCallerSlice(t *testing.T) {
	books := threeBooks()
	list := NewBookList()
	list.SetItems(books)
	list.Remove("1")
	if books[0].ID != "1" {
		t.Error("Remove modified the caller's slice")
	}
}

func TestBookListView(t *testing.T) {
	list := NewBookList()
	if !strings.Contains(list.View(), "No books found") {
		t.Error("Expected empty message")
	}

	list.SetItems(threeBooks())
	view := list.View()
	for _, title := range []string{"Book 1", "Book 2", "Book 3"} {
		if !strings.Contains(view, title) {
			t.Errorf("Expected view to contain %q", title)
		}
	}
}

func TestBookListScrollsToSelection(t *testing.T) {
	list := NewBookList()
	list.Height = 4
	list.SetItems(threeBooks())
	list.SelectedIndex = 2

	view := list.View()
	if !strings.Contains(view, "Book 3") {
		t.Error("Expected selected book on screen")
	}
	if strings.Contains(view, "Book 1") {
		t.Error("Expected first book scrolled off")
	}
}

package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Theme != "dark" || p.ReadingWidth != DefaultReadingWidth {
		t.Fatalf("prefs = %+v, want defaults", p)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	want := Prefs{Theme: "light", ReadingWidth: 100, LastBrowse: "genre=Fantasy&page=2"}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
}

func TestLoadCorruptFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("theme = ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, _ := Load(path)
	if p != Default() {
		t.Fatalf("prefs = %+v, want defaults", p)
	}
}

func TestReadingWidthClamp(t *testing.T) {
	p := Prefs{ReadingWidth: MaxReadingWidth}
	if got := p.Wider().ReadingWidth; got != MaxReadingWidth {
		t.Fatalf("Wider at max = %d", got)
	}
	p = Prefs{ReadingWidth: MinReadingWidth}
	if got := p.Narrower().ReadingWidth; got != MinReadingWidth {
		t.Fatalf("Narrower at min = %d", got)
	}
	if got := (Prefs{ReadingWidth: 80}).Wider().ReadingWidth; got != 90 {
		t.Fatalf("Wider(80) = %d, want 90", got)
	}
}

func TestStoreUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	s := Open(path)
	if err := s.Update(Prefs.NextTheme); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Get().Theme != "light" {
		t.Fatalf("theme = %q, want light", s.Get().Theme)
	}
	reloaded, _ := Load(path)
	if reloaded.Theme != "light" {
		t.Fatalf("persisted theme = %q, want light", reloaded.Theme)
	}
}

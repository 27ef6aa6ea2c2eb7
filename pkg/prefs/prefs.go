// Package prefs persists reader preferences in ~/.config/novels/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethan2004g/interactive-web-novels/pkg/config"
	toml "github.com/pelletier/go-toml/v2"
)

type Prefs struct {
	// Theme is a glamour standard style name.
	Theme        string `toml:"theme"`
	ReadingWidth int    `toml:"reading_width"`
	// LastBrowse is the encoded browse query of the last session.
	LastBrowse string `toml:"last_browse"`
}

const (
	defaultPrefsPath = "~/.config/novels/prefs.toml"
	defaultTheme     = "dark"

	MinReadingWidth     = 40
	MaxReadingWidth     = 120
	ReadingWidthStep    = 10
	DefaultReadingWidth = 80
)

var themes = []string{"dark", "light", "dracula", "tokyo-night", "pink", "notty"}

func Default() Prefs {
	return Prefs{Theme: defaultTheme, ReadingWidth: DefaultReadingWidth}
}

func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path. Missing or unreadable files yield the
// defaults.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		return Default(), nil
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Default(), nil
	}

	p := Default()
	if err := toml.Unmarshal(bytes, &p); err != nil {
		return Default(), nil
	}
	return p.normalized(), nil
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p.normalized())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// Wider returns p with the reading width one step larger, capped.
func (p Prefs) Wider() Prefs {
	p.ReadingWidth = ClampWidth(p.ReadingWidth + ReadingWidthStep)
	return p
}

// Narrower returns p with the reading width one step smaller, floored.
func (p Prefs) Narrower() Prefs {
	p.ReadingWidth = ClampWidth(p.ReadingWidth - ReadingWidthStep)
	return p
}

// NextTheme cycles through the built in themes.
func (p Prefs) NextTheme() Prefs {
	idx := 0
	for i, t := range themes {
		if t == p.Theme {
			idx = i
			break
		}
	}
	p.Theme = themes[(idx+1)%len(themes)]
	return p
}

func ClampWidth(w int) int {
	return min(max(w, MinReadingWidth), MaxReadingWidth)
}

func (p Prefs) normalized() Prefs {
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	if p.ReadingWidth == 0 {
		p.ReadingWidth = DefaultReadingWidth
	}
	p.ReadingWidth = ClampWidth(p.ReadingWidth)
	return p
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return config.ExpandPath(defaultPrefsPath)
	}
	return config.ExpandPath(path)
}

var errNoPath = errors.New("prefs path is empty")

// Store keeps prefs in memory and writes them back on every change.
type Store struct {
	path  string
	prefs Prefs
}

func Open(path string) *Store {
	p, _ := Load(path)
	return &Store{path: path, prefs: p}
}

func (s *Store) Get() Prefs { return s.prefs }

// Update applies fn and saves the result. The in-memory value changes even
// when saving fails.
func (s *Store) Update(fn func(Prefs) Prefs) error {
	s.prefs = fn(s.prefs).normalized()
	if s.path == "" {
		return errNoPath
	}
	return Save(s.path, s.prefs)
}

package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
	"github.com/ethan2004g/interactive-web-novels/pkg/services"
)

// ProgressTracker shows the chapters an export is still fetching.
type ProgressTracker struct {
	active map[string]services.CollectProgress
	done   int
	total  int
	failed error
	width  int
}

func NewProgressTracker(width int) *ProgressTracker {
	return &ProgressTracker{
		active: make(map[string]services.CollectProgress),
		width:  width,
	}
}

func (p *ProgressTracker) Update(progress services.CollectProgress) {
	key := progress.BookID.String() + ":" + progress.ChapterID.String()
	p.total = max(p.total, progress.Total)
	switch progress.Status {
	case "complete":
		delete(p.active, key)
		p.done = max(p.done, progress.Done)
	case "error":
		delete(p.active, key)
		p.failed = progress.Err
	default:
		p.active[key] = progress
	}
}

func (p *ProgressTracker) Clear() {
	p.active = make(map[string]services.CollectProgress)
	p.done, p.total, p.failed = 0, 0, nil
}

func (p *ProgressTracker) HasActive() bool {
	return len(p.active) > 0
}

func (p *ProgressTracker) View() string {
	if p.total == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("Collecting chapters %d/%d", p.done, p.total)))
	b.WriteString("\n")
	b.WriteString(renderProgressBar(p.done, p.total, p.width-4))
	b.WriteString("\n")

	numbers := make([]int, 0, len(p.active))
	for _, progress := range p.active {
		numbers = append(numbers, progress.ChapterNumber)
	}
	sort.Ints(numbers)
	for _, n := range numbers {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("fetching chapter %d", n)))
		b.WriteString("\n")
	}

	if p.failed != nil {
		b.WriteString(styles.StatusError.Render(fmt.Sprintf("Error: %s", p.failed)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderProgressBar(current, total, width int) string {
	if total == 0 || width <= 0 {
		return ""
	}

	filled := int(float64(current) / float64(total) * float64(width))
	filled = min(max(filled, 0), width)

	return styles.ProgressBarStyle.Render(strings.Repeat("█", filled)) +
		styles.ProgressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// ReadingProgress renders a reading percentage as a bar followed by the value.
func ReadingProgress(percentage float64, width int) string {
	pct := min(max(percentage, 0), 100)
	return fmt.Sprintf("%s %3.0f%%", renderProgressBar(int(pct), 100, width), pct)
}

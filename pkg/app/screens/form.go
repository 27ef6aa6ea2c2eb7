package screens

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethan2004g/interactive-web-novels/pkg/app/styles"
)

type field struct {
	label string
	input textinput.Model
}

// form is a column of labelled inputs with an optional text area at the
// bottom. tab and shift+tab move focus.
type form struct {
	fields []field
	area   *textarea.Model
	label  string
	focus  int
}

func newForm(labels ...string) *form {
	f := &form{}
	for _, l := range labels {
		ti := textinput.New()
		ti.CharLimit = 200
		ti.Width = 50
		f.fields = append(f.fields, field{label: l, input: ti})
	}
	f.setFocus(0)
	return f
}

// withArea adds a multi-line field after the inputs.
func (f *form) withArea(label string, width, height int) *form {
	ta := textarea.New()
	ta.SetWidth(width)
	ta.SetHeight(height)
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	f.area = &ta
	f.label = label
	f.setFocus(f.focus)
	return f
}

func (f *form) size() int {
	n := len(f.fields)
	if f.area != nil {
		n++
	}
	return n
}

func (f *form) setFocus(i int) {
	if f.size() == 0 {
		return
	}
	f.focus = (i + f.size()) % f.size()
	for j := range f.fields {
		if j == f.focus {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
	if f.area != nil {
		if f.focus == len(f.fields) {
			f.area.Focus()
		} else {
			f.area.Blur()
		}
	}
}

func (f *form) next() { f.setFocus(f.focus + 1) }
func (f *form) prev() { f.setFocus(f.focus - 1) }

func (f *form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

func (f *form) set(i int, v string) {
	f.fields[i].input.SetValue(v)
	f.fields[i].input.CursorEnd()
}

func (f *form) areaValue() string {
	if f.area == nil {
		return ""
	}
	return f.area.Value()
}

func (f *form) input(i int) *textinput.Model {
	return &f.fields[i].input
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab":
			f.next()
			return nil
		case "shift+tab":
			f.prev()
			return nil
		}
	}
	if f.area != nil && f.focus == len(f.fields) {
		var cmd tea.Cmd
		*f.area, cmd = f.area.Update(msg)
		return cmd
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) view() string {
	var b strings.Builder
	for i, fld := range f.fields {
		style := styles.InputStyle
		if i == f.focus {
			style = styles.FocusedInputStyle
		}
		b.WriteString(styles.SubtitleStyle.Render(fld.label))
		b.WriteString("\n")
		b.WriteString(style.Render(fld.input.View()))
		b.WriteString("\n")
	}
	if f.area != nil {
		b.WriteString(styles.SubtitleStyle.Render(f.label))
		b.WriteString("\n")
		b.WriteString(f.area.View())
		b.WriteString("\n")
	}
	return b.String()
}

// confirmation is a pending y/n question.
type confirmation struct {
	prompt string
	yes    func() tea.Cmd
}

func (c *confirmation) view() string {
	if c == nil {
		return ""
	}
	return styles.StatusDraft.Render(c.prompt + " (y/n)")
}

func errorLine(msg string) string {
	if msg == "" {
		return ""
	}
	return styles.StatusError.Render(msg) + "\n"
}

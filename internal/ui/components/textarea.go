package components

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/Muhsiinn/Jonas-AI/internal/ui/theme"
)

// TextArea wraps bubbles/textarea for free-text answers, notes, and chat
// input. Multi-line, with a labeled caption.
type TextArea struct {
	Model textarea.Model
	Label string
}

// NewTextArea creates a styled multi-line input.
func NewTextArea(label, placeholder string, width, height int) TextArea {
	ta := textarea.New()
	ta.Placeholder = placeholder
	if width > 0 {
		ta.SetWidth(width)
	}
	if height > 0 {
		ta.SetHeight(height)
	}
	return TextArea{Model: ta, Label: label}
}

// Init returns the initial command.
func (t TextArea) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (t TextArea) Update(msg tea.Msg) (TextArea, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the labeled area.
func (t TextArea) View() string {
	if t.Label == "" {
		return t.Model.View()
	}
	return theme.InputLabel.Render(t.Label) + "\n" + t.Model.View()
}

// Value returns the current content.
func (t TextArea) Value() string {
	return t.Model.Value()
}

// SetValue replaces the content.
func (t *TextArea) SetValue(s string) {
	t.Model.SetValue(s)
}

// Focus gives the area keyboard focus.
func (t *TextArea) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes keyboard focus.
func (t *TextArea) Blur() {
	t.Model.Blur()
}

// Focused reports whether the area has focus.
func (t TextArea) Focused() bool {
	return t.Model.Focused()
}

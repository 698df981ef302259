package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Muhsiinn/Jonas-AI/internal/ui/theme"
)

// Choice is a multiple-choice selector. Unlike a quiz widget it does not
// know the correct answer: grading happens server-side after the whole
// lesson is submitted, so before then the component only tracks which
// option the user picked.
type Choice struct {
	Prompt   string
	Options  []string
	Cursor   int
	Chosen   int // -1 until an option is picked
	ReadOnly bool

	// Reveal coloring, set once feedback is available.
	CorrectIndex int // -1 when unknown
}

// NewChoice creates a choice component, optionally restoring a previous
// pick (-1 for none).
func NewChoice(prompt string, options []string, chosen int) Choice {
	cursor := 0
	if chosen >= 0 && chosen < len(options) {
		cursor = chosen
	}
	return Choice{
		Prompt:       prompt,
		Options:      options,
		Cursor:       cursor,
		Chosen:       chosen,
		CorrectIndex: -1,
	}
}

// Update handles navigation and selection. It returns true when the pick
// changed, so the caller can persist it.
func (c Choice) Update(msg tea.Msg) (Choice, bool) {
	if c.ReadOnly {
		return c, false
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, false
	}

	switch kmsg.String() {
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		}
	case "down", "j":
		if c.Cursor < len(c.Options)-1 {
			c.Cursor++
		}
	case "enter", "space":
		if c.Chosen != c.Cursor {
			c.Chosen = c.Cursor
			return c, true
		}
	case "1", "2", "3", "4":
		i := int(kmsg.String()[0] - '1')
		if i < len(c.Options) && c.Chosen != i {
			c.Cursor = i
			c.Chosen = i
			return c, true
		}
	}

	return c, false
}

// View renders the prompt and options.
func (c Choice) View() string {
	s := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(c.Prompt) + "\n\n"

	labels := []string{"A", "B", "C", "D", "E", "F"}

	for i, opt := range c.Options {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		marker := "  "
		if i == c.Chosen {
			marker = "● "
		}
		cursor := "  "
		if i == c.Cursor && !c.ReadOnly {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%s%s)  %s", cursor, marker, label, opt)

		switch {
		case c.CorrectIndex >= 0 && i == c.CorrectIndex:
			s += theme.Correct.Render(line) + "\n"
		case c.CorrectIndex >= 0 && i == c.Chosen:
			s += theme.Incorrect.Render(line) + "\n"
		case i == c.Cursor && !c.ReadOnly:
			s += theme.Selected.Render(line) + "\n"
		case i == c.Chosen:
			s += lipgloss.NewStyle().Foreground(theme.Secondary).Render(line) + "\n"
		default:
			s += theme.Unselected.Render(line) + "\n"
		}
	}

	return s
}

package components

import (
	"strings"

	"github.com/Muhsiinn/Jonas-AI/internal/ui/theme"
)

// StepTracker renders the lesson step breadcrumb, e.g.
//
//	Vocabulary ─ Article ─ [Grammar] ─ Questions ─ Results
type StepTracker struct {
	Labels  []string
	Current int
}

// View renders the tracker. Steps before Current are done, the Current
// one is highlighted, later ones dimmed.
func (s StepTracker) View() string {
	parts := make([]string, 0, len(s.Labels))
	for i, label := range s.Labels {
		switch {
		case i < s.Current:
			parts = append(parts, theme.StepDone.Render("✓ "+label))
		case i == s.Current:
			parts = append(parts, theme.StepActive.Render("● "+label))
		default:
			parts = append(parts, theme.StepPending.Render("○ "+label))
		}
	}
	return strings.Join(parts, theme.StepPending.Render(" ─ "))
}

package theme

import (
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestHeatRampCoversAllIntensityLevels(t *testing.T) {
	assert.Len(t, HeatRamp, 5)
	for _, c := range HeatRamp {
		out := lipgloss.NewStyle().Foreground(c).Render("■")
		assert.NotEmpty(t, out)
	}
}

package theme

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		pct, width, want int
	}{
		{0, 10, 10},
		{33, 10, 10},
		{100, 10, 10},
		{150, 4, 4},
		{-5, 4, 4},
		{50, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lipgloss.Width(ProgressBar(tt.pct, tt.width)), "pct=%d width=%d", tt.pct, tt.width)
	}
}

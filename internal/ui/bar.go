package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label     string
	Done      int
	Total     int
	ShowCount bool
	Width     int
}

// Ratio returns Done/Total clamped to [0, 1].
func (p ProgressBar) Ratio() float64 {
	if p.Total <= 0 {
		return 0
	}
	return min(max(float64(p.Done)/float64(p.Total), 0), 1)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += Body.Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	countWidth := 0
	if p.ShowCount {
		countWidth = 7 // "    8/8"
	}

	barWidth := max(p.Width-labelWidth-countWidth, 4)
	filled := int(float64(barWidth) * p.Ratio())
	empty := barWidth - filled

	result += ProgressFilled.Render(strings.Repeat(" ", filled))
	result += ProgressEmpty.Render(strings.Repeat(" ", empty))

	if p.ShowCount {
		result += Subtitle.Render(fmt.Sprintf("  %5s", fmt.Sprintf("%d/%d", p.Done, p.Total)))
	}

	return result
}

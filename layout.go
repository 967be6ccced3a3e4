package main

import (
	"github.com/charmbracelet/lipgloss"
)

// Offsets from the box's outer edge to its content: border plus padding
const (
	boxInsetLeft   = 1 + 2
	boxInsetBottom = 1 + 1
)

// frame is one rendered screen and where its progress bar landed
type frame struct {
	body   string
	bar    barBox
	hasBar bool
}

// barWidth fills the content width left over by the time label. The box
// padding takes four columns, the gap before the label one, and one column
// stays free so the line never touches the border.
func barWidth(maxWidth, labelWidth int) int {
	return max(maxWidth-6-labelWidth, 1)
}

// render builds the screen. The bar position is derived from the same
// rendering the user sees, so clicks map onto what is displayed.
func (m model) render() frame {
	cfg := config.Get()
	st := newStyles(m.color)

	text := m.trackText(st)
	showArt := m.artworkEncoded != "" && m.supportsKitty && cfg.Artwork.Enabled

	var top string
	switch {
	case showArt:
		top = m.artworkEncoded + lipgloss.NewStyle().PaddingLeft(cfg.Artwork.Padding).Render(text)
	case m.supportsKitty:
		top = kittyDeleteAll + text
	default:
		top = text
	}

	_, hasTrack := m.player.Current()
	content := top
	label := m.timeLabel(st)
	width := barWidth(cfg.UI.MaxWidth, lipgloss.Width(label))
	if hasTrack && !m.loading {
		// The bar is always the last content line
		content = top + "\n\n" + m.progressLine(st, width, label)
	}

	box := st.border.Width(cfg.UI.MaxWidth).Render(content)
	boxWidth := lipgloss.Width(box)
	boxHeight := lipgloss.Height(box)

	ui := box + "\n\n" + m.helpText(st, boxWidth)

	left := max((m.width-boxWidth)/2, 0)
	topPad := max((m.height-lipgloss.Height(ui))/2, 0)
	body := lipgloss.NewStyle().MarginLeft(left).MarginTop(topPad).Render(ui)

	f := frame{body: body}
	if hasTrack && !m.loading {
		f.hasBar = true
		f.bar = barBox{
			Left:  float64(left + boxInsetLeft),
			Width: float64(width),
			Row:   topPad + boxHeight - 1 - boxInsetBottom,
		}
	}
	return f
}

// progressBarBox reports where the progress bar is on screen
func (m model) progressBarBox() (barBox, bool) {
	f := m.render()
	return f.bar, f.hasBar
}

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// kittyDeleteAll removes every image the terminal is showing
const kittyDeleteAll = "\033_Ga=d,d=A\033\\"

func (m model) View() string {
	return m.render().body
}

// styles derived from the current accent color
type styles struct {
	highlight lipgloss.Style
	white     lipgloss.Style
	border    lipgloss.Style
	label     lipgloss.Style
	muted     lipgloss.Style
	dim       lipgloss.Style
	errorText lipgloss.Style
	favorite  lipgloss.Style
}

func newStyles(accent string) styles {
	color := lipgloss.Color(accent)
	return styles{
		highlight: lipgloss.NewStyle().Foreground(color),
		white:     lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color).
			Padding(1, 2),
		label:     lipgloss.NewStyle().Foreground(color).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		errorText: lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		favorite:  lipgloss.NewStyle().Foreground(lipgloss.Color("204")),
	}
}

// statusIcon picks a glyph for the player state
func statusIcon(state PlayerState) string {
	switch state {
	case StatePlaying:
		return "󰐊 "
	case StatePaused, StateEnded:
		return "󰏤 "
	case StateLoading:
		return "󰔟 "
	case StateErrored:
		return "󰀦 "
	default:
		return "󰓛 "
	}
}

// transitionIcon renders the direction of the last track switch
func transitionIcon(transition string) string {
	switch transition {
	case transitionPrev:
		return " 󰒮"
	case transitionNext:
		return " 󰒭"
	default:
		return ""
	}
}

// trackText renders the text block above the progress bar
func (m model) trackText(st styles) string {
	var b strings.Builder

	if m.loading {
		b.WriteString(st.highlight.Render("󰓃 Now Playing") + "\n\n")
		b.WriteString(st.muted.Render("Loading tracks…"))
		return b.String()
	}

	track, ok := m.player.Current()
	if !ok {
		b.WriteString(st.highlight.Render("󰓃 Now Playing") + "\n\n")
		b.WriteString(st.muted.Render("No tracks") + "\n\n")
		b.WriteString(st.dim.Render("Add files under " + config.Get().Library.Dir))
		return b.String()
	}

	b.WriteString(st.highlight.Render("󰓃 Now Playing"+transitionIcon(m.player.Transition())) + "\n\n")

	addLine := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s %s\n", st.label.Render(label), value)
		}
	}

	maxLen := m.maxTextLen()
	addLine("󰎈 ", scrollText(track.Name, maxLen, m.scrollOffset))
	addLine("󰠃 ", scrollText(track.Artist, maxLen, m.scrollOffset))

	heart := st.muted.Render("♡")
	if track.Favorited {
		heart = st.favorite.Render("♥")
	}
	position := fmt.Sprintf("%d/%d", m.player.Index()+1, len(m.player.Catalog()))
	addLine(statusIcon(m.player.State()), m.player.State().String()+"  "+heart+"  "+st.dim.Render(position))

	if err := m.player.LastError(); err != nil {
		b.WriteString(st.errorText.Render("Error: " + userMessage(err)))
	}

	return strings.TrimRight(b.String(), "\n")
}

// timeLabel renders the elapsed and total time shown after the bar
func (m model) timeLabel(st styles) string {
	return st.highlight.Render(m.player.CurrentTime()) + "/" +
		st.highlight.Render(m.player.DurationText())
}

// progressLine renders the bar followed by the time label
func (m model) progressLine(st styles, barWidth int, label string) string {
	filled := int(float64(barWidth) * m.player.Progress())
	filled = min(max(filled, 0), barWidth)

	bar := st.highlight.Render(strings.Repeat("█", filled)) +
		st.white.Render(strings.Repeat("─", barWidth-filled))

	return bar + " " + label
}

// helpText is either the key reference or a hint to show it
func (m model) helpText(st styles, width int) string {
	if !m.showHelp {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(lipgloss.Color("240")).
			Render("Press ? for help")
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(strings.Join([]string{
			"Play/Pause: " + st.highlight.Render("space"),
			"Next: " + st.highlight.Render("n"),
			"Previous: " + st.highlight.Render("b"),
			"Favorite: " + st.highlight.Render("f"),
			"Seek: " + st.highlight.Render("click bar"),
			"Toggle Art: " + st.highlight.Render("a"),
			"Quit: " + st.highlight.Render("q"),
			"Hide: " + st.highlight.Render("?"),
		}, "  "))
}

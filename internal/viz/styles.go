package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles are the panel styles derived from a theme.
type Styles struct {
	Panel   lipgloss.Style
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Active  lipgloss.Style
	Warning lipgloss.Style
	Graph   lipgloss.Style
	Help    lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1).
			Width(38),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(t.Title).MarginBottom(1),
		Label:   lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		Value:   lipgloss.NewStyle().Foreground(t.Text),
		Active:  lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Warning: lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Graph:   lipgloss.NewStyle().Foreground(t.Accent),
		Help:    lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
	}
}

// GradientText colours each rune along an HCL blend from start to end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		b.WriteString(lipgloss.NewStyle().Foreground(Blend(start, end, t)).Render(string(r)))
	}
	return b.String()
}

// ProgressBar renders the fraction done as a fixed-width bar.
func ProgressBar(done float64, width int, fill lipgloss.Style) string {
	n := int(done * float64(width))
	if n > width {
		n = width
	}
	if n < 0 {
		n = 0
	}
	return fill.Render(strings.Repeat("█", n)) + strings.Repeat("░", width-n)
}

// Swatch renders one block per hue so the current palette is visible.
func Swatch(hues []float64, saturation, lightness float64) string {
	var b strings.Builder
	for _, h := range hues {
		col := lipgloss.Color(hueHex(h, saturation, lightness))
		b.WriteString(lipgloss.NewStyle().Foreground(col).Render("██"))
	}
	return b.String()
}

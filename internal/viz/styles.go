package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles is the set of lipgloss styles derived from a Theme.
type Styles struct {
	Panel    lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Item     lipgloss.Style
	Value    lipgloss.Style
	Label    lipgloss.Style
	Key      lipgloss.Style
	Hint     lipgloss.Style
	Running  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Header   lipgloss.Style
}

func NewStyles(t Theme) Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		Title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Subtitle: lipgloss.NewStyle().Foreground(t.Muted),
		Cursor:   lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(t.Text),
		Item:     lipgloss.NewStyle().Foreground(t.Muted),
		Value:    lipgloss.NewStyle().Bold(true).Foreground(t.Secondary),
		Label:    lipgloss.NewStyle().Foreground(t.Muted),
		Key:      lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Hint:     lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		Running:  lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		Warning:  lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Text).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
	}
}

// AnimatedSpinner returns frame of animated spinner
func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}

// ProgressBar renders fraction in [0, 1] as a bar of the given width.
func ProgressBar(fraction float64, width int, s Styles) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(filled, width))
	return s.Running.Render(strings.Repeat("█", filled)) + s.Item.Render(strings.Repeat("░", width-filled))
}

// KeyHints renders "key action" pairs on one line.
func KeyHints(s Styles, pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(s.Key.Render(pairs[i]) + s.Item.Render(" "+pairs[i+1]))
	}
	return b.String()
}

func Separator(width int, s Styles) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return s.Subtitle.Render(left + " ◆ " + right)
}

package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, the subset the dialogs use.
const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
)

const (
	colorAccent  = colorPink
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(colorSubtext0)
	dimStyle      = lipgloss.NewStyle().Foreground(colorOverlay0)
	backdropStyle = lipgloss.NewStyle().Foreground(colorSurface1)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	okStyle       = lipgloss.NewStyle().Foreground(colorSuccess)
	pendingStyle  = lipgloss.NewStyle().Foreground(colorWarning)
	infoStyle     = lipgloss.NewStyle().Foreground(colorInfo)
	costStyle     = lipgloss.NewStyle().Foreground(colorPeach)

	titleBarStyle = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface0).Bold(true)
	footerKey     = lipgloss.NewStyle().Foreground(colorFocus)
	footerHelp    = lipgloss.NewStyle().Foreground(colorSubtext0)
)

func panelBorder(focused bool, gesture bool) lipgloss.Style {
	c := colorSurface1
	switch {
	case gesture:
		c = colorWarning
	case focused:
		c = colorFocus
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(c)
}

package output

import "github.com/charmbracelet/lipgloss"

var (
	colorGood   = lipgloss.Color("10")
	colorWarn   = lipgloss.Color("11")
	colorInfo   = lipgloss.Color("12")
	colorMuted  = lipgloss.Color("8")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)
	labelStyle = lipgloss.NewStyle().Foreground(colorMuted)
	ddlStyle   = lipgloss.NewStyle().Foreground(colorGood)
	warnStyle  = lipgloss.NewStyle().Foreground(colorWarn)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

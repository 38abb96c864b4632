package tui

import "github.com/charmbracelet/lipgloss"

var (
	appStyle = lipgloss.NewStyle().Foreground(colorText).Padding(0, 1)

	headerBarStyle   = lipgloss.NewStyle().Background(colorMantle).Foreground(colorText)
	headerAppStyle   = lipgloss.NewStyle().Foreground(colorAccent).Background(colorMantle).Bold(true).Padding(0, 1)
	activeTabStyle   = lipgloss.NewStyle().Background(colorSurface0).Foreground(colorAccent).Bold(true).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Background(colorMantle).Foreground(colorMuted).Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Foreground(colorMauve).Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(colorSubtext0).Width(labelWidth)
	focusLabel = lipgloss.NewStyle().Foreground(colorFocus).Bold(true).Width(labelWidth)
	fieldErr   = lipgloss.NewStyle().Foreground(colorError).PaddingLeft(labelWidth)

	errorSlotStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	pendingStyle   = lipgloss.NewStyle().Foreground(colorInfo)
	hintStyle      = lipgloss.NewStyle().Foreground(colorOverlay0).Italic(true)
	warnStyle      = lipgloss.NewStyle().Foreground(colorWarning)

	selectorOn  = lipgloss.NewStyle().Foreground(colorMantle).Background(colorAccent).Bold(true).Padding(0, 1)
	selectorOff = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1).MarginTop(1)
	cardKeyStyle = lipgloss.NewStyle().Foreground(colorPeach).Width(labelWidth)

	toastBase    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Width(44)
	toastSuccess = toastBase.BorderForeground(colorSuccess).Foreground(colorSuccess)
	toastError   = toastBase.BorderForeground(colorError).Foreground(colorError)
	toastFading  = toastBase.BorderForeground(colorOverlay0).Foreground(colorOverlay0)

	footerStyle = lipgloss.NewStyle().Background(colorMantle).Padding(0, 1)
)

const labelWidth = 22

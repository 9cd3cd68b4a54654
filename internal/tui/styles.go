package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("12")  // bright blue
	colorSecondary = lipgloss.Color("10")  // bright green
	colorDim       = lipgloss.Color("240") // gray
	colorHighlight = lipgloss.Color("11")  // bright yellow
	colorBorder    = lipgloss.Color("238") // dark gray

	// Query prompt and text
	styleQuery = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	// Result rows
	styleCursor = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)

	styleChatTitle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	styleSnippet = lipgloss.NewStyle().
			Foreground(colorDim)

	// media tag in front of an attachment snippet, e.g. "[image]"
	styleMediaTag = lipgloss.NewStyle().
			Foreground(colorHighlight)

	stylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	styleActiveBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary)

	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)
)

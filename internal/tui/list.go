package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/waview/internal/render"
	"github.com/Zuo-Peng/waview/internal/search"
)

// linesPerItem is the number of terminal lines each result occupies.
const linesPerItem = 2

// senderWidth caps the sender column in the result list.
const senderWidth = 14

// renderList renders the left panel: search results list with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		empty := styleSnippet.
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No results")
		return empty
	}

	var lines []string
	for i, r := range m.results {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		rows := formatResultLine(r, width, i == m.cursor)
		lines = append(lines, rows...)
	}

	// Pad remaining lines
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatResultLine formats a single search result as two lines:
//
//	line 1: [>] MM-DD  sender  chat title
//	line 2:    snippet (dimmed)
//
// Chat rows from list mode have no sender.
func formatResultLine(r search.Result, width int, selected bool) []string {
	// Extract short date from Ts (e.g. "2024-11-28 14:05:00" -> "11-28")
	date := r.Ts
	if len(date) >= 10 {
		date = date[5:10]
	}

	var who string
	whoW := 0
	if r.Sender != "" {
		name := r.Sender
		if runewidth.StringWidth(name) > senderWidth {
			name = runewidth.Truncate(name, senderWidth, "…")
		}
		whoW = runewidth.StringWidth(name) + 1
		who = render.SenderStyle(r.Sender).Render(name) + " "
	}

	title := strings.ReplaceAll(r.Title, "\n", " ")
	titleMax := width - 2 - 6 - whoW // prefix + date + sender
	if titleMax < 0 {
		titleMax = 0
	}
	if runewidth.StringWidth(title) > titleMax {
		title = runewidth.Truncate(title, titleMax, "")
	}

	line1 := fmt.Sprintf("%s %s%s", date, who, styleChatTitle.Render(title))
	if selected {
		line1 = styleCursor.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	snippet := strings.ReplaceAll(r.Snippet, "\n", " ")
	snippet = strings.ReplaceAll(snippet, "\t", " ")
	snippet = strings.ReplaceAll(snippet, ">>>", "")
	snippet = strings.ReplaceAll(snippet, "<<<", "")
	tag := ""
	if r.Type != "" && r.Type != "text" {
		tag = "[" + r.Type + "] "
	}
	snippetMax := width - 4 - runewidth.StringWidth(tag) // indent
	if snippetMax < 0 {
		snippetMax = 0
	}
	if runewidth.StringWidth(snippet) > snippetMax {
		snippet = runewidth.Truncate(snippet, snippetMax, "")
	}
	line2 := "    " + styleMediaTag.Render(tag) + styleSnippet.Render(snippet)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}

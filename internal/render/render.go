package render

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/waview/internal/archive"
	"github.com/Zuo-Peng/waview/internal/index"
	"github.com/Zuo-Peng/waview/internal/transcript"
)

const (
	colorReset   = "\033[0m"
	colorDim     = "\033[2m"
	colorSystem  = "\033[2;3m" // dim italic
	colorHit     = "\033[43m"  // yellow background
	colorBoldRed = "\033[1;31m"
)

type Options struct {
	HitID   int
	Context int    // messages before/after hit to show
	Width   int    // wrap width (0 = no wrap)
	Query   string // search query for keyword highlighting
	// Archive, when set, is probed so attachments missing from the export
	// are marked.
	Archive transcript.Archive
}

// fts5Operators are FTS5 operators that should not be highlighted as keywords.
var fts5Operators = map[string]bool{
	"AND": true, "OR": true, "NOT": true, "NEAR": true,
	"and": true, "or": true, "not": true, "near": true,
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red
// ANSI codes. Matching walks the original text rune by rune, so offsets stay
// right when lower-casing changes byte lengths (Turkish İ).
func highlightKeywords(text, query string) string {
	if query == "" {
		return text
	}
	for _, t := range strings.Fields(query) {
		t = strings.Trim(t, `"*()`)
		if t == "" || fts5Operators[t] {
			continue
		}
		text = highlightTerm(text, t)
	}
	return text
}

func highlightTerm(text, term string) string {
	n := utf8.RuneCountInString(term)
	var b strings.Builder
	for i := 0; i < len(text); {
		if j := skipEscape(text, i); j > i {
			b.WriteString(text[i:j])
			i = j
			continue
		}
		if end, ok := foldPrefix(text[i:], term, n); ok {
			b.WriteString(colorBoldRed + text[i:i+end] + colorReset)
			i += end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		i += size
	}
	return b.String()
}

// foldPrefix reports whether the first n runes of s equal term under Unicode
// case folding, and their byte length.
func foldPrefix(s, term string, n int) (int, bool) {
	end := 0
	for k := 0; k < n; k++ {
		if end >= len(s) {
			return 0, false
		}
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return end, strings.EqualFold(s[:end], term)
}

// skipEscape returns the end of an ANSI escape sequence starting at i, or i.
func skipEscape(s string, i int) int {
	if i+1 >= len(s) || s[i] != '\033' || s[i+1] != '[' {
		return i
	}
	j := i + 2
	for j < len(s) && s[j] != 'm' {
		j++
	}
	if j < len(s) {
		j++
	}
	return j
}

func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		if j := skipEscape(line, i); j > i {
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}
	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// SenderStyle colors a sender name with its palette color.
func SenderStyle(name string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(transcript.SenderColor(name).Hex)).
		Bold(true)
}

// attachmentLabel formats an attachment line, e.g. "[image: IMG-0001.jpg]".
func attachmentLabel(m index.MessageRow, available map[string]bool) string {
	if m.Attachment == "" {
		return ""
	}
	label := fmt.Sprintf("[%s: %s]", m.Type, m.Attachment)
	if ok, probed := available[m.Attachment]; probed && !ok {
		label += " (unavailable)"
	}
	return label
}

// RenderConversation renders a chat window and returns the content, the
// 0-based line number of the hit message header (-1 if no hit), and any error.
func RenderConversation(db *index.DB, chatKey string, opts Options) (string, int, error) {
	if opts.Context == 0 {
		opts.Context = 10
	}
	if opts.Context < 0 {
		opts.Context = 1000000 // no limit
	}

	chat, err := db.GetChatByKey(chatKey)
	if err != nil {
		return "", -1, fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return "", -1, fmt.Errorf("chat not found: %s", chatKey)
	}

	msgs, hitIdx, startPos, totalCount, err := db.GetMessagesWindow(chatKey, opts.HitID, opts.Context)
	if err != nil {
		return "", -1, fmt.Errorf("get messages: %w", err)
	}
	if totalCount == 0 {
		return "(empty chat)", -1, nil
	}

	var available map[string]bool
	if opts.Archive != nil {
		var names []string
		for _, m := range msgs {
			if m.Attachment != "" {
				names = append(names, m.Attachment)
			}
		}
		available = archive.Availability(context.Background(), opts.Archive, names)
	}

	skipAfter := totalCount - startPos - len(msgs)

	var b strings.Builder
	hitLine := -1
	lineCount := 0
	wrapW := opts.Width

	writeLine := func(s string) {
		for _, wl := range wrapLine(s, wrapW) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	writeLine(fmt.Sprintf("%s--- %s [%s] %d messages ---%s", colorDim, chat.Title, chat.Kind, chat.MessageCount, colorReset))

	if startPos > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages before) ...%s", colorDim, startPos, colorReset))
	}

	for i, m := range msgs {
		isHit := i == hitIdx
		if isHit {
			hitLine = lineCount
		}

		if m.IsSystem {
			text := highlightKeywords(m.Content, opts.Query)
			line := fmt.Sprintf("%s* %s %s*%s", colorSystem, m.RawDate, text, colorReset)
			if isHit {
				line = colorHit + ">>" + colorReset + " " + line
			}
			writeLine(line)
			continue
		}

		name := m.Sender
		if m.IsMe {
			name += " (me)"
		}
		if isHit {
			writeLine(fmt.Sprintf("%s>> %s > %s <<%s", colorHit, name, m.RawDate, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s %s%s%s", SenderStyle(m.Sender).Render(name), colorDim, m.RawDate, colorReset))
		}

		text := m.Content
		if label := attachmentLabel(m, available); label != "" && m.Type != string(transcript.TypeText) {
			// the first line names the file; later lines are a caption
			text = label
			if _, caption, ok := strings.Cut(m.Content, "\n"); ok {
				text += "\n" + caption
			}
		}
		text = highlightKeywords(text, opts.Query)
		for _, tl := range strings.Split(indentLines(text, "  "), "\n") {
			writeLine(tl)
		}
		writeLine("")
	}

	if skipAfter > 0 {
		writeLine(fmt.Sprintf("%s... (%d messages after) ...%s", colorDim, skipAfter, colorReset))
	}

	return b.String(), hitLine, nil
}

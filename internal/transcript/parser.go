package transcript

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Parser turns exported chat text into ChatData. A Parser is immutable and
// safe for concurrent use; each Parse call keeps its state local.
type Parser struct {
	locale Locale
	start  *regexp.Regexp
}

var defaultParser = NewParser(DefaultLocale())

// Parse runs the default-locale parser.
func Parse(text string, archive Archive, self string) *ChatData {
	return defaultParser.Parse(text, archive, self)
}

func NewParser(l Locale) *Parser {
	const ws = `[\s\x{00A0}\x{202F}]`
	marker := l.markerPattern()
	expr := `^\[(\d{1,2}[./]\d{1,2}[./](?:\d{4}|\d{2})),?` + ws + `+` +
		`(?:(` + marker + `)` + ws + `*)?` +
		`(\d{1,2}:\d{2}:\d{2})` +
		`(?:` + ws + `*(` + marker + `))?` +
		`\]\s+(.+?): (.*)$`
	return &Parser{locale: l, start: regexp.MustCompile(expr)}
}

// header holds the fields of a message start line.
type header struct {
	date    string
	marker  string
	clock   string
	sender  string
	content string
}

// classifyLine reports whether line starts a new message and, if so, its
// header fields. Anything else is a continuation.
func (p *Parser) classifyLine(line string) (header, bool) {
	m := p.start.FindStringSubmatch(line)
	if m == nil {
		return header{}, false
	}
	marker := m[2]
	if marker == "" {
		marker = m[4]
	}
	return header{
		date:    m[1],
		marker:  marker,
		clock:   m[3],
		sender:  strings.TrimSpace(m[5]),
		content: cleanLine(m[6]),
	}, true
}

func (p *Parser) Parse(text string, archive Archive, self string) *ChatData {
	b := newBuilder()
	var open *Message

	for i, raw := range strings.Split(text, "\n") {
		line := cleanLine(raw)
		if line == "" {
			continue
		}

		h, ok := p.classifyLine(headerLine(raw))
		var msg Message
		if ok {
			msg, ok = p.newMessage(i, h, self)
		}
		if !ok {
			if open != nil {
				open.Content += "\n" + line
			}
			continue
		}

		if open != nil {
			b.add(*open)
		}
		open = &msg
	}
	if open != nil {
		b.add(*open)
	}

	return b.finish(archive)
}

func (p *Parser) newMessage(index int, h header, self string) (Message, bool) {
	d, ok := parseDate(h.date)
	if !ok {
		return Message{}, false
	}
	c, ok := p.locale.parseClock(h.clock, h.marker)
	if !ok {
		return Message{}, false
	}

	typ, file := p.locale.Classify(h.content)
	return Message{
		ID:                 index,
		RawDate:            rawDateOf(h.date, c),
		Timestamp:          timestampOf(d, c),
		Sender:             h.sender,
		Content:            h.content,
		IsMe:               self != "" && h.sender == self,
		IsSystem:           typ == TypeSystem,
		Type:               typ,
		AttachmentFileName: file,
	}, true
}

type builder struct {
	messages     []Message
	participants []*ChatParticipant
	byName       map[string]*ChatParticipant
	senders      []string
	seen         map[string]struct{}
}

func newBuilder() *builder {
	return &builder{
		messages: []Message{},
		byName:   make(map[string]*ChatParticipant),
		senders:  []string{},
		seen:     make(map[string]struct{}),
	}
}

func (b *builder) add(m Message) {
	b.messages = append(b.messages, m)

	if _, ok := b.seen[m.Sender]; !ok {
		b.seen[m.Sender] = struct{}{}
		b.senders = append(b.senders, m.Sender)
	}

	if m.IsMe || m.IsSystem {
		return
	}
	p, ok := b.byName[m.Sender]
	if !ok {
		p = &ChatParticipant{Name: m.Sender, AvatarColor: SenderColor(m.Sender)}
		b.byName[m.Sender] = p
		b.participants = append(b.participants, p)
	}
	// no ordering guard: a later line always wins
	p.LastMessage = m.Content
	p.LastMessageDate = m.Timestamp
}

func (b *builder) finish(archive Archive) *ChatData {
	participants := make([]ChatParticipant, 0, len(b.participants))
	for _, p := range b.participants {
		participants = append(participants, *p)
	}
	sort.SliceStable(participants, func(i, j int) bool {
		return participants[i].LastMessageDate.After(participants[j].LastMessageDate)
	})

	return &ChatData{
		Messages:     b.messages,
		Participants: participants,
		AllSenders:   b.senders,
		Archive:      archive,
	}
}

func isBidi(r rune) bool {
	switch {
	case r == '\u200e', r == '\u200f', r == '\ufeff':
		return true
	case r >= '\u202a' && r <= '\u202e':
		return true
	case r >= '\u2066' && r <= '\u2069':
		return true
	}
	return false
}

func cleanLine(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || isBidi(r)
	})
}

// headerLine trims like cleanLine except for trailing spaces, so a header
// with empty content keeps its ": " separator.
func headerLine(s string) string {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || isBidi(r)
	})
	return strings.TrimRightFunc(s, func(r rune) bool {
		return r == '\r' || r == '\n' || isBidi(r)
	})
}

func stripBidi(s string) string {
	return strings.Map(func(r rune) rune {
		if isBidi(r) {
			return -1
		}
		return r
	}, s)
}

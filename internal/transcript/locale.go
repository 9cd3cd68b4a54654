package transcript

import (
	"regexp"
	"strings"
)

// PhraseRule classifies a message whose lower-cased content contains any of
// Phrases.
type PhraseRule struct {
	Name    string
	Phrases []string
	Type    MessageType
}

// Locale holds the export-format tables the parser consults. Rules are tried
// in order and the first hit wins.
type Locale struct {
	Rules []PhraseRule
	AM    []string
	PM    []string
	// Attachment patterns must capture the file name in group 1. Earlier
	// patterns take priority.
	Attachments []*regexp.Regexp
}

const mediaExt = `jpg|jpeg|png|mp4|opus|mp3|pdf|webp|mov`

var (
	angleAttachment = regexp.MustCompile(`(?i)<([^<>]+?\.(?:` + mediaExt + `))\s+eklendi>`)
	attachedTag     = regexp.MustCompile(`(?i)<attached:\s*([^<>]+?\.(?:` + mediaExt + `))>`)
	parenAttachment = regexp.MustCompile(`(?i)(\S+\.(?:` + mediaExt + `))\s+\((?:file attached|dosya eklendi)\)`)
)

func DefaultLocale() Locale {
	return Locale{
		Rules: []PhraseRule{
			{Name: "missing-image", Type: TypeImage, Phrases: []string{"görüntü dahil edilmedi", "image omitted"}},
			{Name: "missing-audio", Type: TypeAudio, Phrases: []string{"ses dahil edilmedi", "audio omitted"}},
			{Name: "security-code", Type: TypeSystem, Phrases: []string{"güvenlik kodu", "security code"}},
			{Name: "video-call", Type: TypeSystem, Phrases: []string{"görüntülü arama", "video call"}},
			{Name: "voice-call", Type: TypeSystem, Phrases: []string{"sesli arama", "voice call"}},
		},
		AM:          []string{"ÖÖ", "AM"},
		PM:          []string{"ÖS", "PM"},
		Attachments: []*regexp.Regexp{angleAttachment, attachedTag, parenAttachment},
	}
}

// AddRule merges r's phrases into the rule of the same name, or appends r
// as the lowest-priority rule.
func (l *Locale) AddRule(r PhraseRule) {
	for i, existing := range l.Rules {
		if existing.Name == r.Name && r.Name != "" {
			l.Rules[i].Phrases = append(l.Rules[i].Phrases, r.Phrases...)
			return
		}
	}
	l.Rules = append(l.Rules, r)
}

func (l Locale) meridiem(marker string) (am, pm bool) {
	for _, m := range l.AM {
		if strings.EqualFold(m, marker) {
			return true, false
		}
	}
	for _, m := range l.PM {
		if strings.EqualFold(m, marker) {
			return false, true
		}
	}
	return false, false
}

func (l Locale) markerPattern() string {
	var alts []string
	for _, m := range append(append([]string{}, l.AM...), l.PM...) {
		alts = append(alts, regexp.QuoteMeta(m))
	}
	if len(alts) == 0 {
		return `(?:$^)`
	}
	return `(?:` + strings.Join(alts, "|") + `)`
}

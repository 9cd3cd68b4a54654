package transcript

import (
	"path"
	"strings"
)

var extTypes = map[string]MessageType{
	"jpg":  TypeImage,
	"jpeg": TypeImage,
	"png":  TypeImage,
	"webp": TypeImage,
	"opus": TypeAudio,
	"mp3":  TypeAudio,
	"wav":  TypeAudio,
	"aac":  TypeAudio,
	"m4a":  TypeAudio,
	"mp4":  TypeVideo,
	"mov":  TypeVideo,
}

// Classify infers the message type of a header line's content and extracts
// the referenced attachment, if any. An attachment's extension overrides a
// phrase match; extensions without a media type (pdf) leave it alone.
func (l Locale) Classify(content string) (MessageType, string) {
	typ := TypeText
	lower := strings.ToLower(stripBidi(content))

rules:
	for _, r := range l.Rules {
		for _, p := range r.Phrases {
			if strings.Contains(lower, strings.ToLower(p)) {
				typ = r.Type
				break rules
			}
		}
	}

	file := l.attachment(stripBidi(content))
	if t, ok := AttachmentType(file); ok && file != "" {
		typ = t
	}
	return typ, file
}

func (l Locale) attachment(content string) string {
	for _, re := range l.Attachments {
		if m := re.FindStringSubmatch(content); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// AttachmentType reports the media type implied by a file name's extension.
func AttachmentType(name string) (MessageType, bool) {
	t, ok := extTypes[strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))]
	return t, ok
}

package transcript

import "unicode/utf16"

// Color is a named avatar color.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Palette order is part of the color contract; reordering changes every
// sender's color.
var Palette = []Color{
	{"red", "#ef4444"},
	{"orange", "#f97316"},
	{"amber", "#f59e0b"},
	{"yellow", "#eab308"},
	{"lime", "#84cc16"},
	{"green", "#22c55e"},
	{"emerald", "#10b981"},
	{"teal", "#14b8a6"},
	{"cyan", "#06b6d4"},
	{"sky", "#0ea5e9"},
	{"blue", "#3b82f6"},
	{"indigo", "#6366f1"},
	{"violet", "#8b5cf6"},
	{"purple", "#a855f7"},
	{"fuchsia", "#d946ef"},
	{"pink", "#ec4899"},
	{"rose", "#f43f5e"},
}

// SenderColor maps a name to a palette entry.
//
//	h = 0
//	for each UTF-16 code unit c: h = c + ((h << 5) - h)   (int32, wrapping)
//	index = |h| mod len(Palette)
func SenderColor(name string) Color {
	return Palette[colorIndex(name, len(Palette))]
}

func nameHash(name string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(name)) {
		h = int32(c) + ((h << 5) - h)
	}
	return h
}

func colorIndex(name string, n int) int {
	// widen before abs: -2^31 has no int32 negation
	h := int64(nameHash(name))
	if h < 0 {
		h = -h
	}
	return int(h % int64(n))
}

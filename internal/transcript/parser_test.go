package transcript

import (
	"strings"
	"testing"
	"time"
)

func TestParseEndToEnd(t *testing.T) {
	in := "[28.11.2024 14:05:00] Alice: Hello\nworld\n[28.11.2024 14:06:00] Bob: Hi"
	data := Parse(in, nil, "")

	if len(data.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(data.Messages))
	}
	if data.Messages[0].Sender != "Alice" || data.Messages[0].Content != "Hello\nworld" {
		t.Fatalf("unexpected first message: %+v", data.Messages[0])
	}
	if data.Messages[1].Sender != "Bob" || data.Messages[1].Content != "Hi" {
		t.Fatalf("unexpected second message: %+v", data.Messages[1])
	}
	if strings.Join(data.AllSenders, ",") != "Alice,Bob" {
		t.Fatalf("unexpected senders: %v", data.AllSenders)
	}
	if len(data.Participants) != 2 || data.Participants[0].Name != "Bob" || data.Participants[1].Name != "Alice" {
		t.Fatalf("unexpected participants: %+v", data.Participants)
	}
	if data.Participants[1].LastMessage != "Hello\nworld" {
		t.Fatalf("unexpected last message for Alice: %q", data.Participants[1].LastMessage)
	}
	want := time.Date(2024, 11, 28, 14, 6, 0, 0, time.Local)
	if !data.Participants[0].LastMessageDate.Equal(want) {
		t.Fatalf("unexpected last date: %v", data.Participants[0].LastMessageDate)
	}
}

func TestParseNoStartLines(t *testing.T) {
	for _, in := range []string{"", "\n\n", "just some text\nwithout any headers", "[not a date] Alice: hi"} {
		data := Parse(in, nil, "")
		if len(data.Messages) != 0 || len(data.AllSenders) != 0 || len(data.Participants) != 0 {
			t.Fatalf("input %q: expected empty result, got %+v", in, data)
		}
		if data.Messages == nil || data.AllSenders == nil {
			t.Fatalf("input %q: expected non-nil empty slices", in)
		}
	}
}

func TestParseCountsOnlyStartLines(t *testing.T) {
	in := strings.Join([]string{
		"orphan line before anything",
		"[1.2.24 09:00:00] A: one",
		"two",
		"",
		"\u200e",
		"three",
		"[1.2.24 09:01:00] B: four",
		"[1.2.24 09:02:00] A: five",
		"six",
	}, "\r\n")
	data := Parse(in, nil, "")

	if len(data.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(data.Messages))
	}
	if data.Messages[0].Content != "one\ntwo\nthree" {
		t.Fatalf("unexpected continuation join: %q", data.Messages[0].Content)
	}
	if data.Messages[1].Content != "four" {
		t.Fatalf("continuation leaked into earlier message: %q", data.Messages[1].Content)
	}
	if data.Messages[2].Content != "five\nsix" {
		t.Fatalf("unexpected last message: %q", data.Messages[2].Content)
	}
	if data.Messages[0].ID != 1 || data.Messages[0].Line() != 2 {
		t.Fatalf("unexpected id/line: %d/%d", data.Messages[0].ID, data.Messages[0].Line())
	}
}

func TestParseDates(t *testing.T) {
	tests := []struct {
		line  string
		year  int
		month time.Month
		day   int
	}{
		{"[28.11.2024 14:05:00] A: x", 2024, time.November, 28},
		{"[6/27/24 14:05:00] A: x", 2024, time.June, 27},
		{"[6/27/24, 2:05:00 PM] A: x", 2024, time.June, 27},
		{"[3.4.99 10:00:00] A: x", 2099, time.April, 3},
	}
	for _, tt := range tests {
		data := Parse(tt.line, nil, "")
		if len(data.Messages) != 1 {
			t.Fatalf("%q: expected 1 message, got %d", tt.line, len(data.Messages))
		}
		ts := data.Messages[0].Timestamp
		if ts.Year() != tt.year || ts.Month() != tt.month || ts.Day() != tt.day {
			t.Fatalf("%q: got %v", tt.line, ts)
		}
	}
}

func TestParseMeridiem(t *testing.T) {
	tests := []struct {
		line string
		hour int
	}{
		{"[28.11.2024 ÖS 12:05:00] A: x", 12},
		{"[28.11.2024 ÖÖ 12:05:00] A: x", 0},
		{"[28.11.2024 ÖS 01:05:00] A: x", 13},
		{"[6/27/24 PM 12:05:00] A: x", 12},
		{"[6/27/24 AM 12:05:00] A: x", 0},
		{"[6/27/24 PM 1:05:00] A: x", 13},
		{"[6/27/24 AM 9:05:00] A: x", 9},
		{"[6/27/24, 1:05:00 PM] A: x", 13},
		{"[28.11.2024 23:59:59] A: x", 23},
	}
	for _, tt := range tests {
		data := Parse(tt.line, nil, "")
		if len(data.Messages) != 1 {
			t.Fatalf("%q: expected 1 message, got %d", tt.line, len(data.Messages))
		}
		if h := data.Messages[0].Timestamp.Hour(); h != tt.hour {
			t.Fatalf("%q: expected hour %d, got %d", tt.line, tt.hour, h)
		}
	}
}

func TestParseRawDate(t *testing.T) {
	data := Parse("[6/27/24 PM 1:05:30] A: x", nil, "")
	if got := data.Messages[0].RawDate; got != "6/27/24 13:05" {
		t.Fatalf("unexpected raw date: %q", got)
	}
	if data.Messages[0].Timestamp.Second() != 30 {
		t.Fatalf("expected seconds to survive in timestamp")
	}
}

func TestParseSenderAndBidi(t *testing.T) {
	in := "\u200e[28.11.2024 14:05:00]  Ayşe Yılmaz : time: 10:00\u200f"
	data := Parse(in, nil, "")
	if len(data.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(data.Messages))
	}
	m := data.Messages[0]
	if m.Sender != "Ayşe Yılmaz" {
		t.Fatalf("unexpected sender: %q", m.Sender)
	}
	if m.Content != "time: 10:00" {
		t.Fatalf("unexpected content: %q", m.Content)
	}
}

func TestParseEmptyContentHeader(t *testing.T) {
	in := "[28.11.2024 14:05:00] Alice: hi\n[28.11.2024 14:06:00] Bob: \u200f\r\n[28.11.2024 14:07:00] Alice: ok"
	data := Parse(in, nil, "")
	if len(data.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d: %+v", len(data.Messages), data.Messages)
	}
	if data.Messages[0].Content != "hi" {
		t.Fatalf("header leaked into previous message: %q", data.Messages[0].Content)
	}
	if m := data.Messages[1]; m.Sender != "Bob" || m.Content != "" {
		t.Fatalf("unexpected empty message: %+v", m)
	}
	if strings.Join(data.AllSenders, ",") != "Alice,Bob" {
		t.Fatalf("unexpected senders: %v", data.AllSenders)
	}
}

func TestParseSelf(t *testing.T) {
	in := strings.Join([]string{
		"[28.11.2024 14:05:00] Me: first",
		"[28.11.2024 14:06:00] Alice: hi",
		"[28.11.2024 14:07:00] Me: second",
		"[28.11.2024 14:08:00] Alice: Sesli arama",
	}, "\n")
	data := Parse(in, nil, "Me")

	if !data.Messages[0].IsMe || data.Messages[1].IsMe || !data.Messages[2].IsMe {
		t.Fatalf("unexpected IsMe flags: %+v", data.Messages)
	}
	if len(data.Participants) != 1 || data.Participants[0].Name != "Alice" {
		t.Fatalf("unexpected participants: %+v", data.Participants)
	}
	// the system message does not update the participant
	if data.Participants[0].LastMessage != "hi" {
		t.Fatalf("system message updated participant: %q", data.Participants[0].LastMessage)
	}
	if strings.Join(data.AllSenders, ",") != "Me,Alice" {
		t.Fatalf("self missing from senders: %v", data.AllSenders)
	}
}

func TestParseParticipantNoOrderGuard(t *testing.T) {
	in := strings.Join([]string{
		"[28.11.2024 14:05:00] Alice: late",
		"[27.11.2024 09:00:00] Alice: early but later in file",
		"[28.11.2024 10:00:00] Bob: middle",
	}, "\n")
	data := Parse(in, nil, "")
	if data.Participants[0].Name != "Bob" {
		t.Fatalf("expected Bob first, got %+v", data.Participants)
	}
	if data.Participants[1].LastMessage != "early but later in file" {
		t.Fatalf("expected last line to win: %+v", data.Participants[1])
	}
}

func TestParseArchivePassThrough(t *testing.T) {
	a := stubArchive{}
	data := Parse("[28.11.2024 14:05:00] A: x", a, "")
	if data.Archive != a {
		t.Fatalf("archive not passed through")
	}
}

func TestReassign(t *testing.T) {
	in := strings.Join([]string{
		"[28.11.2024 14:05:00] Alice: hi",
		"[28.11.2024 14:06:00] Bob: hey",
	}, "\n")
	data := Parse(in, nil, "")
	mine := data.Reassign("Alice")

	if !mine.Messages[0].IsMe || mine.Messages[1].IsMe {
		t.Fatalf("unexpected IsMe flags: %+v", mine.Messages)
	}
	if len(mine.Participants) != 1 || mine.Participants[0].Name != "Bob" {
		t.Fatalf("unexpected participants: %+v", mine.Participants)
	}
	if data.Messages[0].IsMe || len(data.Participants) != 2 {
		t.Fatalf("original data mutated")
	}
}

func TestStats(t *testing.T) {
	in := strings.Join([]string{
		"[28.11.2024 14:05:00] Alice: hi",
		"[28.11.2024 14:06:00] Bob: IMG-1.jpg (file attached)",
		"[28.11.2024 14:07:00] Bob: ok",
	}, "\n")
	s := Parse(in, nil, "").Stats()
	if s.Messages != 3 || s.ByType[TypeImage] != 1 || s.ByType[TypeText] != 2 || s.BySender["Bob"] != 2 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if s.First.Minute() != 5 || s.Last.Minute() != 7 {
		t.Fatalf("unexpected range: %v - %v", s.First, s.Last)
	}
}

func TestCustomLocale(t *testing.T) {
	l := DefaultLocale()
	l.AM = append(l.AM, "vorm.")
	l.PM = append(l.PM, "nachm.")
	l.AddRule(PhraseRule{Name: "deleted", Type: TypeSystem, Phrases: []string{"nachricht wurde gelöscht"}})
	p := NewParser(l)

	data := p.Parse("[1.2.2024 nachm. 3:00:00] Jan: Diese Nachricht wurde gelöscht", nil, "")
	if len(data.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(data.Messages))
	}
	m := data.Messages[0]
	if m.Timestamp.Hour() != 15 || m.Type != TypeSystem || !m.IsSystem {
		t.Fatalf("unexpected message: %+v", m)
	}
}

package tui

import (
	"strings"
	"testing"

	"github.com/Zuo-Peng/waview/internal/index"
	"github.com/Zuo-Peng/waview/internal/search"
)

func TestFormatResultLine(t *testing.T) {
	r := search.Result{
		ChatKey:   "chat:a.txt",
		MessageID: 3,
		Ts:        "2024-11-28 14:05:00",
		Title:     "Bob, Alice",
		Sender:    "Alice",
		Type:      "image",
		Snippet:   ">>>IMG<<<-1.jpg\t(file attached)",
	}
	lines := formatResultLine(r, 60, true)
	if len(lines) != linesPerItem {
		t.Fatalf("expected %d lines, got %d", linesPerItem, len(lines))
	}
	for _, want := range []string{"11-28", "Alice", "Bob, Alice"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("line 1 %q missing %q", lines[0], want)
		}
	}
	if !strings.Contains(lines[1], "[image] IMG-1.jpg (file attached)") {
		t.Errorf("unexpected snippet line %q", lines[1])
	}

	// chat rows have no sender column
	lines = formatResultLine(search.Result{Ts: "2024-12-01 08:00:00", Title: "Carol", MessageID: -1}, 60, false)
	if !strings.HasPrefix(lines[0], "  12-01 ") {
		t.Errorf("unexpected chat row %q", lines[0])
	}
}

func TestClipText(t *testing.T) {
	got := clipText(index.MessageRow{RawDate: "28.11.2024 14:05", Sender: "Alice", Content: "Hello\nworld"})
	if got != "[28.11.2024 14:05] Alice: Hello\nworld" {
		t.Fatalf("unexpected clip text %q", got)
	}
	if firstLine(got) != "[28.11.2024 14:05] Alice: Hello ..." {
		t.Fatalf("unexpected first line %q", firstLine(got))
	}
}

func TestStaleSearchResultsIgnored(t *testing.T) {
	m := initialModel(nil, "pizza", search.Options{})
	updated, _ := m.Update(searchResultMsg{query: "pasta", results: []search.Result{{ChatKey: "chat:x"}}})
	if got := updated.(model); len(got.results) != 0 {
		t.Fatalf("stale results applied: %+v", got.results)
	}
	updated, _ = m.Update(searchResultMsg{query: "pizza", results: []search.Result{{ChatKey: "chat:x"}}})
	if got := updated.(model); len(got.results) != 1 || got.cursor != 0 {
		t.Fatalf("expected results to be applied: %+v", got.results)
	}
}

package scan

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestScanRoot(t *testing.T) {
	root := t.TempDir()
	mustWrite := func(rel string) {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("WhatsApp Chat with Bob.txt")
	mustWrite("family/export.ZIP")
	mustWrite("family/photo.jpg")
	mustWrite("extracted/_chat.txt")
	mustWrite("extracted/notes.txt")
	mustWrite(".cache/old.txt")
	mustWrite("__MACOSX/_chat.txt")

	files, err := ScanRoot(root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var got []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f.Path)
		got = append(got, f.Kind+":"+rel)
	}
	sort.Strings(got)
	want := []string{"dir:extracted", "txt:WhatsApp Chat with Bob.txt", "zip:family/export.ZIP"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestScanMissingRoot(t *testing.T) {
	files, err := ScanRoot(filepath.Join(t.TempDir(), "absent"))
	if err != nil || len(files) != 0 {
		t.Fatalf("expected empty result, got %v, %v", files, err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Zuo-Peng/waview/internal/transcript"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(home, "missing.toml"), home)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != filepath.Join(home, ".config", "waview", "waview.db") {
		t.Fatalf("unexpected db path: %s", cfg.DBPath)
	}
	if cfg.Self != "" {
		t.Fatalf("unexpected self: %q", cfg.Self)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.toml")
	body := `
export_root = "~/exports"
self = "Ayşe"

[locale]
pm = ["nachm."]
am = ["vorm."]

[[locale.phrases]]
name = "deleted"
kind = "system"
phrases = ["bu mesaj silindi", "this message was deleted"]

[[locale.phrases]]
name = "voice-call"
phrases = ["sprachanruf"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("WAVIEW_DB_PATH", "~/custom.db")

	cfg, err := LoadFrom(path, home)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ExportRoot != filepath.Join(home, "exports") {
		t.Fatalf("unexpected export root: %s", cfg.ExportRoot)
	}
	if cfg.DBPath != filepath.Join(home, "custom.db") {
		t.Fatalf("env override not applied: %s", cfg.DBPath)
	}
	if cfg.Self != "Ayşe" {
		t.Fatalf("unexpected self: %q", cfg.Self)
	}

	p, err := cfg.Parser()
	if err != nil {
		t.Fatalf("parser: %v", err)
	}
	data := p.Parse("[1.2.2024 nachm. 3:00:00] Jan: Sprachanruf\n[1.2.2024 15:01:00] Jan: This message was deleted", nil, "")
	if len(data.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(data.Messages))
	}
	for _, m := range data.Messages {
		if m.Type != transcript.TypeSystem {
			t.Fatalf("expected system message: %+v", m)
		}
	}
	if data.Messages[0].Timestamp.Hour() != 15 {
		t.Fatalf("custom PM marker not applied: %v", data.Messages[0].Timestamp)
	}
}

func TestLoadBadKind(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "config.toml")
	body := "[[locale.phrases]]\nname = \"x\"\nkind = \"sticker\"\nphrases = [\"y\"]\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path, home); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

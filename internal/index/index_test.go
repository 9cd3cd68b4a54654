package index

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zuo-Peng/waview/internal/transcript"
)

const sampleChat = `[28.11.2024 14:05:00] Alice: Hello
world
[28.11.2024 14:06:00] Bob: Hi
[28.11.2024 14:07:00] Bob: IMG-20241128-WA0003.jpg (file attached)
[28.11.2024 14:08:00] Alice: Sesli arama
[28.11.2024 14:09:00] Me: see you`

func setup(t *testing.T) (*Indexer, string) {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "exports")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	db, err := OpenDB(filepath.Join(dir, "db", "waview.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Indexer{
		DB:     db,
		Root:   root,
		Parser: transcript.NewParser(transcript.DefaultLocale()),
		Self:   "Me",
	}, root
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIndexAll(t *testing.T) {
	ix, root := setup(t)
	chatPath := filepath.Join(root, "WhatsApp Chat with Bob.txt")
	writeFile(t, chatPath, sampleChat)
	writeFile(t, filepath.Join(root, "readme.txt"), "not a chat")

	stats, err := ix.IndexAll()
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if stats.Scanned != 2 || stats.Updated != 1 || stats.Empty != 1 {
		t.Fatalf("unexpected stats: %s", stats)
	}

	key := ChatKey(root, chatPath)
	if key != "chat:WhatsApp Chat with Bob.txt" {
		t.Fatalf("unexpected key: %s", key)
	}
	c, err := ix.DB.GetChatByKey(key)
	if err != nil || c == nil {
		t.Fatalf("chat not stored: %v", err)
	}
	if c.Title != "Bob, Alice" || c.MessageCount != 5 || c.UpdatedAt != "2024-11-28 14:09:00" {
		t.Fatalf("unexpected chat row: %+v", c)
	}

	msgs, err := ix.DB.GetMessages(key)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if len(msgs) != 5 || msgs[0].Content != "Hello\nworld" || msgs[0].LineNumber() != 1 {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
	if msgs[1].MessageID != 2 || msgs[2].Type != "image" || msgs[2].Attachment != "IMG-20241128-WA0003.jpg" {
		t.Fatalf("unexpected attachment row: %+v", msgs[2])
	}
	if !msgs[3].IsSystem || !msgs[4].IsMe {
		t.Fatalf("unexpected flags: %+v %+v", msgs[3], msgs[4])
	}

	n, _ := ix.DB.MessageCount()
	fts, _ := ix.DB.FTSCount()
	if n != 5 || fts != 5 {
		t.Fatalf("fts out of sync: messages=%d fts=%d", n, fts)
	}

	// unchanged files are skipped
	stats, _ = ix.IndexAll()
	if stats.Updated != 0 || stats.Skipped != 1 {
		t.Fatalf("expected skip on second run: %s", stats)
	}

	// a new identity forces a re-index
	ix.Self = "Alice"
	stats, _ = ix.IndexAll()
	if stats.Updated != 1 {
		t.Fatalf("expected re-index after identity change: %s", stats)
	}
	m, _ := ix.DB.GetMessage(key, 0)
	if m == nil || !m.IsMe {
		t.Fatalf("expected Alice's message to be mine: %+v", m)
	}
	n, _ = ix.DB.MessageCount()
	fts, _ = ix.DB.FTSCount()
	if n != 5 || fts != 5 {
		t.Fatalf("re-index should replace rows: messages=%d fts=%d", n, fts)
	}

	// removed exports are pruned
	os.Remove(chatPath)
	stats, _ = ix.IndexAll()
	if stats.Pruned != 1 {
		t.Fatalf("expected prune: %s", stats)
	}
	if n, _ := ix.DB.ChatCount(); n != 0 {
		t.Fatalf("expected no chats, got %d", n)
	}
}

func TestMessagesWindowAndSenders(t *testing.T) {
	ix, root := setup(t)
	var lines []string
	for i := 0; i < 20; i++ {
		sender := "Alice"
		if i%2 == 1 {
			sender = "Bob"
		}
		lines = append(lines, fmt.Sprintf("[1.1.24 10:%02d:00] %s: message %02d", i, sender, i))
		lines = append(lines, "continued")
	}
	path := filepath.Join(root, "long.txt")
	writeFile(t, path, strings.Join(lines, "\n"))
	if _, err := ix.IndexAll(); err != nil {
		t.Fatalf("index: %v", err)
	}
	key := ChatKey(root, path)

	// message 10 sits on line index 20
	msgs, hitIdx, startPos, total, err := ix.DB.GetMessagesWindow(key, 20, 3)
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if total != 20 || startPos != 7 || len(msgs) != 7 || hitIdx != 3 || msgs[hitIdx].Content != "message 10\ncontinued" {
		t.Fatalf("unexpected window: total=%d start=%d len=%d hit=%d", total, startPos, len(msgs), hitIdx)
	}

	msgs, hitIdx, startPos, _, _ = ix.DB.GetMessagesWindow(key, -1, 3)
	if len(msgs) != 20 || hitIdx != -1 || startPos != 0 {
		t.Fatalf("expected full chat without hit: len=%d hit=%d", len(msgs), hitIdx)
	}

	senders, err := ix.DB.Senders(key)
	if err != nil {
		t.Fatalf("senders: %v", err)
	}
	if len(senders) != 2 || senders[0].Sender != "Bob" || senders[0].Messages != 10 {
		t.Fatalf("unexpected senders: %+v", senders)
	}
}

package index

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Zuo-Peng/waview/internal/chat"
	"github.com/Zuo-Peng/waview/internal/scan"
	"github.com/Zuo-Peng/waview/internal/transcript"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Empty   int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d empty=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Empty, s.Pruned, s.Errors)
}

// Indexer loads exports under Root and keeps the database in step with them.
type Indexer struct {
	DB     *DB
	Root   string
	Parser *transcript.Parser
	Self   string
	// Log receives per-file warnings; nil discards them.
	Log io.Writer
}

func (ix *Indexer) warnf(format string, args ...any) {
	if ix.Log != nil {
		fmt.Fprintf(ix.Log, "  WARN: "+format+"\n", args...)
	}
}

func (ix *Indexer) IndexAll() (Stats, error) {
	var stats Stats

	files, err := scan.ScanRoot(ix.Root)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which files we see, for pruning
	seenKeys := make(map[string]struct{})

	for _, fi := range files {
		key := ChatKey(ix.Root, fi.Path)
		seenKeys[key] = struct{}{}

		needs, err := ix.needsUpdate(key, fi.Mtime, fi.Size)
		if err != nil {
			stats.Errors++
			continue
		}
		if !needs {
			stats.Skipped++
			continue
		}

		data, exp, err := chat.LoadFile(fi.Path, ix.Parser, ix.Self)
		if errors.Is(err, chat.ErrNoMessages) {
			// a stray .txt that is not an export
			stats.Empty++
			delete(seenKeys, key)
			continue
		}
		if err != nil {
			stats.Errors++
			ix.warnf("%v", err)
			continue
		}
		transcriptPath := exp.TranscriptPath()
		exp.Close()

		if err := ix.indexChat(key, fi, transcriptPath, data); err != nil {
			stats.Errors++
			ix.warnf("index %s: %v", fi.Path, err)
			continue
		}
		stats.Updated++
	}

	// prune chats whose exports no longer exist
	pruned, err := pruneChats(ix.DB, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

// ChatKey derives a stable key from the export's path below root.
func ChatKey(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	return "chat:" + filepath.ToSlash(rel)
}

func (ix *Indexer) needsUpdate(chatKey string, mtime, size int64) (bool, error) {
	info, err := ix.DB.GetChatInfo(chatKey)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new chat
	}
	// a changed identity re-derives is_me
	return info.Mtime != mtime || info.Size != size || info.Self != ix.Self, nil
}

// Title names a chat after its most recently active participants, falling
// back to the export's file name.
func Title(data *transcript.ChatData, path string) string {
	var names []string
	for _, p := range data.Participants {
		names = append(names, p.Name)
		if len(names) == 3 {
			break
		}
	}
	if len(names) > 0 {
		t := strings.Join(names, ", ")
		if len(data.Participants) > len(names) {
			t += fmt.Sprintf(" +%d", len(data.Participants)-len(names))
		}
		return t
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func (ix *Indexer) indexChat(key string, fi scan.FileInfo, transcriptPath string, data *transcript.ChatData) error {
	tx, err := ix.DB.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// replace old data in the same transaction, so a failed insert keeps it
	if err := deleteChatTx(tx, key); err != nil {
		return err
	}

	st := data.Stats()
	_, err = tx.Exec(
		`INSERT INTO chats (chat_key, kind, file_path, transcript, title, self, created_at, updated_at, message_count, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key,
		fi.Kind,
		fi.Path,
		transcriptPath,
		Title(data, fi.Path),
		ix.Self,
		st.First.Format(TimeLayout),
		st.Last.Format(TimeLayout),
		st.Messages,
		fi.Mtime,
		fi.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (chat_key, message_id, ts, raw_date, sender, type, is_me, is_system, content, attachment)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range data.Messages {
		_, err := stmt.Exec(
			key,
			m.ID,
			m.Timestamp.Format(TimeLayout),
			m.RawDate,
			m.Sender,
			string(m.Type),
			m.IsMe,
			m.IsSystem,
			m.Content,
			m.AttachmentFileName,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func pruneChats(db *DB, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.AllChatKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteChat(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}

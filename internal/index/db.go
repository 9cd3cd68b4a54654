package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// TimeLayout is how message and chat times are stored. Exports carry no
// zone, so neither does the column.
const TimeLayout = "2006-01-02 15:04:05"

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA cache_size = -64000;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS chats (
    chat_key      TEXT PRIMARY KEY,
    kind          TEXT NOT NULL,
    file_path     TEXT NOT NULL,
    transcript    TEXT NOT NULL DEFAULT '',
    title         TEXT NOT NULL DEFAULT '',
    self          TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL DEFAULT '',
    updated_at    TEXT NOT NULL DEFAULT '',
    message_count INTEGER NOT NULL DEFAULT 0,
    mtime         INTEGER NOT NULL DEFAULT 0,
    size          INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
    chat_key    TEXT NOT NULL,
    message_id  INTEGER NOT NULL,
    ts          TEXT NOT NULL DEFAULT '',
    raw_date    TEXT NOT NULL DEFAULT '',
    sender      TEXT NOT NULL,
    type        TEXT NOT NULL DEFAULT 'text',
    is_me       INTEGER NOT NULL DEFAULT 0,
    is_system   INTEGER NOT NULL DEFAULT 0,
    content     TEXT NOT NULL,
    attachment  TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (chat_key, message_id)
);

CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(chat_key, sender);

CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
    content,
    content=messages,
    content_rowid=rowid,
    tokenize='unicode61'
);

-- triggers to keep FTS in sync
CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
    INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
END;

CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
END;

CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
    INSERT INTO messages_fts(messages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
    INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
END;

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	d.migrateSchemaVersion()

	return d, nil
}

// schemaVersion should be bumped whenever parsing or classification changes
// to force a full re-index.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err != nil || ver != schemaVersion {
		// force re-index by resetting all chat mtime/size to 0
		d.db.Exec("UPDATE chats SET mtime = 0, size = 0")
		d.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
	}
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type ChatInfo struct {
	Mtime int64
	Size  int64
	Self  string
}

func (d *DB) GetChatInfo(chatKey string) (*ChatInfo, error) {
	var info ChatInfo
	err := d.db.QueryRow(
		"SELECT mtime, size, self FROM chats WHERE chat_key = ?",
		chatKey,
	).Scan(&info.Mtime, &info.Size, &info.Self)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (d *DB) AllChatKeys() (map[string]struct{}, error) {
	rows, err := d.db.Query("SELECT chat_key FROM chats")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys[k] = struct{}{}
	}
	return keys, rows.Err()
}

func (d *DB) DeleteChat(chatKey string) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteChatTx(tx, chatKey); err != nil {
		return err
	}
	return tx.Commit()
}

// deleteChatTx removes a chat and its messages inside tx. The FTS triggers
// drop the indexed text with them.
func deleteChatTx(tx *sql.Tx, chatKey string) error {
	if _, err := tx.Exec("DELETE FROM messages WHERE chat_key = ?", chatKey); err != nil {
		return err
	}
	_, err := tx.Exec("DELETE FROM chats WHERE chat_key = ?", chatKey)
	return err
}

func (d *DB) ChatCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM chats").Scan(&n)
	return n, err
}

func (d *DB) MessageCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

// FTSCount reports the number of rows in the full-text index.
func (d *DB) FTSCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM messages_fts").Scan(&n)
	return n, err
}

type ChatRow struct {
	ChatKey      string
	Kind         string
	FilePath     string
	Transcript   string
	Title        string
	Self         string
	CreatedAt    string
	UpdatedAt    string
	MessageCount int
}

const chatColumns = "chat_key, kind, file_path, transcript, title, self, created_at, updated_at, message_count"

func scanChat(row interface{ Scan(...any) error }) (ChatRow, error) {
	var c ChatRow
	err := row.Scan(&c.ChatKey, &c.Kind, &c.FilePath, &c.Transcript, &c.Title, &c.Self, &c.CreatedAt, &c.UpdatedAt, &c.MessageCount)
	return c, err
}

func (d *DB) GetChatByKey(chatKey string) (*ChatRow, error) {
	c, err := scanChat(d.db.QueryRow("SELECT "+chatColumns+" FROM chats WHERE chat_key = ?", chatKey))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChats returns chats by last activity, newest first.
func (d *DB) ListChats(limit int) ([]ChatRow, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query("SELECT "+chatColumns+" FROM chats ORDER BY updated_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []ChatRow
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

type MessageRow struct {
	ChatKey    string
	MessageID  int
	Ts         string
	RawDate    string
	Sender     string
	Type       string
	IsMe       bool
	IsSystem   bool
	Content    string
	Attachment string
}

// LineNumber is the 1-based transcript line of the message header.
func (m MessageRow) LineNumber() int {
	return m.MessageID + 1
}

const messageColumns = "chat_key, message_id, ts, raw_date, sender, type, is_me, is_system, content, attachment"

func scanMessages(rows *sql.Rows) ([]MessageRow, error) {
	var out []MessageRow
	for rows.Next() {
		var m MessageRow
		if err := rows.Scan(&m.ChatKey, &m.MessageID, &m.Ts, &m.RawDate, &m.Sender, &m.Type, &m.IsMe, &m.IsSystem, &m.Content, &m.Attachment); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (d *DB) GetMessages(chatKey string) ([]MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE chat_key = ? ORDER BY message_id",
		chatKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func (d *DB) GetMessage(chatKey string, messageID int) (*MessageRow, error) {
	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE chat_key = ? AND message_id = ?",
		chatKey, messageID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	msgs, err := scanMessages(rows)
	if err != nil || len(msgs) == 0 {
		return nil, err
	}
	return &msgs[0], nil
}

// GetMessagesWindow returns a window of messages around a hit message.
// It only loads the necessary rows from the database.
// startPos is the number of messages before the returned window.
// totalCount is the total number of messages in the chat.
func (d *DB) GetMessagesWindow(chatKey string, hitID, context int) (msgs []MessageRow, hitIdx int, startPos int, totalCount int, err error) {
	err = d.db.QueryRow(
		"SELECT COUNT(*) FROM messages WHERE chat_key = ?", chatKey,
	).Scan(&totalCount)
	if err != nil {
		return nil, -1, 0, 0, err
	}

	// 0-based position of the hit; message ids are line numbers, not positions
	hitPos := -1
	if hitID >= 0 {
		err = d.db.QueryRow(
			"SELECT COUNT(*) FROM messages WHERE chat_key = ? AND message_id < ?",
			chatKey, hitID,
		).Scan(&hitPos)
		if err != nil {
			return nil, -1, 0, 0, err
		}
		var exists int
		d.db.QueryRow(
			"SELECT COUNT(*) FROM messages WHERE chat_key = ? AND message_id = ?",
			chatKey, hitID,
		).Scan(&exists)
		if exists == 0 {
			hitPos = -1
		}
	}

	startPos = 0
	limit := totalCount
	if hitPos >= 0 {
		startPos = hitPos - context
		if startPos < 0 {
			startPos = 0
		}
		endPos := hitPos + context + 1
		if endPos > totalCount {
			endPos = totalCount
		}
		limit = endPos - startPos
	}

	rows, err := d.db.Query(
		"SELECT "+messageColumns+" FROM messages WHERE chat_key = ? ORDER BY message_id LIMIT ? OFFSET ?",
		chatKey, limit, startPos,
	)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	defer rows.Close()

	result, err := scanMessages(rows)
	if err != nil {
		return nil, -1, 0, 0, err
	}
	localHitIdx := -1
	for i, m := range result {
		if m.MessageID == hitID {
			localHitIdx = i
		}
	}
	return result, localHitIdx, startPos, totalCount, nil
}

type SenderRow struct {
	Sender   string
	Messages int
	LastAt   string
	IsMe     bool
}

// Senders aggregates a chat's authors, most recently active first.
func (d *DB) Senders(chatKey string) ([]SenderRow, error) {
	rows, err := d.db.Query(`
		SELECT sender, COUNT(*), MAX(ts), MAX(is_me)
		FROM messages
		WHERE chat_key = ? AND is_system = 0
		GROUP BY sender
		ORDER BY MAX(ts) DESC`,
		chatKey,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SenderRow
	for rows.Next() {
		var s SenderRow
		if err := rows.Scan(&s.Sender, &s.Messages, &s.LastAt, &s.IsMe); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

package search

import (
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/Zuo-Peng/waview/internal/index"
)

type Result struct {
	ChatKey   string
	MessageID int
	Ts        string
	Title     string
	Sender    string
	Type      string
	Snippet   string
	Rank      float64
}

type Options struct {
	Query   string
	Chat    string // "" = all chats
	Sender  string // exact sender name
	Type    string // "" = all, or text/image/audio/video/system
	Since   string // "" = no filter, e.g. "2024-01-01"
	Until   string // inclusive day, e.g. "2024-12-31"
	Limit   int
	PerChat bool // keep only the best hit of each chat
}

// containsCJK returns true if the string contains any CJK Unified Ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if idx < 0 || len(lower) != len(text) {
		// no match (or case folding changed byte offsets), return head
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}

func Search(db *index.DB, opts Options) ([]Result, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if strings.TrimSpace(opts.Query) == "" {
		return nil, nil
	}

	origLimit := opts.Limit
	if opts.PerChat {
		// fetch more before dedup so we still have enough after
		opts.Limit = origLimit * 3
	}

	var results []Result
	var err error
	if containsCJK(opts.Query) {
		results, err = searchLike(db, opts)
	} else {
		results, err = searchFTS(db, opts)
	}
	if err != nil {
		return nil, err
	}
	if !opts.PerChat {
		return results, nil
	}

	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.ChatKey] {
			continue
		}
		seen[r.ChatKey] = true
		deduped = append(deduped, r)
		if len(deduped) >= origLimit {
			break
		}
	}
	return deduped, nil
}

// filters appends the non-text conditions shared by both search paths.
func filters(opts Options, conditions []string, args []interface{}) ([]string, []interface{}) {
	if opts.Chat != "" {
		conditions = append(conditions, "m.chat_key = ?")
		args = append(args, opts.Chat)
	}
	if opts.Sender != "" {
		conditions = append(conditions, "m.sender = ?")
		args = append(args, opts.Sender)
	}
	if opts.Type != "" {
		conditions = append(conditions, "m.type = ?")
		args = append(args, opts.Type)
	}
	if opts.Since != "" {
		conditions = append(conditions, "m.ts >= ?")
		args = append(args, opts.Since)
	}
	if opts.Until != "" {
		// compare against the next day so the whole Until day is included
		conditions = append(conditions, "m.ts < date(?, '+1 day')")
		args = append(args, opts.Until)
	}
	return conditions, args
}

// ftsOperators pass through to MATCH unquoted when they join two terms.
var ftsOperators = map[string]bool{"AND": true, "OR": true, "NOT": true}

// matchQuery turns free text into an FTS5 query: every term becomes a quoted
// string so punctuation such as ' : ? is not read as query syntax. Terms
// without letters or digits are dropped. A trailing * keeps prefix search.
func matchQuery(q string) string {
	fields := strings.Fields(q)
	var terms []string
	prevOp := true
	for i, t := range fields {
		if ftsOperators[t] && !prevOp && i < len(fields)-1 {
			terms = append(terms, t)
			prevOp = true
			continue
		}
		if !strings.ContainsFunc(t, isWordRune) {
			continue
		}
		prevOp = false
		prefix := ""
		if len(t) > 1 && strings.HasSuffix(t, "*") {
			t, prefix = strings.TrimSuffix(t, "*"), "*"
		}
		terms = append(terms, `"`+strings.ReplaceAll(t, `"`, `""`)+`"`+prefix)
	}
	if n := len(terms); n > 0 && ftsOperators[terms[n-1]] {
		// the term after it was dropped
		terms = terms[:n-1]
	}
	return strings.Join(terms, " ")
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func searchFTS(db *index.DB, opts Options) ([]Result, error) {
	match := matchQuery(opts.Query)
	if match == "" {
		// punctuation only: nothing the tokenizer would index
		return nil, nil
	}
	conditions := []string{"messages_fts MATCH ?"}
	args := []interface{}{match}
	conditions, args = filters(opts, conditions, args)

	query := fmt.Sprintf(`
		SELECT
			m.chat_key,
			m.message_id,
			m.ts,
			c.title,
			m.sender,
			m.type,
			snippet(messages_fts, 0, '>>>','<<<', '...', 24) as snip,
			bm25(messages_fts, 1.0) as rank
		FROM messages_fts
		JOIN messages m ON messages_fts.rowid = m.rowid
		JOIN chats c ON m.chat_key = c.chat_key
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func searchLike(db *index.DB, opts Options) ([]Result, error) {
	conditions := []string{"m.content LIKE ?"}
	args := []interface{}{"%" + opts.Query + "%"}
	conditions, args = filters(opts, conditions, args)

	query := fmt.Sprintf(`
		SELECT
			m.chat_key,
			m.message_id,
			m.ts,
			c.title,
			m.sender,
			m.type,
			m.content
		FROM messages m
		JOIN chats c ON m.chat_key = c.chat_key
		WHERE %s
		ORDER BY m.ts DESC
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	args = append(args, opts.Limit)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var fullText string
		if err := rows.Scan(
			&r.ChatKey, &r.MessageID, &r.Ts,
			&r.Title, &r.Sender, &r.Type,
			&fullText,
		); err != nil {
			return nil, err
		}
		r.Snippet = makeSnippet(fullText, opts.Query, 30)
		results = append(results, r)
	}
	return results, rows.Err()
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(
			&r.ChatKey, &r.MessageID, &r.Ts,
			&r.Title, &r.Sender, &r.Type,
			&r.Snippet, &r.Rank,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListChats returns one row per chat, newest activity first. A non-empty
// filter matches the title or file path.
func ListChats(db *index.DB, filter string, limit int) ([]Result, error) {
	chats, err := db.ListChats(0)
	if err != nil {
		return nil, err
	}
	f := strings.ToLower(filter)
	var out []Result
	for _, c := range chats {
		if f != "" && !strings.Contains(strings.ToLower(c.Title), f) && !strings.Contains(strings.ToLower(c.FilePath), f) {
			continue
		}
		out = append(out, Result{
			ChatKey:   c.ChatKey,
			MessageID: -1,
			Ts:        c.UpdatedAt,
			Title:     c.Title,
			Snippet:   fmt.Sprintf("%d messages since %s", c.MessageCount, c.CreatedAt),
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

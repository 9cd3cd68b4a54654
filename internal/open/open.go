package open

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/waview/internal/index"
)

// ErrInsideZip is returned for chats that live in a .zip export; there is no
// file on disk to hand to an editor.
var ErrInsideZip = errors.New("transcript is inside a zip archive")

// TranscriptFile resolves the on-disk transcript of an indexed chat.
func TranscriptFile(c *index.ChatRow) (string, error) {
	switch c.Kind {
	case "txt":
		return c.FilePath, nil
	case "dir":
		return filepath.Join(c.FilePath, filepath.FromSlash(c.Transcript)), nil
	default:
		return "", fmt.Errorf("%s: %w", c.FilePath, ErrInsideZip)
	}
}

func OpenChat(db *index.DB, chatKey string, messageID int) error {
	chat, err := db.GetChatByKey(chatKey)
	if err != nil {
		return fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return fmt.Errorf("chat not found: %s", chatKey)
	}

	filePath, err := TranscriptFile(chat)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	lineNum := 1
	if messageID >= 0 {
		m, err := db.GetMessage(chatKey, messageID)
		if err == nil && m != nil {
			lineNum = m.LineNumber()
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	return openInEditor(editor, filePath, lineNum)
}

// editorCommand builds the argument list that opens filePath at lineNum.
func editorCommand(editor, filePath string, lineNum int) []string {
	switch {
	case strings.Contains(editor, "vim"), strings.Contains(editor, "nano"):
		return []string{editor, fmt.Sprintf("+%d", lineNum), filePath}
	case strings.Contains(editor, "code"):
		return []string{editor, "--goto", filePath + ":" + strconv.Itoa(lineNum)}
	case strings.Contains(editor, "less"):
		return []string{editor, "+" + strconv.Itoa(lineNum), filePath}
	default:
		return []string{editor, filePath}
	}
}

func openInEditor(editor, filePath string, lineNum int) error {
	args := editorCommand(editor, filePath, lineNum)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

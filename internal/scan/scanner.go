package scan

import (
	"os"
	"path/filepath"
	"strings"
)

type FileInfo struct {
	Path  string
	Kind  string // "txt", "zip" or "dir"
	Mtime int64
	Size  int64
}

// ScanRoot finds chat exports under root: .txt transcripts, .zip bundles,
// and extracted export folders (a folder holding _chat.txt). Files inside
// an export folder are not reported separately.
func ScanRoot(root string) ([]FileInfo, error) {
	if root == "" {
		return nil, nil
	}
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			base := filepath.Base(path)
			if base == "__MACOSX" || (strings.HasPrefix(base, ".") && path != root) {
				return filepath.SkipDir
			}
			if path == root {
				return nil
			}
			if chat, err := os.Stat(filepath.Join(path, "_chat.txt")); err == nil && !chat.IsDir() {
				files = append(files, FileInfo{
					Path:  path,
					Kind:  "dir",
					Mtime: chat.ModTime().Unix(),
					Size:  chat.Size(),
				})
				return filepath.SkipDir
			}
			return nil
		}

		var kind string
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt":
			kind = "txt"
		case ".zip":
			kind = "zip"
		default:
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Kind:  kind,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return files, nil
}

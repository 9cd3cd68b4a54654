package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrMediaUnavailable     = errors.New("media unavailable")
	ErrNoTranscript         = errors.New("no chat transcript found in export")
	ErrUnsupportedExtension = errors.New("unsupported export file type")
)

// mainTranscript is the name the exporter gives the chat inside a bundle.
const mainTranscript = "_chat.txt"

// FSArchive resolves media inside a zip bundle or an extracted export
// folder. Entries may sit at the root or under nested folders.
type FSArchive struct {
	fsys  fs.FS
	files []string
}

func NewFSArchive(fsys fs.FS) (*FSArchive, error) {
	a := &FSArchive{fsys: fsys}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			if d.Name() == "__MACOSX" {
				return fs.SkipDir
			}
			return nil
		}
		a.files = append(a.files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(a.files)
	return a, nil
}

// Resolve maps a bare attachment name to an entry path: exact path first,
// then a "/name" suffix, then the same two checks ignoring case.
func (a *FSArchive) Resolve(name string) (string, bool) {
	name = strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(name)), "/")
	if name == "" || name == "." {
		return "", false
	}
	for _, p := range a.files {
		if p == name || strings.HasSuffix(p, "/"+name) {
			return p, true
		}
	}
	lower := strings.ToLower(name)
	for _, p := range a.files {
		lp := strings.ToLower(p)
		if lp == lower || strings.HasSuffix(lp, "/"+lower) {
			return p, true
		}
	}
	return "", false
}

// Open returns the content of the named attachment. The caller must close it.
func (a *FSArchive) Open(name string) (io.ReadCloser, error) {
	p, ok := a.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrMediaUnavailable)
	}
	f, err := a.fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	return f, nil
}

// transcriptPath picks the chat text inside the archive.
func (a *FSArchive) transcriptPath() (string, bool) {
	if p, ok := a.Resolve(mainTranscript); ok {
		return p, true
	}
	for _, p := range a.files {
		if strings.EqualFold(path.Ext(p), ".txt") {
			return p, true
		}
	}
	return "", false
}

// Export is a loaded chat export: its transcript text plus, for bundles and
// folders, the media archive.
type Export struct {
	Path    string
	Text    string
	Archive *FSArchive // nil for a bare .txt
	closer  io.Closer
}

func (e *Export) Close() error {
	if e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// Load opens a .txt transcript, a .zip bundle, or an export folder.
func Load(p string) (*Export, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loadFS(p, os.DirFS(p), nil)
	}

	switch strings.ToLower(filepath.Ext(p)) {
	case ".txt":
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		return &Export{Path: p, Text: string(data)}, nil
	case ".zip":
		zr, err := zip.OpenReader(p)
		if err != nil {
			return nil, fmt.Errorf("open bundle: %w", err)
		}
		e, err := loadFS(p, zr, zr)
		if err != nil {
			zr.Close()
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(p), ErrUnsupportedExtension)
	}
}

func loadFS(p string, fsys fs.FS, closer io.Closer) (*Export, error) {
	a, err := NewFSArchive(fsys)
	if err != nil {
		return nil, fmt.Errorf("list archive: %w", err)
	}
	tp, ok := a.transcriptPath()
	if !ok {
		return nil, fmt.Errorf("%s: %w", filepath.Base(p), ErrNoTranscript)
	}
	data, err := fs.ReadFile(fsys, tp)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return &Export{Path: p, Text: string(data), Archive: a, closer: closer}, nil
}

// TranscriptPath reports which entry Load used as the chat text.
func (e *Export) TranscriptPath() string {
	if e.Archive == nil {
		return e.Path
	}
	tp, _ := e.Archive.transcriptPath()
	return tp
}

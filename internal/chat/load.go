package chat

import (
	"errors"
	"fmt"

	"github.com/Zuo-Peng/waview/internal/archive"
	"github.com/Zuo-Peng/waview/internal/transcript"
)

// ErrNoMessages means the parse found no sender at all: the file is empty
// or not a chat export.
var ErrNoMessages = errors.New("no recognizable message lines found")

// LoadFile reads an export and parses it. Structural problems (no transcript
// in the bundle, unsupported file type) fail before parsing. The returned
// Export must be closed once its media is no longer needed. The self identity
// is applied after parsing, so one parse serves any choice of self.
func LoadFile(path string, p *transcript.Parser, self string) (*transcript.ChatData, *archive.Export, error) {
	exp, err := archive.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}

	var media transcript.Archive
	if exp.Archive != nil {
		media = exp.Archive
	}

	data := p.Parse(exp.Text, media, "")
	if len(data.AllSenders) == 0 {
		exp.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, ErrNoMessages)
	}
	if self != "" {
		data = data.Reassign(self)
	}
	return data, exp, nil
}

package transcript

import (
	"io"
	"time"
)

type MessageType string

const (
	TypeText   MessageType = "text"
	TypeImage  MessageType = "image"
	TypeAudio  MessageType = "audio"
	TypeVideo  MessageType = "video"
	TypeSystem MessageType = "system"
)

// Archive resolves bundled media by file name. Implementations tolerate
// path prefixes and letter case. The caller must close the returned reader.
type Archive interface {
	Open(name string) (io.ReadCloser, error)
}

type Message struct {
	ID                 int         `json:"id"` // 0-based source line index
	RawDate            string      `json:"rawDate"`
	Timestamp          time.Time   `json:"timestamp"`
	Sender             string      `json:"sender"`
	Content            string      `json:"content"`
	IsMe               bool        `json:"isMe"`
	IsSystem           bool        `json:"isSystem"`
	Type               MessageType `json:"type"`
	AttachmentFileName string      `json:"attachmentFileName,omitempty"`
}

// Line returns the 1-based line number of the message header in the source.
func (m Message) Line() int {
	return m.ID + 1
}

type ChatParticipant struct {
	Name            string    `json:"name"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageDate time.Time `json:"lastMessageDate"`
	AvatarColor     Color     `json:"avatarColor"`
}

type ChatData struct {
	Messages     []Message         `json:"messages"`
	Participants []ChatParticipant `json:"participants"`
	AllSenders   []string          `json:"allSenders"`
	Archive      Archive           `json:"-"`
}

// Reassign returns a copy of d with IsMe re-evaluated against self and the
// self participant removed from Participants. Participants are not rebuilt:
// a sender that was self at parse time stays absent.
func (d *ChatData) Reassign(self string) *ChatData {
	out := &ChatData{
		Messages:     make([]Message, len(d.Messages)),
		Participants: make([]ChatParticipant, 0, len(d.Participants)),
		AllSenders:   append([]string(nil), d.AllSenders...),
		Archive:      d.Archive,
	}
	for i, m := range d.Messages {
		m.IsMe = self != "" && m.Sender == self
		out.Messages[i] = m
	}
	for _, p := range d.Participants {
		if self != "" && p.Name == self {
			continue
		}
		out.Participants = append(out.Participants, p)
	}
	return out
}

type Stats struct {
	Messages int
	ByType   map[MessageType]int
	BySender map[string]int
	First    time.Time
	Last     time.Time
}

func (d *ChatData) Stats() Stats {
	s := Stats{
		Messages: len(d.Messages),
		ByType:   make(map[MessageType]int),
		BySender: make(map[string]int),
	}
	for _, m := range d.Messages {
		s.ByType[m.Type]++
		s.BySender[m.Sender]++
		if s.First.IsZero() {
			s.First = m.Timestamp
		}
		s.Last = m.Timestamp
	}
	return s
}

// Package export writes chat transcripts in shareable formats.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xiaoyuanzhu-com/webhook-chat/chat"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(t *Transcript, w io.Writer) error
	Extension() string
	ContentType() string
}

// Formats lists the accepted format names
var Formats = []string{"md", "json", "jsonl", "yaml"}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "jsonl":
		return &JSONLExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

// Transcript is the exported view of one session
type Transcript struct {
	ID        string  `json:"id" yaml:"id"`
	Title     string  `json:"title" yaml:"title"`
	CreatedAt string  `json:"createdAt" yaml:"created_at"`
	UpdatedAt string  `json:"updatedAt" yaml:"updated_at"`
	Messages  []Entry `json:"messages" yaml:"messages"`
}

// Entry is one exported message
type Entry struct {
	Sender    string `json:"sender" yaml:"sender"`
	Content   string `json:"content" yaml:"content"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// NewTranscript builds a transcript. Placeholders are skipped.
func NewTranscript(session chat.Session, messages []chat.Message) *Transcript {
	t := &Transcript{
		ID:        session.ID,
		Title:     session.Title,
		CreatedAt: formatTime(session.CreatedAt),
		UpdatedAt: formatTime(session.UpdatedAt),
		Messages:  make([]Entry, 0, len(messages)),
	}
	for _, m := range messages {
		if !m.Persistent() {
			continue
		}
		t.Messages = append(t.Messages, Entry{
			Sender:    string(m.Sender),
			Content:   m.Content,
			Timestamp: formatTime(m.Timestamp),
		})
	}
	return t
}

// Filename returns a file name for t in the exporter's format
func Filename(t *Transcript, e Exporter) string {
	return fmt.Sprintf("chat_%s.%s", t.ID, e.Extension())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

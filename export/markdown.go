package export

import (
	"fmt"
	"io"

	"github.com/xiaoyuanzhu-com/webhook-chat/chat"
)

// MarkdownExporter exports a transcript as a readable document
type MarkdownExporter struct{}

// Export exports a transcript to Markdown format
func (e *MarkdownExporter) Export(t *Transcript, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# %s\n\n", t.Title); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "**Session:** %s  \n", t.ID)
	_, _ = fmt.Fprintf(w, "**Created:** %s  \n", t.CreatedAt)
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(t.Messages))
	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, m := range t.Messages {
		_, _ = fmt.Fprintf(w, "**%s** (%s)\n\n%s\n\n", speaker(m.Sender), m.Timestamp, m.Content)
		if i < len(t.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}
	return nil
}

func speaker(sender string) string {
	if sender == string(chat.SenderUser) {
		return "You"
	}
	return "n8n"
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}

// ContentType returns the MIME type for this format
func (e *MarkdownExporter) ContentType() string {
	return "text/markdown; charset=utf-8"
}

package export

import (
	"encoding/json"
	"io"

	pkgerrors "github.com/pkg/errors"
)

// JSONExporter exports a transcript as one indented JSON document
type JSONExporter struct{}

// Export exports a transcript to JSON format
func (e *JSONExporter) Export(t *Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return pkgerrors.Wrap(enc.Encode(t), "failed to encode transcript")
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}

// ContentType returns the MIME type for this format
func (e *JSONExporter) ContentType() string {
	return "application/json; charset=utf-8"
}

// JSONLExporter exports one message per line
type JSONLExporter struct{}

// Export exports a transcript to JSONL format
func (e *JSONLExporter) Export(t *Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, m := range t.Messages {
		if err := enc.Encode(m); err != nil {
			return pkgerrors.Wrap(err, "failed to encode message")
		}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}

// ContentType returns the MIME type for this format
func (e *JSONLExporter) ContentType() string {
	return "application/x-ndjson; charset=utf-8"
}

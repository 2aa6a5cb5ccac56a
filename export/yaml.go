package export

import (
	"io"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports a transcript in YAML format
type YAMLExporter struct{}

// Export exports a transcript to YAML format
func (e *YAMLExporter) Export(t *Transcript, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return pkgerrors.Wrap(enc.Encode(t), "failed to encode transcript")
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}

// ContentType returns the MIME type for this format
func (e *YAMLExporter) ContentType() string {
	return "application/yaml; charset=utf-8"
}

package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"btscan/internal/domain"
)

// JSONExporter renders the record set as a human-indented UTF-8 array of
// row objects. Non-ASCII characters are left unescaped.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Format returns the exporter format identifier
func (e *JSONExporter) Format() string {
	return "json"
}

// Export writes the rows as an indented JSON array. An empty session yields
// a valid empty array, never null.
func (e *JSONExporter) Export(rows []domain.Row, w io.Writer) error {
	if rows == nil {
		rows = []domain.Row{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// Package codec renders the final record store into the supported output
// formats.
//
// Every exporter consumes the same fixed-order 15-field rows, in the
// store's first-creation order, so the JSON and CSV outputs of one session
// always contain identical address sets and equivalent values. Composite
// fields (service UUIDs and the two payload maps) stay native nested values
// in JSON and collapse to a single JSON-text cell each in CSV.
package codec

import (
	"fmt"
	"io"
	"time"

	"btscan/internal/domain"
)

// Exporter renders rows to an output sink
type Exporter interface {
	Export(rows []domain.Row, w io.Writer) error
	Format() string
}

// DefaultOutputName returns the timestamped file name used when no output
// path is configured
func DefaultOutputName(now time.Time) string {
	return fmt.Sprintf("bt_scan_%s.json", now.Format("20060102-150405"))
}

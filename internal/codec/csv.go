package codec

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"btscan/internal/domain"
)

// CSVExporter renders the record set as UTF-8 CSV: a header row of the
// fixed 15 column names, then one row per record. Absent scalars become
// empty cells; the three composite fields are each encoded as a single
// JSON-text cell so they round-trip to the same values as the JSON output.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Format returns the exporter format identifier
func (e *CSVExporter) Format() string {
	return "csv"
}

// Export writes the header and one row per record. An empty session yields
// a header-only file.
func (e *CSVExporter) Export(rows []domain.Row, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(domain.RowFieldNames()); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, row := range rows {
		record, err := csvRecord(row)
		if err != nil {
			return err
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write CSV row for %s: %w", row.Address, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush CSV: %w", err)
	}
	return nil
}

func csvRecord(row domain.Row) ([]string, error) {
	uuids, err := compositeCell(row.ServiceUUIDs == nil, row.ServiceUUIDs)
	if err != nil {
		return nil, fmt.Errorf("encode service_uuids for %s: %w", row.Address, err)
	}
	serviceData, err := compositeCell(row.ServiceData == nil, row.ServiceData)
	if err != nil {
		return nil, fmt.Errorf("encode service_data for %s: %w", row.Address, err)
	}
	manufacturerData, err := compositeCell(row.ManufacturerData == nil, row.ManufacturerData)
	if err != nil {
		return nil, fmt.Errorf("encode manufacturer_data for %s: %w", row.Address, err)
	}

	return []string{
		row.Address,
		string(row.Transport),
		stringCell(row.Name),
		intCell(row.RSSI),
		intCell(row.TxPower),
		intCell(row.Appearance),
		boolCell(row.Connectable),
		stringCell(row.AddressType),
		intCell(row.DeviceClass),
		uuids,
		serviceData,
		manufacturerData,
		row.FirstSeen,
		row.LastSeen,
		strconv.Itoa(row.Sightings),
	}, nil
}

// compositeCell encodes a non-absent composite value as compact JSON text;
// absence renders as an empty cell
func compositeCell(absent bool, v any) (string, error) {
	if absent {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func stringCell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func boolCell(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

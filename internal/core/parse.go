package core

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format identifies the file format of an uploaded batch.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// baseColumns is the positional column order shared by the delimited-text
// and spreadsheet formats, after the optional leading component_id column.
var baseColumns = []string{
	"tower", "app_group", "component_type", "complexity",
	"status", "year", "month", "change_type", "description",
}

// DetectFormat maps a file name to its parser based on the extension.
// Unrecognized extensions fail with UnsupportedFormatError.
func DetectFormat(fileName string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx", ".xls":
		return FormatXLSX, nil
	default:
		return "", &UnsupportedFormatError{Ext: ext}
	}
}

// Parse extracts the ordered raw records from an uploaded file.
// Row-level problems are not reported here; they surface from the validator.
func Parse(fileName string, data []byte) ([]RawRecord, error) {
	format, err := DetectFormat(fileName)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return parseCSV(data)
	case FormatJSON:
		return parseJSON(data)
	default:
		return parseXLSX(data)
	}
}

// parseCSV reads delimited text: first row is the header, data rows map
// positionally onto baseColumns. Leading component_id and name header
// columns (as written by the exporter) are recognized and consumed.
func parseCSV(data []byte) ([]RawRecord, error) {
	r := csv.NewReader(bytes.NewReader(sanitizeUTF8(data)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	return rowsToRecords(rows), nil
}

// rowsToRecords converts header+data rows into raw records. Shared by the
// delimited-text and spreadsheet parsers.
func rowsToRecords(rows [][]string) []RawRecord {
	if len(rows) == 0 {
		return nil
	}

	header := rows[0]
	withID := len(header) > 0 && isIdentifierHeader(header[0])
	nameAt := 0
	if withID {
		nameAt = 1
	}
	withName := len(header) > nameAt && isNameHeader(header[nameAt])

	var records []RawRecord
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}

		var rec RawRecord
		cells := row
		if withID && len(cells) > 0 {
			rec.ComponentID = strings.TrimSpace(cells[0])
			cells = cells[1:]
		}
		if withName && len(cells) > 0 {
			rec.Name = strings.TrimSpace(cells[0])
			cells = cells[1:]
		}

		for i, col := range baseColumns {
			if i >= len(cells) {
				break
			}
			setColumn(&rec, col, strings.TrimSpace(cells[i]))
		}
		records = append(records, rec)
	}
	return records
}

// setColumn assigns a positional cell to its RawRecord field.
func setColumn(rec *RawRecord, col, val string) {
	switch col {
	case "tower":
		rec.Tower = val
	case "app_group":
		rec.AppGroup = val
	case "component_type":
		rec.ComponentType = val
	case "complexity":
		rec.Complexity = val
	case "status":
		rec.Status = val
	case "year":
		rec.Year = val
	case "month":
		rec.Month = val
	case "change_type":
		rec.ChangeType = val
	case "description":
		rec.Description = val
	}
}

// isIdentifierHeader reports whether a header cell names the component
// identifier column.
func isIdentifierHeader(cell string) bool {
	return headerKey(cell) == "componentid" || headerKey(cell) == "id"
}

// isNameHeader reports whether a header cell names the display-name column
// written by the exporter.
func isNameHeader(cell string) bool {
	return headerKey(cell) == "name"
}

func headerKey(cell string) string {
	key := strings.ToLower(strings.TrimSpace(cell))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// sanitizeUTF8 replaces invalid byte sequences with the Unicode replacement
// character so downstream parsing never chokes on a bad export encoding.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

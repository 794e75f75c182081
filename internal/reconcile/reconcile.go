// Package reconcile maps free-form spreadsheet exports onto the configured
// inventory schema. Header cells resolve to field ids through a fixed alias
// table and then schema label/id matching; unresolved and counter columns are
// dropped, and a status is inferred for rows that carry none.
package reconcile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/rpattn/invtrack/internal/domain"
)

const (
	// StatusField is the canonical id the inference step populates.
	StatusField = "status"
	ownerField  = "currentOwner"

	// StatusAvailable and StatusInUse are the two inferred defaults.
	StatusAvailable = "Available"
	StatusInUse     = "In Use"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// ownerPlaceholders are owner cell values treated the same as blank.
var ownerPlaceholders = map[string]struct{}{
	"n/a": {},
	"—":   {},
}

// Candidate is one reconciled record: resolved field id to raw cell value.
// Resolved columns always carry a key, with "" for missing trailing cells.
type Candidate map[string]string

// Reconcile parses raw CSV text and maps it onto the schema. Inputs with a
// header row and zero data rows yield an empty result. Malformed quoting and
// ragged rows degrade to best-effort parsing rather than failing the file.
func Reconcile(rawText string, settings domain.Settings) ([]Candidate, error) {
	records, err := parseCSV([]byte(rawText))
	if err != nil {
		return nil, err
	}
	return ReconcileRecords(records, settings), nil
}

// ReconcileRecords maps already-split rows (CSV or spreadsheet) onto the
// schema. The first non-empty row is the header.
func ReconcileRecords(records [][]string, settings domain.Settings) []Candidate {
	records = dropEmptyRows(records)
	if len(records) < 2 {
		return []Candidate{}
	}

	columns := resolveHeaders(records[0], settings)
	if len(columns) == 0 {
		return []Candidate{}
	}

	candidates := make([]Candidate, 0, len(records)-1)
	for _, row := range records[1:] {
		candidate := make(Candidate, len(columns))
		for idx, fieldID := range columns {
			value := ""
			if idx < len(row) {
				value = strings.TrimSpace(row[idx])
			}
			candidate[fieldID] = value
		}
		if len(candidate) == 0 {
			continue
		}
		InferStatus(candidate)
		candidates = append(candidates, candidate)
	}
	return candidates
}

// InferStatus fills the status key when the row resolved none: a record with
// a real current owner is "In Use", anything else is "Available". Rows whose
// status column carried a value are left alone, even when the value is not a
// configured option.
func InferStatus(candidate Candidate) {
	if candidate[StatusField] != "" {
		return
	}
	owner := strings.TrimSpace(candidate[ownerField])
	if owner != "" {
		if _, placeholder := ownerPlaceholders[strings.ToLower(owner)]; !placeholder {
			candidate[StatusField] = StatusInUse
			return
		}
	}
	candidate[StatusField] = StatusAvailable
}

// resolveHeaders maps column index to field id. Resolution order: counter
// detection (dropped), alias table, then case-insensitive match against the
// schema's labels and ids. Unmatched headers are dropped.
func resolveHeaders(headerRow []string, settings domain.Settings) map[int]string {
	columns := make(map[int]string)
	for idx, raw := range headerRow {
		header := strings.TrimSpace(raw)
		if header == "" || counterHeader(header) {
			continue
		}
		if id, ok := aliasFieldID(header); ok {
			columns[idx] = id
			continue
		}
		for _, field := range settings.Fields {
			if strings.EqualFold(field.Label, header) || strings.EqualFold(field.ID, header) {
				columns[idx] = field.ID
				break
			}
		}
	}
	return columns
}

func parseCSV(payload []byte) ([][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records, nil
}

func dropEmptyRows(records [][]string) [][]string {
	var filtered [][]string
	for _, row := range records {
		keep := false
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				keep = true
				break
			}
		}
		if keep {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

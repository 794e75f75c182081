// Package export renders the inventory to spreadsheet formats. Column order
// and header text follow the schema registry's field order and labels, which
// keeps exports reconcilable back through the importer.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/invtrack/internal/domain"
)

// Format identifies a supported export format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a query-string value to a Format, defaulting to CSV.
func ParseFormat(value string) (Format, error) {
	switch value {
	case "", string(FormatCSV):
		return FormatCSV, nil
	case string(FormatXLSX):
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", value)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName builds the download name stamped with the given day.
func (f Format) FileName(now time.Time) string {
	return fmt.Sprintf("inventory_export_%s.%s", now.Format("2006-01-02"), f)
}

// CSV renders assets as comma-separated text: one header row of field labels
// in schema order, then one row per asset. Missing keys become empty cells.
func CSV(assets []domain.Asset, settings domain.Settings) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := make([]string, len(settings.Fields))
	for i, field := range settings.Fields {
		header[i] = field.Label
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for _, asset := range assets {
		row := make([]string, len(settings.Fields))
		for i, field := range settings.Fields {
			row[i] = asset.PropertyString(field.ID)
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

const sheetName = "Inventory"

// XLSX renders assets as a single-sheet workbook with the same layout as CSV.
func XLSX(assets []domain.Asset, settings domain.Settings) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, field := range settings.Fields {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, field.Label); err != nil {
			return nil, fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for rowIdx, asset := range assets {
		for col, field := range settings.Fields {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, asset.PropertyString(field.ID)); err != nil {
				return nil, fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Render dispatches to the encoder for the requested format.
func Render(format Format, assets []domain.Asset, settings domain.Settings) ([]byte, error) {
	if format == FormatXLSX {
		return XLSX(assets, settings)
	}
	return CSV(assets, settings)
}

package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/invtrack/internal/domain"
	"github.com/rpattn/invtrack/internal/reconcile"
)

func exportSettings() domain.Settings {
	return domain.Settings{
		StatusOptions: []string{"Available", "In Use"},
		Fields: []domain.FieldDefinition{
			{ID: "entryDate", Label: "Entry Date", Type: domain.FieldTypeDate},
			{ID: "equipmentDescription", Label: "Equipment Description", Type: domain.FieldTypeText, IsPrimary: true},
			{ID: "currentOwner", Label: "Current Owner", Type: domain.FieldTypeText},
			{ID: "status", Label: "Status", Type: domain.FieldTypeSelect, Options: []string{"Available", "In Use"}},
		},
	}
}

func TestCSVHeaderUsesLabelsInSchemaOrder(t *testing.T) {
	data, err := CSV(nil, exportSettings())
	if err != nil {
		t.Fatalf("csv export returned error: %v", err)
	}
	first := strings.SplitN(string(data), "\n", 2)[0]
	if strings.TrimRight(first, "\r") != "Entry Date,Equipment Description,Current Owner,Status" {
		t.Fatalf("unexpected header row: %q", first)
	}
}

func TestCSVMissingKeysBecomeEmptyCells(t *testing.T) {
	asset := domain.NewAsset(map[string]any{"equipmentDescription": "Laptop"})
	data, err := CSV([]domain.Asset{asset}, exportSettings())
	if err != nil {
		t.Fatalf("csv export returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if strings.TrimRight(lines[1], "\r") != ",Laptop,," {
		t.Fatalf("unexpected data row: %q", lines[1])
	}
}

func TestCSVQuotesEmbeddedCommasAndQuotes(t *testing.T) {
	asset := domain.NewAsset(map[string]any{
		"equipmentDescription": `ET5X "Verifone" Sled, v2`,
	})
	data, err := CSV([]domain.Asset{asset}, exportSettings())
	if err != nil {
		t.Fatalf("csv export returned error: %v", err)
	}
	if !strings.Contains(string(data), `"ET5X ""Verifone"" Sled, v2"`) {
		t.Fatalf("embedded quotes not escaped: %s", data)
	}
}

// Exporting and re-importing against the same schema must reproduce every
// value whose field id is reachable via an alias or label. Custom fields with
// no alias still round-trip because export headers are schema labels.
func TestExportReconcileRoundTrip(t *testing.T) {
	settings := exportSettings()
	assets := []domain.Asset{
		domain.NewAsset(map[string]any{
			"entryDate":            "2024-01-01",
			"equipmentDescription": "Laptop A",
			"currentOwner":         "Alice",
			"status":               "In Use",
		}),
		domain.NewAsset(map[string]any{
			"entryDate":            "2024-02-02",
			"equipmentDescription": "Scanner, handheld",
			"currentOwner":         "",
			"status":               "Available",
		}),
	}

	data, err := CSV(assets, settings)
	if err != nil {
		t.Fatalf("csv export returned error: %v", err)
	}

	candidates, err := reconcile.Reconcile(string(data), settings)
	if err != nil {
		t.Fatalf("reconcile returned error: %v", err)
	}
	if len(candidates) != len(assets) {
		t.Fatalf("expected %d candidates, got %d", len(assets), len(candidates))
	}

	for i, asset := range assets {
		for _, field := range settings.Fields {
			want := asset.PropertyString(field.ID)
			if got := candidates[i][field.ID]; got != want {
				t.Fatalf("row %d field %s: want %q, got %q", i, field.ID, want, got)
			}
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatCSV {
		t.Fatalf("empty format should default to csv, got %v %v", f, err)
	}
	if f, err := ParseFormat("xlsx"); err != nil || f != FormatXLSX {
		t.Fatalf("xlsx format not recognised, got %v %v", f, err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestXLSXRoundTripThroughExcelize(t *testing.T) {
	asset := domain.NewAsset(map[string]any{
		"equipmentDescription": "Tablet",
		"status":               "Available",
	})
	data, err := XLSX([]domain.Asset{asset}, exportSettings())
	if err != nil {
		t.Fatalf("xlsx export returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("workbook does not reopen: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("failed to read sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one row, got %d", len(rows))
	}
	if rows[0][1] != "Equipment Description" {
		t.Fatalf("unexpected header cell: %v", rows[0])
	}
	if rows[1][1] != "Tablet" {
		t.Fatalf("unexpected data cell: %v", rows[1])
	}
}

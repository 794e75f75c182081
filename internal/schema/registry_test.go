package schema

import (
	"errors"
	"testing"

	"github.com/rpattn/invtrack/internal/domain"
)

func baseSettings() domain.Settings {
	return domain.Settings{
		StatusOptions: []string{"Available", "In Use"},
		Fields: []domain.FieldDefinition{
			{ID: "entryDate", Label: "Entry Date", Type: domain.FieldTypeDate},
			{ID: "equipmentDescription", Label: "Equipment Description", Type: domain.FieldTypeText, IsPrimary: true},
			{ID: "status", Label: "Status", Type: domain.FieldTypeSelect, Options: []string{"Available", "In Use"}},
		},
	}
}

func countPrimaries(settings domain.Settings) int {
	count := 0
	for _, f := range settings.Fields {
		if f.IsPrimary {
			count++
		}
	}
	return count
}

func TestAddFieldWithPrimaryClearsExistingPrimary(t *testing.T) {
	settings, err := AddField(baseSettings(), domain.FieldDefinition{
		Label:     "Asset Tag",
		Type:      domain.FieldTypeText,
		IsPrimary: true,
	})
	if err != nil {
		t.Fatalf("add field returned error: %v", err)
	}

	if got := countPrimaries(settings); got != 1 {
		t.Fatalf("expected exactly one primary field, got %d", got)
	}
	primary, ok := settings.PrimaryField()
	if !ok || primary.ID != "assetTag" {
		t.Fatalf("expected assetTag to be primary, got %+v", primary)
	}
}

func TestAddFieldDerivesIDFromLabel(t *testing.T) {
	settings, err := AddField(baseSettings(), domain.FieldDefinition{
		Label: "Serial Number / IMEI",
		Type:  domain.FieldTypeText,
	})
	if err != nil {
		t.Fatalf("add field returned error: %v", err)
	}
	if _, ok := settings.FieldByID("serialNumberImei"); !ok {
		t.Fatalf("expected derived id serialNumberImei, fields: %+v", settings.Fields)
	}
}

func TestAddFieldRejectsReservedID(t *testing.T) {
	for _, id := range []string{"id", "historyLog", "HistoryLog"} {
		_, err := AddField(baseSettings(), domain.FieldDefinition{
			ID:    id,
			Label: id,
			Type:  domain.FieldTypeText,
		})
		if !errors.Is(err, ErrReservedFieldID) {
			t.Fatalf("expected reserved id error for %q, got %v", id, err)
		}
	}
}

func TestAddFieldRejectsDuplicateID(t *testing.T) {
	_, err := AddField(baseSettings(), domain.FieldDefinition{
		ID:    "status",
		Label: "Status Again",
		Type:  domain.FieldTypeText,
	})
	if !errors.Is(err, ErrDuplicateFieldID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestUpdateFieldKeepsSinglePrimaryInvariant(t *testing.T) {
	settings := baseSettings()

	updated, err := UpdateField(settings, domain.FieldDefinition{
		ID:        "status",
		Label:     "Status",
		Type:      domain.FieldTypeSelect,
		Options:   []string{"Available"},
		IsPrimary: true,
	})
	if err != nil {
		t.Fatalf("update field returned error: %v", err)
	}
	if got := countPrimaries(updated); got != 1 {
		t.Fatalf("expected exactly one primary field, got %d", got)
	}
	primary, _ := updated.PrimaryField()
	if primary.ID != "status" {
		t.Fatalf("expected status to be primary, got %s", primary.ID)
	}
}

func TestRemovePrimaryFieldRejected(t *testing.T) {
	settings := baseSettings()
	result, err := RemoveField(settings, "equipmentDescription")
	if !errors.Is(err, ErrPrimaryFieldRemoval) {
		t.Fatalf("expected primary removal error, got %v", err)
	}
	if len(result.Fields) != len(settings.Fields) {
		t.Fatalf("field list changed on rejected removal")
	}
}

func TestRemoveFieldLeavesOtherDefinitions(t *testing.T) {
	settings, err := RemoveField(baseSettings(), "entryDate")
	if err != nil {
		t.Fatalf("remove field returned error: %v", err)
	}
	if len(settings.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(settings.Fields))
	}
	if _, ok := settings.FieldByID("entryDate"); ok {
		t.Fatalf("entryDate still present after removal")
	}
}

func TestMoveFieldSwapsAdjacentPositions(t *testing.T) {
	settings, err := MoveField(baseSettings(), "status", -1)
	if err != nil {
		t.Fatalf("move field returned error: %v", err)
	}
	if settings.Fields[1].ID != "status" || settings.Fields[2].ID != "equipmentDescription" {
		t.Fatalf("unexpected order after move: %+v", settings.Fields)
	}
}

func TestMoveFieldPastEndIsNoOp(t *testing.T) {
	before := baseSettings()
	after, err := MoveField(before, "entryDate", -1)
	if err != nil {
		t.Fatalf("move field returned error: %v", err)
	}
	for i := range before.Fields {
		if after.Fields[i].ID != before.Fields[i].ID {
			t.Fatalf("order changed on boundary move: %+v", after.Fields)
		}
	}
}

func TestStatusOptionRoundTrip(t *testing.T) {
	settings, err := AddStatusOption(baseSettings(), "Missing")
	if err != nil {
		t.Fatalf("add status option returned error: %v", err)
	}
	if !settings.HasStatusOption("Missing") {
		t.Fatalf("Missing not present after add")
	}

	if _, err := AddStatusOption(settings, "Missing"); !errors.Is(err, ErrDuplicateStatusOption) {
		t.Fatalf("expected duplicate status error, got %v", err)
	}

	settings, err = RemoveStatusOption(settings, "Missing")
	if err != nil {
		t.Fatalf("remove status option returned error: %v", err)
	}
	if settings.HasStatusOption("Missing") {
		t.Fatalf("Missing still present after removal")
	}
}

func TestValidateSettingsRejectsTwoPrimaries(t *testing.T) {
	settings := domain.Settings{
		Fields: []domain.FieldDefinition{
			{ID: "a", Label: "A", Type: domain.FieldTypeText, IsPrimary: true},
			{ID: "b", Label: "B", Type: domain.FieldTypeText, IsPrimary: true},
		},
	}
	if err := ValidateSettings(settings); err == nil {
		t.Fatalf("expected error for two primary fields")
	}
}

func TestValidateSettingsRejectsBadType(t *testing.T) {
	settings := domain.Settings{
		Fields: []domain.FieldDefinition{
			{ID: "a", Label: "A", Type: domain.FieldType("geometry")},
		},
	}
	if err := ValidateSettings(settings); !errors.Is(err, ErrInvalidFieldType) {
		t.Fatalf("expected invalid type error, got %v", err)
	}
}

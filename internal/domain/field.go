package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// FieldType represents the type of a configurable inventory field
type FieldType string

const (
	FieldTypeText   FieldType = "text"
	FieldTypeNumber FieldType = "number"
	FieldTypeDate   FieldType = "date"
	FieldTypeSelect FieldType = "select"
)

// ValidFieldType reports whether the supplied type is one of the supported kinds.
func ValidFieldType(t FieldType) bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeSelect:
		return true
	}
	return false
}

// FieldDefinition represents one administrator-configured inventory column.
// ID is the stable record key; Label is the display name and the CSV header.
type FieldDefinition struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Type      FieldType `json:"type"`
	Options   []string  `json:"options,omitempty"` // select fields only
	IsPrimary bool      `json:"isPrimary"`
}

// Reserved record keys that can never be claimed by a field definition.
const (
	ReservedKeyID      = "id"
	ReservedKeyHistory = "historyLog"
)

// ReservedKey reports whether id collides with a key the record envelope owns.
func ReservedKey(id string) bool {
	lowered := strings.ToLower(strings.TrimSpace(id))
	return lowered == strings.ToLower(ReservedKeyID) || lowered == strings.ToLower(ReservedKeyHistory)
}

var fieldIDPattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// FieldIDFromLabel derives a camelCase field id from a display label.
func FieldIDFromLabel(label string) string {
	parts := fieldIDPattern.Split(strings.TrimSpace(label), -1)
	var b strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			b.WriteString(strings.ToLower(part))
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(strings.ToLower(part[1:]))
	}
	return b.String()
}

// Settings is the schema registry document: the ordered field list plus the
// administrator-managed status option set.
type Settings struct {
	StatusOptions []string          `json:"statusOptions"`
	Fields        []FieldDefinition `json:"fields"`
}

// PrimaryField returns the single field flagged primary and whether one exists.
func (s Settings) PrimaryField() (FieldDefinition, bool) {
	for _, field := range s.Fields {
		if field.IsPrimary {
			return field, true
		}
	}
	return FieldDefinition{}, false
}

// FieldByID returns the field with the given id and whether it exists.
func (s Settings) FieldByID(id string) (FieldDefinition, bool) {
	for _, field := range s.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return FieldDefinition{}, false
}

// HasStatusOption reports whether value belongs to the configured status set.
func (s Settings) HasStatusOption(value string) bool {
	for _, opt := range s.StatusOptions {
		if opt == value {
			return true
		}
	}
	return false
}

// WithFields returns a new settings document with the supplied field list.
func (s Settings) WithFields(fields []FieldDefinition) Settings {
	return Settings{
		StatusOptions: copyStrings(s.StatusOptions),
		Fields:        copyFields(fields),
	}
}

// WithStatusOptions returns a new settings document with the supplied status set.
func (s Settings) WithStatusOptions(options []string) Settings {
	return Settings{
		StatusOptions: copyStrings(options),
		Fields:        copyFields(s.Fields),
	}
}

// GetFieldsAsJSONB returns the field list as JSONB for database storage.
func (s Settings) GetFieldsAsJSONB() (json.RawMessage, error) {
	return json.Marshal(s.Fields)
}

// GetStatusOptionsAsJSONB returns the status options as JSONB for database storage.
func (s Settings) GetStatusOptionsAsJSONB() (json.RawMessage, error) {
	return json.Marshal(s.StatusOptions)
}

// SettingsFromJSONB rebuilds a settings document from stored JSONB columns.
func SettingsFromJSONB(fieldsJSON, statusJSON json.RawMessage) (Settings, error) {
	var fields []FieldDefinition
	if err := json.Unmarshal(fieldsJSON, &fields); err != nil {
		return Settings{}, fmt.Errorf("failed to decode fields: %w", err)
	}
	var options []string
	if err := json.Unmarshal(statusJSON, &options); err != nil {
		return Settings{}, fmt.Errorf("failed to decode status options: %w", err)
	}
	return Settings{StatusOptions: options, Fields: fields}, nil
}

// DefaultSettings returns the seed schema used on first boot and after a
// system reset. The field set mirrors the hand-kept spreadsheet this system
// replaced, which is why entry ordering matters.
func DefaultSettings() Settings {
	return Settings{
		StatusOptions: []string{"Available", "In Use", "Need Repair", "Taken", "Borrow", "Missing"},
		Fields: []FieldDefinition{
			{ID: "entryDate", Label: "Entry Date", Type: FieldTypeDate},
			{ID: "equipmentDescription", Label: "Equipment Description", Type: FieldTypeText, IsPrimary: true},
			{ID: "partNumber", Label: "Part Number", Type: FieldTypeText},
			{ID: "serialNumber", Label: "Serial Number / IMEI", Type: FieldTypeText},
			{ID: "assetTag", Label: "Asset Tag", Type: FieldTypeText},
			{ID: "deviceType", Label: "Type (Device/Accessory/PC)", Type: FieldTypeText},
			{ID: "releasedTo", Label: "Released to", Type: FieldTypeText},
			{ID: "coreId", Label: "Core ID", Type: FieldTypeText},
			{ID: "manager", Label: "Manager", Type: FieldTypeText},
			{ID: "gatePass", Label: "Gate Pass (Y/N)", Type: FieldTypeText},
			{ID: "returned", Label: "Returned", Type: FieldTypeText},
			{ID: "currentOwner", Label: "Current Owner", Type: FieldTypeText},
			{ID: "comments", Label: "Comments", Type: FieldTypeText},
			{ID: "location", Label: "Location", Type: FieldTypeText},
			{ID: "status", Label: "Status", Type: FieldTypeSelect,
				Options: []string{"Available", "In Use", "Need Repair", "Taken", "Borrow", "Missing"}},
		},
	}
}

// copyFields creates a copy of the field slice to preserve the immutable pattern
func copyFields(fields []FieldDefinition) []FieldDefinition {
	if fields == nil {
		return nil
	}
	newFields := make([]FieldDefinition, len(fields))
	copy(newFields, fields)
	return newFields
}

func copyStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rpattn/invtrack/internal/domain"
)

var (
	// ErrReservedFieldID is returned when a field id collides with an envelope key.
	ErrReservedFieldID = errors.New("field id is reserved")
	// ErrDuplicateFieldID is returned when a field id is already taken.
	ErrDuplicateFieldID = errors.New("field id already exists")
	// ErrUnknownField is returned when the referenced field does not exist.
	ErrUnknownField = errors.New("field not found")
	// ErrPrimaryFieldRemoval is returned when removing the current primary field.
	// Callers must designate a new primary field first.
	ErrPrimaryFieldRemoval = errors.New("cannot remove the primary field")
	// ErrInvalidFieldType is returned for unsupported field types.
	ErrInvalidFieldType = errors.New("invalid field type")
	// ErrUnknownStatusOption is returned when removing a status value not in the set.
	ErrUnknownStatusOption = errors.New("status option not found")
	// ErrDuplicateStatusOption is returned when adding a status value already in the set.
	ErrDuplicateStatusOption = errors.New("status option already exists")
)

// AddField appends a field definition to the registry. An empty id is derived
// from the label. A field flagged primary clears the primary flag on every
// other field, keeping the at-most-one-primary invariant.
func AddField(settings domain.Settings, field domain.FieldDefinition) (domain.Settings, error) {
	field.Label = strings.TrimSpace(field.Label)
	if field.ID == "" {
		field.ID = domain.FieldIDFromLabel(field.Label)
	}
	if err := validateField(field); err != nil {
		return settings, err
	}
	if _, exists := settings.FieldByID(field.ID); exists {
		return settings, fmt.Errorf("%w: %s", ErrDuplicateFieldID, field.ID)
	}

	fields := append(clearPrimaryIf(settings.Fields, field.IsPrimary), field)
	return settings.WithFields(fields), nil
}

// UpdateField replaces the definition with the matching id in place,
// preserving position. Setting primary clears every other primary flag.
func UpdateField(settings domain.Settings, field domain.FieldDefinition) (domain.Settings, error) {
	if err := validateField(field); err != nil {
		return settings, err
	}

	found := false
	fields := clearPrimaryIf(settings.Fields, field.IsPrimary)
	for i := range fields {
		if fields[i].ID == field.ID {
			fields[i] = field
			found = true
			break
		}
	}
	if !found {
		return settings, fmt.Errorf("%w: %s", ErrUnknownField, field.ID)
	}
	return settings.WithFields(fields), nil
}

// RemoveField deletes a field definition. The current primary field cannot be
// removed. Existing records keep any value stored under the removed id; the
// loose-schema policy preserves those values for audit purposes.
func RemoveField(settings domain.Settings, id string) (domain.Settings, error) {
	field, ok := settings.FieldByID(id)
	if !ok {
		return settings, fmt.Errorf("%w: %s", ErrUnknownField, id)
	}
	if field.IsPrimary {
		return settings, ErrPrimaryFieldRemoval
	}

	fields := make([]domain.FieldDefinition, 0, len(settings.Fields)-1)
	for _, f := range settings.Fields {
		if f.ID != id {
			fields = append(fields, f)
		}
	}
	return settings.WithFields(fields), nil
}

// MoveField swaps the field with its neighbour. Direction is -1 (towards the
// front) or +1 (towards the back); moves past either end are no-ops. Field
// order defines display and export column order.
func MoveField(settings domain.Settings, id string, direction int) (domain.Settings, error) {
	if direction != -1 && direction != 1 {
		return settings, fmt.Errorf("invalid move direction %d", direction)
	}

	idx := -1
	for i, f := range settings.Fields {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return settings, fmt.Errorf("%w: %s", ErrUnknownField, id)
	}

	target := idx + direction
	if target < 0 || target >= len(settings.Fields) {
		return settings, nil
	}

	fields := settings.WithFields(settings.Fields).Fields
	fields[idx], fields[target] = fields[target], fields[idx]
	return settings.WithFields(fields), nil
}

// AddStatusOption appends a value to the status set.
func AddStatusOption(settings domain.Settings, option string) (domain.Settings, error) {
	option = strings.TrimSpace(option)
	if option == "" {
		return settings, errors.New("status option is required")
	}
	if settings.HasStatusOption(option) {
		return settings, fmt.Errorf("%w: %s", ErrDuplicateStatusOption, option)
	}
	return settings.WithStatusOptions(append(copyOptions(settings.StatusOptions), option)), nil
}

// RemoveStatusOption deletes a value from the status set. Records already
// carrying the value keep it; the UI renders unrecognised values as Unknown.
func RemoveStatusOption(settings domain.Settings, option string) (domain.Settings, error) {
	if !settings.HasStatusOption(option) {
		return settings, fmt.Errorf("%w: %s", ErrUnknownStatusOption, option)
	}
	options := make([]string, 0, len(settings.StatusOptions)-1)
	for _, opt := range settings.StatusOptions {
		if opt != option {
			options = append(options, opt)
		}
	}
	return settings.WithStatusOptions(options), nil
}

// ValidateSettings checks a whole replacement document: supported types,
// reserved ids, duplicate ids, and at most one primary field.
func ValidateSettings(settings domain.Settings) error {
	seen := make(map[string]struct{}, len(settings.Fields))
	primaries := 0
	for _, field := range settings.Fields {
		if err := validateField(field); err != nil {
			return err
		}
		if _, dup := seen[field.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateFieldID, field.ID)
		}
		seen[field.ID] = struct{}{}
		if field.IsPrimary {
			primaries++
		}
	}
	if primaries > 1 {
		return errors.New("at most one field may be primary")
	}
	return nil
}

func validateField(field domain.FieldDefinition) error {
	if strings.TrimSpace(field.ID) == "" {
		return errors.New("field id is required")
	}
	if domain.ReservedKey(field.ID) {
		return fmt.Errorf("%w: %s", ErrReservedFieldID, field.ID)
	}
	if !domain.ValidFieldType(field.Type) {
		return fmt.Errorf("%w: %s", ErrInvalidFieldType, field.Type)
	}
	return nil
}

func clearPrimaryIf(fields []domain.FieldDefinition, clear bool) []domain.FieldDefinition {
	out := make([]domain.FieldDefinition, len(fields))
	copy(out, fields)
	if clear {
		for i := range out {
			out[i].IsPrimary = false
		}
	}
	return out
}

func copyOptions(options []string) []string {
	out := make([]string, len(options))
	copy(out, options)
	return out
}

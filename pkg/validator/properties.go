// Package validator checks record property values against the schema
// registry's field types. The store accepts any value regardless of type, so
// validation results are advisory: callers surface them as warnings rather
// than rejecting the record.
package validator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/invtrack/internal/domain"
)

// PropertiesValidator checks property documents against field definitions.
type PropertiesValidator struct{}

// NewPropertiesValidator creates a new properties validator.
func NewPropertiesValidator() *PropertiesValidator {
	return &PropertiesValidator{}
}

// Issue describes one property that does not match its field definition.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Result collects the issues found in one document.
type Result struct {
	Issues []Issue `json:"issues"`
}

// OK reports whether the document passed without issues.
func (r Result) OK() bool {
	return len(r.Issues) == 0
}

// Dates are accepted in the formats the source spreadsheets actually use.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
}

// ValidateProperties checks each schema field's stored value against its
// declared type. Empty and missing values always pass; keys without a field
// definition are ignored, matching the loose-schema storage policy.
func (pv *PropertiesValidator) ValidateProperties(properties map[string]any, fields []domain.FieldDefinition) Result {
	result := Result{Issues: []Issue{}}

	for _, field := range fields {
		value, exists := properties[field.ID]
		if !exists || value == nil {
			continue
		}
		if str, ok := value.(string); ok && strings.TrimSpace(str) == "" {
			continue
		}

		if err := pv.validateFieldType(field, value); err != nil {
			result.Issues = append(result.Issues, Issue{
				Field:   field.ID,
				Message: err.Error(),
				Value:   value,
			})
		}
	}

	return result
}

func (pv *PropertiesValidator) validateFieldType(field domain.FieldDefinition, value any) error {
	switch field.Type {
	case domain.FieldTypeText:
		// Any scalar renders as text.
		return nil
	case domain.FieldTypeNumber:
		if !pv.isNumber(value) {
			return fmt.Errorf("field '%s' must be a number, got %v", field.ID, value)
		}
	case domain.FieldTypeDate:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("field '%s' must be a date string, got %T", field.ID, value)
		}
		if !pv.isDate(str) {
			return fmt.Errorf("field '%s' value %q is not a recognised date", field.ID, str)
		}
	case domain.FieldTypeSelect:
		if len(field.Options) == 0 {
			return nil
		}
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("field '%s' must be one of its options, got %T", field.ID, value)
		}
		for _, option := range field.Options {
			if option == str {
				return nil
			}
		}
		return fmt.Errorf("field '%s' value %q is not an allowed option", field.ID, str)
	default:
		return fmt.Errorf("unknown field type: %s", field.Type)
	}
	return nil
}

func (pv *PropertiesValidator) isNumber(value any) bool {
	switch v := value.(type) {
	case int, int32, int64, float32, float64:
		return true
	case string:
		_, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil
	default:
		return false
	}
}

func (pv *PropertiesValidator) isDate(value string) bool {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, trimmed); err == nil {
			return true
		}
	}
	return false
}

package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Asset represents one inventory record. Properties is an open document keyed
// by field id; keys present are whatever fields existed in the schema at the
// time of creation or last edit. Removing a field from the schema does not
// strip its key from existing assets.
type Asset struct {
	ID         uuid.UUID      `json:"id"`
	Properties map[string]any `json:"properties"`
	HistoryLog []HistoryEvent `json:"historyLog"`
	Version    int64          `json:"version"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewAsset creates a new asset with immutable pattern
func NewAsset(properties map[string]any) Asset {
	now := time.Now()
	return Asset{
		ID:         uuid.New(),
		Properties: copyProperties(properties),
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// WithProperty returns a new asset with an added/updated property
func (a Asset) WithProperty(key string, value any) Asset {
	newProperties := copyProperties(a.Properties)
	newProperties[key] = value

	return Asset{
		ID:         a.ID,
		Properties: newProperties,
		HistoryLog: a.HistoryLog,
		Version:    a.Version,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  time.Now(),
	}
}

// MergeProperties returns a new asset with the supplied fields shallow-merged
// over the existing document. Fields absent from patch are left untouched.
// Reserved envelope keys are never merged.
func (a Asset) MergeProperties(patch map[string]any) Asset {
	newProperties := copyProperties(a.Properties)
	for key, value := range patch {
		if ReservedKey(key) {
			continue
		}
		newProperties[key] = value
	}

	return Asset{
		ID:         a.ID,
		Properties: newProperties,
		HistoryLog: a.HistoryLog,
		Version:    a.Version,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  time.Now(),
	}
}

// PropertyString returns the string form of a property value, empty when the
// key is absent.
func (a Asset) PropertyString(key string) string {
	value, ok := a.Properties[key]
	if !ok || value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; render integers without a fraction.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// MatchesQuery reports whether any schema field's string representation
// contains query, case-insensitively. An empty query matches everything.
func (a Asset) MatchesQuery(query string, fields []FieldDefinition) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(a.PropertyString(field.ID)), query) {
			return true
		}
	}
	return false
}

// GetPropertiesAsJSONB returns the properties as JSONB for database storage.
func (a *Asset) GetPropertiesAsJSONB() (json.RawMessage, error) {
	if a.Properties == nil {
		a.Properties = make(map[string]any)
	}
	return json.Marshal(a.Properties)
}

// FromJSONBProperties creates a properties map from JSONB data.
func FromJSONBProperties(propertiesJSON json.RawMessage) (map[string]any, error) {
	var properties map[string]any
	err := json.Unmarshal(propertiesJSON, &properties)
	return properties, err
}

// MarshalJSON flattens the asset for API responses: dynamic field keys appear
// at the top level next to the fixed envelope, mirroring the document shape
// clients persist and export.
func (a Asset) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(a.Properties)+3)
	for key, value := range a.Properties {
		if ReservedKey(key) {
			continue
		}
		flat[key] = value
	}
	flat[ReservedKeyID] = a.ID
	history := a.HistoryLog
	if history == nil {
		history = []HistoryEvent{}
	}
	flat[ReservedKeyHistory] = history
	flat["version"] = a.Version
	return json.Marshal(flat)
}

// AssetFromDocument rebuilds an asset from the flat wire shape produced by
// MarshalJSON: dynamic keys at the top level next to id and historyLog. An
// absent or unparsable id yields a fresh one; history entries travel with the
// document so a full export/replace cycle keeps the audit trail.
func AssetFromDocument(doc map[string]any) Asset {
	asset := NewAsset(nil)

	if raw, ok := doc[ReservedKeyID].(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			asset.ID = id
		}
	}

	if raw, ok := doc[ReservedKeyHistory]; ok && raw != nil {
		if encoded, err := json.Marshal(raw); err == nil {
			var history []HistoryEvent
			if err := json.Unmarshal(encoded, &history); err == nil {
				asset.HistoryLog = history
			}
		}
	}

	properties := make(map[string]any, len(doc))
	for key, value := range doc {
		if ReservedKey(key) || key == "version" {
			continue
		}
		properties[key] = value
	}
	asset.Properties = properties
	return asset
}

// copyProperties creates a shallow copy of the properties map to ensure immutability
func copyProperties(properties map[string]any) map[string]any {
	newProperties := make(map[string]any, len(properties))
	for k, v := range properties {
		newProperties[k] = v
	}
	return newProperties
}

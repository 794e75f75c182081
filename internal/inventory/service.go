// Package inventory is the record store service: create/update/delete/list,
// search, summary statistics, and the bulk replace operation. Role checks run
// here as well as at the HTTP boundary so a request that bypasses the UI
// cannot perform admin-only mutations.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/rpattn/invtrack/internal/domain"
	"github.com/rpattn/invtrack/internal/repository"
)

var (
	// ErrForbidden is returned when the actor's role does not permit the operation.
	ErrForbidden = errors.New("operation not permitted for role")
)

// Service coordinates record mutations with history and settings.
type Service struct {
	assets   repository.AssetRepository
	settings repository.SettingsRepository
}

// NewService creates a new inventory service.
func NewService(assets repository.AssetRepository, settings repository.SettingsRepository) *Service {
	return &Service{assets: assets, settings: settings}
}

// Create registers a new asset and appends its Creation history event.
func (s *Service) Create(ctx context.Context, actor domain.User, properties map[string]any) (domain.Asset, error) {
	clean := make(map[string]any, len(properties))
	for key, value := range properties {
		if domain.ReservedKey(key) || key == "version" {
			continue
		}
		clean[key] = value
	}

	asset := domain.NewAsset(clean)
	asset.HistoryLog = []domain.HistoryEvent{
		domain.NewHistoryEvent(actor.Name, domain.HistoryActionCreation, "Initial registration"),
	}
	return s.assets.Create(ctx, asset)
}

// Update shallow-merges patch into the stored record. TEAM_MEMBER actors may
// only touch the fixed allow-list of field ids. The supplied version must
// match the stored one; a stale version surfaces as a conflict rather than a
// silent overwrite.
func (s *Service) Update(ctx context.Context, actor domain.User, id uuid.UUID, patch map[string]any, version int64) (domain.Asset, error) {
	if !actor.IsAdmin() {
		for key := range patch {
			if domain.ReservedKey(key) || key == "version" {
				continue
			}
			if !domain.TeamMemberMayEdit(key) {
				return domain.Asset{}, fmt.Errorf("%w: field %s", ErrForbidden, key)
			}
		}
	}

	current, err := s.assets.GetByID(ctx, id)
	if err != nil {
		return domain.Asset{}, err
	}

	merged := current.MergeProperties(patch)
	updated, err := s.assets.Update(ctx, merged, version)
	if err != nil {
		return domain.Asset{}, err
	}

	event := domain.NewHistoryEvent(actor.Name, domain.HistoryActionUpdate, updateDetails(patch))
	if err := s.assets.AppendHistory(ctx, updated.ID, event); err != nil {
		return domain.Asset{}, err
	}
	updated.HistoryLog = append(updated.HistoryLog, event)
	return updated, nil
}

// Delete removes a record entirely. ADMIN only; there is no soft delete.
func (s *Service) Delete(ctx context.Context, actor domain.User, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return s.assets.Delete(ctx, id)
}

// List returns all records ordered newest entry date first. Ordering compares
// the raw entryDate strings case-insensitively, so dates must share a
// sortable textual format; this matches how the records are entered.
func (s *Service) List(ctx context.Context) ([]domain.Asset, error) {
	assets, err := s.assets.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(assets, func(i, j int) bool {
		a := strings.ToLower(assets[i].PropertyString("entryDate"))
		b := strings.ToLower(assets[j].PropertyString("entryDate"))
		return a > b
	})
	return assets, nil
}

// Search returns the records whose schema fields contain query, preserving
// List ordering.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Asset, error) {
	assets, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.Asset, 0, len(assets))
	for _, asset := range assets {
		if asset.MatchesQuery(query, settings.Fields) {
			matched = append(matched, asset)
		}
	}
	return matched, nil
}

// ReplaceAll wipes the record store and installs the supplied documents.
// ADMIN only. Documents without history get a Bulk Import event attributed to
// the actor.
func (s *Service) ReplaceAll(ctx context.Context, actor domain.User, docs []map[string]any) (int, error) {
	if !actor.IsAdmin() {
		return 0, ErrForbidden
	}

	assets := make([]domain.Asset, 0, len(docs))
	for _, doc := range docs {
		asset := domain.AssetFromDocument(doc)
		if len(asset.HistoryLog) == 0 {
			asset.HistoryLog = []domain.HistoryEvent{
				domain.NewHistoryEvent(actor.Name, domain.HistoryActionImport, "Batch imported from file"),
			}
		}
		assets = append(assets, asset)
	}
	return s.assets.ReplaceAll(ctx, assets)
}

// GroupCount is one primary-field grouping bucket.
type GroupCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Stats summarises the inventory for the dashboard.
type Stats struct {
	Total      int          `json:"total"`
	Available  int          `json:"available"`
	InUse      int          `json:"inUse"`
	NeedRepair int          `json:"needRepair"`
	GroupField string       `json:"groupField,omitempty"`
	Groups     []GroupCount `json:"groups"`
}

// Stats counts records by status and groups them by the primary field.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	assets, err := s.assets.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(assets), Groups: []GroupCount{}}

	groupField := ""
	if primary, ok := settings.PrimaryField(); ok {
		groupField = primary.ID
		stats.GroupField = primary.ID
	}

	groups := make(map[string]int)
	for _, asset := range assets {
		switch asset.PropertyString("status") {
		case "Available":
			stats.Available++
		case "In Use":
			stats.InUse++
		case "Need Repair":
			stats.NeedRepair++
		}
		if groupField != "" {
			if value := asset.PropertyString(groupField); value != "" {
				groups[value]++
			}
		}
	}

	for value, count := range groups {
		stats.Groups = append(stats.Groups, GroupCount{Value: value, Count: count})
	}
	sort.Slice(stats.Groups, func(i, j int) bool {
		if stats.Groups[i].Count != stats.Groups[j].Count {
			return stats.Groups[i].Count > stats.Groups[j].Count
		}
		return stats.Groups[i].Value < stats.Groups[j].Value
	})

	return stats, nil
}

func updateDetails(patch map[string]any) string {
	keys := make([]string, 0, len(patch))
	for key := range patch {
		if domain.ReservedKey(key) || key == "version" {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return "Properties modified"
	}
	sort.Strings(keys)
	return "Modified: " + strings.Join(keys, ", ")
}

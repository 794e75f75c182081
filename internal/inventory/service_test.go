package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/rpattn/invtrack/internal/domain"
	"github.com/rpattn/invtrack/internal/repository"
)

type stubAssetRepo struct {
	assets  map[uuid.UUID]domain.Asset
	order   []uuid.UUID
	history map[uuid.UUID][]domain.HistoryEvent
}

func newStubAssetRepo() *stubAssetRepo {
	return &stubAssetRepo{
		assets:  make(map[uuid.UUID]domain.Asset),
		history: make(map[uuid.UUID][]domain.HistoryEvent),
	}
}

func (s *stubAssetRepo) Create(_ context.Context, asset domain.Asset) (domain.Asset, error) {
	s.assets[asset.ID] = asset
	s.order = append(s.order, asset.ID)
	s.history[asset.ID] = append(s.history[asset.ID], asset.HistoryLog...)
	return asset, nil
}

func (s *stubAssetRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Asset, error) {
	asset, ok := s.assets[id]
	if !ok {
		return domain.Asset{}, repository.ErrNotFound
	}
	asset.HistoryLog = s.history[id]
	return asset, nil
}

func (s *stubAssetRepo) List(_ context.Context) ([]domain.Asset, error) {
	out := make([]domain.Asset, 0, len(s.order))
	for _, id := range s.order {
		asset := s.assets[id]
		asset.HistoryLog = s.history[id]
		out = append(out, asset)
	}
	return out, nil
}

func (s *stubAssetRepo) Update(_ context.Context, asset domain.Asset, expectedVersion int64) (domain.Asset, error) {
	current, ok := s.assets[asset.ID]
	if !ok {
		return domain.Asset{}, repository.ErrNotFound
	}
	if current.Version != expectedVersion {
		return domain.Asset{}, repository.ErrVersionConflict
	}
	asset.Version = current.Version + 1
	s.assets[asset.ID] = asset
	return asset, nil
}

func (s *stubAssetRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.assets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.assets, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *stubAssetRepo) ReplaceAll(_ context.Context, assets []domain.Asset) (int, error) {
	s.assets = make(map[uuid.UUID]domain.Asset)
	s.history = make(map[uuid.UUID][]domain.HistoryEvent)
	s.order = nil
	for _, asset := range assets {
		s.assets[asset.ID] = asset
		s.order = append(s.order, asset.ID)
		s.history[asset.ID] = asset.HistoryLog
	}
	return len(assets), nil
}

func (s *stubAssetRepo) Count(_ context.Context) (int64, error) {
	return int64(len(s.assets)), nil
}

func (s *stubAssetRepo) AppendHistory(_ context.Context, assetID uuid.UUID, event domain.HistoryEvent) error {
	s.history[assetID] = append(s.history[assetID], event)
	return nil
}

func (s *stubAssetRepo) ListHistory(_ context.Context, assetID uuid.UUID) ([]domain.HistoryEvent, error) {
	return s.history[assetID], nil
}

func (s *stubAssetRepo) DeleteAll(_ context.Context) error {
	s.assets = make(map[uuid.UUID]domain.Asset)
	s.history = make(map[uuid.UUID][]domain.HistoryEvent)
	s.order = nil
	return nil
}

type stubSettingsRepo struct {
	current domain.Settings
}

func (s *stubSettingsRepo) Get(_ context.Context) (domain.Settings, error) {
	return s.current, nil
}

func (s *stubSettingsRepo) Save(_ context.Context, settings domain.Settings) (domain.Settings, error) {
	s.current = settings
	return settings, nil
}

func (s *stubSettingsRepo) Delete(_ context.Context) error {
	s.current = domain.Settings{}
	return nil
}

func admin() domain.User {
	return domain.NewUser("admin@example.com", "System Admin", "admin", domain.RoleAdmin)
}

func teamMember() domain.User {
	return domain.NewUser("bob@example.com", "Bob", "pw", domain.RoleTeamMember)
}

func newTestService() (*Service, *stubAssetRepo, *stubSettingsRepo) {
	assets := newStubAssetRepo()
	settings := &stubSettingsRepo{current: domain.DefaultSettings()}
	return NewService(assets, settings), assets, settings
}

func TestCreateAppendsCreationHistory(t *testing.T) {
	service, repo, _ := newTestService()

	asset, err := service.Create(context.Background(), admin(), map[string]any{
		"equipmentDescription": "Laptop A",
		"status":               "Available",
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	history := repo.history[asset.ID]
	if len(history) != 1 || history[0].Action != domain.HistoryActionCreation {
		t.Fatalf("expected one Creation event, got %+v", history)
	}
	if history[0].User != "System Admin" {
		t.Fatalf("expected actor name on event, got %q", history[0].User)
	}
}

func TestCreateStripsReservedKeys(t *testing.T) {
	service, _, _ := newTestService()

	asset, err := service.Create(context.Background(), admin(), map[string]any{
		"id":         "not-a-field",
		"historyLog": []string{"forged"},
		"status":     "Available",
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if _, ok := asset.Properties["id"]; ok {
		t.Fatalf("reserved id key stored as property")
	}
	if _, ok := asset.Properties["historyLog"]; ok {
		t.Fatalf("reserved historyLog key stored as property")
	}
}

func TestUpdateShallowMergesAndAppendsHistory(t *testing.T) {
	service, repo, _ := newTestService()
	ctx := context.Background()

	asset, err := service.Create(ctx, admin(), map[string]any{
		"equipmentDescription": "Laptop A",
		"status":               "Available",
		"location":             "Lab 1",
	})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	updated, err := service.Update(ctx, admin(), asset.ID, map[string]any{
		"status": "In Use",
	}, asset.Version)
	if err != nil {
		t.Fatalf("update returned error: %v", err)
	}

	if updated.Properties["status"] != "In Use" {
		t.Fatalf("patched field not applied: %v", updated.Properties)
	}
	if updated.Properties["location"] != "Lab 1" {
		t.Fatalf("untouched field lost in merge: %v", updated.Properties)
	}

	history := repo.history[asset.ID]
	if len(history) != 2 || history[1].Action != domain.HistoryActionUpdate {
		t.Fatalf("expected Creation then Update events, got %+v", history)
	}
}

func TestUpdateStaleVersionConflicts(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	asset, err := service.Create(ctx, admin(), map[string]any{"status": "Available"})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	if _, err := service.Update(ctx, admin(), asset.ID, map[string]any{"status": "In Use"}, asset.Version); err != nil {
		t.Fatalf("first update returned error: %v", err)
	}

	_, err = service.Update(ctx, admin(), asset.ID, map[string]any{"status": "Missing"}, asset.Version)
	if !errors.Is(err, repository.ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestTeamMemberLimitedToAllowList(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	asset, err := service.Create(ctx, admin(), map[string]any{"assetTag": "A-1", "status": "Available"})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	if _, err := service.Update(ctx, teamMember(), asset.ID, map[string]any{
		"status":       "In Use",
		"currentOwner": "Bob",
	}, asset.Version); err != nil {
		t.Fatalf("allow-listed update rejected: %v", err)
	}

	_, err = service.Update(ctx, teamMember(), asset.ID, map[string]any{"assetTag": "A-2"}, asset.Version+1)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for assetTag edit, got %v", err)
	}
}

func TestDeleteRequiresAdmin(t *testing.T) {
	service, repo, _ := newTestService()
	ctx := context.Background()

	asset, err := service.Create(ctx, admin(), map[string]any{"status": "Available"})
	if err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	if err := service.Delete(ctx, teamMember(), asset.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for team member delete, got %v", err)
	}
	if count, _ := repo.Count(ctx); count != 1 {
		t.Fatalf("record count changed on rejected delete: %d", count)
	}

	if err := service.Delete(ctx, admin(), asset.ID); err != nil {
		t.Fatalf("admin delete returned error: %v", err)
	}
	if count, _ := repo.Count(ctx); count != 0 {
		t.Fatalf("expected empty store after admin delete, got %d", count)
	}
}

func TestListOrdersByEntryDateDescending(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	for _, date := range []string{"2024-01-05", "2024-03-01", "2024-02-10"} {
		if _, err := service.Create(ctx, admin(), map[string]any{"entryDate": date}); err != nil {
			t.Fatalf("create returned error: %v", err)
		}
	}

	assets, err := service.List(ctx)
	if err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	got := []string{
		assets[0].PropertyString("entryDate"),
		assets[1].PropertyString("entryDate"),
		assets[2].PropertyString("entryDate"),
	}
	want := []string{"2024-03-01", "2024-02-10", "2024-01-05"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: %v", got)
		}
	}
}

func TestSearchMatchesAnySchemaField(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	if _, err := service.Create(ctx, admin(), map[string]any{"equipmentDescription": "Zebra Scanner", "location": "Lab 1"}); err != nil {
		t.Fatalf("create returned error: %v", err)
	}
	if _, err := service.Create(ctx, admin(), map[string]any{"equipmentDescription": "Laptop", "location": "Office"}); err != nil {
		t.Fatalf("create returned error: %v", err)
	}

	matched, err := service.Search(ctx, "zebra")
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if len(matched) != 1 || matched[0].PropertyString("equipmentDescription") != "Zebra Scanner" {
		t.Fatalf("unexpected search result: %+v", matched)
	}

	all, err := service.Search(ctx, "")
	if err != nil {
		t.Fatalf("search returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("empty query should match everything, got %d", len(all))
	}
}

func TestStatsGroupsByPrimaryField(t *testing.T) {
	service, _, _ := newTestService()
	ctx := context.Background()

	rows := []map[string]any{
		{"equipmentDescription": "Laptop", "status": "Available"},
		{"equipmentDescription": "Laptop", "status": "In Use"},
		{"equipmentDescription": "Scanner", "status": "Need Repair"},
	}
	for _, row := range rows {
		if _, err := service.Create(ctx, admin(), row); err != nil {
			t.Fatalf("create returned error: %v", err)
		}
	}

	stats, err := service.Stats(ctx)
	if err != nil {
		t.Fatalf("stats returned error: %v", err)
	}
	if stats.Total != 3 || stats.Available != 1 || stats.InUse != 1 || stats.NeedRepair != 1 {
		t.Fatalf("unexpected status counts: %+v", stats)
	}
	if stats.GroupField != "equipmentDescription" {
		t.Fatalf("expected primary field grouping, got %q", stats.GroupField)
	}
	if len(stats.Groups) != 2 || stats.Groups[0].Value != "Laptop" || stats.Groups[0].Count != 2 {
		t.Fatalf("unexpected groups: %+v", stats.Groups)
	}
}

func TestReplaceAllRequiresAdminAndKeepsHistory(t *testing.T) {
	service, repo, _ := newTestService()
	ctx := context.Background()

	if _, err := service.ReplaceAll(ctx, teamMember(), nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for team member replace, got %v", err)
	}

	id := uuid.New()
	docs := []map[string]any{
		{
			"id":                   id.String(),
			"equipmentDescription": "Laptop",
			"historyLog": []map[string]any{
				{"id": uuid.NewString(), "user": "Alice", "action": "Creation", "details": "Initial registration"},
			},
		},
		{"equipmentDescription": "Scanner"},
	}

	count, err := service.ReplaceAll(ctx, admin(), docs)
	if err != nil {
		t.Fatalf("replace returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 records installed, got %d", count)
	}

	kept, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("document id not preserved: %v", err)
	}
	if len(kept.HistoryLog) != 1 || kept.HistoryLog[0].Action != domain.HistoryActionCreation {
		t.Fatalf("supplied history lost: %+v", kept.HistoryLog)
	}

	assets, _ := repo.List(ctx)
	for _, asset := range assets {
		if asset.ID == id {
			continue
		}
		if len(asset.HistoryLog) != 1 || asset.HistoryLog[0].Action != domain.HistoryActionImport {
			t.Fatalf("expected Bulk Import event on new document, got %+v", asset.HistoryLog)
		}
	}
}

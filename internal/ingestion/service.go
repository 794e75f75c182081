// Package ingestion turns uploaded spreadsheet files into inventory records.
// Rows are reconciled against the live schema and inserted one at a time; a
// failing row is logged and skipped, never failing the whole file, so a
// partial import commits the rows that succeeded.
package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rpattn/invtrack/internal/auth"
	"github.com/rpattn/invtrack/internal/domain"
	"github.com/rpattn/invtrack/internal/reconcile"
	"github.com/rpattn/invtrack/pkg/validator"
)

// ErrUnsupportedFormat is returned when an uploaded file is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// AssetCreator is the slice of the asset repository ingestion needs.
type AssetCreator interface {
	Create(ctx context.Context, asset domain.Asset) (domain.Asset, error)
}

// SettingsReader loads the current schema registry document.
type SettingsReader interface {
	Get(ctx context.Context) (domain.Settings, error)
}

// LogRecorder stores row-level import errors.
type LogRecorder interface {
	Record(ctx context.Context, entry domain.ImportLogEntry) error
}

// Service ingests tabular data into the record store.
type Service struct {
	assets    AssetCreator
	settings  SettingsReader
	logs      LogRecorder
	validator *validator.PropertiesValidator
}

// NewService creates a new ingestion service.
func NewService(assets AssetCreator, settings SettingsReader, logs LogRecorder) *Service {
	return &Service{
		assets:    assets,
		settings:  settings,
		logs:      logs,
		validator: validator.NewPropertiesValidator(),
	}
}

// Request describes the ingestion input.
type Request struct {
	Actor    domain.User
	FileName string
	Data     io.Reader
}

// Summary returns import level metrics. Warnings counts rows whose values do
// not match the schema's declared field types; those rows still import.
type Summary struct {
	TotalRows   int `json:"totalRows"`
	Imported    int `json:"imported"`
	InvalidRows int `json:"invalidRows"`
	Warnings    int `json:"warnings"`
}

// Ingest reads the uploaded file, reconciles it against the current schema,
// and persists the resulting records. ADMIN only.
func (s *Service) Ingest(ctx context.Context, req Request) (Summary, error) {
	summary := Summary{}

	if !req.Actor.IsAdmin() {
		return summary, fmt.Errorf("%w: bulk import", auth.ErrForbidden)
	}
	if req.Data == nil {
		return summary, errors.New("data reader is required")
	}

	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return summary, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(payload) == 0 {
		return summary, errors.New("file is empty")
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to load settings: %w", err)
	}

	candidates, err := s.reconcileFile(req.FileName, payload, settings)
	if err != nil {
		return summary, err
	}

	summary.TotalRows = len(candidates)
	for idx, candidate := range candidates {
		rowNumber := idx + 2 // 1-based, counting the header row

		properties := make(map[string]any, len(candidate))
		for fieldID, value := range candidate {
			properties[fieldID] = value
		}

		// Type mismatches are advisory; the row imports either way.
		if check := s.validator.ValidateProperties(properties, settings.Fields); !check.OK() {
			summary.Warnings++
			for _, issue := range check.Issues {
				s.logRowWarning(ctx, req.FileName, rowNumber, issue.Message)
			}
		}

		asset := domain.NewAsset(properties)
		asset.HistoryLog = []domain.HistoryEvent{
			domain.NewHistoryEvent(req.Actor.Name, domain.HistoryActionImport, "Batch imported from file"),
		}

		if _, err := s.assets.Create(ctx, asset); err != nil {
			s.logRowError(ctx, req.FileName, rowNumber, err)
			summary.InvalidRows++
			continue
		}
		summary.Imported++
	}

	return summary, nil
}

func (s *Service) reconcileFile(fileName string, payload []byte, settings domain.Settings) ([]reconcile.Candidate, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv", ".txt", "":
		candidates, err := reconcile.Reconcile(string(payload), settings)
		if err != nil {
			return nil, fmt.Errorf("failed to parse file: %w", err)
		}
		return candidates, nil
	case ".xlsx":
		records, err := readWorkbook(payload)
		if err != nil {
			return nil, err
		}
		return reconcile.ReconcileRecords(records, settings), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func readWorkbook(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return rows, nil
}

func (s *Service) logRowWarning(ctx context.Context, fileName string, rowNumber int, message string) {
	if s.logs == nil {
		return
	}
	entry := domain.ImportLogEntry{
		FileName:     fileName,
		RowNumber:    &rowNumber,
		ErrorMessage: "warning: " + message,
	}
	_ = s.logs.Record(ctx, entry)
}

func (s *Service) logRowError(ctx context.Context, fileName string, rowNumber int, err error) {
	if s.logs == nil || err == nil {
		return
	}
	entry := domain.ImportLogEntry{
		FileName:     fileName,
		RowNumber:    &rowNumber,
		ErrorMessage: err.Error(),
	}
	_ = s.logs.Record(ctx, entry)
}

package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rpattn/invtrack/internal/auth"
	"github.com/rpattn/invtrack/internal/export"
	"github.com/rpattn/invtrack/internal/ingestion"
)

// ListAssets handles GET /api/inventory.
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireUser(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	assets, err := h.inventory.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// ReplaceAssets handles POST /api/inventory: wipe the store and install the
// supplied documents. ADMIN only (enforced by the service).
func (h *Handler) ReplaceAssets(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var docs []map[string]any
	if err := decodeBody(r, &docs); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	count, err := h.inventory.ReplaceAll(r.Context(), actor, docs)
	if err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("inventory replaced", zap.Int("count", count), zap.String("actor", actor.Email))
	writeJSON(w, http.StatusOK, map[string]any{"replaced": count})
}

// CreateAsset handles POST /api/inventory/assets.
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var properties map[string]any
	if err := decodeBody(r, &properties); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	asset, err := h.inventory.Create(r.Context(), actor, properties)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

// UpdateAsset handles PUT /api/inventory/assets/{id}. The body is a flat
// document of field values plus the caller's last-seen version; a stale
// version yields 409.
func (h *Handler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid asset id"})
		return
	}

	var doc map[string]any
	if err := decodeBody(r, &doc); err != nil {
		writeError(w, fmt.Errorf("invalid request body: %w", err))
		return
	}

	version, err := versionFromDocument(doc)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	asset, err := h.inventory.Update(r.Context(), actor, id, doc, version)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// DeleteAsset handles DELETE /api/inventory/assets/{id}. ADMIN only.
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid asset id"})
		return
	}

	if err := h.inventory.Delete(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// SearchAssets handles GET /api/inventory/search?q=.
func (h *Handler) SearchAssets(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireUser(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	assets, err := h.inventory.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// Stats handles GET /api/inventory/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireUser(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	stats, err := h.inventory.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ExportAssets handles GET /api/inventory/export?format=csv|xlsx. ADMIN only.
func (h *Handler) ExportAssets(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	assets, err := h.inventory.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	payload, err := export.Render(format, assets, settings)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", format.FileName(time.Now())))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

const maxImportSize = 32 << 20 // 32 MiB

// ImportAssets handles POST /api/inventory/import with a multipart "file"
// part. The ingestion service enforces the ADMIN requirement and commits the
// rows that succeed even when some fail.
func (h *Handler) ImportAssets(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart upload"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file part is required"})
		return
	}
	defer file.Close()

	summary, err := h.ingestion.Ingest(r.Context(), ingestion.Request{
		Actor:    actor,
		FileName: header.Filename,
		Data:     file,
	})
	if err != nil {
		if errors.Is(err, ingestion.ErrUnsupportedFormat) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		writeError(w, err)
		return
	}

	h.logger.Info("import finished",
		zap.String("file", header.Filename),
		zap.Int("imported", summary.Imported),
		zap.Int("invalid", summary.InvalidRows))
	writeJSON(w, http.StatusOK, summary)
}

// ImportLogs handles GET /api/inventory/import/logs. ADMIN only.
func (h *Handler) ImportLogs(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	entries, err := h.logs.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func versionFromDocument(doc map[string]any) (int64, error) {
	raw, ok := doc["version"]
	if !ok {
		return 0, errors.New("version is required")
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid version %q", v)
		}
		return parsed, nil
	default:
		return 0, errors.New("version must be a number")
	}
}

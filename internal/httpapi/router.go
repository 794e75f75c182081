package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/rpattn/invtrack/internal/middleware"
)

// NewRouter assembles the API route tree with CORS, request logging, and
// session resolution applied to every route. Login and registration are the
// only endpoints that work without a bearer token.
func NewRouter(h *Handler, sessions middleware.SessionResolver, logger *zap.Logger, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)
	r.Use(middleware.AuthContext(sessions))

	r.Route("/api", func(r chi.Router) {
		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", h.ListAssets)
			r.Post("/", h.ReplaceAssets)
			r.Post("/assets", h.CreateAsset)
			r.Put("/assets/{id}", h.UpdateAsset)
			r.Delete("/assets/{id}", h.DeleteAsset)
			r.Get("/search", h.SearchAssets)
			r.Get("/stats", h.Stats)
			r.Get("/export", h.ExportAssets)
			r.Post("/import", h.ImportAssets)
			r.Get("/import/logs", h.ImportLogs)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Post("/", h.ReplaceSettings)
			r.Post("/fields", h.AddField)
			r.Put("/fields/{id}", h.UpdateField)
			r.Delete("/fields/{id}", h.RemoveField)
			r.Post("/fields/{id}/move", h.MoveField)
			r.Post("/status-options", h.AddStatusOption)
			r.Delete("/status-options/{option}", h.RemoveStatusOption)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/register", h.RegisterUser)
			r.Post("/login", h.Login)
			r.Delete("/{id}", h.DeleteUser)
		})

		r.Post("/system/reset", h.ResetSystem)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

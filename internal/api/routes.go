package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouteDeps is everything SetupRoutes mounts.
type RouteDeps struct {
	Handlers       *Handlers
	CustomFields   *CustomFieldsAPI
	Health         *HealthChecker
	AllowedOrigins []string
}

// SetupRoutes configures all routes. Admin endpoints live under
// /api/admin; health probes sit at the root so load balancers can reach
// them without a prefix.
func SetupRoutes(d RouteDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Server-Identity", "enquiry-crm-v1.0")
			next.ServeHTTP(w, req)
		})
	})

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if d.Health != nil {
		r.Get("/health", d.Health.HandleHealth)
		r.Get("/health/live", d.Health.HandleLiveness)
		r.Get("/health/ready", d.Health.HandleReadiness)
	}

	h := d.Handlers
	r.Route("/api/admin", func(r chi.Router) {
		r.Route("/import", func(r chi.Router) {
			r.Post("/", h.HandleImport)
			r.Post("/preview", h.HandleImportPreview)
			r.Get("/fields", h.HandleImportFields)
		})

		r.Get("/duplicates", h.HandleScanDuplicates)
		r.Post("/duplicates", h.HandleRemoveDuplicates)

		r.Post("/maintenance", h.HandleMaintenance)

		r.Route("/backups", func(r chi.Router) {
			r.Get("/", h.HandleListBackups)
			r.Post("/", h.HandleCreateBackup)
			r.Post("/scheduled", h.HandleScheduledBackup)
			r.Get("/{id}/download", h.HandleDownloadBackup)
			r.Put("/{id}/restore", h.HandleRestoreBackup)
			r.Delete("/{id}", h.HandleDeleteBackup)
		})

		if d.CustomFields != nil {
			d.CustomFields.RegisterRoutes(r)
		}
	})

	return r
}

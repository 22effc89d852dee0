package http

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// RouterConfig carries the transport-level knobs the router needs.
type RouterConfig struct {
	CORSOrigins []string
	StaticDir   string
	AuthSecret  string
}

// NewRouter assembles the full HTTP surface: manager API, teacher API,
// health, and the two portal SPAs.
func NewRouter(svc OrderService, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", HealthHandler)

	r.Route("/api/manager", func(r chi.Router) {
		r.Use(StaffIdentity(cfg.AuthSecret))

		r.Route("/tutors", func(r chi.Router) {
			r.Get("/", HandleListOrders(svc))
			r.Post("/", HandleCreateOrder(svc))
			r.Get("/filters", HandleFilterCatalog())
			r.Get("/{id}", HandleGetOrder(svc))
			r.Put("/{id}", HandleUpdateOrder(svc))
			r.Delete("/{id}", HandleDeleteOrder(svc))
			r.Put("/{id}/deal", HandleDealOrder(svc))
			r.Put("/{id}/undeal", HandleUndealOrder(svc))
		})

		r.Get("/menu/list", HandleMenuList())
	})

	r.Route("/api/teacher", func(r chi.Router) {
		r.Get("/tutors", HandleTeacherListOrders(svc))
		r.Get("/tutors/filters", HandleTeacherFilterCatalog())
	})

	if cfg.StaticDir != "" {
		managerApp := SPAHandler(filepath.Join(cfg.StaticDir, "manager"))
		teacherApp := SPAHandler(filepath.Join(cfg.StaticDir, "teacher"))
		r.Handle("/manager", http.RedirectHandler("/manager/", http.StatusMovedPermanently))
		r.Handle("/manager/*", http.StripPrefix("/manager", managerApp))
		r.Handle("/teacher", http.RedirectHandler("/teacher/", http.StatusMovedPermanently))
		r.Handle("/teacher/*", http.StripPrefix("/teacher", teacherApp))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeFailure(w, http.StatusNotFound, "not found")
	})

	return RequestLogger(CORS(cfg.CORSOrigins, r))
}

package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"

	"salonops-backend/internal/config"
	"salonops-backend/internal/handler"
)

// Handlers carries every HTTP handler the router mounts.
type Handlers struct {
	Health        handler.HealthHandler
	Auth          handler.AuthHandler
	DailyEntries  handler.DailyEntryHandler
	DayClosures   handler.DayClosureHandler
	Ledger        handler.LedgerHandler
	Advances      handler.AdvanceHandler
	Employees     handler.EmployeeHandler
	Branches      handler.BranchHandler
	Documents     handler.DocumentHandler
	Notifications handler.NotificationHandler
	Reports       handler.ReportHandler
}

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config, logger *slog.Logger, h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	h.Health.RegisterRoutes(r)
	h.Auth.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	guard := handler.Guard(RequirePermission)

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		h.DailyEntries.RegisterRoutes(pr, guard)
		h.DayClosures.RegisterRoutes(pr, guard)
		h.Ledger.RegisterRoutes(pr, guard)
		h.Advances.RegisterRoutes(pr, guard)
		h.Employees.RegisterRoutes(pr, guard)
		h.Branches.RegisterRoutes(pr, guard)
		h.Documents.RegisterRoutes(pr, guard)
		h.Notifications.RegisterRoutes(pr)
		h.Reports.RegisterRoutes(pr)
	})

	return r
}

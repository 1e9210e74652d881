package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"creator-subscription-service/internal/usecase"
)

type Server struct {
	plans     usecase.PlanUseCase
	subs      usecase.SubscriptionUseCase
	dashboard usecase.DashboardUseCase
	stats     usecase.StatsUseCase
	export    usecase.ExportUseCase
	auth      *Authenticator
	log       *zerolog.Logger
}

func NewServer(
	plans usecase.PlanUseCase,
	subs usecase.SubscriptionUseCase,
	dashboard usecase.DashboardUseCase,
	stats usecase.StatsUseCase,
	export usecase.ExportUseCase,
	auth *Authenticator,
	logger *zerolog.Logger,
) *Server {
	slog := logger.With().Str("component", "web").Logger()
	return &Server{
		plans:     plans,
		subs:      subs,
		dashboard: dashboard,
		stats:     stats,
		export:    export,
		auth:      auth,
		log:       &slog,
	}
}

// Router builds the full route tree. Plan and subscription routes require
// a bearer token; dashboard routes are open, matching the original
// operator-console deployment where the dashboard sits behind its own
// network boundary.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/plans", func(r chi.Router) {
			r.Use(s.auth.Middleware)
			r.Post("/", s.handleCreatePlan)
			r.Get("/", s.handleListPlans)
			r.Get("/creator/{creatorID}", s.handleListPlansByCreator)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(s.auth.Middleware)
			r.Post("/subscribe/{planID}", s.handleSubscribe)
			r.Get("/{userID}", s.handleListUserSubscriptions)
			r.Delete("/{id}", s.handleCancelSubscription)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/total-active", s.handleTotalActive)
			r.Get("/monthly-revenue", s.handleMonthlyRevenue)
			r.Get("/expiring-soon", s.handleExpiringSoon)
			r.Get("/new-today", s.handleNewToday)
			r.Get("/subscriptions", s.handleDashboardList)
			r.Get("/subscriptions/export-csv", s.handleExportCSV)
			r.Get("/subscriptions/{id}", s.handleDashboardGet)
			r.Patch("/subscriptions/{id}", s.handleDashboardUpdate)
			r.Patch("/subscriptions/cancel/{id}", s.handleDashboardCancel)
		})
	})

	return r
}

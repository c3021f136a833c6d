package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tarunagarwal1981/travelhub-backend/api/controllers"
	"github.com/tarunagarwal1981/travelhub-backend/api/middleware"
	itinerarysvc "github.com/tarunagarwal1981/travelhub-backend/internal/itineraries"
	paymentsvc "github.com/tarunagarwal1981/travelhub-backend/internal/payments"
	termsvc "github.com/tarunagarwal1981/travelhub-backend/internal/terms"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/config"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/db"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/logger"
	"github.com/tarunagarwal1981/travelhub-backend/pkg/redis"
)

// RouterParams groups everything the HTTP surface depends on.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Itineraries *itinerarysvc.Service
	Payments    *paymentsvc.Service
	Terms       *termsvc.Service
	Metrics     prometheus.Gatherer
}

// NewRouter assembles the API router.
func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(params)))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	paymentPolicy := middleware.NewRateLimitPolicy(
		"payments",
		cfg.RateLimit.PaymentWindow,
		cfg.RateLimit.PaymentLimit,
	)
	var limiterStore middleware.RateLimiterStore
	if params.Redis != nil {
		limiterStore = params.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/ping", controllers.PrivatePing())

		r.Route("/itineraries", func(r chi.Router) {
			r.Post("/", controllers.ItineraryCreate(params.Itineraries, logg))
			r.Get("/", controllers.ItineraryList(params.Itineraries, logg))

			r.Route("/{itineraryId}", func(r chi.Router) {
				r.Get("/", controllers.ItineraryDetail(params.Itineraries, logg))
				r.Patch("/", controllers.ItineraryUpdate(params.Itineraries, logg))
				r.Delete("/", controllers.ItineraryDelete(params.Itineraries, logg))
				r.Post("/lock", controllers.ItineraryLock(params.Itineraries, logg))
				r.Delete("/lock", controllers.ItineraryUnlock(params.Itineraries, logg))
				r.Post("/cancel", controllers.ItineraryCancel(params.Itineraries, logg))
				r.Post("/days/bulk", controllers.ItineraryDaysBulk(params.Itineraries, logg))

				r.Route("/items", func(r chi.Router) {
					r.Post("/", controllers.ItineraryItemCreate(params.Itineraries, logg))
					r.Patch("/{itemId}", controllers.ItineraryItemUpdate(params.Itineraries, logg))
					r.Delete("/{itemId}", controllers.ItineraryItemDelete(params.Itineraries, logg))
				})

				r.Route("/payments", func(r chi.Router) {
					r.With(middleware.RateLimit(paymentPolicy, limiterStore, logg)).
						Post("/", controllers.PaymentRecord(params.Payments, logg))
					r.Get("/", controllers.PaymentList(params.Payments, logg))
				})
			})
		})

		r.Route("/terms", func(r chi.Router) {
			r.Get("/status", controllers.TermsStatus(params.Terms, logg))
			r.Post("/accept", controllers.TermsAccept(params.Terms, logg))
		})
	})

	return r
}

func readinessDeps(params RouterParams) map[string]controllers.Pinger {
	deps := map[string]controllers.Pinger{}
	if params.DB != nil {
		deps["postgres"] = params.DB
	}
	if params.Redis != nil {
		deps["redis"] = params.Redis
	}
	return deps
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meddot/meddot-backend/api/controllers"
	"github.com/meddot/meddot-backend/api/middleware"
	"github.com/meddot/meddot-backend/internal/toast"
	"github.com/meddot/meddot-backend/pkg/config"
	"github.com/meddot/meddot-backend/pkg/enums"
	"github.com/meddot/meddot-backend/pkg/logger"
)

// Params collects what the HTTP surface depends on. Nil dependencies degrade
// to an error response on the routes that need them.
type Params struct {
	Config *config.Config
	Logger *logger.Logger

	DB    controllers.Pinger
	Redis controllers.Pinger

	RateLimiter middleware.RateLimitStore
	Toasts      *toast.Hub
	Mail        controllers.MailSender
	Gatherer    prometheus.Gatherer
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.ReadinessCheck{Name: "postgres", Pinger: p.DB},
			controllers.ReadinessCheck{Name: "redis", Pinger: p.Redis},
		))
	})

	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	// Toast services stay nil-typed when the hub is absent so handlers can detect it.
	var toastSvc controllers.ToastService
	var centers controllers.CenterProvider
	var mailToasts controllers.ToastEnqueuer
	if p.Toasts != nil {
		toastSvc = p.Toasts
		centers = p.Toasts
		if cfg.FeatureFlags.MailToasts {
			mailToasts = p.Toasts
		}
	}

	mailPolicy := middleware.NewRateLimitPolicy("send-email", cfg.Mail.RateLimitWindow, cfg.Mail.RateLimitPerIP).Flat()
	r.Route("/functions/v1/send-email", func(r chi.Router) {
		r.Use(middleware.RelayCORS)
		r.Options("/", controllers.MailRelayPreflight())
		r.With(
			middleware.RateLimit(mailPolicy, p.RateLimiter, logg),
			middleware.OptionalAuth(cfg.JWT, logg),
		).Post("/", controllers.SendEmail(p.Mail, mailToasts, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.App.CORSOrigins))
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/toasts", func(r chi.Router) {
			r.Get("/", controllers.ListToasts(toastSvc, logg))
			r.Post("/", controllers.EnqueueToast(toastSvc, logg))
			r.Get("/stream", controllers.ToastStream(centers, cfg.App.CORSOrigins, logg))
			r.Delete("/{toastId}", controllers.DismissToast(toastSvc, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.TokenRoleServiceRole, logg))
			r.Post("/toasts/broadcast", controllers.BroadcastToast(toastSvc, logg))
		})
	})

	return r
}

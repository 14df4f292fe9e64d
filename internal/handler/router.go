package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/SARVESHVARADKAR123/courtroom/internal/middleware"
	"github.com/SARVESHVARADKAR123/courtroom/internal/observability"
)

type RouterConfig struct {
	ServiceName       string
	JWTSecret         string
	JWTIssuer         string
	JWTAudience       string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

// Handlers groups everything the router mounts. Records may be nil when
// persistence is disabled; Live may be nil to disable the snapshot stream.
type Handlers struct {
	Courtroom *CourtroomHandler
	Records   *RecordHandler
	Report    *ReportHandler
	Live      http.Handler
	Ready     http.HandlerFunc
}

func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(observability.MetricsMiddleware(cfg.ServiceName))
	r.Use(middleware.Recovery())

	r.Get("/health/live", observability.HealthLiveHandler)
	if h.Ready != nil {
		r.Get("/health/ready", h.Ready)
	}
	r.Handle("/metrics", promhttp.Handler())

	if h.Live != nil {
		r.Get("/api/courtroom/ws", h.Live.ServeHTTP)
	}

	r.Group(func(api chi.Router) {
		api.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		if cfg.RequestTimeout > 0 {
			api.Use(middleware.Timeout(cfg.RequestTimeout))
		}

		api.Get("/api/courtroom", h.Courtroom.Snapshot)
		api.Get("/api/courtroom/stages", h.Courtroom.Stages)
		api.Get("/api/courtroom/report", h.Report.Courtroom)
		api.Get("/api/courtroom/messages/{id}/challenge", h.Courtroom.BeginChallenge)
		api.Get("/api/courtroom/messages/{id}/challenge/answer", h.Courtroom.ShowAnswer)
		api.Post("/api/generate-html", h.Report.Generate)

		if h.Records != nil {
			api.Get("/api/messages", h.Records.List)
			api.Get("/api/messages/{id}", h.Records.Get)
		}

		api.Group(func(p chi.Router) {
			p.Use(middleware.JWT(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience))

			p.Put("/api/courtroom/stage", h.Courtroom.SelectStage)
			p.Post("/api/courtroom/countdown", h.Courtroom.StartCountdown)
			p.Delete("/api/courtroom/countdown", h.Courtroom.StopCountdown)
			p.Post("/api/courtroom/reset", h.Courtroom.Reset)
			p.Post("/api/courtroom/messages/{id}/resolve", h.Courtroom.Resolve)
			p.Post("/api/courtroom/messages/{id}/challenge", h.Courtroom.SubmitChallenge)
			p.Delete("/api/courtroom/verdict", h.Courtroom.DismissVerdict)

			if h.Records != nil {
				p.Post("/api/messages", h.Records.Create)
				p.Put("/api/messages/{id}", h.Records.Update)
				p.Delete("/api/messages/{id}", h.Records.Delete)
			}
		})
	})

	return otelhttp.NewHandler(r, cfg.ServiceName)
}

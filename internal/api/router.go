package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/visage-chat/visage/internal/middleware"
)

// ReadinessChecks report on the backing services the API depends on.
type ReadinessChecks struct {
	DB    func(ctx context.Context) error
	Redis func(ctx context.Context) error
	NATS  func() bool
}

// RouterDeps carries the handlers and middleware the router mounts. The
// handler packages depend on this one for responses, so they are injected
// as plain functions rather than imported.
type RouterDeps struct {
	Chat          http.HandlerFunc
	CreateSession http.HandlerFunc
	ListSessions  http.HandlerFunc
	ListMessages  http.HandlerFunc
	DeleteSession http.HandlerFunc
	ServeWS       http.HandlerFunc

	ChatLimiter func(http.Handler) http.Handler
	CORS        cors.Options
	StaticDir   string
	Ready       ReadinessChecks
}

func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.SecurityHeaders)
	r.Use(cors.Handler(deps.CORS))
	r.Use(middleware.Logging)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		JSONMessage(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", readinessHandler(deps.Ready))
	r.Handle("/metrics", promhttp.Handler())

	// The WebSocket route stays outside the metrics wrapper: the recording
	// writer does not implement http.Hijacker, which the upgrade needs.
	r.Get("/ws/{sessionID}", deps.ServeWS)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir))))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Metrics)

		r.Group(func(r chi.Router) {
			if deps.ChatLimiter != nil {
				r.Use(deps.ChatLimiter)
			}
			r.Post("/chat", deps.Chat)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", deps.CreateSession)
			r.Get("/", deps.ListSessions)
			r.Get("/{sessionID}/messages", deps.ListMessages)
			r.Delete("/{sessionID}", deps.DeleteSession)
		})
	})

	return r
}

func readinessHandler(checks ReadinessChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := map[string]string{}
		healthy := true

		if checks.DB != nil {
			if err := checks.DB(ctx); err != nil {
				status["postgres"] = err.Error()
				healthy = false
			} else {
				status["postgres"] = "ok"
			}
		}
		if checks.Redis != nil {
			if err := checks.Redis(ctx); err != nil {
				status["redis"] = err.Error()
				healthy = false
			} else {
				status["redis"] = "ok"
			}
		}
		if checks.NATS != nil {
			if checks.NATS() {
				status["nats"] = "ok"
			} else {
				status["nats"] = "disconnected"
				healthy = false
			}
		}

		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		JSON(w, code, status)
	}
}

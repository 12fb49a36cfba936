package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/attendance-management/internal/auth"
	"github.com/frahmantamala/attendance-management/internal/messaging"
	"github.com/frahmantamala/attendance-management/internal/report"
	"github.com/frahmantamala/attendance-management/internal/transport/middleware"
	"github.com/frahmantamala/attendance-management/internal/transport/swagger"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, webhookHandler *messaging.WebhookHandler, authHandler *auth.Handler, reportHandler *report.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if webhookHandler != nil {
			r.Post("/webhook", webhookHandler.HandleWebhook)
		}

		if authHandler != nil {
			r.Post("/auth/token", authHandler.IssueToken)

			if reportHandler != nil {
				r.Group(func(pr chi.Router) {
					pr.Use(authHandler.AuthMiddleware)
					pr.Get("/reports/attendance", reportHandler.DownloadAttendance)
				})
			}
		}
	})
}

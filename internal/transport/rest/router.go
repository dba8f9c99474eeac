package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/tenangdev/leave-management/internal/auth"
	"github.com/tenangdev/leave-management/internal/delegation"
	"github.com/tenangdev/leave-management/internal/leave"
	"github.com/tenangdev/leave-management/internal/transport/middleware"
	"github.com/tenangdev/leave-management/internal/transport/swagger"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, allowedOrigins string, authHandler *auth.Handler, leaveHandler *leave.Handler, delegationHandler *delegation.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORSWithOrigins(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/refresh", authHandler.RefreshToken)
		})

		// Everything below acts on employee-scoped records and goes
		// through the session middleware; services enforce the
		// visible-set gate on top.
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Route("/leaves", func(lr chi.Router) {
				lr.Post("/", leaveHandler.SubmitRequest)
				lr.Get("/", leaveHandler.ListRequests)
				lr.Patch("/{id}/decision", leaveHandler.Decide)
			})

			pr.Get("/balances/{leaveId}", leaveHandler.GetBalance)

			pr.Route("/delegations", func(dr chi.Router) {
				dr.Post("/", delegationHandler.Delegate)
				dr.Get("/sent", delegationHandler.ListSent)
				dr.Get("/received", delegationHandler.ListReceived)
			})
		})
	})
}

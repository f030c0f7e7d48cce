package http

import (
	"context"
	"website_auditor/internal/http/handlers"
	"website_auditor/internal/http/middleware"
)

func initRoutes(_ context.Context, r *Router) {
	r.httpRouter.Use(middleware.MetricsMiddleware)
	r.httpRouter.Use(middleware.RequestIDLoggerMiddleware(r.log))

	audits := handlers.NewAuditHandler(r.auditor, r.log)

	r.httpRouter.Get("/ready", handlers.NewReadyHandler(r.draining.Load).Handle)
	r.httpRouter.Get("/api/health", handlers.NewHealthHandler().Handle)
	r.httpRouter.With(r.limiter.Middleware).Post("/api/audit", audits.Submit)
	r.httpRouter.Get("/api/audit/{id}", audits.Status)
}

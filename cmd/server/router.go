package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schoolmgmt/school-api/internal/api"
	apiMiddleware "github.com/schoolmgmt/school-api/internal/api/middleware"
	"github.com/schoolmgmt/school-api/internal/domain"
)

// setupRouter registers every route and its middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(app.metrics.Instrument)

	authHandler := api.NewAuthHandler(app.authService, app.adminService, app.validator, app.logger)
	studentHandler := api.NewStudentHandler(app.studentService, app.validator, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if app.loginLimiter != nil {
				r.Use(app.loginLimiter.Limit)
			}
			r.Post("/auth/login", authHandler.Login)
		})
		r.Post("/auth/verify-email", authHandler.VerifyEmail)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.With(apiMiddleware.RequireRoles(domain.RoleAdmin)).
				Post("/auth/admin/register", authHandler.RegisterAdmin)

			r.Route("/students", func(r chi.Router) {
				r.Use(apiMiddleware.RequireRoles(domain.RoleAdmin, domain.RoleTeacher))
				r.Get("/", studentHandler.ListStudents)
				r.Post("/", studentHandler.AddStudent)
				r.Get("/{id}", studentHandler.GetStudent)
				r.Put("/{id}", studentHandler.UpdateStudent)
				r.Post("/{id}/status", studentHandler.SetStudentStatus)
			})
		})
	})

	r.Get("/health", app.health)
	r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	return r
}

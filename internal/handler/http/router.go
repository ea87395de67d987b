package http

import (
	"log/slog"
	"os"

	"github.com/campusgeo/attendance-backend-go/internal/handler/http/middleware"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AppName        string
	Version        string
	Env            string
	AllowedOrigins []string
	// ToggleLimiter throttles check-in/check-out per subject. Nil disables it.
	ToggleLimiter *middleware.KeyedRateLimiter
}

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Faculty    FacultyHandler
	Health     *HealthHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.AppName),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Retry-After"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)

	toggleLimit := func(r chi.Router) {
		if opts.ToggleLimiter != nil {
			r.Use(middleware.RateLimitBySubject(opts.ToggleLimiter))
		}
	}

	r.Get("/health", h.Health.Health)

	r.Post("/register_student", h.Auth.RegisterStudent)
	r.Post("/login_student", h.Auth.LoginStudent)
	r.Post("/login_faculty", h.Auth.LoginFaculty)
	r.Post("/get_nearest_locations", h.Attendance.NearestLocations)

	// SSE authenticates with a query token
	r.Get("/faculty/stream", h.Faculty.Stream)

	// Requires authentication
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		r.Group(func(r chi.Router) {
			toggleLimit(r)
			r.Post("/LogInOut", h.Attendance.LogInOut)
		})
		r.Get("/LogInOut/{id}", h.Attendance.GetStatus)
		r.Get("/LogInOut/{id}/history", h.Attendance.History)

		r.Route("/student", func(r chi.Router) {
			r.Use(middleware.RequireStudent)

			r.Group(func(r chi.Router) {
				toggleLimit(r)
				r.Post("/loginout", h.Attendance.StudentLogInOut)
			})
			r.Get("/status", h.Attendance.StudentStatus)
			r.Get("/history", h.Attendance.StudentHistory)
		})

		r.Route("/faculty", func(r chi.Router) {
			r.Use(middleware.RequireFaculty)

			r.Get("/attendance", h.Faculty.Attendance)
			r.Get("/students", h.Faculty.Students)
			r.Get("/stream/token", h.Faculty.StreamToken)
		})
	})
	return r
}

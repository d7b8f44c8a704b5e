package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/ahmadqo/club-certificate-engine/docs" // registers the swagger spec
	appMiddleware "github.com/ahmadqo/club-certificate-engine/internal/middleware"
	"github.com/ahmadqo/club-certificate-engine/internal/model"
	"github.com/ahmadqo/club-certificate-engine/internal/response"
)

type Router struct {
	authHandler        *AuthHandler
	certificateHandler *CertificateHandler
	metricsHandler     http.Handler
	jwtSecret          string
	allowedOrigins     []string
}

func NewRouter(
	authHandler *AuthHandler,
	certificateHandler *CertificateHandler,
	metricsHandler http.Handler,
	jwtSecret string,
	allowedOrigins []string,
) *Router {
	return &Router{
		authHandler:        authHandler,
		certificateHandler: certificateHandler,
		metricsHandler:     metricsHandler,
		jwtSecret:          jwtSecret,
		allowedOrigins:     allowedOrigins,
	}
}

func (ro *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ro.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, "OK", map[string]string{"status": "ok"})
	})
	if ro.metricsHandler != nil {
		r.Handle("/metrics", ro.metricsHandler)
	}
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	ch := ro.certificateHandler
	admin := string(model.RoleAdmin)
	organizer := string(model.RoleOrganizer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", ro.authHandler.Login)
			r.Post("/refresh", ro.authHandler.RefreshToken)

			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.Authenticate(ro.jwtSecret))
				r.Get("/me", ro.authHandler.Me)
			})
		})

		// Public verification
		r.Get("/verify/cert/{code}", ch.Verify)

		r.Route("/certificates", func(r chi.Router) {
			r.Get("/verify/{code}", ch.Verify)

			r.Group(func(r chi.Router) {
				r.Use(appMiddleware.Authenticate(ro.jwtSecret))
				r.Get("/registration/{registrationId}/download", ch.Download)
				r.Get("/competition/{competitionId}", ch.ListByCompetition)
				r.With(appMiddleware.RequireRole(admin, organizer)).
					Post("/generate-bulk/{competitionId}", ch.GenerateBulk)
				r.Get("/{id}", ch.GetByID)
				r.With(appMiddleware.RequireRole(admin)).Delete("/{id}", ch.Delete)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.Authenticate(ro.jwtSecret))
			r.With(appMiddleware.RequireRole(admin)).Post("/users", ro.authHandler.Register)
			r.Get("/competitions/{competitionId}/rankings", ch.Rankings)
		})
	})

	return r
}

package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/pass-management/internal/auth"
	"github.com/frahmantamala/pass-management/internal/pass"
	"github.com/frahmantamala/pass-management/internal/transport/middleware"
	"github.com/frahmantamala/pass-management/internal/transport/swagger"
	"github.com/frahmantamala/pass-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

const (
	APIPrefix   = "/api"
	OpenAPIPath = "/openapi.yml"
)

type Handlers struct {
	Auth   *auth.Handler
	User   *user.Handler
	Pass   *pass.Handler
	RBAC   *auth.RBACAuthorization
	Health *HealthHandler
}

type Options struct {
	Logger         *slog.Logger
	AllowedOrigins string
	// MaxBodyBytes caps request bodies; zero disables the limit.
	MaxBodyBytes int64
	// Validator is optional; when nil requests are not checked against the OpenAPI document.
	Validator *middleware.RequestValidator
	Spec      []byte
}

func RegisterAllRoutes(router chi.Router, h Handlers, opts Options) {
	validate := func(next http.Handler) http.Handler { return next }
	if opts.Validator != nil {
		validate = opts.Validator.Middleware
	}

	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.BodyLimit(opts.MaxBodyBytes))
	router.Use(middleware.RequestID(opts.Logger))
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS(opts.AllowedOrigins))

	if len(opts.Spec) > 0 {
		router.Get(OpenAPIPath, swagger.SpecHandler(opts.Spec))
		router.Handle("/swagger/*", swagger.Handler(OpenAPIPath))
	}

	router.Route(APIPrefix, func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.Health)
			r.Get("/ping", h.Health.Ping)
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.Use(validate)
			ar.Post("/register", h.Auth.Register)
			ar.Post("/login", h.Auth.Login)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Group(func(er chi.Router) {
				er.Use(validate)
				er.Get("/users/me", h.User.GetCurrentUser)
				er.Post("/passes", h.Pass.CreatePass)
				er.Get("/passes/my-passes", h.Pass.ListMyPasses)
				er.Get("/passes/{id}", h.Pass.GetPass)
			})

			// role checks run before request validation so callers without
			// the admin role always see 403
			pr.Route("/passes/admin", func(ar chi.Router) {
				ar.With(h.RBAC.Require(auth.OpListAllPass), validate).Get("/all", h.Pass.ListAllPasses)
				ar.With(h.RBAC.Require(auth.OpListAllPass), validate).Get("/pending", h.Pass.ListPendingPasses)
				ar.With(h.RBAC.Require(auth.OpPassSummary), validate).Get("/summary", h.Pass.GetSummary)
				ar.With(h.RBAC.Require(auth.OpApprovePass), validate).Put("/{id}/approve", h.Pass.ApprovePass)
				ar.With(h.RBAC.Require(auth.OpRejectPass), validate).Put("/{id}/reject", h.Pass.RejectPass)
			})
		})
	})
}

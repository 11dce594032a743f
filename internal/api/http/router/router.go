package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/avasilenko/authgate-server/internal/api/http/handler"
	"github.com/avasilenko/authgate-server/internal/api/http/middleware"
	"github.com/avasilenko/authgate-server/internal/logger"
	"github.com/avasilenko/authgate-server/internal/model"
)

// Router wires handlers and middleware into the HTTP route tree.
type Router struct {
	authHandler    *handler.Auth
	oauthHandler   *handler.OAuth
	tokenParser    middleware.TokenParser
	users          middleware.UserLoader
	contextManager model.ContextManager
	allowedOrigins []string
	logger         *logger.Logger
}

func New(
	authHandler *handler.Auth,
	oauthHandler *handler.OAuth,
	tokenParser middleware.TokenParser,
	users middleware.UserLoader,
	contextManager model.ContextManager,
	allowedOrigins []string,
	logger *logger.Logger,
) *Router {
	return &Router{
		authHandler:    authHandler,
		oauthHandler:   oauthHandler,
		tokenParser:    tokenParser,
		users:          users,
		contextManager: contextManager,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// Handler builds the route tree. Session endpoints are public; /me needs
// a verified access token and /api/admin additionally needs the admin role.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Device-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.NewLogging(rt.logger).Handle)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	authenticate := middleware.NewAuthenticate(rt.tokenParser, rt.contextManager, rt.logger)

	requireAdmin := middleware.NewRequireRole(rt.users, rt.contextManager, model.RoleAdmin, rt.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", rt.authHandler.Signup)
			r.Post("/login", rt.authHandler.Login)
			r.Post("/refresh", rt.authHandler.Refresh)
			r.Post("/logout", rt.authHandler.Logout)

			r.Route("/oauth/{provider}", func(r chi.Router) {
				r.Get("/", rt.oauthHandler.Initiate)
				r.Get("/callback", rt.oauthHandler.Callback)
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticate.Handle)
				r.Get("/me", rt.authHandler.Me)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate.Handle)
			r.Use(requireAdmin.Handle)
			r.Get("/users/{userId}", rt.authHandler.GetUser)
		})
	})

	return r
}

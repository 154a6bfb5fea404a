// Package routes is the route table of the web shell.
package routes

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mkolodiy/go-auth-shell/internal/auth"
	"github.com/mkolodiy/go-auth-shell/internal/components"
	"github.com/mkolodiy/go-auth-shell/internal/query"
	log "github.com/sirupsen/logrus"
)

type Deps struct {
	Client        *query.Client
	API           auth.API
	Forms         *auth.Store
	Log           log.FieldLogger
	AssetsDir     string
	SecureCookies bool
}

type handler struct {
	Deps
}

// NewRouter maps
//
//	/            landing page
//	/auth/*      auth sub-router (login, signup)
//	/app         destination after login or signup
//	/logout      clears the session cookies
//	/assets/*    static files
//	/healthz     liveness and mutation counters
func NewRouter(deps Deps) http.Handler {
	if deps.Log == nil {
		deps.Log = log.StandardLogger()
	}
	h := &handler{Deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Log))
	r.Use(middleware.Recoverer)

	if deps.AssetsDir != "" {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(deps.AssetsDir))))
	}
	r.Get("/healthz", h.health)

	r.Get("/", templ.Handler(components.Landing()).ServeHTTP)
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", h.loginPage)
		r.Post("/login", h.loginSubmit)
		r.Get("/signup", h.signupPage)
		r.Post("/signup", h.signupSubmit)
	})
	r.Get("/app", h.app)
	r.Post("/logout", h.logout)

	return r
}

// Package server wires the HTTP router: middleware chain, public routes, and
// the authenticated API subrouter.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	healthhandler "projecthub/backend/internal/health/handler"
	identityhandler "projecthub/backend/internal/identity/handler"
	organizationhandler "projecthub/backend/internal/organization/handler"
	projecthandler "projecthub/backend/internal/project/handler"
	"projecthub/backend/internal/security"
	"projecthub/backend/internal/server/middleware"
	taskhandler "projecthub/backend/internal/task/handler"
)

// Deps holds everything the router needs. All fields are required except
// Health, which may be nil to skip the endpoint.
type Deps struct {
	Log    logrus.FieldLogger
	Tokens *security.TokenProvider

	Auth     *identityhandler.Auth
	Orgs     *organizationhandler.Orgs
	Projects *projecthandler.Projects
	Tasks    *taskhandler.Tasks
	Health   *healthhandler.Health
}

// NewRouter builds the full route table. /healthz and /api/v1/auth/* are
// public; everything else under /api/v1 requires a Bearer token.
func NewRouter(d Deps) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.Logging(d.Log))

	if d.Health != nil {
		d.Health.Register(r)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	d.Auth.Register(api)

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.RequireAuth(d.Tokens))
	d.Orgs.Register(protected)
	d.Projects.Register(protected)
	d.Tasks.Register(protected)

	return r
}

// New returns an http.Server for the router with sane timeouts.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Shutdown gracefully stops srv, waiting up to timeout for in-flight
// requests.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

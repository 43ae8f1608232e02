package http

import (
	"net/http"
	"strings"
	"time"

	"talentgate/internal/domain/user"
	"talentgate/internal/http/handlers"
	"talentgate/internal/http/metrics"
	httpmw "talentgate/internal/http/middleware"
)

type RouterDependencies struct {
	OpportunityHandler *handlers.OpportunityHandler
	ApplicationHandler *handlers.ApplicationHandler
	PipelineHandler    *handlers.PipelineHandler
	MetricsHandler     *handlers.MetricsHandler
	AuthMiddleware     *httpmw.AuthMiddleware
	Metrics            *metrics.Collector
	RequestTimeout     time.Duration
}

type Router struct {
	deps RouterDependencies
}

const maxBodyBytes = 1 << 20

func NewRouter(deps RouterDependencies) http.Handler {
	return &Router{deps: deps}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := httpmw.Chain(r.baseHandler(), httpmw.RequestID, httpmw.Logging, httpmw.BodyLimit(maxBodyBytes), httpmw.Recover, httpmw.Metrics(r.deps.Metrics), httpmw.Timeout(r.deps.RequestTimeout))
	handler.ServeHTTP(w, req)
}

func (r *Router) baseHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := req.URL.Path

		switch {
		case req.Method == http.MethodGet && path == "/health":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		case req.Method == http.MethodGet && path == "/metrics":
			r.deps.MetricsHandler.Get(w, req)
			return
		case req.Method == http.MethodGet && path == "/opportunities":
			r.deps.OpportunityHandler.ListApproved(w, req)
			return
		}

		if strings.HasPrefix(path, "/opportunities") || strings.HasPrefix(path, "/applications") || strings.HasPrefix(path, "/pipeline") || strings.HasPrefix(path, "/companies") {
			protected := r.deps.AuthMiddleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				r.handleProtected(w, req)
			}))
			protected.ServeHTTP(w, req)
			return
		}

		http.NotFound(w, req)
	})
}

func (r *Router) handleProtected(w http.ResponseWriter, req *http.Request) {
	path := req.URL.Path

	switch {
	case req.Method == http.MethodPost && path == "/opportunities":
		httpmw.RequireRole(user.RoleCompany)(http.HandlerFunc(r.deps.OpportunityHandler.Create)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/companies/opportunities":
		httpmw.RequireRole(user.RoleCompany)(http.HandlerFunc(r.deps.OpportunityHandler.ListByCompany)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/opportunities/") && strings.HasSuffix(path, "/transition"):
		httpmw.RequireRole(user.RoleAdmin, user.RoleCompany)(http.HandlerFunc(r.deps.OpportunityHandler.Transition)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/opportunities/") && strings.HasSuffix(path, "/applications"):
		httpmw.RequireRole(user.RoleCompany)(http.HandlerFunc(r.deps.ApplicationHandler.ListByOpportunity)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && strings.HasPrefix(path, "/opportunities/"):
		r.deps.OpportunityHandler.Get(w, req)
		return
	case req.Method == http.MethodPost && path == "/applications":
		httpmw.RequireRole(user.RoleApplicant)(http.HandlerFunc(r.deps.ApplicationHandler.Apply)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/applications":
		r.deps.ApplicationHandler.List(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/applications/") && strings.HasSuffix(path, "/withdraw"):
		httpmw.RequireRole(user.RoleApplicant)(http.HandlerFunc(r.deps.ApplicationHandler.Withdraw)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && strings.HasPrefix(path, "/applications/") && strings.HasSuffix(path, "/reject"):
		httpmw.RequireRole(user.RoleCompany)(http.HandlerFunc(r.deps.ApplicationHandler.Reject)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && path == "/pipeline/advance":
		httpmw.RequireRole(user.RoleCompany)(http.HandlerFunc(r.deps.PipelineHandler.Advance)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPost && path == "/pipeline/hire":
		httpmw.RequireRole(user.RoleCompany)(http.HandlerFunc(r.deps.PipelineHandler.Hire)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodGet && path == "/pipeline":
		httpmw.RequireRole(user.RoleCompany, user.RoleAdmin)(http.HandlerFunc(r.deps.PipelineHandler.List)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodPatch && strings.HasPrefix(path, "/pipeline/"):
		httpmw.RequireRole(user.RoleCompany)(http.HandlerFunc(r.deps.PipelineHandler.UpdateDetails)).ServeHTTP(w, req)
		return
	case req.Method == http.MethodDelete && strings.HasPrefix(path, "/pipeline/"):
		httpmw.RequireRole(user.RoleCompany, user.RoleAdmin)(http.HandlerFunc(r.deps.PipelineHandler.Remove)).ServeHTTP(w, req)
		return
	}

	http.NotFound(w, req)
}

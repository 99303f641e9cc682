// Package server provides HTTP server setup for the respond service.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/common/middleware"
	"github.com/axisir/axisir-stack/respond/internal/handlers"
	respondmw "github.com/axisir/axisir-stack/respond/internal/middleware"
	"github.com/axisir/axisir-stack/respond/internal/ratelimit"
)

// Rate limit scopes. Login and signup share the stricter one.
const (
	ScopeAPI  = "api"
	ScopeAuth = "auth"
)

// Options configures the router. A nil Limiter disables rate limiting.
type Options struct {
	Auth        respondmw.Authenticator
	Limiter     ratelimit.RateLimiter
	Logger      *logging.Logger
	CORSOrigins []string
	MetricsPath string
}

// NewRouter constructs a ServeMux with respond API routes registered.
func NewRouter(h *handlers.Handler, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Limiter == nil {
		opts.Limiter = &ratelimit.NoOpRateLimiter{}
	}

	authmw := respondmw.NewAuthMiddleware(opts.Auth)
	apiLimit := respondmw.RateLimit(opts.Limiter, ScopeAPI, opts.Logger)
	authLimit := respondmw.RateLimit(opts.Limiter, ScopeAuth, opts.Logger)

	public := func(f http.HandlerFunc) http.Handler { return apiLimit(f) }
	login := func(f http.HandlerFunc) http.Handler { return authLimit(f) }
	private := func(f http.HandlerFunc) http.Handler { return apiLimit(authmw.RequireAuth(f)) }

	mux := http.NewServeMux()

	// Health check endpoints
	mux.HandleFunc("GET /healthz", h.HealthCheck)
	if opts.MetricsPath != "" {
		mux.Handle("GET "+opts.MetricsPath, promhttp.Handler())
	}

	// Incidents
	mux.Handle("GET /incidents/getByCompanyId/{companyId}", private(h.ListIncidentsByCompany))
	mux.Handle("GET /incidents/getById/{id}", private(h.GetIncident))
	mux.Handle("GET /incidents/getIoc", private(h.GetIncidentIOCs))
	mux.Handle("POST /incidents/create", private(h.CreateIncident))
	mux.Handle("POST /incidents/update", private(h.UpdateIncident))

	// Assets
	mux.Handle("GET /assets/getAssetsByCompanyId/{companyId}", private(h.ListAssetsByCompany))
	mux.Handle("GET /assets/getAssetsByAssetGroup/{assetGroupId}", private(h.ListAssetsByGroup))
	mux.Handle("GET /assets/getAssetGroups/{companyId}", private(h.ListAssetGroups))
	mux.Handle("GET /assets/getInfectedAssets/{companyId}", private(h.ListInfectedAssets))
	mux.Handle("GET /assets/getById/{id}", private(h.GetAsset))
	mux.Handle("POST /assets/create", private(h.CreateAsset))
	mux.Handle("POST /assets/update", private(h.UpdateAsset))
	mux.Handle("POST /assets/createAssetGroup", private(h.CreateAssetGroup))
	mux.Handle("POST /assets/assignAssetToGroup", private(h.AssignAssetToGroup))

	// Indicators
	mux.Handle("GET /indicators", private(h.ListIndicators))
	mux.Handle("GET /indicators/{id}", private(h.GetIndicator))
	mux.Handle("POST /indicators/create", private(h.CreateIndicator))
	mux.Handle("POST /indicators/update", private(h.UpdateIndicator))
	mux.Handle("DELETE /indicators/{id}", private(h.DeleteIndicator))

	// Tasks
	mux.Handle("GET /tasks/getByIncidentId/{incidentId}", private(h.ListTasksByIncident))
	mux.Handle("GET /tasks/getById/{id}", private(h.GetTask))
	mux.Handle("POST /tasks/getAllTasks", private(h.ListTasks))
	mux.Handle("POST /tasks/create", private(h.CreateTask))
	mux.Handle("POST /tasks/update", private(h.UpdateTask))

	// Reports
	mux.Handle("GET /reports", private(h.ListReports))
	mux.Handle("GET /reports/{id}", private(h.GetReport))
	mux.Handle("POST /reports/create", private(h.CreateReport))

	// Accounts
	mux.Handle("GET /accounts/getByUserId", private(h.ListCompaniesForUser))
	mux.Handle("POST /accounts/create", private(h.CreateCompany))
	mux.Handle("POST /accounts/assignUserRoleToCompany", private(h.AssignUserRole))

	// Users
	mux.Handle("POST /users/login", login(h.Login))
	mux.Handle("POST /users/signup", login(h.Signup))
	mux.Handle("POST /users/tokenLogin", public(h.TokenLogin))
	mux.Handle("GET /users/{id}", private(h.GetUser))
	mux.Handle("GET /users/getRoles/all", private(h.ListRoles))
	mux.Handle("GET /users/getByCompanyId/{companyId}", private(h.ListUsersByCompany))
	mux.Handle("POST /users/logout", private(h.Logout))
	mux.Handle("POST /users/update/{id}", private(h.UpdateUser))
	mux.Handle("POST /users/inviteUser/{companyId}", private(h.InviteUser))
	mux.Handle("POST /users/changeUserRole", private(h.ChangeUserRole))

	var handler http.Handler = respondmw.Metrics(mux)
	handler = respondmw.AccessLog(opts.Logger)(handler)
	handler = middleware.CORS(middleware.DefaultCORSConfig(opts.CORSOrigins))(handler)
	return middleware.RequestID(handler)
}

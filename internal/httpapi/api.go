package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/auth"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/document"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/employee"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/obs"
	"github.com/ChaoukiBayoudhi/intelligent-secure-rh-management-backend/internal/stream"
)

// ReadyProbe checks readiness (for example a database ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Config wires the API's collaborators and middleware limits.
type Config struct {
	Version    string
	ReadyProbe ReadyProbe

	Auth      *auth.Service
	Documents *document.Service
	Employees employee.Directory
	Events    *stream.Stream

	// ExternalGatewaySecret authenticates the identity gateway calling
	// /v1/auth/external. Empty disables the endpoint.
	ExternalGatewaySecret string

	RateLimitPerSecond int
	RateLimitBurst     int
	MaxBodyBytes       int64
}

// API is the HTTP layer.
type API struct {
	mux *http.ServeMux
	cfg Config
}

func New(cfg Config) *API {
	if cfg.RateLimitPerSecond <= 0 {
		cfg.RateLimitPerSecond = 20
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 40
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10 << 20
	}

	a := &API{
		mux: http.NewServeMux(),
		cfg: cfg,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// OpenAPI YAML
	a.mux.HandleFunc("/openapi.yaml", a.OpenAPISpec)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// auth flows
	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/refresh", a.handleRefresh)
	a.mux.HandleFunc("/v1/auth/change-password", a.handleChangePassword)
	a.mux.HandleFunc("/v1/auth/external", a.handleExternalLogin)
	a.mux.HandleFunc("/v1/auth/lock", a.handleLock)
	a.mux.HandleFunc("/v1/auth/unlock", a.handleUnlock)

	// encrypted documents
	a.mux.HandleFunc("/v1/documents", a.handleDocumentsCollection)
	a.mux.HandleFunc("/v1/documents/", a.handleDocumentResource)
	a.mux.HandleFunc("/v1/employees", a.handleEmployeesCollection)
	a.mux.HandleFunc("/v1/employees/", a.handleEmployeeResource)

	// security event feed (SSE)
	a.mux.HandleFunc("/v1/events", a.Events)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = Logging(h)
	h = RequestID(h)
	h = MaxBodyBytes(h, a.cfg.MaxBodyBytes)
	h = RateLimit(h, a.cfg.RateLimitBurst, a.cfg.RateLimitPerSecond)
	h = CORS(h)
	h = SecurityHeaders(h)
	return obs.Instrument(h)
}

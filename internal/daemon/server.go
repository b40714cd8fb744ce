package daemon

import (
	"context"
	"errors"
	"net/http"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/samber/oops"
	"gorm.io/gorm"

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/dnsverify"
	"github.com/faithinsite/core/internal/handlers"
	"github.com/faithinsite/core/internal/log"
	"github.com/faithinsite/core/internal/manager"
	"github.com/faithinsite/core/internal/middleware"
	"github.com/faithinsite/core/internal/repo/sql"
	"github.com/faithinsite/core/internal/sessiontoken"
)

const (
	ReadHeaderTimeout = 5 * time.Second
	ReadTimeout       = 10 * time.Second
	WriteTimeout      = 10 * time.Second
	IdleTimeout       = 120 * time.Second
	ServerLogDomain   = "server daemon"
)

var ErrEmptyInternalSecret = errors.New("internal auth secret resolved to an empty value")

type FIServer struct {
	cfg        *config.Config
	controller *handlers.Controller
	server     *http.Server
}

type Server interface {
	Start(ctx context.Context) error
	Close(ctx context.Context) error
}

func NewFIServer(
	ctx context.Context,
	cfg *config.Config,
	dbCon *gorm.DB,
) (*FIServer, error) {
	repo := sql.NewRepository(dbCon)
	verifier := dnsverify.New(nil, cfg.Platform.DNS.Timeout)

	mgr, err := manager.New(repo, cfg, verifier)
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "creating managers")
	}

	internalSecret, err := commoncfg.LoadValueFromSourceRef(cfg.InternalAuth.Secret)
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "loading internal auth secret")
	}

	if len(internalSecret) == 0 {
		return nil, oops.In(ServerLogDomain).Wrap(ErrEmptyInternalSecret)
	}

	trustedProxies, err := cfg.HTTP.TrustedProxyPrefixes()
	if err != nil {
		return nil, oops.In(ServerLogDomain).Wrapf(err, "parsing trusted proxies")
	}

	controller := handlers.NewController(mgr, trustedProxies)
	httpServer := createHTTPServer(cfg, controller, mgr, string(internalSecret))

	return &FIServer{
		cfg:        cfg,
		controller: controller,
		server:     httpServer,
	}, nil
}

func (s *FIServer) Close(ctx context.Context) error {
	shutdownCtx, shutdownRelease := context.WithTimeout(ctx, s.cfg.HTTP.ShutdownTimeout)
	defer shutdownRelease()

	err := s.server.Shutdown(shutdownCtx)
	if err != nil {
		return oops.In("HTTP Server").
			WithContext(ctx).
			Wrapf(err, "Failed shutting down HTTP server")
	}

	log.Info(ctx, "Completed graceful shutdown of HTTP server")

	return nil
}

func (s *FIServer) Start(ctx context.Context) error {
	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server encountered an error", err)

			_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		}
	}()

	return nil
}

func createHTTPServer(
	cfg *config.Config,
	ctr *handlers.Controller,
	mgr *manager.Manager,
	internalSecret string,
) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewHandler(ctr, mgr.Tokens, internalSecret),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}
}

// NewHandler assembles the full route table. Four groups share the one
// controller: the public login route, the session guarded operator routes,
// the platform admin routes and the internally authenticated resolution
// routes for the edge proxy.
func NewHandler(
	ctr *handlers.Controller,
	tokens *sessiontoken.Service,
	internalSecret string,
) http.Handler {
	mux := NewServeMux()

	// Middlewares run in a FILO. Last middleware on the slice is the first one ran
	// First middleware to run should be the InjectRequestID
	public := mux.Group(
		middleware.LoggingMiddleware(),
		middleware.PanicRecoveryMiddleware(),
		middleware.InjectRequestID(),
	)

	operator := mux.Group(
		middleware.SessionMiddleware(tokens),
		middleware.LoggingMiddleware(),
		middleware.PanicRecoveryMiddleware(),
		middleware.InjectRequestID(),
	)

	admin := mux.Group(
		middleware.RequireRole(constants.PlatformAdminRole),
		middleware.SessionMiddleware(tokens),
		middleware.LoggingMiddleware(),
		middleware.PanicRecoveryMiddleware(),
		middleware.InjectRequestID(),
	)

	internal := mux.Group(
		middleware.InternalAuthMiddleware(internalSecret),
		middleware.LoggingMiddleware(),
		middleware.PanicRecoveryMiddleware(),
		middleware.InjectRequestID(),
	)

	public.HandleFunc("POST /v1/auth/login", ctr.Login)

	operator.HandleFunc("GET /v1/domains", ctr.ListDomains)
	operator.HandleFunc("POST /v1/domains", ctr.CreateDomain)
	operator.HandleFunc("GET /v1/domains/{id}", ctr.GetDomain)
	operator.HandleFunc("DELETE /v1/domains/{id}", ctr.DeleteDomain)
	operator.HandleFunc("POST /v1/domains/{id}/verify", ctr.VerifyDomain)
	operator.HandleFunc("GET /v1/redirects", ctr.ListRedirects)
	operator.HandleFunc("POST /v1/redirects", ctr.CreateRedirect)
	operator.HandleFunc("GET /v1/redirects/{id}", ctr.GetRedirect)
	operator.HandleFunc("PATCH /v1/redirects/{id}", ctr.UpdateRedirect)
	operator.HandleFunc("DELETE /v1/redirects/{id}", ctr.DeleteRedirect)

	admin.HandleFunc("GET /v1/tenants", ctr.ListTenants)
	admin.HandleFunc("POST /v1/tenants", ctr.CreateTenant)
	admin.HandleFunc("GET /v1/tenants/{id}", ctr.GetTenant)
	admin.HandleFunc("PATCH /v1/tenants/{id}/status", ctr.UpdateTenantStatus)
	admin.HandleFunc("DELETE /v1/tenants/{id}", ctr.DeleteTenant)

	internal.HandleFunc("GET /internal/v1/resolve/tenant", ctr.ResolveTenant)
	internal.HandleFunc("GET /internal/v1/resolve/redirect", ctr.ResolveRedirect)

	return mux
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/bookly/internal/auth/blocklist"
	"github.com/aussiebroadwan/bookly/internal/auth/domain"
	"github.com/aussiebroadwan/bookly/internal/auth/service"
	"github.com/aussiebroadwan/bookly/internal/auth/store"
	"github.com/aussiebroadwan/bookly/pkg/httpx"
	"github.com/aussiebroadwan/bookly/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store     store.Store
	blocklist blocklist.Blocklist

	Guard          *service.Guard
	Authenticator  *service.Authenticator
	AccountService *service.AccountService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	bl blocklist.Blocklist,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		blocklist:    bl,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerSessions()
	r.registerPasswordReset()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	// POST /signup - strict rate limit by IP (public account creation)
	signup := &SignupHandler{AccountService: r.AccountService}
	r.Mux.Handle("POST /v1/auth/signup",
		httpx.Chain(signup,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /verify/{token} - moderate limit, the token itself gates access
	verify := &VerifyHandler{AccountService: r.AccountService}
	r.Mux.Handle("GET /v1/auth/verify/{token}",
		httpx.Chain(verify,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /me - authenticated, lenient rate limit by user
	me := &MeHandler{}
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(me,
			AuthnMiddleware(r.Guard),
			RequireRole(r.Guard, domain.RoleUser, domain.RoleAdmin),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSessions() {
	// POST /login - strict rate limit by IP (authentication attempts)
	login := &LoginHandler{Authenticator: r.Authenticator}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(login,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /refresh - moderate rate limit
	refresh := &RefreshHandler{Authenticator: r.Authenticator}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refresh,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /logout - authenticated, moderate rate limit by user
	logout := &LogoutHandler{Authenticator: r.Authenticator}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logout,
			AuthnMiddleware(r.Guard),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerPasswordReset() {
	// POST /password-reset/request - strict limit, sends mail
	request := &PasswordResetRequestHandler{AccountService: r.AccountService}
	r.Mux.Handle("POST /v1/auth/password-reset/request",
		httpx.Chain(request,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /password-reset/confirm/{token} - strict limit (credential change)
	confirm := &PasswordResetConfirmHandler{AccountService: r.AccountService}
	r.Mux.Handle("POST /v1/auth/password-reset/confirm/{token}",
		httpx.Chain(confirm,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.blocklist))
}

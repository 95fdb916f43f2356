package router

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"pressroom/internal/auth"
	errs "pressroom/internal/errors"
	"pressroom/internal/repository"
	"pressroom/internal/session"
)

// Middleware bundles the request-scoped plumbing: flash scope assignment,
// session identity resolution and the login-state guards.
type Middleware struct {
	signer   *auth.CookieSigner
	sessions session.Store
	users    repository.UserRepository
	flash    session.Flash
}

// NewMiddleware creates the middleware set.
func NewMiddleware(signer *auth.CookieSigner, sessions session.Store, users repository.UserRepository, flash session.Flash) *Middleware {
	return &Middleware{
		signer:   signer,
		sessions: sessions,
		users:    users,
		flash:    flash,
	}
}

// ResolveIdentity assigns the flash scope and resolves the session cookie
// into an identity on the request context. Resolution is read-only: a
// missing, forged or expired session leaves the request anonymous, but a
// failing session or identity store is a request error, not anonymity.
func (m *Middleware) ResolveIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		scope := ""
		if ck, err := c.Cookie(session.ScopeCookie); err == nil && ck.Value != "" {
			scope = ck.Value
		} else {
			scope = uuid.New().String()
			c.SetCookie(&http.Cookie{
				Name:     session.ScopeCookie,
				Value:    scope,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		session.SetScope(c, scope)

		ck, err := c.Cookie(auth.SessionCookie)
		if err != nil || ck.Value == "" {
			return next(c)
		}
		token, err := m.signer.Parse(ck.Value)
		if err != nil {
			// forged or expired cookie
			return next(c)
		}

		ctx := c.Request().Context()
		identityID, err := m.sessions.Resolve(ctx, token)
		if errors.Is(err, errs.ErrNoSession) {
			// logged out elsewhere or expired server-side
			return next(c)
		}
		if err != nil {
			return err
		}
		user, err := m.users.FindByID(ctx, identityID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// the identity behind the session no longer exists
			return next(c)
		}
		if err != nil {
			return err
		}
		auth.SetIdentity(c, user)
		return next(c)
	}
}

// MustBeLoggedIn turns anonymous requests away to the login page.
func (m *Middleware) MustBeLoggedIn(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := auth.IdentityFrom(c); !ok {
			if scope := session.ScopeFrom(c); scope != "" {
				_ = m.flash.Push(c.Request().Context(), scope, "danger", "You must be logged in!")
			}
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return next(c)
	}
}

// MustBeLoggedOut turns authenticated requests away from the credential pages.
func (m *Middleware) MustBeLoggedOut(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := auth.IdentityFrom(c); ok {
			if scope := session.ScopeFrom(c); scope != "" {
				_ = m.flash.Push(c.Request().Context(), scope, "danger", "You are already logged in!")
			}
			return c.Redirect(http.StatusSeeOther, "/news")
		}
		return next(c)
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP, dropping idle entries.
type ipRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

func newIPRateLimiter(rps float64, burst int) *ipRateLimiter {
	rl := &ipRateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
	go rl.cleanup()
	return rl
}

func (rl *ipRateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rps, rl.burst)
		rl.visitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *ipRateLimiter) cleanup() {
	for {
		time.Sleep(10 * time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 10*time.Minute {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit limits requests per client IP. Used on login and register POSTs
// to slow down credential guessing.
func RateLimit(rps float64, burst int) echo.MiddlewareFunc {
	limiter := newIPRateLimiter(rps, burst)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.getLimiter(c.RealIP()).Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, slow down")
			}
			return next(c)
		}
	}
}

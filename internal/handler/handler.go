package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pressroom/internal/auth"
	"pressroom/internal/session"
)

// base carries the pieces every page handler shares: the flash relay and the
// render/redirect helpers built on it.
type base struct {
	flash session.Flash
}

// render executes a page template. The resolved identity and the drained
// flash queue are merged into the bindings so the layout can show them.
// Draining happens only here, on an actual render, never on a redirect.
func (b base) render(c echo.Context, view string, data echo.Map) error {
	return b.renderCode(c, http.StatusOK, view, data)
}

func (b base) renderCode(c echo.Context, code int, view string, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	if u, ok := auth.IdentityFrom(c); ok {
		data["Identity"] = u
	}
	if scope := session.ScopeFrom(c); scope != "" {
		if msgs, err := b.flash.Drain(c.Request().Context(), scope); err == nil && len(msgs) > 0 {
			data["Flashes"] = msgs
		}
	}
	return c.Render(code, view, data)
}

// flashRedirect queues a one-shot message and redirects; the message shows up
// on the next rendered page.
func (b base) flashRedirect(c echo.Context, category, text, path string) error {
	if scope := session.ScopeFrom(c); scope != "" {
		_ = b.flash.Push(c.Request().Context(), scope, category, text)
	}
	return c.Redirect(http.StatusSeeOther, path)
}

package handler

import (
	"github.com/labstack/echo/v4"

	"pressroom/internal/session"
)

// PageHandler serves the static informational pages.
type PageHandler struct {
	base
}

// NewPageHandler creates a new page handler.
func NewPageHandler(flash session.Flash) *PageHandler {
	return &PageHandler{base: base{flash: flash}}
}

// Home renders the landing page.
func (h *PageHandler) Home(c echo.Context) error {
	return h.render(c, "index.html", echo.Map{"Title": "Home"})
}

// About renders the about page.
func (h *PageHandler) About(c echo.Context) error {
	return h.render(c, "about.html", echo.Map{"Title": "About"})
}

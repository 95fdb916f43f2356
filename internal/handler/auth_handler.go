package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"pressroom/internal/auth"
	errs "pressroom/internal/errors"
	"pressroom/internal/service"
	"pressroom/internal/session"
	"pressroom/internal/validation"
)

// AuthHandler serves registration, login and logout.
type AuthHandler struct {
	base
	authService service.AuthService
	pipeline    *validation.Pipeline
	signer      *auth.CookieSigner
	sessionTTL  time.Duration
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, pipeline *validation.Pipeline, signer *auth.CookieSigner, sessionTTL time.Duration, flash session.Flash) *AuthHandler {
	return &AuthHandler{
		base:        base{flash: flash},
		authService: authService,
		pipeline:    pipeline,
		signer:      signer,
		sessionTTL:  sessionTTL,
	}
}

var registerRules = []validation.Rule{
	{Field: "firstName", Check: validation.Required, Message: "Your first name is required!"},
	{Field: "lastName", Check: validation.Required, Message: "Your last name is required!"},
	{Field: "email", Check: validation.Required, Message: "Your e-mail is required!"},
	{Field: "email", Check: validation.Email, Message: "Please provide a valid e-mail!"},
	{Field: "password", Check: validation.Required, Message: "A password is required!"},
	{Field: "confirmPassword", Check: validation.EqualsField, Other: "password", Message: "Passwords do not match!"},
}

// ShowRegister renders the registration form.
func (h *AuthHandler) ShowRegister(c echo.Context) error {
	return h.render(c, "register.html", echo.Map{"Title": "Register", "Form": map[string]string{}})
}

// Register creates a new identity. On validation failure the form is
// re-rendered pre-filled with the submitted values, never the stored ones.
func (h *AuthHandler) Register(c echo.Context) error {
	fields := map[string]string{
		"firstName":       strings.TrimSpace(c.FormValue("firstName")),
		"lastName":        strings.TrimSpace(c.FormValue("lastName")),
		"email":           strings.TrimSpace(c.FormValue("email")),
		"password":        c.FormValue("password"),
		"confirmPassword": c.FormValue("confirmPassword"),
	}

	if result := h.pipeline.Run(fields, registerRules); !result.OK() {
		return h.render(c, "register.html", echo.Map{
			"Title":  "Register",
			"Errors": result,
			"Form":   fields,
		})
	}

	_, err := h.authService.Register(c.Request().Context(),
		fields["firstName"], fields["lastName"], fields["email"], fields["password"])
	if err != nil {
		if errors.Is(err, errs.ErrEmailTaken) {
			return h.render(c, "register.html", echo.Map{
				"Title":  "Register",
				"Errors": validation.Result{{Field: "email", Message: "That e-mail is already registered!"}},
				"Form":   fields,
			})
		}
		return err
	}

	return h.flashRedirect(c, "success", "You are now registered and can log in!", "/login")
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c echo.Context) error {
	return h.render(c, "login.html", echo.Map{"Title": "Login"})
}

// Login authenticates an identity and sets the signed session cookie.
// Invalid credentials leave no session behind.
func (h *AuthHandler) Login(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	token, _, err := h.authService.Login(c.Request().Context(), email, password)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			return h.flashRedirect(c, "danger", "Invalid email or password!", "/login")
		}
		return err
	}

	signed, err := h.signer.Sign(token)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.sessionTTL),
	})

	return h.flashRedirect(c, "success", "You are now logged in!", "/news")
}

// Logout destroys the session and expires the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if ck, err := c.Cookie(auth.SessionCookie); err == nil && ck.Value != "" {
		if token, perr := h.signer.Parse(ck.Value); perr == nil {
			_ = h.authService.Logout(c.Request().Context(), token)
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	return h.flashRedirect(c, "success", "You are logged out!", "/login")
}

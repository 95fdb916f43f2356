package router

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"pressroom/internal/config"
	"pressroom/internal/errors"
	"pressroom/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	m *Middleware,
	pageHandler *handler.PageHandler,
	authHandler *handler.AuthHandler,
	articleHandler *handler.ArticleHandler,
	profileHandler *handler.ProfileHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(m.ResolveIdentity)

	e.HTTPErrorHandler = errorHandler

	e.Static("/static", "web/static")
	e.Static("/uploads", cfg.UploadDir)
	e.Static("/images", "web/static/images")

	// Public pages
	e.GET("/", pageHandler.Home)
	e.GET("/about", pageHandler.About)
	e.GET("/news", articleHandler.List)
	e.GET("/news/:id", articleHandler.Show)

	// Credential pages: logged-out only, POSTs rate limited per IP
	loggedOut := e.Group("", m.MustBeLoggedOut)
	loggedOut.GET("/register", authHandler.ShowRegister)
	loggedOut.POST("/register", authHandler.Register, RateLimit(1, 5))
	loggedOut.GET("/login", authHandler.ShowLogin)
	loggedOut.POST("/login", authHandler.Login, RateLimit(1, 5))

	// Authenticated pages
	loggedIn := e.Group("", m.MustBeLoggedIn)
	loggedIn.GET("/logout", authHandler.Logout)
	loggedIn.GET("/news/new", articleHandler.New)
	loggedIn.POST("/news", articleHandler.Create)
	loggedIn.GET("/news/:id/edit", articleHandler.Edit)
	loggedIn.POST("/news/:id", articleHandler.Update)
	loggedIn.DELETE("/news/:id", articleHandler.Delete)
	loggedIn.GET("/profile", profileHandler.Show)
	loggedIn.GET("/profile/edit", profileHandler.EditForm)
	loggedIn.POST("/profile/edit", profileHandler.Edit)
	loggedIn.GET("/profile/edit/image", profileHandler.ImageForm)
	loggedIn.POST("/profile/edit/image", profileHandler.Image)
}

// errorHandler is the terminal handler: everything the handlers did not deal
// with at the point of occurrence ends up here and is rendered as an error
// page. Internal detail goes to the log, never into the response.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Something went wrong"

	var echoErr *echo.HTTPError
	if stderrors.As(err, &echoErr) {
		code = echoErr.Code
		if s, ok := echoErr.Message.(string); ok {
			message = s
		}
	} else {
		mapped := errors.MapErrorToHTTP(err)
		code = mapped.StatusCode
		message = mapped.Message
	}

	if code >= http.StatusInternalServerError {
		c.Logger().Error(err)
		message = "Something went wrong"
	}

	data := map[string]interface{}{
		"Title":   "Error",
		"Status":  code,
		"Message": message,
	}
	if rerr := c.Render(code, "error.html", data); rerr != nil {
		_ = c.String(code, message)
	}
}

package auth

import (
	"github.com/labstack/echo/v4"

	"pressroom/internal/model"
)

const identityKey = "auth.identity"

// SetIdentity stashes the resolved identity on the request context.
func SetIdentity(c echo.Context, u *model.User) {
	c.Set(identityKey, u)
}

// IdentityFrom returns the identity resolved for this request, if any.
func IdentityFrom(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(identityKey).(*model.User)
	return u, ok && u != nil
}

package jwtx

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// UserID returns the authenticated user's ID stashed in the context by the
// claims middleware.
func UserID(c echo.Context) (int64, error) {
	if id, ok := c.Get("user_id").(int64); ok && id > 0 {
		return id, nil
	}
	return 0, errors.New("no user id in context")
}

func Role(c echo.Context) string {
	r, _ := c.Get("role").(string)
	return r
}

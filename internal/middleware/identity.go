package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-rate-configurator/internal/model"
)

// Context keys set by JWTAuth.
const (
	ctxOperatorID = "operator_id"
	ctxRole       = "role"
)

// OperatorID returns the authenticated operator id.
func OperatorID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxOperatorID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated operator role.
func Role(c echo.Context) (model.Role, bool) {
	r, ok := c.Get(ctxRole).(model.Role)
	return r, ok
}

// identity is the rate limiter's view of the caller: the operator id, or
// "anon" before authentication.
func identity(c echo.Context) string {
	if id, ok := OperatorID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}

package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"underwriting-backend/internal/adapter/middleware"
	"underwriting-backend/internal/domain/user"
)

// bind decodes and validates req. On failure it has already written the
// response and returns false.
func bind(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, badBody(c)
	}
	if err := c.Validate(req); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

// actorOf returns the caller set by JWTAuth. Routes without it answer 401.
func actorOf(c echo.Context) (user.Actor, bool, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return user.Actor{}, false, c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}
	return a, true, nil
}

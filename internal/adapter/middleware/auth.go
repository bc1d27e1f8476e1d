package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"underwriting-backend/internal/domain/user"
	"underwriting-backend/internal/infrastructure/token"
)

const actorKey = "actor"

type TokenParser interface {
	Parse(tokenString string) (user.Actor, error)
}

// JWTAuth resolves the bearer token into a user.Actor stored on the context.
func JWTAuth(p TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, tok, ok := strings.Cut(raw, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			actor, err := p.Parse(strings.TrimSpace(tok))
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, token.ErrExpiredToken) {
					msg = "token expired"
				}
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg})
			}
			SetActor(c, actor)
			return next(c)
		}
	}
}

func SetActor(c echo.Context, a user.Actor) { c.Set(actorKey, a) }

func ActorFrom(c echo.Context) (user.Actor, bool) {
	a, ok := c.Get(actorKey).(user.Actor)
	return a, ok
}

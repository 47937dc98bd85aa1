package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamhub/gatekeeper/internal/api/middleware"
	"github.com/teamhub/gatekeeper/internal/core/domain"
)

// ctxSession extracts the session record placed by the Session middleware
// and fast-fails before any service call: a missing record means the request
// reached an authenticated handler without a live session, so reject with
// 401 rather than proceed with no identity.
func ctxSession(c echo.Context) (*domain.Session, error) {
	session, ok := middleware.SessionFromContext(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return session, nil
}

package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/schedsense/booking"
)

type ListSessionsResponse struct {
	SessionIDs []string `json:"session_ids"`
}

func (s *APIV1Service) ListSessions(c echo.Context) error {
	ids, err := s.Agent.Sessions().Backend().ListIDs(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list sessions")
	}
	if ids == nil {
		ids = []string{}
	}
	return c.JSON(http.StatusOK, ListSessionsResponse{SessionIDs: ids})
}

func (s *APIV1Service) GetSession(c echo.Context) error {
	id := c.Param("id")
	session, err := s.Agent.Sessions().Backend().Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, booking.ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load session")
	}
	return c.JSON(http.StatusOK, session)
}

func (s *APIV1Service) DeleteSession(c echo.Context) error {
	id := c.Param("id")
	if err := s.Agent.Sessions().Remove(c.Request().Context(), id); err != nil {
		if errors.Is(err, booking.ErrSessionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete session")
	}
	return c.NoContent(http.StatusNoContent)
}

package v1

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hrygo/schedsense/booking"
)

type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	SessionID string              `json:"session_id"`
	Turn      *booking.TurnResult `json:"turn"`
}

// Chat processes one conversation turn. A missing session_id starts a new
// conversation under a generated identifier, which the response echoes
// back for the client to reuse.
func (s *APIV1Service) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Message) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	turn, err := s.Agent.ProcessMessage(c.Request().Context(), req.SessionID, req.Message)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to process message")
	}
	return c.JSON(http.StatusOK, ChatResponse{
		SessionID: req.SessionID,
		Turn:      turn,
	})
}

// Package v1 implements the versioned JSON API. Handlers return the
// booking core's structured turn records; prose composition is a client
// concern.
package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/hrygo/schedsense/booking"
	"github.com/hrygo/schedsense/calendar"
	"github.com/hrygo/schedsense/internal/profile"
)

type APIV1Service struct {
	Profile  *profile.Profile
	Agent    *booking.Agent
	Engine   *calendar.Engine
	Provider calendar.Provider
}

func NewAPIV1Service(p *profile.Profile, agent *booking.Agent, engine *calendar.Engine, provider calendar.Provider) *APIV1Service {
	return &APIV1Service{
		Profile:  p,
		Agent:    agent,
		Engine:   engine,
		Provider: provider,
	}
}

// RegisterRoutes mounts the API under /api/v1.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")

	g.POST("/chat", s.Chat)
	g.POST("/availability", s.Availability)
	g.POST("/bookings", s.CreateBooking)
	g.GET("/sessions", s.ListSessions)
	g.GET("/sessions/:id", s.GetSession)
	g.DELETE("/sessions/:id", s.DeleteSession)
	g.GET("/events", s.ListEvents)
}

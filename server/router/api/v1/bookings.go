package v1

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/schedsense/calendar"
)

type CreateBookingRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Date            string `json:"date"`  // YYYY-MM-DD
	Start           string `json:"start"` // HH:MM, 24-hour
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	AttendeeContact string `json:"attendee_contact,omitempty"`
}

type CreateBookingResponse struct {
	EventID string    `json:"event_id"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// CreateBooking books an event directly, bypassing the conversational
// flow. Used by clients that already know the exact time.
func (s *APIV1Service) CreateBooking(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Date == "" || req.Start == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date and start are required")
	}

	loc := s.Engine.Location()
	start, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Start, loc)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD and start HH:MM")
	}
	minutes := req.DurationMinutes
	if minutes <= 0 {
		minutes = s.Profile.DefaultDurationMinutes
	}
	end := start.Add(time.Duration(minutes) * time.Minute)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Meeting"
	}

	eventID, err := s.Provider.CreateEvent(c.Request().Context(), calendar.CreateEventRequest{
		Title:       title,
		Description: req.Description,
		Attendee:    req.AttendeeContact,
		CalendarID:  s.Profile.CalendarID,
		Start:       start,
		End:         end,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "calendar unavailable, try again")
	}

	return c.JSON(http.StatusCreated, CreateBookingResponse{
		EventID: eventID,
		Start:   start,
		End:     end,
	})
}

type ListEventsResponse struct {
	Events []calendar.Event `json:"events"`
}

// ListEvents returns upcoming events, soonest first.
func (s *APIV1Service) ListEvents(c echo.Context) error {
	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	events, err := s.Provider.ListUpcomingEvents(c.Request().Context(), time.Now(), limit, s.Profile.CalendarID)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "calendar unavailable, try again")
	}
	return c.JSON(http.StatusOK, ListEventsResponse{Events: events})
}

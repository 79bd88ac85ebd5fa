package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/schedsense/calendar"
)

type AvailabilityRequest struct {
	Date            string `json:"date"` // YYYY-MM-DD
	Days            int    `json:"days,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

type AvailabilityResponse struct {
	Date  string          `json:"date"`
	Slots []calendar.Slot `json:"slots"`
}

// Availability computes bookable slots starting at the requested date,
// bypassing the conversational flow.
func (s *APIV1Service) Availability(c echo.Context) error {
	var req AvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	loc := s.Engine.Location()
	start := time.Now().In(loc)
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, loc)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		start = parsed
	}
	days := req.Days
	if days <= 0 {
		days = 7
	}
	duration := time.Duration(req.DurationMinutes) * time.Minute
	if duration <= 0 {
		duration = time.Duration(s.Profile.DefaultDurationMinutes) * time.Minute
	}

	rangeStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	// The engine treats the range end day as inclusive.
	rangeEnd := rangeStart.AddDate(0, 0, days-1)

	busy, err := s.Provider.FindBusyIntervals(c.Request().Context(), rangeStart, rangeEnd.AddDate(0, 0, 1), s.Profile.CalendarID)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "calendar unavailable, try again")
	}

	slots := s.Engine.FindSlots(rangeStart, rangeEnd, duration, calendar.BucketByDay(busy, loc))
	return c.JSON(http.StatusOK, AvailabilityResponse{
		Date:  rangeStart.Format("2006-01-02"),
		Slots: slots,
	})
}

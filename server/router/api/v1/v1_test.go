package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/schedsense/booking"
	"github.com/hrygo/schedsense/calendar"
	"github.com/hrygo/schedsense/internal/profile"
	"github.com/hrygo/schedsense/nlu"
)

func newTestService(t *testing.T) (*APIV1Service, *echo.Echo, *calendar.Simulator) {
	t.Helper()
	p := &profile.Profile{Mode: "dev", Port: 28090, Driver: "memory"}
	p.FromEnv()
	p.Timezone = "UTC"

	logger := slog.Default()
	engine := calendar.NewEngine(time.UTC)
	sim := calendar.NewSimulator(time.UTC)
	machine := booking.NewMachine(engine, sim, booking.MachineConfig{CalendarID: p.CalendarID}, logger)
	sessions := booking.NewSessionManager(booking.NewMemoryBackend(), logger)
	understander := nlu.NewRuleUnderstander()
	agent := booking.NewAgent(sessions, understander, understander, booking.NewNormalizer(time.UTC), machine, nil, logger)

	svc := NewAPIV1Service(p, agent, engine, sim)
	e := echo.New()
	svc.RegisterRoutes(e)
	return svc, e, sim
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestChat_MissingMessage(t *testing.T) {
	_, e, _ := newTestService(t)
	rec := postJSON(e, "/api/v1/chat", `{"session_id": "s1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_GeneratesSessionID(t *testing.T) {
	_, e, _ := newTestService(t)
	rec := postJSON(e, "/api/v1/chat", `{"message": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	require.NotNil(t, resp.Turn)
	assert.Equal(t, booking.StateCollectingInfo, resp.Turn.State)
	assert.Equal(t, booking.PromptGreeting, resp.Turn.Prompt)
}

func TestChat_ConversationAdvances(t *testing.T) {
	_, e, _ := newTestService(t)

	rec := postJSON(e, "/api/v1/chat", `{"session_id": "s1", "message": "book a meeting on monday"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, booking.StateShowingSlots, resp.Turn.State)
	assert.NotEmpty(t, resp.Turn.Slots)
}

func TestSessions_GetAndDelete(t *testing.T) {
	_, e, _ := newTestService(t)

	rec := postJSON(e, "/api/v1/chat", `{"session_id": "s1", "message": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1", nil)
	getRec := httptest.NewRecorder()
	e.ServeHTTP(getRec, req)
	assert.Equal(t, http.StatusOK, getRec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/unknown", nil)
	getRec = httptest.NewRecorder()
	e.ServeHTTP(getRec, req)
	assert.Equal(t, http.StatusNotFound, getRec.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/s1", nil)
	delRec := httptest.NewRecorder()
	e.ServeHTTP(delRec, req)
	assert.Equal(t, http.StatusNoContent, delRec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1", nil)
	getRec = httptest.NewRecorder()
	e.ServeHTTP(getRec, req)
	assert.Equal(t, http.StatusNotFound, getRec.Code)
}

func TestAvailability(t *testing.T) {
	_, e, _ := newTestService(t)

	rec := postJSON(e, "/api/v1/availability", `{"date": "2026-09-07", "days": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Slots)
	for _, slot := range resp.Slots {
		assert.Equal(t, "2026-09-07", slot.Date)
	}

	rec = postJSON(e, "/api/v1/availability", `{"date": "not-a-date"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAvailability_ProviderDown(t *testing.T) {
	_, e, sim := newTestService(t)
	sim.FailWith("find_busy", calendar.ErrProviderUnavailable)

	rec := postJSON(e, "/api/v1/availability", `{"date": "2026-09-07"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreateBooking(t *testing.T) {
	_, e, sim := newTestService(t)

	rec := postJSON(e, "/api/v1/bookings", `{"date": "2026-09-07", "start": "13:00", "title": "Interview"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, sim.EventCount())

	// Missing date.
	rec = postJSON(e, "/api/v1/bookings", `{"start": "13:00"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unparsable time.
	rec = postJSON(e, "/api/v1/bookings", `{"date": "2026-09-07", "start": "noonish"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

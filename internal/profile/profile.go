// Package profile holds the runtime configuration for the schedsense
// server, loaded from flags and SCHEDSENSE_* environment variables.
package profile

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Server
	Mode string // "prod", "dev", or "demo"
	Addr string
	Port int

	// Session persistence driver: "memory", "sqlite", or "postgres".
	Driver string
	DSN    string
	Data   string

	// Calendar backend: "store" (persisted events) or "simulated".
	CalendarBackend string
	CalendarID      string

	// Scheduling knobs.
	Timezone               string
	WorkingHourStart       int
	WorkingHourEnd         int
	NonWorkingDays         []time.Weekday
	DefaultDurationMinutes int
	MaxSlotsReturned       int
	MaxSlotsDisplayed      int

	// Session lifecycle.
	SessionTimeout  time.Duration
	CleanupInterval time.Duration

	// Language understanding. When the API key is empty the deterministic
	// rule matcher serves as the only understander.
	NLUProvider       string // openai, deepseek, siliconflow, ollama
	NLUModel          string
	NLUAPIKey         string
	NLUBaseURL        string
	NLUTimeoutSeconds int
	NLUMaxConcurrent  int

	Version string
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsNLUEnabled reports whether the LLM understander should be constructed.
func (p *Profile) IsNLUEnabled() bool {
	return p.NLUAPIKey != ""
}

// Location loads the configured time zone.
func (p *Profile) Location() (*time.Location, error) {
	return time.LoadLocation(p.Timezone)
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables. Values already
// set from flags are only overridden where the variable is present.
func (p *Profile) FromEnv() {
	p.CalendarBackend = getEnvOrDefault("SCHEDSENSE_CALENDAR_BACKEND", defaultString(p.CalendarBackend, "simulated"))
	p.CalendarID = getEnvOrDefault("SCHEDSENSE_CALENDAR_ID", defaultString(p.CalendarID, "primary"))

	p.Timezone = getEnvOrDefault("SCHEDSENSE_TIMEZONE", defaultString(p.Timezone, "America/New_York"))
	p.WorkingHourStart = getEnvOrDefaultInt("SCHEDSENSE_WORKING_HOUR_START", defaultInt(p.WorkingHourStart, 9))
	p.WorkingHourEnd = getEnvOrDefaultInt("SCHEDSENSE_WORKING_HOUR_END", defaultInt(p.WorkingHourEnd, 17))
	p.DefaultDurationMinutes = getEnvOrDefaultInt("SCHEDSENSE_DEFAULT_DURATION_MINUTES", defaultInt(p.DefaultDurationMinutes, 60))
	p.MaxSlotsReturned = getEnvOrDefaultInt("SCHEDSENSE_MAX_SLOTS", defaultInt(p.MaxSlotsReturned, 10))
	p.MaxSlotsDisplayed = getEnvOrDefaultInt("SCHEDSENSE_MAX_SLOTS_DISPLAYED", defaultInt(p.MaxSlotsDisplayed, 3))

	if p.NonWorkingDays == nil {
		p.NonWorkingDays = parseWeekdays(getEnvOrDefault("SCHEDSENSE_NON_WORKING_DAYS", "saturday,sunday"))
	}

	p.SessionTimeout = getEnvOrDefaultDuration("SCHEDSENSE_SESSION_TIMEOUT", defaultDuration(p.SessionTimeout, 24*time.Hour))
	p.CleanupInterval = getEnvOrDefaultDuration("SCHEDSENSE_CLEANUP_INTERVAL", defaultDuration(p.CleanupInterval, time.Hour))

	p.NLUProvider = getEnvOrDefault("SCHEDSENSE_NLU_PROVIDER", defaultString(p.NLUProvider, "openai"))
	p.NLUModel = getEnvOrDefault("SCHEDSENSE_NLU_MODEL", p.NLUModel)
	p.NLUAPIKey = getEnvOrDefault("SCHEDSENSE_NLU_API_KEY", p.NLUAPIKey)
	p.NLUBaseURL = getEnvOrDefault("SCHEDSENSE_NLU_BASE_URL", p.NLUBaseURL)
	p.NLUTimeoutSeconds = getEnvOrDefaultInt("SCHEDSENSE_NLU_TIMEOUT_SECONDS", defaultInt(p.NLUTimeoutSeconds, 30))
	p.NLUMaxConcurrent = getEnvOrDefaultInt("SCHEDSENSE_NLU_MAX_CONCURRENT", defaultInt(p.NLUMaxConcurrent, 8))
}

// Validate checks the profile for contradictory or unusable settings.
func (p *Profile) Validate() error {
	if p.Mode != "prod" && p.Mode != "dev" && p.Mode != "demo" {
		return errors.Errorf("invalid mode %q", p.Mode)
	}
	if p.Port <= 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}

	switch p.Driver {
	case "memory":
	case "sqlite", "postgres":
		if p.DSN == "" {
			return errors.Errorf("driver %q requires a DSN", p.Driver)
		}
	default:
		return errors.Errorf("invalid driver %q", p.Driver)
	}

	if p.CalendarBackend != "store" && p.CalendarBackend != "simulated" {
		return errors.Errorf("invalid calendar backend %q", p.CalendarBackend)
	}
	if p.CalendarBackend == "store" && p.Driver == "memory" {
		return errors.New("calendar backend \"store\" requires a sqlite or postgres driver")
	}

	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return errors.Wrapf(err, "invalid timezone %q", p.Timezone)
	}
	if p.WorkingHourStart < 0 || p.WorkingHourEnd > 24 || p.WorkingHourStart >= p.WorkingHourEnd {
		return errors.Errorf("invalid working hours %d-%d", p.WorkingHourStart, p.WorkingHourEnd)
	}
	if p.DefaultDurationMinutes < 1 {
		return errors.Errorf("invalid default duration %d", p.DefaultDurationMinutes)
	}
	if p.MaxSlotsReturned < 1 || p.MaxSlotsDisplayed < 1 || p.MaxSlotsDisplayed > p.MaxSlotsReturned {
		return errors.Errorf("invalid slot limits returned=%d displayed=%d", p.MaxSlotsReturned, p.MaxSlotsDisplayed)
	}
	if p.SessionTimeout <= 0 {
		return errors.Errorf("invalid session timeout %s", p.SessionTimeout)
	}
	return nil
}

// parseWeekdays parses a comma-separated weekday list, ignoring unknown
// names. An empty result means every day is schedulable.
func parseWeekdays(s string) []time.Weekday {
	names := map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday,
		"friday": time.Friday, "saturday": time.Saturday,
	}
	var out []time.Weekday
	for _, part := range strings.Split(s, ",") {
		if d, ok := names[strings.ToLower(strings.TrimSpace(part))]; ok {
			out = append(out, d)
		}
	}
	return out
}

func defaultString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func defaultInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func defaultDuration(v, def time.Duration) time.Duration {
	if v != 0 {
		return v
	}
	return def
}

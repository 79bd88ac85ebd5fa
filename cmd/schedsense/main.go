package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/schedsense/booking"
	"github.com/hrygo/schedsense/calendar"
	"github.com/hrygo/schedsense/internal/profile"
	"github.com/hrygo/schedsense/internal/version"
	"github.com/hrygo/schedsense/metrics"
	"github.com/hrygo/schedsense/nlu"
	"github.com/hrygo/schedsense/server"
	"github.com/hrygo/schedsense/store"
	"github.com/hrygo/schedsense/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "schedsense",
	Short: `A conversational meeting-booking service. Negotiates a meeting time over chat and books it against a calendar.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Try to load .env from the current directory; absence is fine.
		_ = godotenv.Load()
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode:            viper.GetString("mode"),
			Addr:            viper.GetString("addr"),
			Port:            viper.GetInt("port"),
			Driver:          viper.GetString("driver"),
			DSN:             viper.GetString("dsn"),
			Data:            viper.GetString("data"),
			CalendarBackend: viper.GetString("calendar-backend"),
			Version:         version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
			os.Exit(1)
		}

		logger := newLogger(instanceProfile)
		slog.SetDefault(logger)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		s, cleanup, err := assemble(ctx, instanceProfile, logger)
		if err != nil {
			logger.Error("failed to assemble server", "error", err)
			os.Exit(1)
		}
		defer cleanup()

		c := make(chan os.Signal, 1)
		// SIGTERM is the graceful shutdown signal for most process
		// managers (systemd, kubernetes).
		signal.Notify(c, terminationSignals...)

		go func() {
			<-c
			if err := s.Shutdown(ctx); err != nil {
				logger.Error("shutdown failed", "error", err)
			}
			cancel()
		}()

		printGreetings(instanceProfile)

		if err := s.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited", "error", err)
			cancel()
		}

		<-ctx.Done()
	},
}

// assemble wires the booking core: store, calendar provider, language
// understanding, state machine, agent, metrics, and the HTTP server. The
// returned func releases held resources.
func assemble(ctx context.Context, p *profile.Profile, logger *slog.Logger) (*server.Server, func(), error) {
	loc, err := p.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("load timezone %q: %w", p.Timezone, err)
	}

	engine := calendar.NewEngine(loc,
		calendar.WithWorkingHours(p.WorkingHourStart, p.WorkingHourEnd),
		calendar.WithNonWorkingDays(p.NonWorkingDays...),
		calendar.WithMaxSlots(p.MaxSlotsReturned),
	)

	cleanupFns := []func(){}
	release := func() {
		for i := len(cleanupFns) - 1; i >= 0; i-- {
			cleanupFns[i]()
		}
	}

	var backend booking.SessionBackend = booking.NewMemoryBackend()
	var provider calendar.Provider = calendar.NewSimulator(loc)

	if p.Driver != "memory" {
		dbDriver, err := db.NewDBDriver(p)
		if err != nil {
			return nil, nil, fmt.Errorf("create db driver: %w", err)
		}
		storeInstance := store.New(dbDriver, p)
		cleanupFns = append(cleanupFns, func() {
			if err := storeInstance.Close(); err != nil {
				logger.Warn("failed to close store", "error", err)
			}
		})
		if err := storeInstance.Migrate(ctx); err != nil {
			release()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		backend = store.NewSessionBackend(storeInstance)
		if p.CalendarBackend == "store" {
			provider = store.NewCalendarProvider(storeInstance, 50, logger)
		}
	}

	sessions := booking.NewSessionManager(backend, logger)
	cleanupJob := booking.NewCleanupJob(sessions, booking.CleanupConfig{
		SessionTimeout:  p.SessionTimeout,
		CleanupInterval: p.CleanupInterval,
	}, logger)

	ruleMatcher := nlu.NewRuleUnderstander()
	var understander booking.Understander = ruleMatcher
	if p.IsNLUEnabled() {
		llm, err := nlu.NewLLMUnderstander(nlu.Config{
			Provider:      p.NLUProvider,
			Model:         p.NLUModel,
			APIKey:        p.NLUAPIKey,
			BaseURL:       p.NLUBaseURL,
			Timeout:       p.NLUTimeoutSeconds,
			MaxConcurrent: int64(p.NLUMaxConcurrent),
		}, logger)
		if err != nil {
			logger.Warn("LLM understander unavailable, using rule matcher", "error", err)
		} else {
			understander = llm
			logger.Info("LLM understander initialized",
				"provider", p.NLUProvider, "model", p.NLUModel)
		}
	}

	exporter := metrics.NewExporter(metrics.DefaultConfig())

	machine := booking.NewMachine(engine, provider, booking.MachineConfig{
		CalendarID:             p.CalendarID,
		DefaultDurationMinutes: p.DefaultDurationMinutes,
		MaxSlotsDisplayed:      p.MaxSlotsDisplayed,
	}, logger)

	agent := booking.NewAgent(sessions, understander, ruleMatcher, booking.NewNormalizer(loc), machine, exporter, logger)

	s := server.New(p, agent, engine, provider, cleanupJob, exporter, logger)
	return s, release, nil
}

func newLogger(p *profile.Profile) *slog.Logger {
	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "memory")
	viper.SetDefault("calendar-backend", "simulated")
	viper.SetDefault("port", 28090)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 28090, "port of server")
	rootCmd.PersistentFlags().String("driver", "memory", "session persistence driver (memory, sqlite, postgres)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("calendar-backend", "simulated", "calendar backend (store, simulated)")

	for _, flag := range []string{"mode", "addr", "port", "driver", "dsn", "data", "calendar-backend"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("schedsense")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(p *profile.Profile) {
	fmt.Printf("schedsense %s started\n", p.Version)
	fmt.Printf("Mode: %s\n", p.Mode)
	fmt.Printf("Session driver: %s\n", p.Driver)
	fmt.Printf("Calendar backend: %s\n", p.CalendarBackend)
	if len(p.Addr) == 0 {
		fmt.Printf("Listening on port %d\n", p.Port)
	} else {
		fmt.Printf("Listening on %s:%d\n", p.Addr, p.Port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}

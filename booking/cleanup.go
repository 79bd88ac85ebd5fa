package booking

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultSessionTimeout  = 24 * time.Hour
	DefaultCleanupInterval = 1 * time.Hour
)

// CleanupConfig tunes the background expiry sweep.
type CleanupConfig struct {
	// SessionTimeout is the idle time after which a session is discarded.
	SessionTimeout time.Duration
	// CleanupInterval is how often the sweep runs.
	CleanupInterval time.Duration
}

func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		SessionTimeout:  DefaultSessionTimeout,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// CleanupJob periodically removes idle sessions. Removal goes through the
// session manager, so a sweep never races an in-flight turn on the same id.
type CleanupJob struct {
	sessions *SessionManager
	config   CleanupConfig
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewCleanupJob(sessions *SessionManager, config CleanupConfig, logger *slog.Logger) *CleanupJob {
	if config.SessionTimeout <= 0 {
		config.SessionTimeout = DefaultSessionTimeout
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCleanupInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupJob{
		sessions: sessions,
		config:   config,
		logger:   logger,
	}
}

// Start launches the sweep loop. Calling Start on a running job is a no-op.
func (j *CleanupJob) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return nil
	}
	j.running = true
	j.stopCh = make(chan struct{})

	go j.run(ctx, j.stopCh)
	j.logger.Info("session cleanup started",
		"timeout", j.config.SessionTimeout,
		"interval", j.config.CleanupInterval)
	return nil
}

// Stop halts the sweep loop. Safe to call multiple times.
func (j *CleanupJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.running {
		return
	}
	close(j.stopCh)
	j.running = false
}

func (j *CleanupJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *CleanupJob) run(ctx context.Context, stopCh chan struct{}) {
	ticker := time.NewTicker(j.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.markStopped()
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if deleted, err := j.RunOnce(ctx); err != nil {
				j.logger.Error("session cleanup failed", "error", err)
			} else if deleted > 0 {
				j.logger.Info("session cleanup removed sessions", "count", deleted)
			}
		}
	}
}

func (j *CleanupJob) markStopped() {
	j.mu.Lock()
	j.running = false
	j.mu.Unlock()
}

// RunOnce performs a single sweep and returns the number of sessions removed.
// The expiry listing is advisory; each session is re-checked under its lock,
// so one refreshed by a concurrent turn survives the sweep.
func (j *CleanupJob) RunOnce(ctx context.Context) (int64, error) {
	now := time.Now()
	ids, err := j.sessions.Backend().ListExpired(ctx, now, j.config.SessionTimeout)
	if err != nil {
		return 0, err
	}
	var deleted int64
	for _, id := range ids {
		removed, err := j.sessions.RemoveExpired(ctx, id, now, j.config.SessionTimeout)
		if err != nil {
			j.logger.Warn("failed to remove expired session", "session_id", id, "error", err)
			continue
		}
		if removed {
			deleted++
		}
	}
	return deleted, nil
}

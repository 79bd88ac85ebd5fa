package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCleanupConfig(t *testing.T) {
	cfg := DefaultCleanupConfig()
	assert.Equal(t, DefaultSessionTimeout, cfg.SessionTimeout)
	assert.Equal(t, DefaultCleanupInterval, cfg.CleanupInterval)
}

func TestNewCleanupJob_ClampsZeroConfig(t *testing.T) {
	sm := NewSessionManager(NewMemoryBackend(), nil)
	job := NewCleanupJob(sm, CleanupConfig{}, nil)
	assert.Equal(t, DefaultSessionTimeout, job.config.SessionTimeout)
	assert.Equal(t, DefaultCleanupInterval, job.config.CleanupInterval)
}

func TestCleanupJob_RunOnceRemovesOnlyExpired(t *testing.T) {
	ctx := context.Background()
	sm := NewSessionManager(NewMemoryBackend(), nil)
	now := time.Now()

	stale := NewSession("stale", now.Add(-2*time.Hour))
	fresh := NewSession("fresh", now.Add(-time.Minute))
	require.NoError(t, sm.Backend().Save(ctx, stale))
	require.NoError(t, sm.Backend().Save(ctx, fresh))

	job := NewCleanupJob(sm, CleanupConfig{SessionTimeout: time.Hour}, nil)
	deleted, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = sm.Backend().Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = sm.Backend().Get(ctx, "fresh")
	assert.NoError(t, err)
}

// overreportingBackend lists every session as expired, standing in for a
// backend whose expiry snapshot is stale by the time the sweep acts on it.
type overreportingBackend struct {
	*MemoryBackend
}

func (b *overreportingBackend) ListExpired(ctx context.Context, _ time.Time, _ time.Duration) ([]string, error) {
	return b.ListIDs(ctx)
}

func TestCleanupJob_RunOnceKeepsRefreshedSession(t *testing.T) {
	ctx := context.Background()
	backend := &overreportingBackend{MemoryBackend: NewMemoryBackend()}
	sm := NewSessionManager(backend, nil)
	now := time.Now()

	stale := NewSession("stale", now.Add(-2*time.Hour))
	refreshed := NewSession("refreshed", now.Add(-time.Minute))
	require.NoError(t, sm.Backend().Save(ctx, stale))
	require.NoError(t, sm.Backend().Save(ctx, refreshed))

	job := NewCleanupJob(sm, CleanupConfig{SessionTimeout: time.Hour}, nil)
	deleted, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// The listing named both ids, but only the genuinely idle session goes.
	_, err = sm.Backend().Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = sm.Backend().Get(ctx, "refreshed")
	assert.NoError(t, err)
}

func TestCleanupJob_StartStop(t *testing.T) {
	ctx := context.Background()
	sm := NewSessionManager(NewMemoryBackend(), nil)
	job := NewCleanupJob(sm, CleanupConfig{CleanupInterval: 10 * time.Millisecond}, nil)

	require.NoError(t, job.Start(ctx))
	assert.True(t, job.IsRunning())

	// Starting twice is a no-op.
	require.NoError(t, job.Start(ctx))
	assert.True(t, job.IsRunning())

	job.Stop()
	assert.False(t, job.IsRunning())

	// Stopping again must not panic.
	job.Stop()
}

func TestCleanupJob_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sm := NewSessionManager(NewMemoryBackend(), nil)
	job := NewCleanupJob(sm, CleanupConfig{CleanupInterval: 5 * time.Millisecond}, nil)

	require.NoError(t, job.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool {
		return !job.IsRunning()
	}, time.Second, 10*time.Millisecond)
}

func TestCleanupJob_SweepRemovesExpiredSessions(t *testing.T) {
	ctx := context.Background()
	sm := NewSessionManager(NewMemoryBackend(), nil)
	stale := NewSession("stale", time.Now().Add(-2*time.Hour))
	require.NoError(t, sm.Backend().Save(ctx, stale))

	job := NewCleanupJob(sm, CleanupConfig{
		SessionTimeout:  time.Hour,
		CleanupInterval: 5 * time.Millisecond,
	}, nil)
	require.NoError(t, job.Start(ctx))
	defer job.Stop()

	assert.Eventually(t, func() bool {
		_, err := sm.Backend().Get(ctx, "stale")
		return err == ErrSessionNotFound
	}, time.Second, 10*time.Millisecond)
}

package di

import (
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/aligner/internal/config"
	"github.com/listenupapp/aligner/internal/di/providers"
	"github.com/listenupapp/aligner/internal/service"
)

func TestBootstrap_WiresServices(t *testing.T) {
	t.Setenv("SERVER_PORT", "0")

	injector := NewContainer([]string{
		"-env-file", "does-not-exist.env",
		"-seed", "42",
		"-rate-limit", "0",
	})
	require.NoError(t, Bootstrap(injector))
	t.Cleanup(func() {
		report := injector.Shutdown()
		assert.True(t, report.Succeed)
	})

	cfg := do.MustInvoke[*config.Config](injector)
	assert.True(t, cfg.Aligner.Seeded)
	assert.Equal(t, uint64(42), cfg.Aligner.Seed)

	limiter := do.MustInvoke[*providers.RateLimiterHandle](injector)
	assert.Nil(t, limiter.Limiter)

	inbox := do.MustInvoke[*providers.InboxWatcherHandle](injector)
	assert.Nil(t, inbox.Watcher)

	sessions := do.MustInvoke[*service.SessionService](injector)
	session, err := sessions.CreateSession(t.Context())
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	injector := NewContainer([]string{"-env-file", "does-not-exist.env", "-env", "nowhere"})
	assert.Error(t, Bootstrap(injector))
}

func TestBootstrap_InboxWatcher(t *testing.T) {
	t.Setenv("SERVER_PORT", "0")
	inbox := t.TempDir()

	injector := NewContainer([]string{
		"-env-file", "does-not-exist.env",
		"-watch", "true",
		"-watch-inbox", inbox,
	})
	require.NoError(t, Bootstrap(injector))

	handle := do.MustInvoke[*providers.InboxWatcherHandle](injector)
	assert.NotNil(t, handle.Watcher)

	report := injector.Shutdown()
	assert.True(t, report.Succeed)
	assert.Empty(t, report.Errors)
}

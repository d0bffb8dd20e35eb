package instance

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// socketPath keeps the path short; unix socket paths are limited to ~100 bytes.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "wl")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "i.sock")
}

func TestAcquire_SecondLaunchShowsPrimary(t *testing.T) {
	ctx := context.Background()
	path := socketPath(t)

	var shows atomic.Int32
	primary, err := AcquireAt(ctx, path, func() { shows.Add(1) }, nil)
	require.NoError(t, err)
	defer primary.Close()

	second, err := AcquireAt(ctx, path, nil, nil)
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.Nil(t, second)

	assert.Eventually(t, func() bool { return shows.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, primary.Received())
}

func TestAcquire_StaleSocket(t *testing.T) {
	ctx := context.Background()
	path := socketPath(t)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	g, err := AcquireAt(ctx, path, nil, nil)
	require.NoError(t, err)
	require.NoError(t, g.Close())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "socket removed on close")

	g, err = AcquireAt(ctx, path, nil, nil)
	require.NoError(t, err, "can reacquire after close")
	require.NoError(t, g.Close())
}

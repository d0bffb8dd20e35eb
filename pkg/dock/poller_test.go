package dock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShell struct {
	mu      sync.Mutex
	in      Input
	err     error
	applied []Result
}

func (s *fakeShell) Geometry() (Input, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.in, s.err
}

func (s *fakeShell) Apply(r Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applied = append(s.applied, r)
	if !r.Intent.None() {
		s.in.Window = s.in.Window.At(r.Intent.To)
	}
}

func (s *fakeShell) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.applied)
}

func TestPoller_Step(t *testing.T) {
	shell := &fakeShell{in: Input{Window: Rect{X: 5, Y: 200, W: 300, H: 500}, Screen: screen}}
	p := NewPoller(NewController(DefaultConfig()), shell)

	res := p.Step()
	assert.Equal(t, IntentHide, res.Intent.Kind)
	require.Equal(t, 1, shell.count())

	shell.err = errors.New("window gone")
	res = p.Step()
	assert.True(t, res.Skipped)
	assert.True(t, res.Hidden)
	assert.Equal(t, 1, shell.count(), "skipped ticks are not applied")
}

func TestPoller_Run(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PollInterval = 5 * time.Millisecond
	shell := &fakeShell{in: Input{Window: Rect{X: 5, Y: 200, W: 300, H: 500}, Screen: screen}}
	p := NewPoller(NewController(cfg), shell)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, p.Start(ctx))
	assert.Error(t, p.Start(ctx), "second start is rejected")

	assert.Eventually(t, func() bool { return shell.count() >= 3 }, 2*time.Second, 5*time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, p.Stop(stopCtx))
}

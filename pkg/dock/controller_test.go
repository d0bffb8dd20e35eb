package dock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var screen = Rect{X: 0, Y: 0, W: 1920, H: 1040}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		win  Rect
		want State
	}{
		{"top wins over left", Rect{X: 0, Y: 5, W: 300, H: 500}, StateTop},
		{"left", Rect{X: 5, Y: 100, W: 300, H: 500}, StateLeft},
		{"right", Rect{X: 1610, Y: 100, W: 300, H: 500}, StateRight},
		{"normal", Rect{X: 500, Y: 100, W: 300, H: 500}, StateNormal},
		{"exactly at margin is not docked", Rect{X: 20, Y: 20, W: 300, H: 500}, StateNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.win, screen, 20))
		})
	}
}

func TestController_HideAndShowLeft(t *testing.T) {
	c := NewController(DefaultConfig())
	win := Rect{X: screen.X + 5, Y: 200, W: 300, H: 500}

	res := c.Tick(Input{Window: win, Screen: screen})
	assert.Equal(t, StateLeft, res.State)
	assert.True(t, res.Hidden)
	require.Equal(t, IntentHide, res.Intent.Kind)
	assert.Equal(t, Point{X: -260, Y: 200}, res.Intent.To)
	assert.Equal(t, 300*time.Millisecond, res.Intent.Duration)
	assert.Equal(t, Rect{X: 300 - 5 - 56, Y: (500 - 56) / 2, W: 56, H: 56}, res.Indicator)

	hiddenWin := win.At(res.Intent.To)
	res = c.Tick(Input{Window: hiddenWin, Screen: screen})
	assert.True(t, res.Hidden)
	assert.True(t, res.Intent.None(), "already hidden, nothing to do")

	res = c.Tick(Input{Window: hiddenWin, Screen: screen, PointerOver: true})
	assert.False(t, res.Hidden)
	require.Equal(t, IntentShow, res.Intent.Kind)
	assert.Equal(t, Point{X: 0, Y: 200}, res.Intent.To)
	assert.Equal(t, Rect{}, res.Indicator)
}

func TestController_Edges(t *testing.T) {
	c := NewController(DefaultConfig())

	res := c.Tick(Input{Window: Rect{X: 700, Y: 3, W: 300, H: 500}, Screen: screen})
	require.Equal(t, IntentHide, res.Intent.Kind)
	assert.Equal(t, Point{X: 700, Y: -460}, res.Intent.To)
	assert.Equal(t, Rect{X: (300 - 56) / 2, Y: 500 - 5 - 56, W: 56, H: 56}, res.Indicator)

	c = NewController(DefaultConfig())
	res = c.Tick(Input{Window: Rect{X: 1615, Y: 300, W: 300, H: 500}, Screen: screen})
	require.Equal(t, IntentHide, res.Intent.Kind)
	assert.Equal(t, Point{X: 1880, Y: 300}, res.Intent.To)
	assert.Equal(t, Rect{X: 5, Y: (500 - 56) / 2, W: 56, H: 56}, res.Indicator)

	res = c.Tick(Input{Window: Rect{X: 1880, Y: 300, W: 300, H: 500}, Screen: screen, PointerOver: true})
	require.Equal(t, IntentShow, res.Intent.Kind)
	assert.Equal(t, Point{X: 1620, Y: 300}, res.Intent.To)
}

func TestController_FocusedWindowStays(t *testing.T) {
	c := NewController(DefaultConfig())
	res := c.Tick(Input{Window: Rect{X: 5, Y: 200, W: 300, H: 500}, Screen: screen, Focused: true})
	assert.Equal(t, StateLeft, res.State)
	assert.False(t, res.Hidden)
	assert.True(t, res.Intent.None())
}

func TestController_NormalForcesVisible(t *testing.T) {
	c := NewController(DefaultConfig())
	res := c.Tick(Input{Window: Rect{X: 5, Y: 200, W: 300, H: 500}, Screen: screen})
	require.True(t, res.Hidden)

	res = c.Tick(Input{Window: Rect{X: 600, Y: 200, W: 300, H: 500}, Screen: screen})
	assert.Equal(t, StateNormal, res.State)
	assert.False(t, res.Hidden)
	assert.True(t, res.Intent.None())
}

func TestController_SkippedTicks(t *testing.T) {
	docked := Rect{X: 5, Y: 200, W: 300, H: 500}

	t.Run("Dragging", func(t *testing.T) {
		c := NewController(DefaultConfig())
		c.OnDragStart()
		res := c.Tick(Input{Window: docked, Screen: screen})
		assert.True(t, res.Skipped)
		assert.Equal(t, StateNormal, res.State)
		assert.False(t, res.Hidden)

		c.OnDragEnd()
		res = c.Tick(Input{Window: docked, Screen: screen})
		assert.True(t, res.Hidden)
	})

	t.Run("Malformed geometry", func(t *testing.T) {
		c := NewController(DefaultConfig())
		res := c.Tick(Input{Window: Rect{X: 5, Y: 5, W: 0, H: 500}, Screen: screen})
		assert.True(t, res.Skipped)
		res = c.Tick(Input{Window: docked, Screen: Rect{}})
		assert.True(t, res.Skipped)
		assert.False(t, res.Hidden)
	})

	t.Run("Fullscreen and maximized", func(t *testing.T) {
		c := NewController(DefaultConfig())
		assert.True(t, c.Tick(Input{Window: docked, Screen: screen, FullScreen: true}).Skipped)
		assert.True(t, c.Tick(Input{Window: docked, Screen: screen, Maximized: true}).Skipped)
		state := c.State().(ControllerState)
		assert.Equal(t, 2, state.Skipped)
		assert.False(t, state.Hidden)
	})
}

func TestController_AutoHideDisabled(t *testing.T) {
	c := NewController(DefaultConfig())
	res := c.Tick(Input{Window: Rect{X: 5, Y: 200, W: 300, H: 500}, Screen: screen})
	require.True(t, res.Hidden)

	c.SetAutoHide(false)
	hidden := Rect{X: -260, Y: 200, W: 300, H: 500}
	res = c.Tick(Input{Window: hidden, Screen: screen})
	assert.False(t, res.Hidden)
	require.Equal(t, IntentShow, res.Intent.Kind)
	assert.Equal(t, Point{X: 0, Y: 200}, res.Intent.To)

	res = c.Tick(Input{Window: Rect{X: 0, Y: 200, W: 300, H: 500}, Screen: screen})
	assert.False(t, res.Hidden)
	assert.True(t, res.Intent.None())
}

func TestController_ShowRequested(t *testing.T) {
	c := NewController(DefaultConfig())
	res := c.Tick(Input{Window: Rect{X: 5, Y: 200, W: 300, H: 500}, Screen: screen})
	require.True(t, res.Hidden)

	c.NotifyShowRequested()
	res = c.Tick(Input{Window: Rect{X: -260, Y: 200, W: 300, H: 500}, Screen: screen})
	assert.True(t, res.Raise)
	assert.False(t, res.Hidden)
	assert.Equal(t, IntentShow, res.Intent.Kind)

	res = c.Tick(Input{Window: Rect{X: 0, Y: 200, W: 300, H: 500}, Screen: screen, Focused: true})
	assert.False(t, res.Raise, "request is consumed once")
}

func TestIntent_PositionAt(t *testing.T) {
	i := Intent{Kind: IntentHide, From: Point{X: 0, Y: 10}, To: Point{X: -100, Y: 10}}
	assert.Equal(t, Point{X: 0, Y: 10}, i.PositionAt(-1))
	assert.Equal(t, Point{X: -75, Y: 10}, i.PositionAt(0.5))
	assert.Equal(t, Point{X: -100, Y: 10}, i.PositionAt(2))
	assert.InDelta(t, 0.75, OutQuad(0.5), 1e-9)
}

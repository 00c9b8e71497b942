package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewport_ZoomClamps(t *testing.T) {
	v := NewViewport()

	in := v.Zoom(100, 0, 0)
	assert.Equal(t, MaxScale, in.Scale)

	out := v.Zoom(-100, 0, 0)
	assert.Equal(t, MinScale, out.Scale)
}

func TestViewport_ZoomStep(t *testing.T) {
	v := NewViewport().Zoom(1, 0, 0)
	assert.InDelta(t, 1.1, v.Scale, 1e-9)
	assert.Equal(t, 110, v.Percent())

	v = v.Zoom(-2, 0, 0)
	assert.InDelta(t, 0.9, v.Scale, 1e-9)
	assert.Equal(t, 90, v.Percent())
}

func TestViewport_ZoomKeepsCursorPointFixed(t *testing.T) {
	v := Viewport{Scale: 1.3, OffsetX: -40, OffsetY: 25}
	cx, cy := 420.0, 310.0

	// canvas point currently under the cursor
	px := (cx - v.OffsetX) / v.Scale
	py := (cy - v.OffsetY) / v.Scale

	for _, delta := range []float64{1, 3, -2, -10, 10} {
		z := v.Zoom(delta, cx, cy)
		sx, sy := z.ToScreen(px, py)
		assert.InDelta(t, cx, sx, 1e-9, "delta %v", delta)
		assert.InDelta(t, cy, sy, 1e-9, "delta %v", delta)
	}
}

func TestViewport_ZoomFromZeroValue(t *testing.T) {
	var v Viewport
	z := v.Zoom(0, 10, 10)
	assert.Equal(t, 1.0, z.Scale)
}

func TestViewport_PanAndReset(t *testing.T) {
	v := NewViewport().Pan(30, -12).Pan(5, 2)
	assert.Equal(t, 35.0, v.OffsetX)
	assert.Equal(t, -10.0, v.OffsetY)
	assert.Equal(t, 1.0, v.Scale)

	x, y := v.ToScreen(100, 100)
	assert.Equal(t, 135.0, x)
	assert.Equal(t, 90.0, y)

	assert.Equal(t, NewViewport(), v.Reset())
}

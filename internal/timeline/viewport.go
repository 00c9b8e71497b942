package timeline

import "math"

// Zoom limits and the scale change per wheel notch.
const (
	MinScale  = 0.5
	MaxScale  = 3.0
	ZoomStep  = 0.1
	unitScale = 1.0
)

// Viewport is the pan and zoom state of a timeline canvas. A point p on the
// canvas appears on screen at p*Scale + Offset.
type Viewport struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// NewViewport returns an unzoomed viewport at the origin.
func NewViewport() Viewport {
	return Viewport{Scale: unitScale}
}

// Zoom changes the scale by delta steps, clamped to [MinScale, MaxScale],
// keeping the canvas point under the screen position (cx, cy) fixed.
func (v Viewport) Zoom(delta, cx, cy float64) Viewport {
	scale := v.Scale
	if scale <= 0 {
		scale = unitScale
	}
	next := math.Max(MinScale, math.Min(MaxScale, scale+delta*ZoomStep))
	ratio := next / scale
	return Viewport{
		Scale:   next,
		OffsetX: cx - (cx-v.OffsetX)*ratio,
		OffsetY: cy - (cy-v.OffsetY)*ratio,
	}
}

// Pan shifts the viewport by a screen-space drag.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.OffsetX += dx
	v.OffsetY += dy
	return v
}

// Reset returns the viewport to unit scale at the origin.
func (v Viewport) Reset() Viewport {
	return NewViewport()
}

// ToScreen maps a canvas point to screen coordinates.
func (v Viewport) ToScreen(x, y float64) (float64, float64) {
	return x*v.Scale + v.OffsetX, y*v.Scale + v.OffsetY
}

// Percent is the scale as a whole percentage, as shown in the zoom indicator.
func (v Viewport) Percent() int {
	return int(math.Round(v.Scale * 100))
}

// Package timeline positions events on a two-dimensional canvas.
//
// Events are sorted along one axis and spread left to right at a fixed
// spacing. Each event drops into the first lane whose last card ends at
// least half a spacing before it; otherwise a new lane opens below.
// The package is pure math: no store access, no rendering.
package timeline

import (
	"cmp"
	"slices"
	"strings"

	"github.com/roach88/storyvault/internal/record"
)

// Options controls card geometry. Zero fields take the defaults.
type Options struct {
	CardWidth         float64 `json:"cardWidth"`
	CardHeight        float64 `json:"cardHeight"`
	HorizontalSpacing float64 `json:"horizontalSpacing"`
	VerticalSpacing   float64 `json:"verticalSpacing"`
	StartX            float64 `json:"startX"`
	StartY            float64 `json:"startY"`
}

// DefaultOptions is the canvas geometry used when a field is left zero.
var DefaultOptions = Options{
	CardWidth:         250,
	CardHeight:        120,
	HorizontalSpacing: 300,
	VerticalSpacing:   150,
	StartX:            50,
	StartY:            100,
}

func (o Options) withDefaults() Options {
	d := DefaultOptions
	if o.CardWidth > 0 {
		d.CardWidth = o.CardWidth
	}
	if o.CardHeight > 0 {
		d.CardHeight = o.CardHeight
	}
	if o.HorizontalSpacing > 0 {
		d.HorizontalSpacing = o.HorizontalSpacing
	}
	if o.VerticalSpacing > 0 {
		d.VerticalSpacing = o.VerticalSpacing
	}
	if o.StartX != 0 {
		d.StartX = o.StartX
	}
	if o.StartY != 0 {
		d.StartY = o.StartY
	}
	return d
}

// Placement is one event's card on the canvas.
type Placement struct {
	Event  record.Event `json:"event"`
	Lane   int          `json:"lane"`
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
}

// Right returns the x coordinate of the card's right edge.
func (p Placement) Right() float64 { return p.X + p.Width }

// Bottom returns the y coordinate of the card's bottom edge.
func (p Placement) Bottom() float64 { return p.Y + p.Height }

// Layout sorts events along axis and assigns each a lane and position.
// The input slice is not modified. Events with equal keys keep their input
// order. An unknown axis is treated as the world axis.
func Layout(events []record.Event, axis record.Axis, opts Options) []Placement {
	o := opts.withDefaults()
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, compareFor(axis))

	placements := make([]Placement, 0, len(sorted))
	var lanes []float64 // right edge of the last card in each lane
	for i, ev := range sorted {
		x := o.StartX + float64(i)*o.HorizontalSpacing
		lane := 0
		for lane < len(lanes) && lanes[lane] > x-o.HorizontalSpacing/2 {
			lane++
		}
		if lane == len(lanes) {
			lanes = append(lanes, 0)
		}
		lanes[lane] = x + o.CardWidth

		placements = append(placements, Placement{
			Event:  ev,
			Lane:   lane,
			X:      x,
			Y:      o.StartY + float64(lane)*o.VerticalSpacing,
			Width:  o.CardWidth,
			Height: o.CardHeight,
		})
	}
	return placements
}

func compareFor(axis record.Axis) func(a, b record.Event) int {
	if axis == record.AxisChapter {
		return func(a, b record.Event) int {
			return cmp.Compare(chapterOf(a), chapterOf(b))
		}
	}
	return func(a, b record.Event) int {
		return strings.Compare(a.WorldTime, b.WorldTime)
	}
}

func chapterOf(ev record.Event) int64 {
	if ev.ChapterNumber == nil {
		return 0
	}
	return *ev.ChapterNumber
}

// Bounds is the canvas size needed to show every placement, never smaller
// than 1000x600.
func Bounds(placements []Placement, opts Options) (width, height float64) {
	o := opts.withDefaults()
	width = max(1000, float64(len(placements))*o.HorizontalSpacing+100)
	var maxY float64
	for _, p := range placements {
		maxY = max(maxY, p.Y)
	}
	height = max(600, maxY+200)
	return width, height
}

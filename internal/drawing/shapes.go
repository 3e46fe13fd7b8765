package drawing

import (
	"image/color"

	"github.com/vk/phasegrid/internal/binding"
)

var (
	White = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Red   = color.RGBA{R: 0xff, A: 0xff}
	Black = color.RGBA{A: 0xff}
)

// Drawable is anything that can paint itself onto a canvas.
type Drawable interface {
	Draw(c *Canvas)
}

// Sampler is implemented by drawables that keep per-tick history.
type Sampler interface {
	Sample()
}

// SampleAll records one tick in every sampler among ds.
func SampleAll(ds []Drawable) {
	for _, d := range ds {
		if s, ok := d.(Sampler); ok {
			s.Sample()
		}
	}
}

// Point is a location bound to two quantities.
type Point struct {
	X, Y *binding.Binding
}

// Pos returns the current coordinates.
func (p Point) Pos() (x, y float64) {
	return p.X.Value(), p.Y.Value()
}

// Circle is a stroked circle with a bound center and radius.
type Circle struct {
	Center Point
	Radius *binding.Binding
	Color  color.RGBA
	Width  float64
}

func (s *Circle) Draw(c *Canvas) {
	x, y := s.Center.Pos()
	c.StrokeCircle(x, y, s.Radius.Value(), s.Width, s.Color)
}

// Line is a segment between two bound points.
type Line struct {
	From, To Point
	Color    color.RGBA
	Width    float64
}

func (s *Line) Draw(c *Canvas) {
	x1, y1 := s.From.Pos()
	x2, y2 := s.To.Pos()
	c.StrokePolyline([][2]float64{{x1, y1}, {x2, y2}}, s.Width, s.Color)
}

// TrackerSpacing is the horizontal distance between tracker samples.
const TrackerSpacing = 2.0

// Tracker plots the recent history of one quantity as a trace running to
// the right of its origin, newest sample first.
type Tracker struct {
	Y       *binding.Binding
	OriginX float64
	Max     int
	Color   color.RGBA
	Width   float64

	history []float64
}

// NewTracker creates a white tracker keeping at most limit samples.
func NewTracker(y *binding.Binding, limit int) *Tracker {
	return &Tracker{Y: y, Max: limit, Color: White, Width: 2}
}

// Sample prepends the current value, dropping the oldest sample beyond Max.
func (t *Tracker) Sample() {
	t.history = append(t.history, 0)
	copy(t.history[1:], t.history)
	t.history[0] = t.Y.Value()
	if t.Max > 0 && len(t.history) > t.Max {
		t.history = t.history[:t.Max]
	}
}

// History returns the samples, newest first.
func (t *Tracker) History() []float64 {
	return append([]float64(nil), t.history...)
}

func (t *Tracker) Draw(c *Canvas) {
	if len(t.history) < 2 {
		return
	}
	pts := make([][2]float64, len(t.history))
	for i, v := range t.history {
		pts[i] = [2]float64{t.OriginX + float64(i)*TrackerSpacing, v}
	}
	c.StrokePolyline(pts, t.Width, t.Color)
}

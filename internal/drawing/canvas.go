package drawing

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// circleSegments is the number of edges used to approximate a circle.
const circleSegments = 96

// Canvas rasterizes world-space shapes into an RGBA image.
type Canvas struct {
	img *image.RGBA
	z   *vector.Rasterizer
}

// NewCanvas creates a w by h canvas filled with bg.
func NewCanvas(w, h int, bg color.Color) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return &Canvas{img: img, z: vector.NewRasterizer(w, h)}
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// toPixel maps world coordinates (origin centered, y up) to pixel space.
// Coordinates far outside the image are clamped so the rasterizer never sees
// huge or non-finite values.
func (c *Canvas) toPixel(x, y float64) (float32, float32) {
	b := c.img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	px := clamp(w/2+x, -w, 2*w)
	py := clamp(h/2-y, -h, 2*h)
	return float32(px), float32(py)
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (c *Canvas) fill(col color.RGBA) {
	c.z.DrawOp = draw.Over
	c.z.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{})
	b := c.img.Bounds()
	c.z.Reset(b.Dx(), b.Dy())
}

// polygon adds a closed path in world coordinates. Reversing the point order
// of an inner ring cuts a hole.
func (c *Canvas) polygon(pts [][2]float64) {
	for i, p := range pts {
		x, y := c.toPixel(p[0], p[1])
		if i == 0 {
			c.z.MoveTo(x, y)
			continue
		}
		c.z.LineTo(x, y)
	}
	c.z.ClosePath()
}

func ring(cx, cy, r float64, clockwise bool) [][2]float64 {
	pts := make([][2]float64, circleSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / circleSegments
		if clockwise {
			a = -a
		}
		pts[i] = [2]float64{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return pts
}

// FillCircle paints a solid disc.
func (c *Canvas) FillCircle(cx, cy, r float64, col color.RGBA) {
	if !finite(cx, cy, r) || r <= 0 {
		return
	}
	c.polygon(ring(cx, cy, r, false))
	c.fill(col)
}

// StrokeCircle paints a circle outline of the given width.
func (c *Canvas) StrokeCircle(cx, cy, r, width float64, col color.RGBA) {
	r = math.Abs(r)
	if !finite(cx, cy, r, width) || width <= 0 {
		return
	}
	outer := r + width/2
	inner := r - width/2
	if inner <= 0 {
		c.FillCircle(cx, cy, outer, col)
		return
	}
	c.polygon(ring(cx, cy, outer, false))
	c.polygon(ring(cx, cy, inner, true))
	c.fill(col)
}

// StrokePolyline paints connected segments of the given width. Segments with
// non-finite endpoints are skipped.
func (c *Canvas) StrokePolyline(pts [][2]float64, width float64, col color.RGBA) {
	if width <= 0 {
		return
	}
	drawn := false
	half := width / 2
	for i := 1; i < len(pts); i++ {
		x1, y1 := pts[i-1][0], pts[i-1][1]
		x2, y2 := pts[i][0], pts[i][1]
		if !finite(x1, y1, x2, y2) {
			continue
		}
		dx, dy := x2-x1, y2-y1
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*half, dx/length*half
		c.polygon([][2]float64{
			{x1 + nx, y1 + ny},
			{x2 + nx, y2 + ny},
			{x2 - nx, y2 - ny},
			{x1 - nx, y1 - ny},
		})
		drawn = true
	}
	if drawn {
		c.fill(col)
	}
}

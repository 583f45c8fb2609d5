package geometry

// Point is a position in container-relative pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Extent is the scrollable content size of a container.
type Extent struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned box. X and Y are the top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// MidY returns the vertical center of the box.
func (r Rect) MidY() float64 { return r.Y + r.Height/2 }

// IsZero reports whether the box has no area, which is how an element that
// is not laid out (or is being torn down) measures.
func (r Rect) IsZero() bool { return r.Width <= 0 || r.Height <= 0 }

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Intersects reports whether r and o overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.Left() < o.Right() && o.Left() < r.Right() &&
		r.Top() < o.Bottom() && o.Top() < r.Bottom()
}

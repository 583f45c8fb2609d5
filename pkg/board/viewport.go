package board

import (
	"sync"

	"github.com/matzehuels/bracketview/pkg/geometry"
)

// Viewport is the scrollable window onto a board's content. It implements
// [geometry.Container]: every effective resize or scroll notifies observers
// after the new state is in place.
type Viewport struct {
	mu        sync.RWMutex
	origin    geometry.Point
	width     float64
	height    float64
	content   geometry.Extent
	scroll    geometry.Point
	observers map[int]func()
	nextID    int
}

func newViewport(origin geometry.Point, width, height float64, content geometry.Extent) *Viewport {
	return &Viewport{
		origin:    origin,
		width:     max(width, 0),
		height:    max(height, 0),
		content:   content,
		observers: make(map[int]func()),
	}
}

// BoundingBox returns the visible window in viewport coordinates.
func (v *Viewport) BoundingBox() geometry.Rect {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return geometry.Rect{X: v.origin.X, Y: v.origin.Y, Width: v.width, Height: v.height}
}

// ScrollOffset returns the current scroll position.
func (v *Viewport) ScrollOffset() geometry.Point {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scroll
}

// ScrollSize returns the scrollable size: the content size, but never less
// than the window.
func (v *Viewport) ScrollSize() geometry.Extent {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scrollSize()
}

func (v *Viewport) scrollSize() geometry.Extent {
	return geometry.Extent{
		Width:  max(v.content.Width, v.width),
		Height: max(v.content.Height, v.height),
	}
}

// Observe implements [geometry.Container].
func (v *Viewport) Observe(fn func()) (cancel func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.observers[id] = fn
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		delete(v.observers, id)
		v.mu.Unlock()
	}
}

// Size returns the window size.
func (v *Viewport) Size() (width, height float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height
}

// MaxScroll returns the largest valid scroll offset.
func (v *Viewport) MaxScroll() geometry.Point {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.maxScroll()
}

func (v *Viewport) maxScroll() geometry.Point {
	s := v.scrollSize()
	return geometry.Point{X: s.Width - v.width, Y: s.Height - v.height}
}

// Resize changes the window size and re-clamps the scroll offset.
func (v *Viewport) Resize(width, height float64) {
	v.update(func() {
		v.width, v.height = max(width, 0), max(height, 0)
		v.scroll = v.clamp(v.scroll)
	})
}

// ScrollTo scrolls to (x, y), clamped to the content.
func (v *Viewport) ScrollTo(x, y float64) {
	v.update(func() {
		v.scroll = v.clamp(geometry.Point{X: x, Y: y})
	})
}

// ScrollBy scrolls by (dx, dy), clamped to the content.
func (v *Viewport) ScrollBy(dx, dy float64) {
	v.update(func() {
		v.scroll = v.clamp(geometry.Point{X: v.scroll.X + dx, Y: v.scroll.Y + dy})
	})
}

func (v *Viewport) clamp(p geometry.Point) geometry.Point {
	m := v.maxScroll()
	return geometry.Point{
		X: min(max(p.X, 0), m.X),
		Y: min(max(p.Y, 0), m.Y),
	}
}

// update applies f under the lock and notifies observers outside it if the
// window size or scroll offset changed.
func (v *Viewport) update(f func()) {
	v.mu.Lock()
	w, h, s := v.width, v.height, v.scroll
	f()
	changed := w != v.width || h != v.height || s != v.scroll
	var fns []func()
	if changed {
		fns = make([]func(), 0, len(v.observers))
		for _, fn := range v.observers {
			fns = append(fns, fn)
		}
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

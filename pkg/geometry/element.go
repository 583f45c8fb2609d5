package geometry

import "sync"

// Element is a measurable handle, typically a rendered match card.
type Element interface {
	// BoundingBox returns the element's box in viewport coordinates.
	BoundingBox() Rect
}

// Container is the scrollable surface the cards are laid out in.
type Container interface {
	Element

	// ScrollOffset returns the current scroll position.
	ScrollOffset() Point

	// ScrollSize returns the full scrollable content size.
	ScrollSize() Extent

	// Observe registers fn to be called after every size or scroll change,
	// once the surface has settled. The returned function removes it.
	Observe(fn func()) (cancel func())
}

// Lookup resolves a match id to its card.
type Lookup interface {
	Element(id int) (Element, bool)
}

// LookupFunc adapts a function to [Lookup].
type LookupFunc func(id int) (Element, bool)

func (f LookupFunc) Element(id int) (Element, bool) { return f(id) }

// Registry is the host-owned id → card mapping. Hosts register a card when it
// mounts and unregister it when it unmounts; the [Synchronizer] only reads.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	elems map[int]Element
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{elems: make(map[int]Element)}
}

// Register upserts the card for id. Registering nil removes it.
func (r *Registry) Register(id int, e Element) {
	if e == nil {
		r.Unregister(id)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elems[id] = e
}

// Unregister removes the card for id, if any.
func (r *Registry) Unregister(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.elems, id)
}

// Element implements [Lookup].
func (r *Registry) Element(id int) (Element, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.elems[id]
	return e, ok
}

// Len returns the number of registered cards.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.elems)
}

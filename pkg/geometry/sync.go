package geometry

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bracketview/pkg/bracket"
	"github.com/matzehuels/bracketview/pkg/observability"
)

// Result is the output of a layout pass.
type Result struct {
	Lines  []ConnectorLine `json:"lines"`
	Extent Extent          `json:"extent"`
}

// Line returns the connector with the given id.
func (r Result) Line(id string) (ConnectorLine, bool) {
	for _, l := range r.Lines {
		if l.ID == id {
			return l, true
		}
	}
	return ConnectorLine{}, false
}

// Option configures a [Synchronizer].
type Option func(*Synchronizer)

// WithLogger sets the logger for pass diagnostics. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHooks sets the geometry hooks. The default is the globally registered
// [observability.Geometry].
func WithHooks(h observability.GeometryHooks) Option {
	return func(s *Synchronizer) {
		if h != nil {
			s.hooks = h
		}
	}
}

// Synchronizer keeps connector lines in sync with a container and the cards
// registered in a [Lookup].
type Synchronizer struct {
	lookup Lookup
	logger *log.Logger
	hooks  observability.GeometryHooks

	mu        sync.Mutex
	container Container
	cancel    func()
	matches   []bracket.Match
	result    Result
	seq       uint64 // passes that produced a result

	subMu  sync.Mutex
	subs   map[int]func(Result)
	nextID int

	// pubMu orders delivery; delivered is the seq last handed to subscribers.
	pubMu     sync.Mutex
	delivered uint64
}

// NewSynchronizer creates an unmounted synchronizer reading cards from lookup.
func NewSynchronizer(lookup Lookup, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		lookup: lookup,
		logger: log.New(io.Discard),
		hooks:  observability.Geometry(),
		subs:   make(map[int]func(Result)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mount attaches the synchronizer to a container, subscribes to its
// notifications, and runs a pass. Mounting again replaces the previous
// container.
func (s *Synchronizer) Mount(c Container) {
	s.Unmount()
	cancel := c.Observe(func() { s.Pass() })

	s.mu.Lock()
	s.container = c
	s.cancel = cancel
	s.mu.Unlock()

	s.Pass()
}

// Unmount stops observing the container. The last lines stay available from
// [Synchronizer.Snapshot].
func (s *Synchronizer) Unmount() {
	s.mu.Lock()
	cancel := s.cancel
	s.container, s.cancel = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// SetMatches replaces the match snapshot and runs a pass. A nil slice means
// "no bracket" and clears the lines.
func (s *Synchronizer) SetMatches(matches []bracket.Match) {
	s.mu.Lock()
	s.matches = matches
	s.mu.Unlock()

	s.Pass()
}

// Snapshot returns the result of the last completed pass.
func (s *Synchronizer) Snapshot() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Subscribe registers fn to receive the result of every completed pass.
// Results arrive in pass order; a result overtaken by a later pass on another
// goroutine is dropped. fn runs on the goroutine of the pass and must not
// start another pass itself.
func (s *Synchronizer) Subscribe(fn func(Result)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Pass recomputes every connector from the current matches, cards, and
// container state, and reports whether the line set was replaced.
//
// Without matches or a container the lines are cleared and the extent is kept.
// A container measuring zero width or height is not laid out yet: the extent
// is still published but the previous lines stay. Otherwise one line is
// emitted for every match with a next match whose two cards are registered
// and measure non-zero; the rest are skipped until a later pass.
func (s *Synchronizer) Pass() bool {
	start := time.Now()

	s.mu.Lock()
	if s.matches == nil || s.container == nil {
		s.result.Lines = nil
		res := s.result
		s.seq++
		seq := s.seq
		s.mu.Unlock()

		s.hooks.OnPassSkipped("not mounted")
		s.publish(res, seq)
		return true
	}

	s.result.Extent = s.container.ScrollSize()
	box := s.container.BoundingBox()
	if box.IsZero() {
		s.mu.Unlock()
		s.logger.Debug("layout pass skipped", "reason", "container not laid out")
		s.hooks.OnPassSkipped("container not laid out")
		return false
	}
	scroll := s.container.ScrollOffset()

	lines := make([]ConnectorLine, 0, len(s.matches))
	skipped := 0
	for _, m := range s.matches {
		if m.IsFinal() {
			continue
		}
		src, ok := s.measure(m.ID)
		if !ok {
			skipped++
			continue
		}
		dst, ok := s.measure(m.Next())
		if !ok {
			skipped++
			continue
		}
		lines = append(lines, ConnectorLine{
			ID:   LineID(m.ID, m.Next()),
			Path: Connect(src, dst, box, scroll, m.SlotInNextMatch),
		})
	}
	s.result.Lines = lines
	res := s.result
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	d := time.Since(start)
	s.logger.Debug("layout pass", "lines", len(lines), "skipped", skipped, "duration", d)
	s.hooks.OnPass(len(lines), skipped, d)
	s.publish(res, seq)
	return true
}

// measure returns the card box for id, treating an unregistered card and a
// zero-sized one alike.
func (s *Synchronizer) measure(id int) (Rect, bool) {
	e, ok := s.lookup.Element(id)
	if !ok || e == nil {
		return Rect{}, false
	}
	r := e.BoundingBox()
	if r.IsZero() {
		return Rect{}, false
	}
	return r, true
}

func (s *Synchronizer) publish(r Result, seq uint64) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	if seq <= s.delivered {
		return
	}
	s.delivered = seq

	s.subMu.Lock()
	fns := make([]func(Result), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(r)
	}
}

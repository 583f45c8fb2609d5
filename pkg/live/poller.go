package live

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/bracketview/pkg/archive"
	"github.com/matzehuels/bracketview/pkg/errors"
	"github.com/matzehuels/bracketview/pkg/pipeline"
)

// DefaultInterval is how often watched championships are re-fetched.
const DefaultInterval = 15 * time.Second

// maxConcurrentPolls bounds upstream requests per tick.
const maxConcurrentPolls = 4

// Broadcaster delivers messages to the watchers of a room.
type Broadcaster interface {
	Rooms() []int
	Broadcast(room int, msg Message) (int, error)
}

// Archiver records broadcast layouts. [archive.Store] implements it.
type Archiver interface {
	Save(ctx context.Context, championshipID int, matchesHash string, snap pipeline.Snapshot) (archive.Record, error)
}

// Poller re-fetches the matches of every watched championship and
// broadcasts a BRACKET_UPDATED message carrying the new layout snapshot
// whenever the match list changed since the last broadcast.
type Poller struct {
	runner   *pipeline.Runner
	out      Broadcaster
	opts     pipeline.Options
	interval time.Duration
	archive  Archiver
	logger   *log.Logger

	mu   sync.Mutex
	last map[int]string // room -> matches hash of the last broadcast
}

// PollerOption configures a [Poller].
type PollerOption func(*Poller)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithArchive saves every broadcast snapshot.
func WithArchive(a Archiver) PollerOption { return func(p *Poller) { p.archive = a } }

// WithPollerLogger sets the poller's logger. The default discards.
func WithPollerLogger(l *log.Logger) PollerOption {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPoller creates a poller that lays brackets out with opts.
func NewPoller(runner *pipeline.Runner, out Broadcaster, opts pipeline.Options, popts ...PollerOption) *Poller {
	p := &Poller{
		runner:   runner,
		out:      out,
		opts:     opts,
		interval: DefaultInterval,
		logger:   log.New(io.Discard),
		last:     make(map[int]string),
	}
	for _, opt := range popts {
		opt(p)
	}
	return p
}

// Run polls on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Tick(ctx)
		}
	}
}

// Tick polls every room that currently has watchers and forgets rooms
// that have none.
func (p *Poller) Tick(ctx context.Context) {
	rooms := p.out.Rooms()
	p.forgetExcept(rooms)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPolls)
	for _, room := range rooms {
		g.Go(func() error {
			_, err := p.Poll(gctx, room)
			switch {
			case err == nil:
			case errors.Temporary(err):
				p.logger.Debug("poll failed, retrying next tick", "championship", room, "err", err)
			default:
				p.logger.Warn("poll failed", "championship", room, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Poll fetches one championship and broadcasts its layout if the match list
// changed. It reports whether a message was broadcast.
func (p *Poller) Poll(ctx context.Context, championshipID int) (bool, error) {
	opts := p.opts
	opts.ChampionshipID = championshipID
	opts.Refresh = true

	matches, err := p.runner.Fetch(ctx, opts)
	if err != nil {
		return false, err
	}
	hash := pipeline.HashMatches(matches)

	p.mu.Lock()
	unchanged := p.last[championshipID] == hash
	p.mu.Unlock()
	if unchanged {
		return false, nil
	}

	layout, err := p.runner.Layout(ctx, matches, opts)
	if err != nil {
		return false, err
	}
	snap := layout.Snapshot()

	n, err := p.out.Broadcast(championshipID, Message{Type: MessageBracketUpdated, Payload: snap})
	if err != nil {
		return false, err
	}
	p.logger.Info("bracket updated", "championship", championshipID, "matches", len(matches), "clients", n)

	p.mu.Lock()
	p.last[championshipID] = hash
	p.mu.Unlock()

	if p.archive != nil {
		if _, err := p.archive.Save(ctx, championshipID, hash, snap); err != nil {
			p.logger.Warn("archive failed", "championship", championshipID, "err", err)
		}
	}
	return true, nil
}

func (p *Poller) forgetExcept(rooms []int) {
	keep := make(map[int]bool, len(rooms))
	for _, r := range rooms {
		keep[r] = true
	}
	p.mu.Lock()
	for id := range p.last {
		if !keep[id] {
			delete(p.last, id)
		}
	}
	p.mu.Unlock()
}

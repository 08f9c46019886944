// Package binder manages the fetch lifecycle of one backend resource on behalf
// of a view: loading, loaded and failed states, stale-result discarding and
// change notification.
package binder

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/vburojevic/logscope/internal/api"
	"go.uber.org/zap"
)

// State is the lifecycle phase of a bound resource
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Terminal reports whether s is Loaded or Failed
func (s State) Terminal() bool {
	return s == Loaded || s == Failed
}

// FetchFunc performs the read for a resource
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Snapshot is a point-in-time copy of a binder's state. Data holds the last
// successfully loaded value even when State is Failed; HasData tells whether
// any load ever succeeded.
type Snapshot[T any] struct {
	State      State
	Data       T
	HasData    bool
	Err        error
	Message    string
	Generation uint64
	UpdatedAt  time.Time
}

type settings struct {
	clock clock.Clock
	log   *zap.Logger
}

// Option configures a Binder
type Option func(*settings)

// WithClock sets the clock used to stamp snapshots
func WithClock(c clock.Clock) Option {
	return func(s *settings) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger for state transitions
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

// Binder binds one resource to a view. Each Trigger starts a new generation;
// only the result of the newest generation may change state.
type Binder[T any] struct {
	label string
	fetch FetchFunc[T]
	clock clock.Clock
	log   *zap.Logger

	mu   sync.Mutex
	gen  uint64
	snap Snapshot[T]
	subs map[int]func(Snapshot[T])
	next int

	// notifyMu orders deliveries; notified is the newest generation delivered
	notifyMu sync.Mutex
	notified uint64

	wg sync.WaitGroup
}

// New creates an idle binder. label names the resource in failure messages.
func New[T any](label string, fetch FetchFunc[T], opts ...Option) *Binder[T] {
	s := settings{clock: clock.New(), log: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	return &Binder[T]{
		label: label,
		fetch: fetch,
		clock: s.clock,
		log:   s.log.With(zap.String("resource", label)),
		subs:  make(map[int]func(Snapshot[T])),
	}
}

// Label returns the resource name
func (b *Binder[T]) Label() string {
	return b.label
}

// Snapshot returns the current state
func (b *Binder[T]) Snapshot() Snapshot[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap
}

// Subscribe registers fn to receive every state change. The returned func
// removes the subscription. Callbacks run on the goroutine that made the
// transition, one at a time and in generation order: a snapshot older than
// one already delivered is dropped. fn must not call back into the binder.
func (b *Binder[T]) Subscribe(fn func(Snapshot[T])) (unsubscribe func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Trigger starts a fetch in the background and returns its generation
func (b *Binder[T]) Trigger(ctx context.Context) uint64 {
	gen := b.begin()
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.run(ctx, gen)
	}()
	return gen
}

// Load fetches synchronously and returns the resulting snapshot. If a newer
// generation started meanwhile, the newer state is returned.
func (b *Binder[T]) Load(ctx context.Context) Snapshot[T] {
	gen := b.begin()
	b.run(ctx, gen)
	return b.Snapshot()
}

// Close invalidates any in-flight fetch so its result is discarded. The
// binder keeps its last data and may be triggered again.
func (b *Binder[T]) Close() {
	b.mu.Lock()
	b.gen++
	if b.snap.State == Loading {
		b.snap.State = Idle
	}
	b.snap.Generation = b.gen
	snap, subs := b.snap, b.subscribers()
	b.mu.Unlock()

	b.log.Debug("binder closed", zap.Uint64("generation", snap.Generation))
	b.publish(subs, snap)
}

// Wait blocks until every background fetch has returned
func (b *Binder[T]) Wait() {
	b.wg.Wait()
}

func (b *Binder[T]) begin() uint64 {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.snap.State = Loading
	b.snap.Generation = gen
	b.snap.UpdatedAt = b.clock.Now()
	snap, subs := b.snap, b.subscribers()
	b.mu.Unlock()

	b.log.Debug("binder state", zap.Stringer("state", Loading), zap.Uint64("generation", gen))
	b.publish(subs, snap)
	return gen
}

func (b *Binder[T]) run(ctx context.Context, gen uint64) {
	data, err := b.fetch(ctx)

	b.mu.Lock()
	if gen != b.gen {
		current := b.gen
		b.mu.Unlock()
		b.log.Debug("stale result discarded", zap.Uint64("generation", gen), zap.Uint64("current", current))
		return
	}

	b.snap.UpdatedAt = b.clock.Now()
	if err != nil {
		b.snap.State = Failed
		b.snap.Err = err
		b.snap.Message = b.diagnostic(err)
	} else {
		b.snap.State = Loaded
		b.snap.Data = data
		b.snap.HasData = true
		b.snap.Err = nil
		b.snap.Message = ""
	}
	snap, subs := b.snap, b.subscribers()
	b.mu.Unlock()

	if err != nil {
		b.log.Debug("binder state", zap.Stringer("state", Failed), zap.Uint64("generation", gen), zap.Error(err))
	} else {
		b.log.Debug("binder state", zap.Stringer("state", Loaded), zap.Uint64("generation", gen))
	}
	b.publish(subs, snap)
}

// diagnostic prefers the server-supplied message
func (b *Binder[T]) diagnostic(err error) string {
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	return fmt.Sprintf("failed to load %s", b.label)
}

// subscribers copies the callbacks; callers hold mu
func (b *Binder[T]) subscribers() []func(Snapshot[T]) {
	if len(b.subs) == 0 {
		return nil
	}
	out := make([]func(Snapshot[T]), 0, len(b.subs))
	for _, fn := range b.subs {
		out = append(out, fn)
	}
	return out
}

// publish delivers snap unless a newer generation was delivered first. A
// Trigger may run between a fetch releasing mu and reaching here.
func (b *Binder[T]) publish(subs []func(Snapshot[T]), snap Snapshot[T]) {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()
	if snap.Generation < b.notified {
		b.log.Debug("late notification dropped", zap.Uint64("generation", snap.Generation), zap.Uint64("delivered", b.notified))
		return
	}
	b.notified = snap.Generation
	for _, fn := range subs {
		fn(snap)
	}
}

package pools

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-pool/pkg/logging"
	"github.com/dd0wney/cluso-pool/pkg/metrics"
)

// Version of the pool implementation.
const Version = "1.0.0"

const (
	// DefaultInitCount is the reservoir size NewDefault fills at construction.
	DefaultInitCount = 100
	// DefaultGrowthCount is the batch NewDefault adds whenever the reservoir runs dry.
	DefaultGrowthCount = 50
)

// Pool is a reservoir of reusable items of type T.
//
// Slots [0, cursor) of the reservoir hold available items. Slots beyond the
// cursor may still reference items that were handed out; they are stale and
// only the cursor decides what is valid.
//
// A Pool is not safe for concurrent use. Serialize access externally or give
// each goroutine its own pool (see parallel.WorkerPool).
//
// Callers must only Release items obtained from Acquire on the same pool, at
// most once per acquisition. This is not checked: breaking it puts duplicate
// or foreign items into circulation. Any call after Teardown panics with an
// error wrapping ErrPoolTornDown.
type Pool[T any] struct {
	items       []T
	cursor      int
	growthCount int

	create  func() T
	destroy func(T)

	id       string
	name     string
	logger   logging.Logger
	metrics  *metrics.Registry
	stats    Stats
	tornDown bool
}

// New builds a pool and eagerly fills it with initCount items from create.
// A nil create yields zero values of T; a nil destroy does nothing.
// growthCount items are created at once whenever Acquire finds the pool empty.
func New[T any](create func() T, destroy func(T), initCount, growthCount int, opts ...Option) (*Pool[T], error) {
	if initCount < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidInitCount, initCount)
	}
	if growthCount < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidGrowthCount, growthCount)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if create == nil {
		create = func() T {
			var zero T
			return zero
		}
	}
	if destroy == nil {
		destroy = func(T) {}
	}

	p := &Pool[T]{
		items:       make([]T, initCount),
		growthCount: growthCount,
		create:      create,
		destroy:     destroy,
		id:          uuid.NewString(),
		name:        o.name,
		metrics:     o.metrics,
	}
	p.logger = o.logger.With(
		logging.Component("pools"),
		logging.Pool(p.name),
		logging.PoolID(p.id),
	)

	for i := range p.items {
		p.items[i] = create()
	}
	p.cursor = initCount
	p.stats.Created = uint64(initCount)

	if p.metrics != nil {
		p.metrics.RecordCreated(p.name, initCount)
		p.publishShape()
	}

	p.logger.Debug("pool created",
		logging.Count(initCount),
		logging.Int("growth_count", growthCount),
	)

	return p, nil
}

// NewDefault builds a pool with DefaultInitCount and DefaultGrowthCount.
func NewDefault[T any](create func() T, destroy func(T), opts ...Option) *Pool[T] {
	p, err := New(create, destroy, DefaultInitCount, DefaultGrowthCount, opts...)
	if err != nil {
		// the defaults are valid by construction
		panic(err)
	}
	return p
}

// Acquire hands out an available item. If none is available the reservoir
// first grows by one batch of growthCount fresh items and one of those is
// returned. The caller owns the item until it is released.
func (p *Pool[T]) Acquire() T {
	p.mustBeLive("acquire")

	if p.cursor == 0 {
		p.grow()
	}

	p.cursor--
	item := p.items[p.cursor]

	p.stats.Acquired++
	if p.metrics != nil {
		p.metrics.RecordAcquire(p.name)
		p.publishShape()
	}

	return item
}

// grow puts growthCount new items in front of the reservoir. Whatever was
// there before is stale and shifts right.
func (p *Pool[T]) grow() {
	batch := make([]T, p.growthCount, p.growthCount+len(p.items))
	for i := range batch {
		batch[i] = p.create()
	}
	p.items = append(batch, p.items...)
	p.cursor = p.growthCount

	p.stats.Created += uint64(p.growthCount)
	p.stats.Growths++
	if p.metrics != nil {
		p.metrics.RecordCreated(p.name, p.growthCount)
		p.metrics.RecordGrowth(p.name, p.growthCount)
	}

	p.logger.Debug("reservoir grown",
		logging.Operation("grow"),
		logging.Count(p.growthCount),
		logging.Cursor(p.cursor),
		logging.Reservoir(len(p.items)),
	)
}

// Release gives item back to the pool. It lands on the slot at the cursor,
// overwriting any stale reference there.
func (p *Pool[T]) Release(item T) {
	p.mustBeLive("release")

	if p.cursor < len(p.items) {
		p.items[p.cursor] = item
	} else {
		// only reachable when the release contract is broken
		p.items = append(p.items, item)
	}
	p.cursor++

	p.stats.Released++
	if p.metrics != nil {
		p.metrics.RecordRelease(p.name)
		p.publishShape()
	}
}

// Reduce destroys every available item and empties the available region.
// Checked-out items are untouched and may still be released. The next
// Acquire grows the reservoir.
func (p *Pool[T]) Reduce() {
	p.mustBeLive("reduce")

	n := p.cursor
	for _, item := range p.items[:n] {
		p.destroy(item)
	}

	// keep only the stale tail, on a fresh array so the destroyed items
	// are not pinned by the old one
	if tail := p.items[n:]; len(tail) > 0 {
		p.items = slices.Clone(tail)
	} else {
		p.items = nil
	}
	p.cursor = 0

	p.stats.Destroyed += uint64(n)
	p.stats.Reductions++
	if p.metrics != nil {
		p.metrics.RecordReduction(p.name, n)
		p.publishShape()
	}

	p.logger.Debug("reservoir reduced",
		logging.Operation("reduce"),
		logging.Count(n),
		logging.Cursor(p.cursor),
		logging.Reservoir(len(p.items)),
	)
}

// Teardown destroys every item physically held by the reservoir, stale
// slots included, and disables the pool. It differs from Reduce, which only
// destroys the available region. Any later call panics.
func (p *Pool[T]) Teardown() {
	p.mustBeLive("teardown")

	n := len(p.items)
	for _, item := range p.items {
		p.destroy(item)
	}

	p.items = nil
	p.cursor = 0
	p.create = nil
	p.destroy = nil
	p.tornDown = true

	p.stats.Destroyed += uint64(n)
	if p.metrics != nil {
		p.metrics.RecordTeardown(p.name, n)
	}

	p.logger.Debug("pool torn down",
		logging.Operation("teardown"),
		logging.Count(n),
	)
}

// Available returns the number of items ready for Acquire.
func (p *Pool[T]) Available() int {
	return p.cursor
}

// Len returns the physical length of the reservoir, stale slots included.
func (p *Pool[T]) Len() int {
	return len(p.items)
}

// GrowthCount returns the growth batch size.
func (p *Pool[T]) GrowthCount() int {
	return p.growthCount
}

// Name returns the pool name.
func (p *Pool[T]) Name() string {
	return p.name
}

// ID returns the unique instance ID used in log entries.
func (p *Pool[T]) ID() string {
	return p.id
}

// TornDown reports whether Teardown has run.
func (p *Pool[T]) TornDown() bool {
	return p.tornDown
}

// Stats returns a snapshot of the pool counters. It stays callable after
// Teardown.
func (p *Pool[T]) Stats() Stats {
	s := p.stats
	s.Available = p.cursor
	s.Reservoir = len(p.items)
	return s
}

func (p *Pool[T]) publishShape() {
	p.metrics.SetReservoir(p.name, p.cursor, len(p.items))
}

func (p *Pool[T]) mustBeLive(op string) {
	if p.tornDown {
		panic(fmt.Errorf("pools: %s on %q: %w", op, p.name, ErrPoolTornDown))
	}
}

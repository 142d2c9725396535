package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wintercup/portal/internal/domain"
)

// State is the lifecycle phase of a collection.
type State int

const (
	Empty State = iota
	Loading
	Populated
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Populated:
		return "populated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Policy decides what happens when loads overlap.
type Policy int

const (
	// LastWriterWins applies every successful completion in completion order,
	// so a slow, older response can overwrite a newer one.
	LastWriterWins Policy = iota
	// DiscardStale drops a completion whose load started before the load
	// that produced the current items.
	DiscardStale
)

// ParsePolicy maps a config value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "last_writer_wins":
		return LastWriterWins, nil
	case "discard_stale":
		return DiscardStale, nil
	default:
		return 0, fmt.Errorf("unknown cache policy %q", s)
	}
}

// Fetcher retrieves the full server-owned list.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// Outcome is a mutation result that can report success (gateway.Envelope).
type Outcome interface {
	Success() bool
}

// EventPublisher receives collection transitions.
type EventPublisher interface {
	Publish(e domain.Event)
}

// Snapshot is a consistent copy of the cache contents.
type Snapshot[T any] struct {
	State    State
	Items    []T
	LoadedAt time.Time
}

// Cache holds one fetched collection. Items are only ever replaced as a
// whole by a successful fetch; they are never edited in place.
type Cache[T any] struct {
	name   string
	fetch  Fetcher[T]
	policy Policy
	events EventPublisher
	logger *slog.Logger

	mu       sync.RWMutex
	state    State
	items    []T
	loadedAt time.Time
	inflight int
	issued   uint64 // sequence of the most recently started load
	applied  uint64 // sequence of the load that produced items
}

// New creates an Empty cache. events may be nil.
func New[T any](name string, fetch Fetcher[T], policy Policy, events EventPublisher, logger *slog.Logger) *Cache[T] {
	return &Cache[T]{
		name:   name,
		fetch:  fetch,
		policy: policy,
		events: events,
		logger: logger.With("collection", name),
		state:  Empty,
	}
}

// Name is the collection name, also used as the event topic.
func (c *Cache[T]) Name() string { return c.name }

// Load fetches the collection and replaces the items on success. Overlapping
// loads are not de-duplicated. A failed fetch keeps the previous items and is
// only logged; the returned error is for callers that want it.
func (c *Cache[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.inflight++
	c.state = Loading
	c.mu.Unlock()
	c.publish()

	items, err := c.fetch(ctx)

	c.mu.Lock()
	c.inflight--
	if err != nil {
		c.settle()
		c.mu.Unlock()
		c.publish()
		c.logger.Warn("collection load failed", "seq", seq, "error", err)
		return domain.ErrFetch(c.name, err)
	}

	if c.policy == DiscardStale && seq < c.applied {
		c.settle()
		c.mu.Unlock()
		c.publish()
		c.logger.Debug("discarding stale collection response", "seq", seq, "applied", c.applied)
		return nil
	}

	replaced := make([]T, len(items))
	copy(replaced, items)
	c.items = replaced
	c.applied = seq
	c.loadedAt = time.Now()
	c.settle()
	count := len(c.items)
	c.mu.Unlock()
	c.publish()

	c.logger.Debug("collection loaded", "seq", seq, "count", count)
	return nil
}

// settle leaves Loading once no load is in flight. Caller holds mu.
func (c *Cache[T]) settle() {
	if c.inflight > 0 {
		return
	}
	if c.applied > 0 {
		c.state = Populated
	} else {
		c.state = Empty
	}
}

// RefreshAfter reloads the collection after a successful mutation. The new
// record is not assumed to be visible yet.
func (c *Cache[T]) RefreshAfter(ctx context.Context, result Outcome) error {
	if result == nil || !result.Success() {
		return nil
	}
	return c.Load(ctx)
}

// State returns the current lifecycle phase.
func (c *Cache[T]) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Items returns a copy of the current items.
func (c *Cache[T]) Items() []T {
	return c.Snapshot().Items
}

// Snapshot returns state and a copy of the items taken under one lock.
func (c *Cache[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return Snapshot[T]{State: c.state, Items: items, LoadedAt: c.loadedAt}
}

func (c *Cache[T]) publish() {
	if c.events == nil {
		return
	}
	c.mu.RLock()
	data := map[string]any{"state": c.state.String(), "count": len(c.items)}
	c.mu.RUnlock()
	c.events.Publish(domain.NewEvent(domain.EventCollectionChanged, c.name, data))
}

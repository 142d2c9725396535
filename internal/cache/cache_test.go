package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wintercup/portal/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type reply struct {
	items []string
	err   error
}

// gatedFetcher blocks call i until gates[i] receives its reply.
type gatedFetcher struct {
	mu      sync.Mutex
	calls   int
	gates   []chan reply
	started chan int
}

func newGatedFetcher(n int) *gatedFetcher {
	f := &gatedFetcher{started: make(chan int, n)}
	for i := 0; i < n; i++ {
		f.gates = append(f.gates, make(chan reply, 1))
	}
	return f
}

func (f *gatedFetcher) fetch(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()
	f.started <- i
	r := <-f.gates[i]
	return r.items, r.err
}

func staticFetcher(items []string, err error, calls *int) Fetcher[string] {
	return func(context.Context) ([]string, error) {
		*calls++
		return items, err
	}
}

type okOutcome bool

func (o okOutcome) Success() bool { return bool(o) }

func TestCache_LoadPopulates(t *testing.T) {
	calls := 0
	c := New("tournaments", staticFetcher([]string{"a", "b"}, nil, &calls), LastWriterWins, nil, testLogger())
	assert.Equal(t, Empty, c.State())

	require.NoError(t, c.Load(context.Background()))
	snap := c.Snapshot()
	assert.Equal(t, Populated, snap.State)
	assert.Equal(t, []string{"a", "b"}, snap.Items)
	assert.False(t, snap.LoadedAt.IsZero())
}

func TestCache_NilListIsEmpty(t *testing.T) {
	calls := 0
	c := New("servers", staticFetcher(nil, nil, &calls), LastWriterWins, nil, testLogger())

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, Populated, c.State())
	assert.NotNil(t, c.Items())
	assert.Empty(t, c.Items())
}

func TestCache_FailureKeepsPreviousItems(t *testing.T) {
	items := []string{"a", "b"}
	var fetchErr error
	calls := 0
	fetch := func(context.Context) ([]string, error) {
		calls++
		if fetchErr != nil {
			return []string{"partial"}, fetchErr
		}
		return items, nil
	}
	c := New("tournaments", fetch, LastWriterWins, nil, testLogger())
	ctx := context.Background()

	require.NoError(t, c.Load(ctx))
	before := c.Snapshot()

	fetchErr = errors.New("dns failure")
	err := c.Load(ctx)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeFetchFailed))

	after := c.Snapshot()
	assert.Equal(t, Populated, after.State)
	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.LoadedAt, after.LoadedAt)
}

func TestCache_FailureOnFirstLoadStaysEmpty(t *testing.T) {
	calls := 0
	c := New("servers", staticFetcher(nil, errors.New("timeout"), &calls), LastWriterWins, nil, testLogger())

	require.Error(t, c.Load(context.Background()))
	assert.Equal(t, Empty, c.State())
	assert.Empty(t, c.Items())
}

func TestCache_ItemsAreCopies(t *testing.T) {
	src := []string{"a"}
	calls := 0
	c := New("t", staticFetcher(src, nil, &calls), LastWriterWins, nil, testLogger())
	require.NoError(t, c.Load(context.Background()))

	src[0] = "mutated"
	got := c.Items()
	got[0] = "also mutated"
	assert.Equal(t, []string{"a"}, c.Items())
}

func TestCache_LoadingWhileInFlight(t *testing.T) {
	f := newGatedFetcher(1)
	c := New("t", f.fetch, LastWriterWins, nil, testLogger())

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background()) }()
	<-f.started
	assert.Equal(t, Loading, c.State())

	f.gates[0] <- reply{items: []string{"x"}}
	require.NoError(t, <-done)
	assert.Equal(t, Populated, c.State())
}

// overlappingLoads starts load A, then load B, completes B first and A last.
func overlappingLoads(t *testing.T, c *Cache[string], f *gatedFetcher) {
	t.Helper()
	ctx := context.Background()

	doneA := make(chan error, 1)
	go func() { doneA <- c.Load(ctx) }()
	require.Equal(t, 0, <-f.started)

	doneB := make(chan error, 1)
	go func() { doneB <- c.Load(ctx) }()
	require.Equal(t, 1, <-f.started)

	f.gates[1] <- reply{items: []string{"second"}}
	require.NoError(t, <-doneB)
	assert.Equal(t, Loading, c.State(), "first load still in flight")

	f.gates[0] <- reply{items: []string{"first"}}
	require.NoError(t, <-doneA)
}

func TestCache_LastWriterWinsByCompletionOrder(t *testing.T) {
	f := newGatedFetcher(2)
	c := New("t", f.fetch, LastWriterWins, nil, testLogger())

	overlappingLoads(t, c, f)

	assert.Equal(t, Populated, c.State())
	assert.Equal(t, []string{"first"}, c.Items(), "the response applied last wins, not the call issued last")
}

func TestCache_DiscardStaleKeepsNewest(t *testing.T) {
	f := newGatedFetcher(2)
	c := New("t", f.fetch, DiscardStale, nil, testLogger())

	overlappingLoads(t, c, f)

	assert.Equal(t, Populated, c.State())
	assert.Equal(t, []string{"second"}, c.Items())
}

func TestCache_RefreshAfter(t *testing.T) {
	calls := 0
	c := New("t", staticFetcher([]string{"a"}, nil, &calls), LastWriterWins, nil, testLogger())
	ctx := context.Background()

	require.NoError(t, c.RefreshAfter(ctx, okOutcome(true)))
	assert.Equal(t, 1, calls)

	require.NoError(t, c.RefreshAfter(ctx, okOutcome(false)))
	require.NoError(t, c.RefreshAfter(ctx, nil))
	assert.Equal(t, 1, calls)
}

type eventLog struct {
	mu     sync.Mutex
	events []domain.Event
}

func (l *eventLog) Publish(e domain.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func TestCache_PublishesTransitions(t *testing.T) {
	calls := 0
	evs := &eventLog{}
	c := New("vip_servers", staticFetcher([]string{"a"}, nil, &calls), LastWriterWins, evs, testLogger())

	require.NoError(t, c.Load(context.Background()))

	require.Len(t, evs.events, 2)
	assert.Equal(t, "vip_servers", evs.events[0].Topic)
	assert.Equal(t, "loading", evs.events[0].Data.(map[string]any)["state"])
	assert.Equal(t, "populated", evs.events[1].Data.(map[string]any)["state"])
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, LastWriterWins, p)

	p, err = ParsePolicy("discard_stale")
	require.NoError(t, err)
	assert.Equal(t, DiscardStale, p)

	_, err = ParsePolicy("newest")
	assert.Error(t, err)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "empty", Empty.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "populated", Populated.String())
	assert.Equal(t, "state(9)", State(9).String())
}

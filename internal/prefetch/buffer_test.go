package prefetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/trivium/internal/question"
)

// fakeSupplier produces sequentially numbered questions and can block,
// fail, and track call concurrency on demand.
type fakeSupplier struct {
	mu          sync.Mutex
	calls       int
	active      int
	maxActive   int
	seq         int
	gate        chan struct{}
	fail        error
	lastExclude []string
}

func (f *fakeSupplier) Fetch(ctx context.Context, cat question.Category, difficulty int, exclude []string) (*question.Question, error) {
	f.mu.Lock()
	f.calls++
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.lastExclude = append([]string(nil), exclude...)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			f.mu.Lock()
			f.active--
			f.mu.Unlock()
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.active--
	if f.fail != nil {
		return nil, f.fail
	}
	f.seq++
	return &question.Question{
		ID:           uuid.New().String(),
		Category:     cat,
		Difficulty:   difficulty,
		Text:         fmt.Sprintf("question %d", f.seq),
		Options:      []string{"a", "b", "c", "d"},
		CorrectIndex: 0,
	}, nil
}

func (f *fakeSupplier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSupplier) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestCachedRequestNeverFetchesLive(t *testing.T) {
	sup := &fakeSupplier{}
	b := New(sup, Config{Capacity: 5, LowWater: 2, MaxConcurrentFetches: 2})
	defer b.Close()

	b.Warm(question.Science, 1)
	waitFor(t, "warm fill", func() bool { return b.Cached(question.Science, 1) == 5 })
	before := sup.callCount()

	q, err := b.Request(context.Background(), question.Science, 1)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if q == nil {
		t.Fatal("Request returned nil question")
	}
	if got := sup.callCount(); got != before {
		t.Errorf("supplier calls = %d after cached request, want %d", got, before)
	}
}

func TestCapacityNeverExceeded(t *testing.T) {
	sup := &fakeSupplier{}
	b := New(sup, Config{Capacity: 4, LowWater: 2, MaxConcurrentFetches: 2})
	defer b.Close()

	b.Warm(question.History, 2)
	waitFor(t, "warm fill", func() bool { return b.Cached(question.History, 2) == 4 })

	// Redundant refill checks on a full key must not fetch anything.
	for i := 0; i < 5; i++ {
		b.NotifyConsumed(question.History, 2)
	}
	time.Sleep(50 * time.Millisecond)
	if got := b.Cached(question.History, 2); got != 4 {
		t.Errorf("cached = %d, want 4", got)
	}
	if got := sup.callCount(); got != 4 {
		t.Errorf("supplier calls = %d, want 4", got)
	}
}

func TestRefillTopsUpToCapacityBelowLowWater(t *testing.T) {
	sup := &fakeSupplier{}
	b := New(sup, Config{Capacity: 10, LowWater: 3, MaxConcurrentFetches: 3})
	defer b.Close()

	b.Warm(question.Geography, 1)
	waitFor(t, "warm fill", func() bool { return b.Cached(question.Geography, 1) == 10 })

	// Seven consumptions leave 3 cached, still at the low-water mark:
	// no refill yet.
	for i := 0; i < 7; i++ {
		if _, err := b.Request(context.Background(), question.Geography, 1); err != nil {
			t.Fatalf("Request %d: %v", i, err)
		}
		b.NotifyConsumed(question.Geography, 1)
	}
	time.Sleep(50 * time.Millisecond)
	if got := sup.callCount(); got != 10 {
		t.Fatalf("supplier calls after 7 consumptions = %d, want 10", got)
	}

	// The eighth consumption drops the key to 2 and schedules a refill
	// of 8 back up to capacity.
	if _, err := b.Request(context.Background(), question.Geography, 1); err != nil {
		t.Fatalf("Request: %v", err)
	}
	b.NotifyConsumed(question.Geography, 1)

	waitFor(t, "refill of 8", func() bool { return sup.callCount() == 18 })
	waitFor(t, "buffer full again", func() bool { return b.Cached(question.Geography, 1) == 10 })
}

func TestRequestReturnsOldestFirst(t *testing.T) {
	sup := &fakeSupplier{}
	// A single worker fills the queue in job order, so cached entries
	// come back in generation order.
	b := New(sup, Config{Capacity: 3, LowWater: 3, MaxConcurrentFetches: 1})
	defer b.Close()

	b.Warm(question.Sports, 1)
	waitFor(t, "warm fill", func() bool { return b.Cached(question.Sports, 1) == 3 })

	for i := 1; i <= 3; i++ {
		q, err := b.Request(context.Background(), question.Sports, 1)
		if err != nil {
			t.Fatalf("Request %d: %v", i, err)
		}
		want := fmt.Sprintf("question %d", i)
		if q.Text != want {
			t.Errorf("request %d returned %q, want %q", i, q.Text, want)
		}
	}
}

func TestSupplyUnavailable(t *testing.T) {
	cause := errors.New("rate limited")
	sup := &fakeSupplier{fail: cause}
	b := New(sup, Config{Capacity: 3, LowWater: 1, MaxConcurrentFetches: 1})
	defer b.Close()

	_, err := b.Request(context.Background(), question.Technology, 2)
	var unavailable *ErrSupplyUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("Request error = %v, want *ErrSupplyUnavailable", err)
	}
	if unavailable.Category != question.Technology || unavailable.Difficulty != 2 {
		t.Errorf("error key = %s/%d, want Technology/2", unavailable.Category, unavailable.Difficulty)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error does not wrap the supplier failure: %v", err)
	}
}

func TestRetireDiscardsCachedAndInFlight(t *testing.T) {
	gate := make(chan struct{})
	sup := &fakeSupplier{gate: gate}
	b := New(sup, Config{Capacity: 3, LowWater: 3, MaxConcurrentFetches: 3})
	defer b.Close()

	b.Warm(question.Arts, 1)
	waitFor(t, "fetches in flight", func() bool { return sup.activeCount() == 3 })

	b.Retire(question.Arts)
	close(gate)
	waitFor(t, "fetches drained", func() bool { return sup.activeCount() == 0 })

	time.Sleep(50 * time.Millisecond)
	if got := b.Cached(question.Arts, 1); got != 0 {
		t.Errorf("cached after retire = %d, want 0", got)
	}

	// The retired key still works for fresh demand.
	sup.mu.Lock()
	sup.gate = nil
	sup.mu.Unlock()
	b.Warm(question.Arts, 1)
	waitFor(t, "refill after retire", func() bool { return b.Cached(question.Arts, 1) == 3 })
}

func TestConcurrentFetchCap(t *testing.T) {
	gate := make(chan struct{})
	sup := &fakeSupplier{gate: gate}
	b := New(sup, Config{Capacity: 10, LowWater: 3, MaxConcurrentFetches: 3})
	defer b.Close()

	b.Warm(question.Literature, 1)
	waitFor(t, "workers saturated", func() bool { return sup.activeCount() == 3 })
	close(gate)
	waitFor(t, "warm fill", func() bool { return b.Cached(question.Literature, 1) == 10 })

	sup.mu.Lock()
	max := sup.maxActive
	sup.mu.Unlock()
	if max > 3 {
		t.Errorf("max concurrent fetches = %d, want <= 3", max)
	}
}

func TestServedQuestionsExcludedFromLaterFetches(t *testing.T) {
	sup := &fakeSupplier{}
	b := New(sup, Config{Capacity: 2, LowWater: 2, MaxConcurrentFetches: 1})
	defer b.Close()

	b.Warm(question.Entertainment, 1)
	waitFor(t, "warm fill", func() bool { return b.Cached(question.Entertainment, 1) == 2 })

	q, err := b.Request(context.Background(), question.Entertainment, 1)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	b.NotifyConsumed(question.Entertainment, 1)
	waitFor(t, "refill", func() bool { return b.Cached(question.Entertainment, 1) == 2 })

	sup.mu.Lock()
	exclude := sup.lastExclude
	sup.mu.Unlock()
	found := false
	for _, text := range exclude {
		if text == q.Text {
			found = true
		}
	}
	if !found {
		t.Errorf("exclude list %v does not contain served question %q", exclude, q.Text)
	}
}

func TestRequestAfterClose(t *testing.T) {
	sup := &fakeSupplier{}
	b := New(sup, Config{})
	b.Close()

	if _, err := b.Request(context.Background(), question.Science, 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Request after Close = %v, want ErrClosed", err)
	}
}

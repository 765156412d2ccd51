// Package prefetch keeps a bounded cache of ready-to-serve questions
// per (category, difficulty) key, refilled in the background so the
// player rarely waits on a live supplier call.
package prefetch

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/abhisek/trivium/internal/question"
)

type key struct {
	category   question.Category
	difficulty int
}

type job struct {
	k     key
	epoch uint64
}

// Buffer is a bounded per-key FIFO cache of questions. All queue
// mutation happens under a single mutex; background fetches run on a
// fixed pool of workers and report back through that same path.
type Buffer struct {
	cfg      Config
	supplier question.Supplier

	mu       sync.Mutex
	queues   map[key][]*question.Question
	inflight map[key]int
	epochs   map[key]uint64
	recent   []string
	closed   bool

	jobs   chan job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Buffer over the given supplier and starts its worker
// pool. Zero config values fall back to defaults. Call Close to stop
// the workers.
func New(supplier question.Supplier, cfg Config) *Buffer {
	def := DefaultConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.LowWater <= 0 {
		cfg.LowWater = def.LowWater
	}
	if cfg.MaxConcurrentFetches <= 0 {
		cfg.MaxConcurrentFetches = def.MaxConcurrentFetches
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = def.RecentLimit
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &Buffer{
		cfg:      cfg,
		supplier: supplier,
		queues:   make(map[key][]*question.Question),
		inflight: make(map[key]int),
		epochs:   make(map[key]uint64),
		jobs:     make(chan job, cfg.Capacity*len(question.AllCategories())),
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := 0; i < cfg.MaxConcurrentFetches; i++ {
		b.wg.Add(1)
		go b.worker()
	}
	return b
}

// Request returns the oldest cached question for the key if one exists.
// The cached path never touches the supplier. On a cache miss it fetches
// live, bounded by the request timeout, and schedules a background
// refill for the key. A failed live fetch surfaces as
// *ErrSupplyUnavailable.
func (b *Buffer) Request(ctx context.Context, cat question.Category, difficulty int) (*question.Question, error) {
	k := key{category: cat, difficulty: difficulty}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	if q := b.popLocked(k); q != nil {
		b.mu.Unlock()
		return q, nil
	}
	b.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, b.cfg.RequestTimeout)
	defer cancel()
	q, err := b.supplier.Fetch(fetchCtx, cat, difficulty, b.recentSnapshot())
	if err != nil {
		return nil, &ErrSupplyUnavailable{Category: cat, Difficulty: difficulty, Err: err}
	}

	b.mu.Lock()
	if !b.closed {
		b.rememberLocked(q.Text)
		b.refillLocked(k)
	}
	b.mu.Unlock()
	return q, nil
}

// NotifyConsumed tells the buffer a question for the key was consumed
// and triggers a refill check.
func (b *Buffer) NotifyConsumed(cat question.Category, difficulty int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.refillLocked(key{category: cat, difficulty: difficulty})
}

// Warm schedules background fetches to fill the key up to capacity.
// Useful at session start so the first question is already cached.
func (b *Buffer) Warm(cat question.Category, difficulty int) {
	b.NotifyConsumed(cat, difficulty)
}

// Retire discards every cached question and pending fetch result for a
// category, across all difficulty levels. In-flight fetches finish but
// their results are silently dropped.
func (b *Buffer) Retire(cat question.Category) {
	b.mu.Lock()
	defer b.mu.Unlock()

	seen := make(map[key]bool)
	for k := range b.queues {
		seen[k] = true
	}
	for k := range b.inflight {
		seen[k] = true
	}
	for k := range b.epochs {
		seen[k] = true
	}
	for k := range seen {
		if k.category != cat {
			continue
		}
		b.epochs[k]++
		delete(b.queues, k)
		delete(b.inflight, k)
	}
}

// Cached returns the number of cached questions for a key.
func (b *Buffer) Cached(cat question.Category, difficulty int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queues[key{category: cat, difficulty: difficulty}])
}

// Close stops the worker pool and discards all cached questions. Any
// in-flight fetches are cancelled.
func (b *Buffer) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.queues = make(map[key][]*question.Question)
	b.mu.Unlock()

	b.cancel()
	b.wg.Wait()
}

// popLocked removes and returns the oldest entry for a key, recording
// its text in the recently-served list. Returns nil when empty.
func (b *Buffer) popLocked(k key) *question.Question {
	q := b.queues[k]
	if len(q) == 0 {
		return nil
	}
	head := q[0]
	b.queues[k] = q[1:]
	b.rememberLocked(head.Text)
	return head
}

// refillLocked schedules background fetches for a key when its cached
// plus in-flight count has dropped below the low-water mark, topping it
// back up to capacity. Runs with b.mu held.
func (b *Buffer) refillLocked(k key) {
	size := len(b.queues[k]) + b.inflight[k]
	if size >= b.cfg.LowWater {
		return
	}
	for size < b.cfg.Capacity {
		select {
		case b.jobs <- job{k: k, epoch: b.epochs[k]}:
			b.inflight[k]++
			size++
		default:
			// Job queue full; the next consume notification retries.
			return
		}
	}
}

func (b *Buffer) rememberLocked(text string) {
	b.recent = append(b.recent, text)
	if len(b.recent) > b.cfg.RecentLimit {
		b.recent = b.recent[1:]
	}
}

func (b *Buffer) recentSnapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.recent))
	copy(out, b.recent)
	return out
}

func (b *Buffer) worker() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case j := <-b.jobs:
			b.runJob(j)
		}
	}
}

func (b *Buffer) runJob(j job) {
	b.mu.Lock()
	if b.epochs[j.k] != j.epoch {
		// Key retired while the job sat queued.
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(b.ctx, b.cfg.RequestTimeout)
	q, err := b.supplier.Fetch(ctx, j.k.category, j.k.difficulty, b.recentSnapshot())
	cancel()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.epochs[j.k] != j.epoch {
		// Key retired mid-fetch; drop the result.
		return
	}
	if b.inflight[j.k] > 0 {
		b.inflight[j.k]--
	}
	if err != nil {
		// Abandon this slot; the next consume notification retries.
		if b.ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "warning: background fetch for %s (level %d) failed: %v\n",
				j.k.category, j.k.difficulty, err)
		}
		return
	}
	if len(b.queues[j.k]) < b.cfg.Capacity {
		b.queues[j.k] = append(b.queues[j.k], q)
	}
}

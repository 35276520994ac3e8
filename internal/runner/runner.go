// Package runner drives sorting runs: it owns the shared sequence, seeds and
// shuffles it, runs the selected algorithm on a worker goroutine and turns
// cancellation into a reported terminal state.
package runner

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dyluth/sortvis/internal/algo"
	"github.com/dyluth/sortvis/internal/eventbus"
	"github.com/dyluth/sortvis/pkg/cell"
	"github.com/google/uuid"
)

// Status is the lifecycle state of the runner's most recent run.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Stats is a point-in-time view of the current or most recent run.
type Stats struct {
	RunID        string
	Algorithm    string
	Status       Status
	Elements     int
	ReadCount    uint64
	WriteCount   uint64
	LastAction   string
	LastDuration time.Duration
	Elapsed      time.Duration
}

// Publisher receives run events. *eventbus.Client implements it.
type Publisher interface {
	PublishRunEvent(ctx context.Context, ev *eventbus.RunEvent) error
}

// Option customises a Runner.
type Option func(*Runner)

// WithPublisher publishes run lifecycle events and stats snapshots to p.
func WithPublisher(p Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// WithSeed makes every shuffle deterministic: runs with the same seed and
// element count start from the same permutation.
func WithSeed(seed uint64) Option {
	return func(r *Runner) {
		r.seed = seed
		r.seeded = true
	}
}

// WithInstanceName labels structured log lines.
func WithInstanceName(name string) Option {
	return func(r *Runner) { r.instanceName = name }
}

// publishTimeout bounds how long a worker waits on the event bus.
const publishTimeout = 2 * time.Second

// Runner is the run orchestrator. All methods are safe for concurrent use;
// at most one run is active at a time.
type Runner struct {
	registry     *algo.Registry[int]
	seq          *cell.Sequence[int]
	token        cell.Token
	stats        *counters
	publisher    Publisher
	instanceName string
	seed         uint64
	seeded       bool

	mu           sync.Mutex
	settings     Settings
	status       Status
	runID        string
	algorithm    string
	elements     int
	startedAt    time.Time
	lastDuration time.Duration
	done         chan struct{}
}

// New creates an idle runner over registry using DefaultSettings.
// The runner takes ownership of the registry and closes it in Close.
func New(registry *algo.Registry[int], opts ...Option) *Runner {
	r := &Runner{
		registry:     registry,
		seq:          cell.NewSequence[int](),
		stats:        newCounters(),
		instanceName: "local",
		settings:     DefaultSettings(),
		status:       StatusIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Configure stores the settings for the next run.
func (r *Runner) Configure(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.status == StatusRunning {
		return fmt.Errorf("cannot reconfigure: %w", ErrAlreadyRunning)
	}
	r.settings = s
	return nil
}

// Settings returns the settings the next run will use.
func (r *Runner) Settings() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// Algorithms returns the registered algorithm names in registration order.
func (r *Runner) Algorithms() []string {
	return r.registry.Names()
}

// Start begins a run of the named algorithm and returns its run ID. The
// sequence is re-seeded with 1..Elements and the statistics reset before
// Start returns; the shuffle and the sort happen on a worker goroutine.
func (r *Runner) Start(name string) (string, error) {
	alg, err := r.registry.Lookup(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnknownAlgorithm, err)
	}

	r.mu.Lock()
	if r.status == StatusRunning {
		r.mu.Unlock()
		return "", fmt.Errorf("cannot start '%s': %w", name, ErrAlreadyRunning)
	}

	settings := r.settings
	r.token.Start()
	r.stats.reset()
	r.seq.Clear()
	r.seq.Reset(ascending(settings.Elements), cell.Hooks[int]{}.Observe(&probe{
		stats:      r.stats,
		token:      &r.token,
		readDelay:  settings.ReadDelay,
		writeDelay: settings.WriteDelay,
	}), &r.token)

	runID := uuid.New().String()
	done := make(chan struct{})
	r.runID = runID
	r.algorithm = name
	r.elements = settings.Elements
	r.status = StatusRunning
	r.startedAt = time.Now()
	r.lastDuration = 0
	r.done = done
	started := r.snapshotLocked()
	r.mu.Unlock()

	log.Printf("[Runner] Starting %s with %d elements (read delay %s, write delay %s)",
		name, settings.Elements, settings.ReadDelay, settings.WriteDelay)
	r.logEvent("run_started", statsFields(started))
	r.publish(eventbus.EventRunStarted, started)

	go r.work(alg, r.shuffler(), done)

	return runID, nil
}

// Cancel requests that the active run stop. It does not wait: the worker
// observes the request at its next instrumented access. No-op when idle.
func (r *Runner) Cancel() {
	r.token.Stop()
}

// Wait blocks until the current run reaches a terminal state or ctx is done,
// and returns the final statistics. It returns immediately when no run is
// active.
func (r *Runner) Wait(ctx context.Context) (Stats, error) {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return r.PollStats(), ctx.Err()
		}
	}
	return r.PollStats(), nil
}

// PollSequence returns the raw values of the sequence. It never fires hooks,
// so it neither counts as a read nor adds latency to the run.
func (r *Runner) PollSequence() []int {
	return r.seq.Snapshot()
}

// PollStats returns the current statistics.
func (r *Runner) PollStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Close cancels any active run, waits for it to unwind and releases the
// registry.
func (r *Runner) Close(ctx context.Context) error {
	r.Cancel()
	if _, err := r.Wait(ctx); err != nil {
		return err
	}
	return r.registry.Close()
}

func (r *Runner) snapshotLocked() Stats {
	s := Stats{
		RunID:        r.runID,
		Algorithm:    r.algorithm,
		Status:       r.status,
		Elements:     r.elements,
		ReadCount:    r.stats.reads.Load(),
		WriteCount:   r.stats.writes.Load(),
		LastAction:   r.stats.action(),
		LastDuration: r.lastDuration,
		Elapsed:      r.lastDuration,
	}
	if r.status == StatusRunning {
		s.Elapsed = time.Since(r.startedAt)
	}
	return s
}

// work runs on the worker goroutine: shuffle, reset counters, sort, then
// record the terminal state. Cancellation is the only error absorbed here;
// anything else is a defect and crashes the process.
func (r *Runner) work(alg algo.Algorithm[int], rng *rand.Rand, done chan struct{}) {
	defer close(done)

	start := time.Now()
	err := shuffle(r.seq, rng)
	if err == nil {
		r.stats.reset()
		start = time.Now()
		r.mu.Lock()
		r.startedAt = start
		r.mu.Unlock()

		err = alg.Sort(r.seq)
	}
	elapsed := time.Since(start)

	outcome := StatusCompleted
	switch {
	case err == nil:
	case cell.IsCancelled(err):
		outcome = StatusCancelled
	default:
		panic(fmt.Sprintf("runner: algorithm failed with a non-cancellation error: %v", err))
	}
	r.token.Stop()

	r.mu.Lock()
	r.status = outcome
	r.lastDuration = elapsed
	stats := r.snapshotLocked()
	r.mu.Unlock()

	if outcome == StatusCancelled {
		log.Printf("[Runner] Interrupted %s after %dµs", stats.Algorithm, elapsed.Microseconds())
		r.logEvent("run_cancelled", statsFields(stats))
		r.publish(eventbus.EventRunCancelled, stats)
		return
	}
	log.Printf("[Runner] %s took %dµs", stats.Algorithm, elapsed.Microseconds())
	r.logEvent("run_completed", statsFields(stats))
	r.publish(eventbus.EventRunCompleted, stats)
}

// shuffler returns the random source for the next shuffle.
func (r *Runner) shuffler() *rand.Rand {
	if r.seeded {
		return rand.New(rand.NewPCG(r.seed, r.seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// shuffle is a Fisher–Yates pass through the instrumented swap primitive, so
// the shuffle itself is visible to observers.
func shuffle(s *cell.Sequence[int], rng *rand.Rand) error {
	for i := s.Len() - 1; i > 0; i-- {
		if err := s.Swap(rng.IntN(i+1), i); err != nil {
			return err
		}
	}
	return nil
}

func ascending(n int) []int {
	values := make([]int, n)
	for i := range values {
		values[i] = i + 1
	}
	return values
}

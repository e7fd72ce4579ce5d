// Package job provides the worker-pool abstraction the render-path injects
// into the context so the rasterizer and culling stages can fork per-frame
// work and join before returning, mirroring the job-system contract the
// render-path's concurrency model describes: enqueue(task) plus a
// WaitGroup's add/done/wait.
package job

import (
	"runtime"
	"sync"

	"github.com/alitto/pond/v2"
)

// Task is a unit of work submitted to a System. Tasks never return an error;
// a task that hits a fatal condition is expected to record it on its own
// output rather than propagate, matching the no-exceptions hot path.
type Task func()

// WaitGroup mirrors the three operations the spec's job-system contract
// requires: add, done, wait. It is satisfied by *sync.WaitGroup.
type WaitGroup interface {
	Add(delta int)
	Done()
	Wait()
}

// System enqueues tasks onto a worker pool. Implementations must be safe
// for concurrent use by the calling (main) goroutine only — workers never
// enqueue further tasks.
type System interface {
	// Enqueue submits task to run on a worker goroutine.
	Enqueue(task Task)
	// NewWaitGroup returns a fresh WaitGroup the caller can Add to before
	// enqueuing tasks, and Wait on to join them.
	NewWaitGroup() WaitGroup
	// Workers returns the number of worker goroutines backing the system.
	Workers() int
	// Close releases pool resources. Safe to call once, after all frames
	// using the system have completed.
	Close()
}

// pondSystem backs System with github.com/alitto/pond/v2's worker pool.
type pondSystem struct {
	pool    pond.Pool
	workers int
}

// NewSystem returns the default job.System, sized to the host's hardware
// concurrency clamped to 8 workers as the spec's scheduling model directs.
// A workers value of 0 selects the clamped default.
func NewSystem(workers int) System {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > 8 {
		workers = 8
	}
	if workers < 1 {
		workers = 1
	}
	return &pondSystem{
		pool:    pond.NewPool(workers),
		workers: workers,
	}
}

func (s *pondSystem) Enqueue(task Task) {
	s.pool.Submit(func() { task() })
}

func (s *pondSystem) NewWaitGroup() WaitGroup {
	return &sync.WaitGroup{}
}

func (s *pondSystem) Workers() int { return s.workers }

func (s *pondSystem) Close() { s.pool.StopAndWait() }

// Inline runs every task on the calling goroutine. Used by the rasterizer
// and culling stages when the work is too small to justify fork/join, and
// by tests that want determinism without a pool.
type Inline struct{}

func (Inline) Enqueue(task Task)          { task() }
func (Inline) NewWaitGroup() WaitGroup    { return &sync.WaitGroup{} }
func (Inline) Workers() int               { return 1 }
func (Inline) Close()                     {}

var _ System = (*pondSystem)(nil)
var _ System = Inline{}

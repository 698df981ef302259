package autosave

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Muhsiinn/Jonas-AI/internal/lesson"
)

// SaveFunc persists one progress snapshot.
type SaveFunc func(context.Context, lesson.Progress) error

// Scheduler debounces and flushes progress writes so the backend is not
// saturated while the user types, without ever losing the final state on
// purpose. Saves are full-replace and idempotent, so a debounced flush
// racing an immediate one is harmless beyond a wasted request.
//
// Each mutation pushes its own snapshot copy, so the flush goroutine
// never touches state owned by the UI loop.
type Scheduler struct {
	save SaveFunc
	log  *zap.Logger

	mu       sync.Mutex
	timer    *time.Timer
	pending  lesson.Progress
	hasState bool
	bound    bool
	loaded   bool
	readOnly bool
	gen      int
}

// New creates a Scheduler. Nothing flushes until Bind and MarkLoaded.
func New(save SaveFunc, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{save: save, log: log}
}

// Bind attaches the scheduler to a newly loading session. Any pending
// debounce from the previous session is discarded, and the initial-load
// grace period starts: nothing flushes until MarkLoaded.
func (s *Scheduler) Bind(readOnly bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.gen++
	s.bound = true
	s.loaded = false
	s.readOnly = readOnly
	s.hasState = false
}

// MarkLoaded ends the initial-load grace period. Freshly fetched progress
// must never be echoed straight back as a save, so this is an explicit
// step after the session state is in place.
func (s *Scheduler) MarkLoaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
}

// Unbind detaches the scheduler, discarding any pending flush.
func (s *Scheduler) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.gen++
	s.bound = false
	s.loaded = false
	s.hasState = false
}

// Schedule records the snapshot and restarts the debounce timer. A new
// edit arriving before the delay elapses replaces the snapshot and the
// timer, so one uninterrupted burst produces exactly one flush carrying
// the last edit's state.
func (s *Scheduler) Schedule(p lesson.Progress, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.canFlushLocked() {
		return
	}
	s.pending = p
	s.hasState = true
	s.stopTimerLocked()
	gen := s.gen
	s.timer = time.AfterFunc(delay, func() { s.fire(gen) })
}

// Flush persists the snapshot immediately, cancelling any pending
// debounce. Used for discrete selections and step transitions.
func (s *Scheduler) Flush(ctx context.Context, p lesson.Progress) {
	s.mu.Lock()
	if !s.canFlushLocked() {
		s.mu.Unlock()
		return
	}
	s.pending = p
	s.hasState = true
	s.stopTimerLocked()
	s.mu.Unlock()

	s.deliver(ctx, p)
}

// Teardown attempts one final flush of the last known snapshot as the
// session is going away. Best effort: no retry, the error is swallowed.
func (s *Scheduler) Teardown(ctx context.Context) {
	s.mu.Lock()
	if !s.canFlushLocked() || !s.hasState {
		s.mu.Unlock()
		return
	}
	p := s.pending
	s.stopTimerLocked()
	s.mu.Unlock()

	s.deliver(ctx, p)
}

// Cancel drops any pending debounce without flushing.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
}

func (s *Scheduler) fire(gen int) {
	s.mu.Lock()
	if gen != s.gen || !s.canFlushLocked() || !s.hasState {
		s.mu.Unlock()
		return
	}
	p := s.pending
	s.timer = nil
	s.mu.Unlock()

	s.deliver(context.Background(), p)
}

// deliver performs the write. A failed autosave never surfaces to the
// user: the lesson stays usable from memory and the only cost of a lost
// write is resuming at an earlier point next load.
func (s *Scheduler) deliver(ctx context.Context, p lesson.Progress) {
	if err := s.save(ctx, p); err != nil {
		s.log.Warn("autosave failed", zap.Error(err), zap.String("step", string(p.CurrentStep)))
	}
}

func (s *Scheduler) canFlushLocked() bool {
	return s.bound && s.loaded && !s.readOnly
}

func (s *Scheduler) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

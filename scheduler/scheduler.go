// Package scheduler coalesces bursts of change notifications into at most one
// re-scan per deferral window.
package scheduler

import (
	"sync"
	"time"

	"marketplace-analyzer/utils"
)

// DefaultFrame is the deferral used when none is configured: one 60 Hz frame.
const DefaultFrame = 16 * time.Millisecond

// State is the scheduler's position in its two-state machine.
type State int

const (
	Idle State = iota
	ScanPending
)

func (s State) String() string {
	if s == ScanPending {
		return "scan-pending"
	}
	return "idle"
}

// ChangeSource emits bursts of change notifications. onBurst may fire
// arbitrarily often; debouncing is the scheduler's job, not the source's.
type ChangeSource interface {
	Subscribe(onBurst func()) (unsubscribe func())
}

// Deferrer arranges for fn to run once, later, on another call stack. The
// returned cancel func stops fn if it has not started yet. fn must never be
// invoked from inside the Deferrer call itself.
type Deferrer func(fn func()) (cancel func() bool)

// FrameDeferrer defers by d using time.AfterFunc.
func FrameDeferrer(d time.Duration) Deferrer {
	if d <= 0 {
		d = DefaultFrame
	}
	return func(fn func()) func() bool {
		return time.AfterFunc(d, fn).Stop
	}
}

// Scheduler runs scan at most once per deferral window however many
// notifications arrive, and never runs two scans at once.
type Scheduler struct {
	mu          sync.Mutex
	state       State
	generation  uint64
	cancel      func() bool
	unsubscribe func()
	closed      bool

	scanMu   sync.Mutex
	scan     func()
	deferrer Deferrer
	logger   *utils.Logger
}

// New creates an idle scheduler that calls scan after each burst.
func New(scan func(), frame time.Duration, logger *utils.Logger) *Scheduler {
	return &Scheduler{
		scan:     scan,
		deferrer: FrameDeferrer(frame),
		logger:   logger,
	}
}

// WithDeferrer replaces the deferral mechanism. Used by tests.
func (s *Scheduler) WithDeferrer(d Deferrer) *Scheduler {
	s.deferrer = d
	return s
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Notify records a change. From Idle it schedules one deferred scan; while a
// scan is pending it is absorbed.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state == ScanPending {
		return
	}
	s.state = ScanPending
	gen := s.generation
	s.cancel = s.deferrer(func() { s.run(gen) })
}

// run flips back to Idle before scanning so that a notification arriving
// mid-scan schedules a fresh cycle.
func (s *Scheduler) run(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || s.state != ScanPending {
		s.mu.Unlock()
		return
	}
	s.state = Idle
	s.cancel = nil
	s.mu.Unlock()

	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	s.scan()
}

// Observe subscribes to source, replacing any previous subscription.
func (s *Scheduler) Observe(source ChangeSource) {
	s.Disconnect()

	unsub := source.Subscribe(s.Notify)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsub()
		return
	}
	s.unsubscribe = unsub
	s.mu.Unlock()
	s.logger.Debug("[scheduler] Observing change source")
}

// Disconnect unsubscribes from the source and drops any pending scan. A scan
// already running is allowed to finish.
func (s *Scheduler) Disconnect() {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	dropped := s.state == ScanPending
	s.state = Idle
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if dropped {
		s.logger.Debug("[scheduler] Dropped pending scan")
	}
}

// Close disconnects and ignores every later notification.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.Disconnect()
}

// Wait blocks until a running scan, if any, has finished.
func (s *Scheduler) Wait() {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
}

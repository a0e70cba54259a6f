package combat

import (
	"sync"
	"time"
)

// Purpose names what a deferred task does.
type Purpose string

const (
	PurposeTick            Purpose = "tick"
	PurposeCountdown       Purpose = "countdown"
	PurposeClearAnimation  Purpose = "clearAnimation"
	PurposeClearActionLock Purpose = "clearActionLock"
	PurposeSpecialAttack   Purpose = "specialAttack"
	PurposeClearMessage    Purpose = "clearMessage"
)

// HideDamagePurpose returns the purpose that hides the damage-log entry id.
func HideDamagePurpose(id string) Purpose {
	return Purpose("hideDamage:" + id)
}

// TaskKey identifies a deferred task. ActorID 0 is used for engine-level tasks.
type TaskKey struct {
	ActorID int64
	Purpose Purpose
}

// Scheduler runs deferred callbacks.
//
// Invariant: at most one task per key is pending; ScheduleAfter replaces any
// pending task with the same key.
type Scheduler interface {
	// ScheduleAfter runs fn after delay, cancelling any pending task with key.
	ScheduleAfter(key TaskKey, delay time.Duration, fn func())
	// Cancel drops the pending task with key, if any.
	Cancel(key TaskKey)
	// CancelAll drops every pending task.
	CancelAll()
}

type virtualTask struct {
	at  time.Duration
	seq uint64
	fn  func()
}

// VirtualScheduler runs tasks against a simulated clock that only moves when
// Advance or Step is called. It is safe for concurrent use; callbacks run on
// the goroutine that advances the clock, without the scheduler's lock held.
type VirtualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks map[TaskKey]*virtualTask
}

// NewVirtualScheduler returns a scheduler whose clock starts at zero.
func NewVirtualScheduler() *VirtualScheduler {
	return &VirtualScheduler{tasks: make(map[TaskKey]*virtualTask)}
}

// ScheduleAfter registers fn to run when the clock reaches now+delay.
// A negative delay is treated as zero.
func (s *VirtualScheduler) ScheduleAfter(key TaskKey, delay time.Duration, fn func()) {
	if fn == nil {
		panic("combat.VirtualScheduler.ScheduleAfter: fn must not be nil")
	}
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.tasks[key] = &virtualTask{at: s.now + delay, seq: s.seq, fn: fn}
}

// Cancel drops the pending task with key.
func (s *VirtualScheduler) Cancel(key TaskKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, key)
}

// CancelAll drops every pending task.
func (s *VirtualScheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[TaskKey]*virtualTask)
}

// Now returns the simulated time elapsed since construction.
func (s *VirtualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending reports whether a task with key is waiting to run.
func (s *VirtualScheduler) Pending(key TaskKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

// Len returns the number of pending tasks.
func (s *VirtualScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Advance moves the clock forward by d, running every task that falls due in
// time order. Tasks scheduled by callbacks run too if they fall due within d.
// Ties run in scheduling order.
//
// Precondition: d >= 0.
// Postcondition: Now() == old(Now()) + d.
func (s *VirtualScheduler) Advance(d time.Duration) {
	if d < 0 {
		panic("combat.VirtualScheduler.Advance: d must be >= 0")
	}
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()
	for s.runNext(target) {
	}
	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// Step jumps the clock to the earliest pending task and runs it.
//
// Postcondition: returns false when no task is pending.
func (s *VirtualScheduler) Step() bool {
	return s.runNext(time.Duration(1<<63 - 1))
}

func (s *VirtualScheduler) runNext(limit time.Duration) bool {
	s.mu.Lock()
	var (
		nextKey TaskKey
		next    *virtualTask
	)
	for k, t := range s.tasks {
		if t.at > limit {
			continue
		}
		if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
			nextKey, next = k, t
		}
	}
	if next == nil {
		s.mu.Unlock()
		return false
	}
	delete(s.tasks, nextKey)
	if next.at > s.now {
		s.now = next.at
	}
	s.mu.Unlock()
	next.fn()
	return true
}

type wallTask struct {
	timer *time.Timer
}

// WallScheduler runs tasks on real time via time.AfterFunc. Callbacks run on
// their own goroutines. It is safe for concurrent use.
type WallScheduler struct {
	mu    sync.Mutex
	tasks map[TaskKey]*wallTask
}

// NewWallScheduler returns an empty WallScheduler.
func NewWallScheduler() *WallScheduler {
	return &WallScheduler{tasks: make(map[TaskKey]*wallTask)}
}

// ScheduleAfter stops any pending timer for key and starts a new one.
//
// Precondition: fn must not be nil.
// Postcondition: fn will be called after delay unless Cancel, CancelAll or a
// later ScheduleAfter with the same key is called first.
func (s *WallScheduler) ScheduleAfter(key TaskKey, delay time.Duration, fn func()) {
	if fn == nil {
		panic("combat.WallScheduler.ScheduleAfter: fn must not be nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.tasks[key]; ok {
		existing.timer.Stop()
	}
	task := &wallTask{}
	s.tasks[key] = task
	task.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		current := s.tasks[key] == task
		if current {
			delete(s.tasks, key)
		}
		s.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel stops the pending timer for key. Safe to call multiple times.
func (s *WallScheduler) Cancel(key TaskKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[key]; ok {
		t.timer.Stop()
		delete(s.tasks, key)
	}
}

// CancelAll stops every pending timer.
func (s *WallScheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, k)
	}
}

// Pending reports whether a timer for key is waiting to fire.
func (s *WallScheduler) Pending(key TaskKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

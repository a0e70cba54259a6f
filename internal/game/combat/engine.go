// Package combat runs the encounter state machine: the countdown, the combat
// tick loop, the player's intents and the deferred tasks that clear animations
// and land special attacks.
//
// Every mutation happens with the engine lock held, so one tick or intent runs
// at a time regardless of the Scheduler driving it.
package combat

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arpg/internal/game/actor"
	"github.com/cory-johannsen/arpg/internal/game/ai"
	"github.com/cory-johannsen/arpg/internal/game/dice"
	"github.com/cory-johannsen/arpg/internal/game/loot"
	"github.com/cory-johannsen/arpg/internal/game/vendor"
)

const (
	// SpecialRestoreInterval is how often both actors regain special resource.
	SpecialRestoreInterval = 6 * time.Second
	// EatLockTicks is how long eating locks actions.
	EatLockTicks = 1
	// EatAnimationTicks is how long the eating animation lasts.
	EatAnimationTicks = 3
	// DamageRevealTicks is how long a revealed damage-log entry stays visible.
	DamageRevealTicks = 2
	// NotInCombatMessage is shown when a special attack is tapped outside combat.
	NotInCombatMessage = "I must be in combat!"
)

// Options are the engine's timing and sizing parameters.
type Options struct {
	TickUnit             time.Duration
	CountdownInterval    time.Duration
	AttackAnimation      time.Duration
	SearchDepth          int
	DamageLogSize        int
	MessageDurationTicks int
}

// DefaultOptions returns the standard game timings.
func DefaultOptions() Options {
	return Options{
		TickUnit:             600 * time.Millisecond,
		CountdownInterval:    time.Second,
		AttackAnimation:      200 * time.Millisecond,
		SearchDepth:          ai.DefaultDepth,
		DamageLogSize:        32,
		MessageDurationTicks: 4,
	}
}

// Validate checks that every option is usable.
func (o Options) Validate() error {
	var errs []error
	if o.TickUnit <= 0 {
		errs = append(errs, fmt.Errorf("tick unit must be > 0, got %s", o.TickUnit))
	}
	if o.CountdownInterval <= 0 {
		errs = append(errs, fmt.Errorf("countdown interval must be > 0, got %s", o.CountdownInterval))
	}
	if o.AttackAnimation < 0 {
		errs = append(errs, fmt.Errorf("attack animation must be >= 0, got %s", o.AttackAnimation))
	}
	if o.SearchDepth < 1 {
		errs = append(errs, fmt.Errorf("search depth must be >= 1, got %d", o.SearchDepth))
	}
	if o.DamageLogSize < 0 {
		errs = append(errs, fmt.Errorf("damage log size must be >= 0, got %d", o.DamageLogSize))
	}
	if o.MessageDurationTicks < 1 {
		errs = append(errs, fmt.Errorf("message duration must be >= 1 tick, got %d", o.MessageDurationTicks))
	}
	return errors.Join(errs...)
}

// ticks returns the duration of n combat ticks.
func (o Options) ticks(n int) time.Duration {
	return time.Duration(n) * o.TickUnit
}

// ticksPerRestore returns the special-resource cadence in ticks.
func (o Options) ticksPerRestore() int {
	return max(1, int(SpecialRestoreInterval/o.TickUnit))
}

// Engine owns one game State and advances it.
//
// Invariant: at most one deferred task per TaskKey is live; a task whose key
// was cancelled or rescheduled never runs its callback.
type Engine struct {
	mu      sync.Mutex
	state   *State
	gen     *loot.Generator
	src     dice.Source
	sched   Scheduler
	planner *ai.Planner
	opts    Options
	logger  *zap.Logger
	now     func() time.Time

	tasks map[TaskKey]uint64
	seq   uint64
	// aiActive is the actor whose abstract turn the next planner call takes.
	aiActive int64
}

// NewEngine builds an engine over state and applies the rehydrate rules of Restore.
//
// Precondition: gen and sched must not be nil. A nil state starts a new game
// for a player named "Player". A nil logger is replaced with a no-op logger.
// Postcondition: Returns an error when opts is invalid.
func NewEngine(state *State, gen *loot.Generator, sched Scheduler, opts Options, logger *zap.Logger) (*Engine, error) {
	if gen == nil {
		panic("combat.NewEngine: gen must not be nil")
	}
	if sched == nil {
		panic("combat.NewEngine: sched must not be nil")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("combat options: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if state == nil {
		state = NewState("Player")
	}
	e := &Engine{
		gen:     gen,
		src:     gen.Source(),
		sched:   sched,
		planner: ai.NewPlanner(opts.SearchDepth),
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		tasks:   make(map[TaskKey]uint64),
	}
	e.Restore(state)
	return e, nil
}

// SetClock replaces the wall clock used to stamp archived encounters.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// Restore replaces the engine's state. Every pending task is dropped. A live
// (non-terminal) encounter is discarded and the player's life and special
// resource are reset to max; stale animation locks are cleared.
//
// Precondition: state and state.Player must not be nil.
func (e *Engine) Restore(state *State) {
	if state == nil || state.Player == nil {
		panic("combat.Engine.Restore: state and state.Player must not be nil")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelAllLocked()
	p := state.Player
	p.Refresh()
	p.Status = actor.CombatStatus{}
	p.Message = ""
	if state.Active != nil {
		state.Active.Monster.Refresh()
		if !state.Active.IsTerminal() {
			e.logger.Info("discarding live encounter on restore", zap.String("encounter", state.Active.ID))
			state.Active = nil
			p.ResetVitals()
			p.DamageLog = nil
		}
	}
	e.state = state
	if state.Preview != nil && state.PreviewedEncounter() == nil {
		state.Preview = nil
	}
	if state.Vendor == nil {
		e.restockLocked()
	}
	e.aiActive = p.ID
}

// State returns a deep copy of the game state for persistence.
func (e *Engine) State() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Snapshot is the query surface: a deep copy of the state plus derived values.
type Snapshot struct {
	State                 *State
	PlayerMaxLife         float64
	PlayerMaxMana         float64
	PlayerArmour          float64
	ExperienceToNextLevel float64
	MonsterMaxLife        float64
	Wins                  int
}

// Snapshot returns the current query view.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.state.Player
	s := Snapshot{
		State:                 e.state.Clone(),
		PlayerMaxLife:         p.MaxLife(),
		PlayerMaxMana:         p.MaxMana(),
		PlayerArmour:          p.Armour(),
		ExperienceToNextLevel: actor.ExperienceToNextLevel(p.Level),
		Wins:                  e.state.Wins(),
	}
	if enc := e.state.Active; enc != nil {
		s.MonsterMaxLife = enc.Monster.MaxLife()
	}
	return s
}

// CombatView is the slice of state a fight reads: the player and the active
// encounter. It excludes the vendor and past encounters, so its cost does not
// grow with history.
type CombatView struct {
	Player    *actor.Actor
	Encounter *actor.Encounter
}

// Combat returns deep copies of the player and the active encounter. Encounter
// is nil outside an encounter.
func (e *Engine) Combat() CombatView {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := CombatView{Player: e.state.Player.Clone()}
	if enc := e.state.Active; enc != nil {
		v.Encounter = enc.Clone()
	}
	return v
}

// Vendor returns a deep copy of the vendor, or nil before the first restock.
func (e *Engine) Vendor() *vendor.Vendor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Vendor.Clone()
}

// LastEncounter returns a copy of the most recently archived encounter.
//
// Postcondition: ok is false when no encounter has been archived.
func (e *Engine) LastEncounter() (past actor.PastEncounter, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(e.state.PastEncounters)
	if n == 0 {
		return actor.PastEncounter{}, false
	}
	last := e.state.PastEncounters[n-1]
	return actor.PastEncounter{
		Encounter: last.Encounter.Clone(),
		DamageLog: append([]actor.DamageLogEntry(nil), last.DamageLog...),
		EndedAt:   last.EndedAt,
	}, true
}

// Pending reports whether the deferred task with key is live.
func (e *Engine) Pending(key TaskKey) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.tasks[key]
	return ok
}

// Close drops every pending task. The engine stays usable.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelAllLocked()
}

// scheduleLocked registers fn under key, superseding any live task with the
// same key. fn runs with the engine lock held.
//
// Precondition: e.mu is held.
func (e *Engine) scheduleLocked(key TaskKey, delay time.Duration, fn func()) {
	e.seq++
	gen := e.seq
	e.tasks[key] = gen
	e.sched.ScheduleAfter(key, delay, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.tasks[key] != gen {
			return
		}
		delete(e.tasks, key)
		fn()
	})
}

// cancelLocked drops the task with key. Precondition: e.mu is held.
func (e *Engine) cancelLocked(key TaskKey) {
	delete(e.tasks, key)
	e.sched.Cancel(key)
}

// cancelAllLocked drops every task. Precondition: e.mu is held.
func (e *Engine) cancelAllLocked() {
	e.tasks = make(map[TaskKey]uint64)
	e.sched.CancelAll()
}

// actorLocked returns the player or the active monster with id, or nil.
func (e *Engine) actorLocked(id int64) *actor.Actor {
	if p := e.state.Player; p != nil && p.ID == id {
		return p
	}
	if enc := e.state.Active; enc != nil && enc.Monster != nil && enc.Monster.ID == id {
		return enc.Monster
	}
	return nil
}

// restockLocked regenerates vendor stock for the player's level and wins.
func (e *Engine) restockLocked() {
	e.state.Vendor = vendor.Restock(e.gen.Catalog(), e.state.Player.Level, e.state.Wins(), e.src)
}

// setMessageLocked shows msg to the player for MessageDurationTicks ticks.
func (e *Engine) setMessageLocked(msg string) {
	p := e.state.Player
	p.Message = msg
	e.scheduleLocked(TaskKey{p.ID, PurposeClearMessage}, e.opts.ticks(e.opts.MessageDurationTicks), func() {
		if e.state.Player.Message == msg {
			e.state.Player.Message = ""
		}
	})
}

// clearAnimationLaterLocked schedules a return to AnimationNone for id after
// delay, if the actor still shows want by then.
func (e *Engine) clearAnimationLaterLocked(id int64, want actor.Animation, delay time.Duration) {
	e.scheduleLocked(TaskKey{id, PurposeClearAnimation}, delay, func() {
		if a := e.actorLocked(id); a != nil && a.Status.Animation == want {
			a.ClearAnimation()
		}
	})
}

// eatLocked consumes the food in slot for a: it heals, sets the eating
// animation and locks actions for EatLockTicks.
//
// Postcondition: returns false, leaving a unchanged, when a is dead or action
// locked, the slot holds no food, or eating would exceed max life.
func (e *Engine) eatLocked(a *actor.Actor, slot int) bool {
	it := a.Inventory.At(slot)
	if a.IsDead() || a.Status.ActionLocked || it == nil || it.Kind != actor.ItemFood || !a.CanEat(it.Food) {
		return false
	}
	a.Inventory.Take(slot)
	a.Heal(it.Food.Restore())
	a.Status.Animation = actor.AnimationEating
	a.Status.Eating = it.Food
	a.Status.ActionLocked = true
	id := a.ID
	e.scheduleLocked(TaskKey{id, PurposeClearActionLock}, e.opts.ticks(EatLockTicks), func() {
		if a := e.actorLocked(id); a != nil {
			a.Status.ActionLocked = false
		}
	})
	e.clearAnimationLaterLocked(id, actor.AnimationEating, e.opts.ticks(EatAnimationTicks))
	return true
}

// Package actor defines CombatActor, the single data type shared by players
// and monsters, together with inventories, items and encounters.
package actor

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/cory-johannsen/arpg/internal/game/damage"
	"github.com/cory-johannsen/arpg/internal/game/dice"
	"github.com/cory-johannsen/arpg/internal/game/equipment"
	"github.com/cory-johannsen/arpg/internal/game/food"
	"github.com/cory-johannsen/arpg/internal/game/stat"
	"github.com/cory-johannsen/arpg/internal/game/talent"
)

// Kind distinguishes players from monsters.
type Kind int

const (
	KindPlayer Kind = iota
	KindMonster
)

// String returns "player" or "monster".
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindMonster:
		return "monster"
	default:
		return "unknown"
	}
}

// Animation is the actor's current animation lock.
type Animation int

const (
	AnimationNone Animation = iota
	AnimationAttacking
	AnimationEating
	AnimationSpecialAttacking
)

// String returns a lowercase label for the animation.
func (a Animation) String() string {
	switch a {
	case AnimationNone:
		return "none"
	case AnimationAttacking:
		return "attacking"
	case AnimationEating:
		return "eating"
	case AnimationSpecialAttacking:
		return "specialAttacking"
	default:
		return "unknown"
	}
}

const (
	// InventorySize is the fixed number of player inventory slots.
	InventorySize = 24
	// MaxInventorySlots bounds a monster's inventory.
	MaxInventorySlots = 24
	// MaxSpecialResource is the special-attack resource ceiling.
	MaxSpecialResource = 100
	// SpecialRestoreAmount is restored on every special-resource cadence tick.
	SpecialRestoreAmount = 10
	// FlatMaxLifePerLevel is added to the intrinsic ledger on every level up.
	FlatMaxLifePerLevel = 12
	// StartingShrimp is the number of shrimp a new player carries.
	StartingShrimp = 4
)

// CombatStatus holds the actor's animation and action locks.
type CombatStatus struct {
	Animation Animation `json:"animation"`
	// Eating is the food being eaten while Animation is AnimationEating.
	Eating        food.Kind      `json:"eating,omitempty"`
	ActionLocked  bool           `json:"actionLocked"`
	QueuedSpecial damage.Special `json:"queuedSpecial,omitempty"`
}

// DamageLogEntry records one hit an actor received.
type DamageLogEntry struct {
	ID       string        `json:"id"`
	SourceID int64         `json:"sourceId"`
	Damage   damage.Damage `json:"damage"`
	// Show is toggled by the presentation layer only.
	Show bool `json:"show"`
}

// Actor is a combat participant. Fields shared by both kinds live directly on
// the struct; Experience, TalentPoints, Talents and Message are player-only.
//
// Invariant: 0 <= CurrentLife <= MaxLife(); at most one item per equipment slot.
type Actor struct {
	ID   int64  `json:"id"`
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
	// Level is the character level for players and the spawn level for monsters.
	Level int `json:"level"`

	// Intrinsic holds base, level and talent stats; equipment is layered on top.
	Intrinsic stat.Ledger `json:"intrinsic"`
	stats     stat.Ledger

	CurrentLife     float64 `json:"currentLife"`
	CurrentMana     float64 `json:"currentMana"`
	SpecialResource float64 `json:"specialResource"`

	Equipped  map[equipment.Slot]*equipment.Equipment `json:"equipped"`
	Inventory Inventory                               `json:"inventory"`
	Status    CombatStatus                            `json:"status"`
	DamageLog []DamageLogEntry                        `json:"damageLog,omitempty"`

	Experience   float64      `json:"experience,omitempty"`
	TalentPoints int          `json:"talentPoints,omitempty"`
	Talents      *talent.Tree `json:"talents,omitempty"`
	Message      string       `json:"message,omitempty"`
}

// NewID returns a random positive actor id.
func NewID() int64 {
	u := uuid.New()
	return int64(binary.BigEndian.Uint64(u[:8]) >> 1)
}

// NewPlayer builds a level-1 player at full life with the starting food supply.
//
// Postcondition: MaxLife() == 150; len(Inventory.Slots) == InventorySize.
func NewPlayer(name string) *Actor {
	a := &Actor{
		ID:        NewID(),
		Kind:      KindPlayer,
		Name:      name,
		Icon:      "🧙",
		Level:     1,
		Intrinsic: stat.PlayerBase(),
		Equipped:  map[equipment.Slot]*equipment.Equipment{},
		Inventory: NewInventory(InventorySize),
		Talents:   talent.New(),
	}
	for i := 0; i < StartingShrimp; i++ {
		a.Inventory.Put(FoodItem(food.Shrimp))
	}
	a.Refresh()
	a.ResetVitals()
	return a
}

// NewMonster builds a monster at full life. extra is merged over the monster base ledger.
//
// Precondition: level >= 1; 0 < slots <= MaxInventorySlots.
func NewMonster(name, icon string, level int, extra map[stat.Key]float64, slots int) *Actor {
	if level < 1 {
		panic(fmt.Sprintf("actor.NewMonster: level must be >= 1, got %d", level))
	}
	if slots <= 0 || slots > MaxInventorySlots {
		panic(fmt.Sprintf("actor.NewMonster: slots must be in (0, %d], got %d", MaxInventorySlots, slots))
	}
	intrinsic := stat.MonsterBase()
	intrinsic.Merge(extra)
	a := &Actor{
		ID:        NewID(),
		Kind:      KindMonster,
		Name:      name,
		Icon:      icon,
		Level:     level,
		Intrinsic: intrinsic,
		Equipped:  map[equipment.Slot]*equipment.Equipment{},
		Inventory: NewInventory(slots),
	}
	a.Refresh()
	a.ResetVitals()
	return a
}

// Refresh recomputes the effective ledger from Intrinsic and every equipped
// item in equipment.AllSlots order, then clamps life and mana to their maxima.
// It must be called after deserialization and after any Intrinsic change.
func (a *Actor) Refresh() {
	l := a.Intrinsic.Clone()
	for _, slot := range equipment.AllSlots {
		if e := a.Equipped[slot]; e != nil {
			l.Merge(e.Stats())
		}
	}
	a.stats = l
	a.CurrentLife = math.Min(math.Max(a.CurrentLife, 0), a.MaxLife())
	a.CurrentMana = math.Min(math.Max(a.CurrentMana, 0), a.MaxMana())
}

// Stats returns the effective ledger. Callers must not modify it.
func (a *Actor) Stats() stat.Ledger {
	if a.stats == nil {
		a.Refresh()
	}
	return a.stats
}

// MaxLife returns the derived life ceiling.
func (a *Actor) MaxLife() float64 { return a.Stats().MaxLife() }

// MaxMana returns the derived mana ceiling.
func (a *Actor) MaxMana() float64 { return a.Stats().MaxMana() }

// Armour returns the total armour after percent increases.
func (a *Actor) Armour() float64 { return a.Stats().TotalArmour() }

// LifeFraction returns CurrentLife / MaxLife, or 0 when MaxLife is not positive.
func (a *Actor) LifeFraction() float64 {
	m := a.MaxLife()
	if m <= 0 {
		return 0
	}
	return a.CurrentLife / m
}

// IsDead reports CurrentLife <= 0.
func (a *Actor) IsDead() bool { return a.CurrentLife <= 0 }

// Weapon returns the equipped weapon or nil.
func (a *Actor) Weapon() *equipment.Equipment { return a.Equipped[equipment.SlotWeapon] }

// CanAttack reports alive AND no animation lock AND a weapon equipped.
func (a *Actor) CanAttack() bool {
	return !a.IsDead() && a.Status.Animation == AnimationNone && a.Weapon() != nil
}

// TicksPerAttack returns the equipped weapon's cadence, or math.MaxInt unarmed.
func (a *Actor) TicksPerAttack() int {
	if w := a.Weapon(); w != nil {
		return w.TicksPerAttack()
	}
	return math.MaxInt
}

// DamagePerAttack rolls one attack. It returns nil when no weapon is equipped.
//
// Precondition: src must be non-nil.
func (a *Actor) DamagePerAttack(src dice.Source) []damage.Damage {
	w := a.Weapon()
	if w == nil {
		return nil
	}
	return damage.PerAttack(w.Profile(), a.Stats(), src)
}

// ResetVitals restores life, mana and special resource to their maxima.
func (a *Actor) ResetVitals() {
	a.CurrentLife = a.MaxLife()
	a.CurrentMana = a.MaxMana()
	a.SpecialResource = MaxSpecialResource
}

// Heal restores amount life, clamped at MaxLife.
//
// Precondition: amount >= 0.
func (a *Actor) Heal(amount float64) {
	a.CurrentLife = math.Min(a.MaxLife(), a.CurrentLife+amount)
}

// CanEat reports whether eating k would not exceed MaxLife.
func (a *Actor) CanEat(k food.Kind) bool {
	return a.CurrentLife+k.Restore() <= a.MaxLife()
}

// RestoreSpecial adds amount to the special resource, clamped at MaxSpecialResource.
func (a *Actor) RestoreSpecial(amount float64) {
	a.SpecialResource = math.Min(MaxSpecialResource, a.SpecialResource+amount)
}

// RegenerateLife applies one tick of the lifeRegen stat.
func (a *Actor) RegenerateLife() {
	if a.IsDead() {
		return
	}
	a.Heal(a.Stats().Get(stat.LifeRegen))
}

// ReceiveDamage mitigates d against this actor's stats, subtracts it from
// CurrentLife (floored at 0) and appends a log entry, keeping at most logLimit
// entries (oldest dropped). A logLimit <= 0 keeps every entry.
//
// Postcondition: CurrentLife >= 0; returns the appended entry.
func (a *Actor) ReceiveDamage(d damage.Damage, sourceID int64, logLimit int) DamageLogEntry {
	applied := damage.Mitigate(d, a.Stats())
	a.CurrentLife = math.Max(0, a.CurrentLife-applied.Raw)
	entry := DamageLogEntry{ID: uuid.New().String(), SourceID: sourceID, Damage: applied}
	a.DamageLog = append(a.DamageLog, entry)
	if logLimit > 0 && len(a.DamageLog) > logLimit {
		a.DamageLog = append([]DamageLogEntry(nil), a.DamageLog[len(a.DamageLog)-logLimit:]...)
	}
	return entry
}

// SetDamageVisible sets the Show flag of the log entry with id.
func (a *Actor) SetDamageVisible(id string, show bool) bool {
	for i := range a.DamageLog {
		if a.DamageLog[i].ID == id {
			a.DamageLog[i].Show = show
			return true
		}
	}
	return false
}

// ClearAnimation returns the actor to AnimationNone.
func (a *Actor) ClearAnimation() {
	a.Status.Animation = AnimationNone
	a.Status.Eating = ""
}

// Clone returns a deep copy. Equipment instances are immutable and shared.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}
	out := *a
	out.Intrinsic = a.Intrinsic.Clone()
	out.stats = nil
	out.Equipped = make(map[equipment.Slot]*equipment.Equipment, len(a.Equipped))
	for k, v := range a.Equipped {
		out.Equipped[k] = v
	}
	out.Inventory = a.Inventory.Clone()
	out.DamageLog = append([]DamageLogEntry(nil), a.DamageLog...)
	if a.Talents != nil {
		t := talent.Tree{Nodes: append([]talent.Node(nil), a.Talents.Nodes...)}
		out.Talents = &t
	}
	out.Refresh()
	return &out
}

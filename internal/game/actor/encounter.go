package actor

import (
	"fmt"
	"time"

	"github.com/cory-johannsen/arpg/internal/game/equipment"
)

// Phase is an encounter's lifecycle state.
type Phase string

const (
	PhasePreviewing Phase = "previewing"
	PhaseCountdown  Phase = "countdown"
	PhaseActive     Phase = "active"
	PhaseWon        Phase = "won"
	PhaseLost       Phase = "lost"
)

// Modifier alters an encounter and raises its loot bonuses.
type Modifier string

const (
	CannotRegenerateLife  Modifier = "cannotRegenerateLife"
	IncMonsterAttackSpeed Modifier = "incMonsterAttackSpeed"
	PhysReflect           Modifier = "physReflect"
	AddedFire             Modifier = "addedFire"
	AddedCold             Modifier = "addedCold"
	AddedLightning        Modifier = "addedLightning"
)

// AllModifiers is the modifier pool.
var AllModifiers = []Modifier{
	CannotRegenerateLife, IncMonsterAttackSpeed, PhysReflect,
	AddedFire, AddedCold, AddedLightning,
}

// PhysReflectFraction is the share of physical damage reflected by PhysReflect.
const PhysReflectFraction = 0.1

// Bonus returns the item rarity and quantity bonus the modifier contributes.
func (m Modifier) Bonus() (rarity, quantity float64) {
	switch m {
	case CannotRegenerateLife:
		return 0.30, 0.50
	case IncMonsterAttackSpeed:
		return 0.10, 0.15
	case PhysReflect:
		return 0.25, 0.45
	case AddedFire, AddedCold, AddedLightning:
		return 0.15, 0.20
	default:
		panic(fmt.Sprintf("actor.Modifier.Bonus: unknown modifier %q", string(m)))
	}
}

// Description returns player-facing text.
func (m Modifier) Description() string {
	switch m {
	case CannotRegenerateLife:
		return "Player cannot regenerate life"
	case IncMonsterAttackSpeed:
		return "Monster attacks faster"
	case PhysReflect:
		return "Monster reflects physical damage"
	case AddedFire:
		return "Monster deals added fire damage"
	case AddedCold:
		return "Monster deals added cold damage"
	case AddedLightning:
		return "Monster deals added lightning damage"
	default:
		return string(m)
	}
}

// CountdownStart is the first countdown value shown before combat.
const CountdownStart = 3

// Encounter is one monster fight.
type Encounter struct {
	ID           string           `json:"id"`
	Monster      *Actor           `json:"monster"`
	MonsterBase  string           `json:"monsterBase"`
	Level        int              `json:"level"`
	Rarity       equipment.Rarity `json:"rarity"`
	Modifiers    []Modifier       `json:"modifiers,omitempty"`
	ItemRarity   float64          `json:"itemRarity"`
	ItemQuantity float64          `json:"itemQuantity"`
	TickCount    int              `json:"tickCount"`
	Countdown    int              `json:"countdown"`
	Phase        Phase            `json:"phase"`
}

// Name returns a display name such as "Magic Rat (level 3)".
func (e *Encounter) Name() string {
	prefix := ""
	switch e.Rarity {
	case equipment.Magic:
		prefix = "Magic "
	case equipment.Rare:
		prefix = "Rare "
	}
	return fmt.Sprintf("%s%s (level %d)", prefix, e.Monster.Name, e.Level)
}

// Has reports whether the encounter carries m.
func (e *Encounter) Has(m Modifier) bool {
	for _, x := range e.Modifiers {
		if x == m {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the encounter is won or lost.
func (e *Encounter) IsTerminal() bool {
	return e.Phase == PhaseWon || e.Phase == PhaseLost
}

// MonsterTicksPerAttack returns the monster's attack cadence after modifiers.
func (e *Encounter) MonsterTicksPerAttack() int {
	t := e.Monster.TicksPerAttack()
	if e.Has(IncMonsterAttackSpeed) && t > 1 && e.Monster.Weapon() != nil {
		t--
	}
	return t
}

// BuyPrice is level * 15 * rarity price modifier.
func (e *Encounter) BuyPrice() int {
	return int(float64(e.Level) * 15 * e.Rarity.PriceModifier())
}

// SellPrice is 75% of BuyPrice.
func (e *Encounter) SellPrice() int {
	return int(float64(e.BuyPrice()) * 0.75)
}

// Clone returns a deep copy.
func (e *Encounter) Clone() *Encounter {
	if e == nil {
		return nil
	}
	out := *e
	out.Monster = e.Monster.Clone()
	out.Modifiers = append([]Modifier(nil), e.Modifiers...)
	return &out
}

// PastEncounter is an archived encounter with the player's damage log.
type PastEncounter struct {
	Encounter *Encounter       `json:"encounter"`
	DamageLog []DamageLogEntry `json:"damageLog,omitempty"`
	EndedAt   time.Time        `json:"endedAt"`
}

// Won reports whether the archived encounter was won.
func (p PastEncounter) Won() bool {
	return p.Encounter != nil && p.Encounter.Phase == PhaseWon
}

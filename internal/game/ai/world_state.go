package ai

import (
	"math"

	"github.com/cory-johannsen/arpg/internal/game/damage"
	"github.com/cory-johannsen/arpg/internal/game/food"
	"github.com/cory-johannsen/arpg/internal/game/stat"
)

// FoodState is one food item the combatant can eat in the simulation.
type FoodState struct {
	Slot    int
	Kind    food.Kind
	Restore float64
}

// CombatantState captures a combatant's combat-relevant state at planning time.
//
// Invariant: values are never mutated once built; Apply returns new states.
type CombatantState struct {
	ID      int64
	Life    float64
	MaxLife float64
	// Defence is the combatant's effective stat ledger, read for mitigation only.
	Defence stat.Ledger
	// Attack is the combatant's pre-rolled next attack.
	Attack []damage.Damage
	Foods  []FoodState
}

// LifeFraction returns Life / MaxLife; 0 if MaxLife <= 0.
func (c CombatantState) LifeFraction() float64 {
	if c.MaxLife <= 0 {
		return 0
	}
	return c.Life / c.MaxLife
}

// Dead reports Life <= 0.
func (c CombatantState) Dead() bool {
	return c.Life <= 0
}

// DamageAgainst returns the total of c's pre-rolled attack after target's mitigation.
func (c CombatantState) DamageAgainst(target CombatantState) float64 {
	var sum float64
	for _, d := range c.Attack {
		if target.Defence != nil {
			d = damage.Mitigate(d, target.Defence)
		}
		sum += d.Raw
	}
	return sum
}

// MoveKind is the kind of a simulated move.
type MoveKind int

const (
	MoveAttack MoveKind = iota
	MoveHeal
)

// String returns "attack" or "heal".
func (k MoveKind) String() string {
	if k == MoveHeal {
		return "heal"
	}
	return "attack"
}

// Move is one action a combatant can take in the simulation.
//
// Attack moves carry the damage they apply; heal moves carry the food and the
// inventory slot it is eaten from.
type Move struct {
	Kind    MoveKind
	ActorID int64
	Damage  []damage.Damage
	Food    food.Kind
	Slot    int
}

// WorldState is the two-combatant snapshot the planner searches over.
//
// Invariant: Active is 0 or 1 and indexes the combatant whose turn it is.
type WorldState struct {
	Combatants [2]CombatantState
	Active     int
}

// Terminal reports whether either combatant is dead.
func (ws WorldState) Terminal() bool {
	return ws.Combatants[0].Dead() || ws.Combatants[1].Dead()
}

// IndexOf returns the index of the combatant with id, or -1.
func (ws WorldState) IndexOf(id int64) int {
	for i, c := range ws.Combatants {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Moves returns the legal moves for the active combatant: an attack first,
// then one heal per distinct food kind whose restore fits under MaxLife.
//
// Postcondition: empty iff the state is terminal.
func (ws WorldState) Moves() []Move {
	if ws.Terminal() {
		return nil
	}
	self := ws.Combatants[ws.Active]
	moves := []Move{{Kind: MoveAttack, ActorID: self.ID, Damage: self.Attack}}
	seen := map[food.Kind]bool{}
	for _, f := range self.Foods {
		if seen[f.Kind] {
			continue
		}
		seen[f.Kind] = true
		if self.Life+f.Restore <= self.MaxLife {
			moves = append(moves, Move{Kind: MoveHeal, ActorID: self.ID, Food: f.Kind, Slot: f.Slot})
		}
	}
	return moves
}

// Apply returns the state after the active combatant performs m. The turn
// passes to the other combatant.
//
// Precondition: m.ActorID is the active combatant.
func (ws WorldState) Apply(m Move) WorldState {
	next := ws
	self := ws.Combatants[ws.Active]
	other := ws.Combatants[1-ws.Active]
	switch m.Kind {
	case MoveAttack:
		attacker := self
		attacker.Attack = m.Damage
		other.Life = math.Max(0, other.Life-attacker.DamageAgainst(other))
	case MoveHeal:
		self.Foods = withoutSlot(self.Foods, m.Slot)
		for _, f := range ws.Combatants[ws.Active].Foods {
			if f.Slot == m.Slot {
				self.Life = math.Min(self.MaxLife, self.Life+f.Restore)
				break
			}
		}
	}
	next.Combatants[ws.Active] = self
	next.Combatants[1-ws.Active] = other
	next.Active = 1 - ws.Active
	return next
}

// Score returns the heuristic value of ws for the combatant at index i.
// Higher is better for that combatant.
func (ws WorldState) Score(i int) float64 {
	self := ws.Combatants[i]
	other := ws.Combatants[1-i]
	var score float64
	if self.LifeFraction() > other.LifeFraction() {
		score += 10
	}
	if self.DamageAgainst(other) >= other.Life {
		score += 30
	}
	return score + self.LifeFraction()*10
}

func withoutSlot(foods []FoodState, slot int) []FoodState {
	out := make([]FoodState, 0, len(foods))
	for _, f := range foods {
		if f.Slot != slot {
			out = append(out, f)
		}
	}
	return out
}

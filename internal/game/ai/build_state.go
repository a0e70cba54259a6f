package ai

import (
	"github.com/cory-johannsen/arpg/internal/game/actor"
	"github.com/cory-johannsen/arpg/internal/game/damage"
)

// BuildCombatant snapshots a for planning with the given pre-rolled attack.
//
// Precondition: a must not be nil.
// Postcondition: the result shares no mutable state with a.
func BuildCombatant(a *actor.Actor, attack []damage.Damage) CombatantState {
	c := CombatantState{
		ID:      a.ID,
		Life:    a.CurrentLife,
		MaxLife: a.MaxLife(),
		Defence: a.Stats().Clone(),
		Attack:  append([]damage.Damage(nil), attack...),
	}
	for i, it := range a.Inventory.Slots {
		if it != nil && it.Kind == actor.ItemFood {
			c.Foods = append(c.Foods, FoodState{Slot: i, Kind: it.Food, Restore: it.Food.Restore()})
		}
	}
	return c
}

// BuildCombatWorldState constructs the planning snapshot for a player and a
// monster. activeID selects whose turn it is; an unknown id selects the player.
//
// Precondition: player and monster must not be nil.
// Postcondition: ws.Combatants[0] is the player, ws.Combatants[1] the monster.
func BuildCombatWorldState(player, monster *actor.Actor, activeID int64, playerAttack, monsterAttack []damage.Damage) WorldState {
	ws := WorldState{Combatants: [2]CombatantState{
		BuildCombatant(player, playerAttack),
		BuildCombatant(monster, monsterAttack),
	}}
	if monster.ID == activeID {
		ws.Active = 1
	}
	return ws
}

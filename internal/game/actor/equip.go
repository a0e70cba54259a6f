package actor

import (
	"github.com/cory-johannsen/arpg/internal/game/equipment"
	"github.com/cory-johannsen/arpg/internal/game/stat"
)

// CanEquip reports whether the actor meets e's level and attribute requirements.
func (a *Actor) CanEquip(e *equipment.Equipment) bool {
	s := a.Stats()
	req := e.Base.Requirements
	return a.Level >= e.Base.LevelRequirement &&
		s.Get(stat.Strength) >= req.Strength &&
		s.Get(stat.Dexterity) >= req.Dexterity &&
		s.Get(stat.Intelligence) >= req.Intelligence
}

// Equip places e into its slot and returns the item it replaced, if any.
// Equipping and then unequipping the same item restores the effective ledger exactly.
//
// Precondition: e must be non-nil.
func (a *Actor) Equip(e *equipment.Equipment) *equipment.Equipment {
	if e == nil {
		panic("actor.Actor.Equip: e must not be nil")
	}
	if a.Equipped == nil {
		a.Equipped = map[equipment.Slot]*equipment.Equipment{}
	}
	prev := a.Equipped[e.Slot()]
	a.Equipped[e.Slot()] = e
	a.Refresh()
	return prev
}

// Unequip removes and returns the item in slot, or nil when the slot is empty.
func (a *Actor) Unequip(slot equipment.Slot) *equipment.Equipment {
	e := a.Equipped[slot]
	if e == nil {
		return nil
	}
	delete(a.Equipped, slot)
	a.Refresh()
	return e
}

// ClearEquipment unequips everything and returns the removed items in slot order.
func (a *Actor) ClearEquipment() []*equipment.Equipment {
	var out []*equipment.Equipment
	for _, slot := range equipment.AllSlots {
		if e := a.Equipped[slot]; e != nil {
			out = append(out, e)
		}
	}
	a.Equipped = map[equipment.Slot]*equipment.Equipment{}
	a.Refresh()
	return out
}

// ClaimTalent spends a talent point on the node with id.
//
// Postcondition: returns false, leaving the actor unchanged, when there is no
// talent tree, no unspent point, or the node cannot be claimed.
func (a *Actor) ClaimTalent(id string) bool {
	if a.Talents == nil || a.TalentPoints <= 0 {
		return false
	}
	grant, ok := a.Talents.Claim(id)
	if !ok {
		return false
	}
	a.TalentPoints--
	a.Intrinsic.Merge(grant)
	a.Refresh()
	return true
}

package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/arpg/internal/game/actor"
	"github.com/cory-johannsen/arpg/internal/game/damage"
	"github.com/cory-johannsen/arpg/internal/game/equipment"
	"github.com/cory-johannsen/arpg/internal/game/stat"
	"github.com/cory-johannsen/arpg/internal/game/vendor"
)

// Every intent returns true when it changed the state. A false return is a
// no-op: the intent did not apply and nothing was modified.

// AddRandomEncounter generates an encounter at the player's level and puts it
// in the player's inventory.
func (e *Engine) AddRandomEncounter() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.state.Player
	if _, ok := p.Inventory.FirstOpen(); !ok {
		return false
	}
	enc := e.gen.RandomEncounter(p.Level, p.Stats().Get(stat.IncItemRarity))
	return p.Inventory.Put(actor.EncounterItem(enc))
}

// PreviewEncounter selects the encounter item in slot for preview.
func (e *Engine) PreviewEncounter(slot int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	it := e.state.Player.Inventory.At(slot)
	if e.state.Active != nil || it == nil || it.Kind != actor.ItemEncounter {
		return false
	}
	e.state.Preview = &Preview{Slot: slot, EncounterID: it.Encounter.ID}
	return true
}

// ClosePreview clears the preview selection.
func (e *Engine) ClosePreview() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Preview == nil {
		return false
	}
	e.state.Preview = nil
	return true
}

// BeginEncounter consumes the previewed encounter item and starts its countdown.
//
// Postcondition: on success the encounter is in PhaseCountdown with Countdown
// == CountdownStart and exactly one countdown task is live.
func (e *Engine) BeginEncounter() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	enc := e.state.PreviewedEncounter()
	if enc == nil || e.state.Active != nil {
		return false
	}
	p := e.state.Player
	p.Inventory.Take(e.state.Preview.Slot)
	e.state.Preview = nil

	enc.Phase = actor.PhaseCountdown
	enc.Countdown = actor.CountdownStart
	enc.TickCount = 0
	e.state.Active = enc
	p.DamageLog = nil
	p.Status = actor.CombatStatus{}
	e.aiActive = p.ID

	e.cancelLocked(tickKey)
	e.scheduleLocked(countdownKey, e.opts.CountdownInterval, e.countdownLocked)
	e.logger.Info("encounter begun",
		zap.String("encounter", enc.ID),
		zap.String("monster", enc.Monster.Name),
		zap.Int("level", enc.Level),
		zap.Int("modifiers", len(enc.Modifiers)),
	)
	return true
}

// Equip equips the equipment item in slot. A replaced item takes its place.
func (e *Engine) Equip(slot int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.state.Player
	it := p.Inventory.At(slot)
	if p.IsDead() || it == nil || it.Kind != actor.ItemEquipment || !p.CanEquip(it.Equipment) {
		return false
	}
	p.Inventory.Take(slot)
	if prev := p.Equip(it.Equipment); prev != nil {
		p.Inventory.PutAt(slot, actor.EquipmentItem(prev))
	}
	return true
}

// Unequip moves the item in the equipment slot to the first open inventory slot.
func (e *Engine) Unequip(slot equipment.Slot) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.state.Player
	if p.Equipped[slot] == nil {
		return false
	}
	if _, ok := p.Inventory.FirstOpen(); !ok {
		return false
	}
	return p.Inventory.Put(actor.EquipmentItem(p.Unequip(slot)))
}

// ConsumeItem eats the food in slot.
func (e *Engine) ConsumeItem(slot int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eatLocked(e.state.Player, slot)
}

// TapSpecialAttack queues the equipped weapon's special attack for the next
// tick. Outside an active encounter it shows NotInCombatMessage instead.
func (e *Engine) TapSpecialAttack() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.state.Player
	enc := e.state.Active
	if enc == nil || enc.Phase != actor.PhaseActive {
		e.setMessageLocked(NotInCombatMessage)
		return true
	}
	w := p.Weapon()
	if w == nil || p.IsDead() {
		return false
	}
	sp := w.Special()
	if sp == damage.NoSpecial || p.Status.QueuedSpecial != damage.NoSpecial ||
		p.Status.Animation == actor.AnimationSpecialAttacking || p.SpecialResource < sp.Cost() {
		return false
	}
	p.Status.QueuedSpecial = sp
	return true
}

// AttemptLoot moves the item in slot of a defeated monster's inventory to the player.
func (e *Engine) AttemptLoot(slot int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	enc := e.state.Active
	if enc == nil || enc.Phase != actor.PhaseWon || !enc.Monster.IsDead() {
		return false
	}
	it := enc.Monster.Inventory.At(slot)
	p := e.state.Player
	if it == nil || !p.Inventory.HasRoomFor(it) {
		return false
	}
	enc.Monster.Inventory.Take(slot)
	return p.Inventory.Put(it)
}

// Exit leaves a won encounter.
func (e *Engine) Exit() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Active == nil || e.state.Active.Phase != actor.PhaseWon {
		return false
	}
	e.finishLocked()
	return true
}

// Revive leaves a lost encounter.
func (e *Engine) Revive() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Active == nil || e.state.Active.Phase != actor.PhaseLost {
		return false
	}
	e.finishLocked()
	return true
}

// finishLocked archives the active encounter with the player's damage log,
// resets the player's vitals and restocks the vendor.
func (e *Engine) finishLocked() {
	enc := e.state.Active
	p := e.state.Player
	e.cancelAllLocked()
	e.state.PastEncounters = append(e.state.PastEncounters, actor.PastEncounter{
		Encounter: enc,
		DamageLog: append([]actor.DamageLogEntry(nil), p.DamageLog...),
		EndedAt:   e.now(),
	})
	e.state.Active = nil
	p.ResetVitals()
	p.DamageLog = nil
	p.Status = actor.CombatStatus{}
	p.Message = ""
	e.restockLocked()
	e.logger.Info("encounter archived",
		zap.String("encounter", enc.ID),
		zap.String("phase", string(enc.Phase)),
		zap.Int("wins", e.state.Wins()),
	)
}

// Buy purchases the vendor entry at index in tab.
func (e *Engine) Buy(tab vendor.Tab, index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Vendor == nil {
		return false
	}
	return e.state.Vendor.Buy(tab, index, &e.state.Player.Inventory)
}

// Sell sells the item in slot to the vendor.
func (e *Engine) Sell(slot int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !vendor.Sell(&e.state.Player.Inventory, slot) {
		return false
	}
	if e.state.Preview != nil && e.state.Preview.Slot == slot {
		e.state.Preview = nil
	}
	return true
}

// ClaimTalent spends a talent point on the node with id.
func (e *Engine) ClaimTalent(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Player.ClaimTalent(id)
}

// RevealDamage shows the damage-log entry id for DamageRevealTicks ticks.
func (e *Engine) RevealDamage(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	targets := []*actor.Actor{e.state.Player}
	if enc := e.state.Active; enc != nil {
		targets = append(targets, enc.Monster)
	}
	for _, a := range targets {
		if !a.SetDamageVisible(id, true) {
			continue
		}
		actorID := a.ID
		e.scheduleLocked(TaskKey{actorID, HideDamagePurpose(id)}, e.opts.ticks(DamageRevealTicks), func() {
			if a := e.actorLocked(actorID); a != nil {
				a.SetDamageVisible(id, false)
			}
		})
		return true
	}
	return false
}

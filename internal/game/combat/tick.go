package combat

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/arpg/internal/game/actor"
	"github.com/cory-johannsen/arpg/internal/game/ai"
	"github.com/cory-johannsen/arpg/internal/game/damage"
)

var (
	tickKey      = TaskKey{Purpose: PurposeTick}
	countdownKey = TaskKey{Purpose: PurposeCountdown}
)

// countdownLocked decrements the countdown. Below zero the encounter becomes
// active and the countdown timer is replaced by the tick timer.
func (e *Engine) countdownLocked() {
	enc := e.state.Active
	if enc == nil || enc.Phase != actor.PhaseCountdown {
		return
	}
	enc.Countdown--
	if enc.Countdown >= 0 {
		e.scheduleLocked(countdownKey, e.opts.CountdownInterval, e.countdownLocked)
		return
	}
	e.cancelLocked(countdownKey)
	enc.Phase = actor.PhaseActive
	e.logger.Info("encounter started",
		zap.String("encounter", enc.ID),
		zap.String("monster", enc.Monster.Name),
		zap.Int("level", enc.Level),
		zap.String("rarity", string(enc.Rarity)),
	)
	e.scheduleLocked(tickKey, e.opts.TickUnit, e.tickLocked)
}

// tickLocked runs one combat tick and reschedules itself while the encounter
// is active.
func (e *Engine) tickLocked() {
	enc := e.state.Active
	if enc == nil || enc.Phase != actor.PhaseActive {
		return
	}
	p, m := e.state.Player, enc.Monster
	enc.TickCount++

	if !enc.Has(actor.CannotRegenerateLife) {
		p.RegenerateLife()
	}
	if enc.TickCount%e.opts.ticksPerRestore() == 0 {
		p.RestoreSpecial(actor.SpecialRestoreAmount)
		m.RestoreSpecial(actor.SpecialRestoreAmount)
	}

	if p.Status.QueuedSpecial != damage.NoSpecial {
		e.triggerSpecialLocked(enc)
	} else if enc.TickCount%p.TicksPerAttack() == 0 && p.CanAttack() && !m.IsDead() {
		e.dealPlayerDamageLocked(enc, p.DamagePerAttack(e.src))
		p.Status.Animation = actor.AnimationAttacking
		e.clearAnimationLaterLocked(p.ID, actor.AnimationAttacking, e.opts.AttackAnimation)
	}

	if enc.TickCount%enc.MonsterTicksPerAttack() == 0 && m.CanAttack() && !p.IsDead() {
		for _, d := range m.DamagePerAttack(e.src) {
			p.ReceiveDamage(d, m.ID, e.opts.DamageLogSize)
		}
		m.Status.Animation = actor.AnimationAttacking
		e.clearAnimationLaterLocked(m.ID, actor.AnimationAttacking, e.opts.AttackAnimation)
	}

	e.consultPlannerLocked(enc)

	e.logger.Debug("combat tick",
		zap.String("encounter", enc.ID),
		zap.Int("tick", enc.TickCount),
		zap.Float64("playerLife", p.CurrentLife),
		zap.Float64("monsterLife", m.CurrentLife),
	)

	e.resolveOutcomeLocked(enc)
	if enc.Phase == actor.PhaseActive {
		e.scheduleLocked(tickKey, e.opts.TickUnit, e.tickLocked)
	}
}

// dealPlayerDamageLocked applies ds to the monster, reflects physical damage
// under PhysReflect and grants the player experience for the raw damage.
func (e *Engine) dealPlayerDamageLocked(enc *actor.Encounter, ds []damage.Damage) {
	p, m := e.state.Player, enc.Monster
	reflect := enc.Has(actor.PhysReflect)
	for _, d := range ds {
		entry := m.ReceiveDamage(d, p.ID, e.opts.DamageLogSize)
		if reflect && d.Type.IsPhysical() && entry.Damage.Raw > 0 {
			back := damage.Damage{Type: d.Type, Raw: entry.Damage.Raw * actor.PhysReflectFraction}
			p.ReceiveDamage(back, m.ID, e.opts.DamageLogSize)
		}
	}
	if levels := p.GainExperience(damage.Total(ds)); levels > 0 {
		e.logger.Info("level up",
			zap.String("player", p.Name),
			zap.Int("level", p.Level),
			zap.Int("talentPoints", p.TalentPoints),
		)
	}
}

// triggerSpecialLocked spends the queued special and schedules its damage.
func (e *Engine) triggerSpecialLocked(enc *actor.Encounter) {
	p := e.state.Player
	sp := p.Status.QueuedSpecial
	p.Status.QueuedSpecial = damage.NoSpecial
	if !sp.Valid() || p.IsDead() || p.SpecialResource < sp.Cost() {
		return
	}
	p.SpecialResource -= sp.Cost()
	p.Status.Animation = actor.AnimationSpecialAttacking
	e.cancelLocked(TaskKey{p.ID, PurposeClearAnimation})
	encID := enc.ID
	e.scheduleLocked(TaskKey{p.ID, PurposeSpecialAttack}, sp.Delay(), func() {
		e.landSpecialLocked(encID, sp)
	})
	e.logger.Debug("special attack triggered", zap.String("special", string(sp)), zap.String("encounter", encID))
}

// landSpecialLocked applies a special attack's hits if its encounter is still active.
func (e *Engine) landSpecialLocked(encID string, sp damage.Special) {
	p := e.state.Player
	if p.Status.Animation == actor.AnimationSpecialAttacking {
		p.ClearAnimation()
	}
	enc := e.state.Active
	if enc == nil || enc.ID != encID || enc.Phase != actor.PhaseActive || enc.Monster.IsDead() {
		return
	}
	rolled := p.DamagePerAttack(e.src)
	if rolled == nil {
		return
	}
	e.dealPlayerDamageLocked(enc, sp.Resolve(rolled))
	e.resolveOutcomeLocked(enc)
}

// consultPlannerLocked asks the planner for the active side's move. A monster
// heal is applied when the monster is not action locked. The abstract turn
// passes to the other side on every call.
func (e *Engine) consultPlannerLocked(enc *actor.Encounter) {
	p, m := e.state.Player, enc.Monster
	if p.IsDead() || m.IsDead() {
		return
	}
	ws := ai.BuildCombatWorldState(p, m, e.aiActive, p.DamagePerAttack(e.src), m.DamagePerAttack(e.src))
	if e.aiActive == m.ID {
		e.aiActive = p.ID
	} else {
		e.aiActive = m.ID
	}
	move, ok := e.planner.Plan(ws)
	if !ok || move.ActorID != m.ID || move.Kind != ai.MoveHeal || m.Status.ActionLocked {
		return
	}
	if e.eatLocked(m, move.Slot) {
		e.logger.Debug("monster ate", zap.String("food", string(move.Food)), zap.Float64("life", m.CurrentLife))
	}
}

// resolveOutcomeLocked ends the encounter when either side is dead. A dead
// player loses every equipped item; a dead monster's equipment and loot drops
// go to its lootable inventory.
func (e *Engine) resolveOutcomeLocked(enc *actor.Encounter) {
	if enc.IsTerminal() {
		return
	}
	p, m := e.state.Player, enc.Monster
	switch {
	case p.IsDead():
		lost := p.ClearEquipment()
		enc.Phase = actor.PhaseLost
		e.stopCombatLocked()
		e.logger.Info("encounter lost",
			zap.String("encounter", enc.ID),
			zap.Int("ticks", enc.TickCount),
			zap.Int("itemsLost", len(lost)),
		)
	case m.IsDead():
		var drops []*actor.Item
		for _, eq := range m.ClearEquipment() {
			drops = append(drops, actor.EquipmentItem(eq))
		}
		drops = append(drops, e.gen.MonsterDrops(enc, p)...)
		for _, it := range drops {
			if !m.Inventory.Put(it) {
				e.logger.Warn("loot discarded, monster inventory full",
					zap.String("encounter", enc.ID),
					zap.String("item", it.Name()),
				)
			}
		}
		enc.Phase = actor.PhaseWon
		e.stopCombatLocked()
		e.logger.Info("encounter won",
			zap.String("encounter", enc.ID),
			zap.Int("ticks", enc.TickCount),
			zap.Int("playerLevel", p.Level),
		)
	}
}

// stopCombatLocked cancels the tick timer and any special attack in flight.
func (e *Engine) stopCombatLocked() {
	p := e.state.Player
	e.cancelLocked(tickKey)
	e.cancelLocked(TaskKey{p.ID, PurposeSpecialAttack})
	p.Status.QueuedSpecial = damage.NoSpecial
	if p.Status.Animation == actor.AnimationSpecialAttacking {
		p.ClearAnimation()
	}
}

// Package sim plays encounters back to back without a user: it picks an
// encounter, fights it with simple idle-play habits (eat when low, fire the
// weapon special when ready), loots, and archives the result.
package sim

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arpg/internal/game/actor"
	"github.com/cory-johannsen/arpg/internal/game/combat"
	"github.com/cory-johannsen/arpg/internal/game/damage"
	"github.com/cory-johannsen/arpg/internal/game/dice"
	"github.com/cory-johannsen/arpg/internal/game/equipment"
	"github.com/cory-johannsen/arpg/internal/game/vendor"
	"github.com/cory-johannsen/arpg/internal/storage/postgres"
)

// EatBelow is the life fraction under which the simulator eats.
const EatBelow = 0.5

// DefaultMaxSteps bounds the scheduler steps a single virtual encounter may take.
const DefaultMaxSteps = 1_000_000

// ErrStalled is returned when an encounter does not finish within MaxSteps.
var ErrStalled = errors.New("encounter did not finish")

// Archiver records finished encounters.
type Archiver interface {
	Record(ctx context.Context, player *actor.Actor, past actor.PastEncounter) (*postgres.HistoryRecord, error)
}

// Saver persists the game state after every encounter.
type Saver interface {
	Save(ctx context.Context, slot string, state *combat.State) error
}

// Options configure a Simulator.
type Options struct {
	// Encounters is the number of encounters to play. Zero plays until stopped.
	Encounters int
	// SaveSlot names the slot passed to the Saver.
	SaveSlot string
	// MaxSteps bounds virtual scheduler steps per encounter; zero selects DefaultMaxSteps.
	MaxSteps int
	// PollInterval is how often a wall-clock run inspects the engine.
	PollInterval time.Duration
}

// Summary reports what a run did.
type Summary struct {
	Played int
	Wins   int
	Losses int
	Level  int
	Coins  int
}

// Simulator drives one Engine.
type Simulator struct {
	eng      *combat.Engine
	virtual  *combat.VirtualScheduler
	archiver Archiver
	saver    Saver
	opts     Options
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New returns a Simulator over eng. When virtual is non-nil the engine must be
// driven by it and encounters are fast-forwarded; otherwise the engine runs on
// its own scheduler and the simulator polls it. archiver and saver are optional.
//
// Precondition: eng must be non-nil. A nil logger is replaced with a no-op logger.
func New(eng *combat.Engine, virtual *combat.VirtualScheduler, archiver Archiver, saver Saver, opts Options, logger *zap.Logger) *Simulator {
	if eng == nil {
		panic("sim.New: eng must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	return &Simulator{eng: eng, virtual: virtual, archiver: archiver, saver: saver, opts: opts, logger: logger}
}

// Run plays encounters until opts.Encounters are done or ctx is cancelled.
//
// Postcondition: Returns the summary of finished encounters. A cancelled ctx
// is not an error.
func (s *Simulator) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	for s.opts.Encounters == 0 || sum.Played < s.opts.Encounters {
		if ctx.Err() != nil {
			break
		}
		won, err := s.playOne(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			return s.finish(sum), err
		}
		sum.Played++
		if won {
			sum.Wins++
		} else {
			sum.Losses++
		}
	}
	return s.finish(sum), nil
}

func (s *Simulator) finish(sum Summary) Summary {
	p := s.eng.Combat().Player
	sum.Level = p.Level
	sum.Coins = p.Inventory.Coins()
	s.logger.Info("simulation finished",
		zap.Int("played", sum.Played),
		zap.Int("wins", sum.Wins),
		zap.Int("losses", sum.Losses),
		zap.Int("level", sum.Level),
	)
	return sum
}

// Start runs the simulator as a server.Service.
func (s *Simulator) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()
	_, err := s.Run(ctx)
	return err
}

// Stop cancels a running Start.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// playOne prepares the player, fights one encounter to the end and archives it.
func (s *Simulator) playOne(ctx context.Context) (bool, error) {
	s.prepare()
	held := encounterIDs(s.eng.Combat().Player)
	if !s.eng.AddRandomEncounter() {
		s.makeRoom()
		held = encounterIDs(s.eng.Combat().Player)
		if !s.eng.AddRandomEncounter() {
			return false, errors.New("no inventory room for an encounter")
		}
	}
	slot := newEncounterSlot(s.eng.Combat().Player, held)
	if slot < 0 || !s.eng.PreviewEncounter(slot) || !s.eng.BeginEncounter() {
		return false, errors.New("could not begin encounter")
	}
	enc, err := s.fight(ctx)
	if err != nil {
		return false, err
	}
	won := enc.Phase == actor.PhaseWon
	if won {
		s.loot(enc)
		s.eng.Exit()
	} else {
		s.eng.Revive()
	}
	s.afterEncounter(ctx)
	return won, nil
}

// fight runs the active encounter until it is won or lost.
func (s *Simulator) fight(ctx context.Context) (*actor.Encounter, error) {
	if s.virtual != nil {
		for i := 0; i < s.opts.MaxSteps; i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if enc := s.react(); enc != nil {
				return enc, nil
			}
			if !s.virtual.Step() {
				break
			}
		}
		if enc := s.react(); enc != nil {
			return enc, nil
		}
		return nil, fmt.Errorf("%w within %d steps", ErrStalled, s.opts.MaxSteps)
	}
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()
	for {
		if enc := s.react(); enc != nil {
			return enc, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// react applies the idle-play habits and returns the encounter once it is terminal.
func (s *Simulator) react() *actor.Encounter {
	view := s.eng.Combat()
	enc := view.Encounter
	if enc == nil {
		return nil
	}
	if enc.IsTerminal() {
		return enc
	}
	if enc.Phase != actor.PhaseActive {
		return nil
	}
	p := view.Player
	if p.LifeFraction() < EatBelow && !p.Status.ActionLocked {
		for i, it := range p.Inventory.Slots {
			if it != nil && it.Kind == actor.ItemFood && p.CanEat(it.Food) {
				s.eng.ConsumeItem(i)
				break
			}
		}
	}
	if w := p.Weapon(); w != nil && w.Special() != damage.NoSpecial && p.Status.QueuedSpecial == damage.NoSpecial &&
		p.SpecialResource >= w.Special().Cost() {
		s.eng.TapSpecialAttack()
	}
	return nil
}

// loot takes every item the defeated monster dropped that fits.
func (s *Simulator) loot(enc *actor.Encounter) {
	for i := range enc.Monster.Inventory.Slots {
		if enc.Monster.Inventory.At(i) != nil && !s.eng.AttemptLoot(i) {
			s.makeRoom()
			s.eng.AttemptLoot(i)
		}
	}
}

// prepare claims talents, re-arms an unarmed player and equips anything that
// fills an empty slot or improves on the equipped item.
func (s *Simulator) prepare() {
	s.arm()
	p := s.eng.Combat().Player
	for range p.TalentPoints {
		claimed := false
		for _, n := range s.eng.Combat().Player.Talents.Nodes {
			if n.Unlocked && !n.Claimed && s.eng.ClaimTalent(n.ID) {
				claimed = true
				break
			}
		}
		if !claimed {
			break
		}
	}
	p = s.eng.Combat().Player
	for i, it := range p.Inventory.Slots {
		if it == nil || it.Kind != actor.ItemEquipment {
			continue
		}
		cur := p.Equipped[it.Equipment.Slot()]
		if cur == nil || better(it.Equipment, cur) {
			if s.eng.Equip(i) {
				p = s.eng.Combat().Player
			}
		}
	}
}

// arm buys the cheapest affordable vendor weapon when the player carries none.
func (s *Simulator) arm() {
	p := s.eng.Combat().Player
	v := s.eng.Vendor()
	if p.Weapon() != nil || v == nil {
		return
	}
	for _, it := range p.Inventory.Slots {
		if it != nil && it.Kind == actor.ItemEquipment && it.Equipment.Slot() == equipment.SlotWeapon {
			return
		}
	}
	best, price := -1, 0
	for i, it := range v.Stock[vendor.TabWeapons] {
		if it == nil || !p.CanEquip(it.Equipment) || it.BuyPrice() > p.Inventory.Coins() {
			continue
		}
		if best < 0 || it.BuyPrice() < price {
			best, price = i, it.BuyPrice()
		}
	}
	if best >= 0 && s.eng.Buy(vendor.TabWeapons, best) {
		s.logger.Debug("bought weapon", zap.Int("price", price))
	}
}

// better prefers higher rarity, then higher level requirement.
func better(a, b *equipment.Equipment) bool {
	if ra, rb := rarityRank(a.Rarity), rarityRank(b.Rarity); ra != rb {
		return ra > rb
	}
	return a.Base.LevelRequirement > b.Base.LevelRequirement
}

func rarityRank(r equipment.Rarity) int {
	switch r {
	case equipment.Rare:
		return 2
	case equipment.Magic:
		return 1
	default:
		return 0
	}
}

// makeRoom sells one carried item when the inventory is full, preferring
// equipment and encounters over food.
func (s *Simulator) makeRoom() {
	p := s.eng.Combat().Player
	if _, ok := p.Inventory.FirstOpen(); ok {
		return
	}
	for _, kinds := range [][]actor.ItemKind{{actor.ItemEquipment, actor.ItemEncounter}, {actor.ItemFood}} {
		for i, it := range p.Inventory.Slots {
			if it != nil && slices.Contains(kinds, it.Kind) && s.eng.Sell(i) {
				return
			}
		}
	}
}

// afterEncounter stocks up on food, archives the last encounter and saves.
func (s *Simulator) afterEncounter(ctx context.Context) {
	p := s.eng.Combat().Player
	if _, _, ok := p.Inventory.FirstFood(); !ok {
		var foods []*actor.Item
		if v := s.eng.Vendor(); v != nil {
			foods = v.Stock[vendor.TabFoodAndMisc]
		}
		for i := len(foods) - 1; i >= 0; i-- {
			if s.eng.Buy(vendor.TabFoodAndMisc, i) {
				break
			}
		}
	}
	if past, ok := s.eng.LastEncounter(); ok && s.archiver != nil {
		if _, err := s.archiver.Record(ctx, p, past); err != nil {
			s.logger.Warn("archiving encounter", zap.String("encounter", past.Encounter.ID), zap.Error(err))
		}
	}
	if s.saver != nil && s.opts.SaveSlot != "" {
		if err := s.saver.Save(ctx, s.opts.SaveSlot, s.eng.State()); err != nil {
			s.logger.Warn("saving game", zap.String("slot", s.opts.SaveSlot), zap.Error(err))
		}
	}
}

// NewGame starts a game whose player wields a generated level one weapon.
//
// Precondition: catalog must hold a level one weapon base.
func NewGame(name string, catalog *equipment.Catalog, src dice.Source) *combat.State {
	st := combat.NewState(name)
	st.Player.Equip(catalog.Generate(1, equipment.SlotWeapon, 0, src))
	return st
}

// encounterIDs returns the IDs of every encounter item p carries.
func encounterIDs(p *actor.Actor) map[string]bool {
	ids := map[string]bool{}
	for _, it := range p.Inventory.Slots {
		if it != nil && it.Kind == actor.ItemEncounter {
			ids[it.Encounter.ID] = true
		}
	}
	return ids
}

// newEncounterSlot returns the slot of the encounter item whose ID is not in
// held, or -1.
func newEncounterSlot(p *actor.Actor, held map[string]bool) int {
	for i, it := range p.Inventory.Slots {
		if it != nil && it.Kind == actor.ItemEncounter && !held[it.Encounter.ID] {
			return i
		}
	}
	return -1
}

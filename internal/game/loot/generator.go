package loot

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arpg/internal/game/actor"
	"github.com/cory-johannsen/arpg/internal/game/dice"
	"github.com/cory-johannsen/arpg/internal/game/equipment"
	"github.com/cory-johannsen/arpg/internal/game/food"
	"github.com/cory-johannsen/arpg/internal/game/stat"
)

// Modifier bonus added per rolled modifier, by encounter rarity.
const (
	magicBonusPerModifier = 0.04
	rareBonusPerModifier  = 0.06
	// AddedElementalPerLevel is the flat elemental damage an added* modifier grants per level.
	AddedElementalPerLevel = 2
)

// Generator builds encounters and loot drops from content tables.
type Generator struct {
	catalog  *equipment.Catalog
	monsters []MonsterBase
	byID     map[string]MonsterBase
	src      dice.Source
	logger   *zap.Logger
}

// NewGenerator validates the monster list and returns a Generator.
//
// Precondition: catalog and src must be non-nil. A nil logger is replaced with a no-op logger.
// Postcondition: Returns an error when monsters is empty, a monster is invalid,
// or no weapon base exists at level 1.
func NewGenerator(catalog *equipment.Catalog, monsters []MonsterBase, src dice.Source, logger *zap.Logger) (*Generator, error) {
	if catalog == nil {
		panic("loot.NewGenerator: catalog must not be nil")
	}
	if src == nil {
		panic("loot.NewGenerator: src must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(monsters) == 0 {
		return nil, errors.New("loot generator: at least one monster base is required")
	}
	if len(catalog.Eligible(1, equipment.SlotWeapon)) == 0 {
		return nil, errors.New("loot generator: at least one level-1 weapon base is required")
	}
	g := &Generator{catalog: catalog, src: src, logger: logger, byID: make(map[string]MonsterBase, len(monsters))}
	for i := range monsters {
		m := monsters[i]
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, dup := g.byID[m.ID]; dup {
			return nil, fmt.Errorf("monster %q: duplicate id", m.ID)
		}
		g.byID[m.ID] = m
		g.monsters = append(g.monsters, m)
	}
	return g, nil
}

// Catalog returns the equipment catalog the generator draws from.
func (g *Generator) Catalog() *equipment.Catalog { return g.catalog }

// Source returns the generator's randomness source.
func (g *Generator) Source() dice.Source { return g.src }

// Monster returns the monster base with id.
func (g *Generator) Monster(id string) (MonsterBase, bool) {
	m, ok := g.byID[id]
	return m, ok
}

// RandomEncounter rolls an encounter rarity from itemRarity and builds an encounter at level.
func (g *Generator) RandomEncounter(level int, itemRarity float64) *actor.Encounter {
	return g.Encounter(level, equipment.RollRarity(g.src, math.Max(0, itemRarity)))
}

// Encounter builds a previewing encounter at level with the given rarity.
//
// Precondition: level >= 1; at least one monster base has Level <= level.
// Postcondition: the monster is at full life with a weapon equipped; modifier
// count is 0 for normal, 1-3 for magic and 3-6 for rare.
func (g *Generator) Encounter(level int, rarity equipment.Rarity) *actor.Encounter {
	if level < 1 {
		panic(fmt.Sprintf("loot.Generator.Encounter: level must be >= 1, got %d", level))
	}
	var eligible []MonsterBase
	for _, m := range g.monsters {
		if m.Level <= level {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) == 0 {
		panic(fmt.Sprintf("loot.Generator.Encounter: no monster base at level %d", level))
	}
	base := dice.Pick(g.src, eligible)

	enc := &actor.Encounter{
		ID:          uuid.New().String(),
		MonsterBase: base.ID,
		Level:       level,
		Rarity:      rarity,
		Countdown:   actor.CountdownStart,
		Phase:       actor.PhasePreviewing,
	}
	g.rollModifiers(enc)

	stats := base.StatsAt(level)
	for _, m := range enc.Modifiers {
		switch m {
		case actor.AddedFire:
			stats[stat.FlatFire] += AddedElementalPerLevel * float64(level)
		case actor.AddedCold:
			stats[stat.FlatCold] += AddedElementalPerLevel * float64(level)
		case actor.AddedLightning:
			stats[stat.FlatLightning] += AddedElementalPerLevel * float64(level)
		}
	}
	monster := actor.NewMonster(base.Name, base.Icon, level, stats, actor.MaxInventorySlots)
	monster.Equip(g.catalog.Generate(level, equipment.SlotWeapon, 0, g.src))
	for i, n := 0, dice.IntRange(g.src, 1, 3); i < n; i++ {
		monster.Inventory.Put(actor.FoodItem(food.Generate(level, g.src)))
	}
	monster.ResetVitals()
	enc.Monster = monster

	g.logger.Debug("encounter generated",
		zap.String("encounter", enc.ID),
		zap.String("monster", base.ID),
		zap.Int("level", level),
		zap.String("rarity", string(rarity)),
		zap.Int("modifiers", len(enc.Modifiers)),
	)
	return enc
}

func (g *Generator) rollModifiers(enc *actor.Encounter) {
	var n int
	var perMod float64
	switch enc.Rarity {
	case equipment.Magic:
		n, perMod = dice.IntRange(g.src, 1, 3), magicBonusPerModifier
	case equipment.Rare:
		n, perMod = dice.IntRange(g.src, 3, 6), rareBonusPerModifier
	default:
		return
	}
	pool := append([]actor.Modifier(nil), actor.AllModifiers...)
	for i := len(pool) - 1; i > 0; i-- {
		j := g.src.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	if n > len(pool) {
		n = len(pool)
	}
	enc.Modifiers = pool[:n]
	for _, m := range enc.Modifiers {
		r, q := m.Bonus()
		enc.ItemRarity += r
		enc.ItemQuantity += q
	}
	enc.ItemRarity += float64(n) * perMod
	enc.ItemQuantity += float64(n) * perMod
}

// Coins returns int((rand[1,10] * level)^1.2).
func (g *Generator) Coins(level int) int {
	return int(math.Pow(float64(dice.IntRange(g.src, 1, 10)*level), 1.2))
}

// Drop rolls table once and materializes the result. It returns nil for nothing.
//
// itemRarity inflates the table and the tier of dropped encounters;
// equipRarity is the rarity increase applied to dropped equipment.
//
// Precondition: level >= 1; table must have passed Validate.
func (g *Generator) Drop(table Table, level int, itemRarity, equipRarity float64) *actor.Item {
	itemRarity = math.Max(0, itemRarity)
	switch table.Roll(itemRarity, g.src) {
	case CategoryEquipment:
		slot := dice.Pick(g.src, g.catalog.SlotsAt(level))
		return actor.EquipmentItem(g.catalog.Generate(level, slot, math.Max(0, equipRarity), g.src))
	case CategoryFood:
		return actor.FoodItem(food.Generate(level, g.src))
	case CategoryEncounter:
		return actor.EncounterItem(g.RandomEncounter(level, itemRarity))
	case CategoryCoins:
		return actor.CoinsItem(g.Coins(level))
	default:
		return nil
	}
}

// RollCount returns 1 + floor(quantity) plus one more with probability frac(quantity).
func (g *Generator) RollCount(quantity float64) int {
	quantity = math.Max(0, quantity)
	whole, frac := math.Modf(quantity)
	n := 1 + int(whole)
	if frac > 0 && g.src.Float64() < frac {
		n++
	}
	return n
}

// MonsterDrops rolls the loot a defeated encounter's monster leaves behind.
// Rarity and quantity combine the encounter's bonuses with the player's
// incItemRarity and incItemQuantity.
//
// Precondition: enc and player must be non-nil.
func (g *Generator) MonsterDrops(enc *actor.Encounter, player *actor.Actor) []*actor.Item {
	table := DefaultTable()
	if base, ok := g.byID[enc.MonsterBase]; ok {
		table = base.LootTable()
	}
	rarity := enc.ItemRarity + player.Stats().Get(stat.IncItemRarity)
	quantity := enc.ItemQuantity + player.Stats().Get(stat.IncItemQuantity)
	var out []*actor.Item
	for i, n := 0, g.RollCount(quantity); i < n; i++ {
		if it := g.Drop(table, enc.Level, rarity, rarity); it != nil {
			out = append(out, it)
		}
	}
	g.logger.Debug("monster drops rolled",
		zap.String("encounter", enc.ID),
		zap.Float64("rarity", rarity),
		zap.Float64("quantity", quantity),
		zap.Int("items", len(out)),
	)
	return out
}

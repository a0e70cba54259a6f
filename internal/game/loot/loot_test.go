package loot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arpg/internal/game/actor"
	"github.com/cory-johannsen/arpg/internal/game/dice"
	"github.com/cory-johannsen/arpg/internal/game/equipment"
	"github.com/cory-johannsen/arpg/internal/game/loot"
	"github.com/cory-johannsen/arpg/internal/game/stat"
)

const testBases = `
bases:
  - id: rusted_hatchet
    name: Rusted Hatchet
    kind: weapon
    slot: weapon
    level_requirement: 1
    prefixes: [flatPhysical, flatCold]
    suffixes: [dexterity, strength]
    weapon: {class: axe, damage_type: melee, min_damage: 6, max_damage: 11, ticks_per_attack: 3, crit_chance: 0.05}
  - id: coral_ring
    name: Coral Ring
    kind: armor
    slot: ring
    level_requirement: 1
    stats: {flatMaxLife: 25}
    prefixes: [flatMaxLife]
    suffixes: [incItemRarity]
`

const testMonsters = `
monsters:
  - {id: rat, name: Rat, icon: "R", level: 1, life: 30, life_per_level: 10}
  - {id: goblin, name: Goblin, icon: "G", level: 2, life: 55, life_per_level: 14, stats: {armour: 8}}
  - id: hoarder
    name: Hoarder
    level: 50
    life: 100
    loot:
      drops:
        - {category: coins, weight: 1}
`

func newGenerator(t testing.TB, src dice.Source) *loot.Generator {
	bases, err := equipment.LoadBasesFromBytes([]byte(testBases))
	require.NoError(t, err)
	catalog, err := equipment.NewCatalog(bases)
	require.NoError(t, err)
	monsters, err := loot.LoadMonstersFromBytes([]byte(testMonsters))
	require.NoError(t, err)
	g, err := loot.NewGenerator(catalog, monsters, src, zaptest.NewLogger(t))
	require.NoError(t, err)
	return g
}

func TestDefaultTable_Valid(t *testing.T) {
	table := loot.DefaultTable()
	require.NoError(t, table.Validate())
	assert.Equal(t, 116, table.TotalWeight())
}

func TestTable_Validate_Rejects(t *testing.T) {
	cases := map[string]loot.Table{
		"empty":            {},
		"zero weight":      {Drops: []loot.Drop{{Category: loot.CategoryFood, Weight: 0}}},
		"unknown category": {Drops: []loot.Drop{{Category: "gems", Weight: 1}}},
		"repeated": {Drops: []loot.Drop{
			{Category: loot.CategoryFood, Weight: 1},
			{Category: loot.CategoryFood, Weight: 2},
		}},
	}
	for name, table := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, table.Validate())
		})
	}
}

func TestTable_Inflated_MultipliesEveryWeight(t *testing.T) {
	inflated := loot.DefaultTable().Inflated(1.5)
	want := map[loot.Category]int{
		loot.CategoryEquipment: 16,
		loot.CategoryFood:      48,
		loot.CategoryEncounter: 8,
		loot.CategoryCoins:     32,
		loot.CategoryNothing:   128,
	}
	for _, d := range inflated.Drops {
		assert.Equal(t, want[d.Category], d.Weight, d.Category)
	}
	assert.Equal(t, 116, loot.DefaultTable().TotalWeight(), "source table must not be mutated")
}

func TestTable_Inflated_KeepsProportions(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rarity := rapid.Float64Range(0, 20).Draw(rt, "rarity")
		base := loot.DefaultTable()
		inflated := base.Inflated(rarity)
		factor := 1 + int(rarity)
		require.Len(rt, inflated.Drops, len(base.Drops))
		for i, d := range inflated.Drops {
			assert.Equal(rt, base.Drops[i].Weight*factor, d.Weight, d.Category)
		}
		assert.Equal(rt, base.TotalWeight()*factor, inflated.TotalWeight())
	})
}

func TestTable_Roll_WalksCumulativeWeights(t *testing.T) {
	cases := []struct {
		draw int
		want loot.Category
	}{
		{0, loot.CategoryEquipment},
		{7, loot.CategoryEquipment},
		{8, loot.CategoryFood},
		{31, loot.CategoryFood},
		{32, loot.CategoryEncounter},
		{36, loot.CategoryCoins},
		{52, loot.CategoryNothing},
		{115, loot.CategoryNothing},
	}
	for _, tc := range cases {
		src := &dice.FixedSource{Ints: []int{tc.draw}}
		assert.Equal(t, tc.want, loot.DefaultTable().Roll(0, src), "draw %d", tc.draw)
	}
}

func TestTable_Roll_AlwaysKnownCategory(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		rarity := rapid.Float64Range(0, 10).Draw(rt, "rarity")
		got := loot.DefaultTable().Roll(rarity, dice.NewSeededSource(seed))
		assert.Contains(rt, []loot.Category{
			loot.CategoryEquipment, loot.CategoryFood, loot.CategoryEncounter,
			loot.CategoryCoins, loot.CategoryNothing,
		}, got)
	})
}

func TestLoadTableFromBytes(t *testing.T) {
	table, err := loot.LoadTableFromBytes([]byte("drops:\n  - {category: food, weight: 3}\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, table.TotalWeight())

	_, err = loot.LoadTableFromBytes([]byte("drops: []\n"))
	assert.Error(t, err)
}

func TestBaseDamage(t *testing.T) {
	assert.InDelta(t, 6.2015, loot.BaseDamage(1), 1e-9)
	assert.Greater(t, loot.BaseDamage(10), loot.BaseDamage(9))
}

func TestMonsterBase_StatsAt(t *testing.T) {
	m := loot.MonsterBase{ID: "rat", Name: "Rat", Level: 1, Life: 30, LifePerLevel: 10,
		Stats: map[stat.Key]float64{stat.Armour: 4}}
	got := m.StatsAt(3)
	assert.Equal(t, 50.0, got[stat.FlatMaxLife])
	assert.Equal(t, 4.0, got[stat.Armour])
	assert.InDelta(t, loot.BaseDamage(3), got[stat.FlatPhysical], 1e-9)
	assert.NotContains(t, m.Stats, stat.FlatMaxLife, "base stats must not be mutated")
}

func TestLoadMonstersFromBytes_RejectsInvalid(t *testing.T) {
	_, err := loot.LoadMonstersFromBytes([]byte("monsters:\n  - {id: x, name: X, level: 0, life: 1}\n"))
	assert.Error(t, err)
	_, err = loot.LoadMonstersFromBytes([]byte("monsters:\n  - {id: x, name: X, level: 1, life: 1, stats: {luck: 1}}\n"))
	assert.Error(t, err)
}

func TestNewGenerator_RejectsDuplicates(t *testing.T) {
	bases, err := equipment.LoadBasesFromBytes([]byte(testBases))
	require.NoError(t, err)
	catalog, err := equipment.NewCatalog(bases)
	require.NoError(t, err)
	rat := loot.MonsterBase{ID: "rat", Name: "Rat", Level: 1, Life: 30}
	_, err = loot.NewGenerator(catalog, []loot.MonsterBase{rat, rat}, dice.NewSeededSource(1), nil)
	assert.Error(t, err)
	_, err = loot.NewGenerator(catalog, nil, dice.NewSeededSource(1), nil)
	assert.Error(t, err)
}

func TestGenerator_Encounter_NormalHasNoModifiers(t *testing.T) {
	g := newGenerator(t, dice.NewSeededSource(7))
	enc := g.Encounter(1, equipment.Normal)
	require.NotNil(t, enc.Monster)
	assert.Equal(t, "rat", enc.MonsterBase, "only the rat is eligible at level 1")
	assert.Empty(t, enc.Modifiers)
	assert.Zero(t, enc.ItemRarity)
	assert.Equal(t, actor.PhasePreviewing, enc.Phase)
	assert.Equal(t, actor.CountdownStart, enc.Countdown)
	assert.NotEmpty(t, enc.ID)
	assert.Equal(t, enc.Monster.MaxLife(), enc.Monster.CurrentLife)
	assert.NotNil(t, enc.Monster.Weapon())
	assert.Equal(t, actor.KindMonster, enc.Monster.Kind)
}

func TestGenerator_Encounter_ModifierCounts(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		g := newGenerator(t, dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")))
		level := rapid.IntRange(1, 60).Draw(rt, "level")
		rarity := rapid.SampledFrom([]equipment.Rarity{equipment.Magic, equipment.Rare}).Draw(rt, "rarity")
		enc := g.Encounter(level, rarity)

		lo, hi, per := 1, 3, 0.04
		if rarity == equipment.Rare {
			lo, hi, per = 3, 6, 0.06
		}
		n := len(enc.Modifiers)
		assert.GreaterOrEqual(rt, n, lo)
		assert.LessOrEqual(rt, n, hi)

		seen := map[actor.Modifier]bool{}
		wantRarity, wantQuantity := float64(n)*per, float64(n)*per
		for _, m := range enc.Modifiers {
			assert.False(rt, seen[m], "modifier %q repeated", m)
			seen[m] = true
			r, q := m.Bonus()
			wantRarity += r
			wantQuantity += q
		}
		assert.InDelta(rt, wantRarity, enc.ItemRarity, 1e-9)
		assert.InDelta(rt, wantQuantity, enc.ItemQuantity, 1e-9)
	})
}

func TestGenerator_Encounter_AddedElementalDamage(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		g := newGenerator(t, dice.NewSeededSource(seed))
		enc := g.Encounter(4, equipment.Rare)
		if !enc.Has(actor.AddedFire) {
			continue
		}
		assert.GreaterOrEqual(t, enc.Monster.Stats().Get(stat.FlatFire), 8.0)
		return
	}
	t.Fatal("no rare encounter rolled addedFire in 200 seeds")
}

func TestGenerator_Encounter_PanicsWithoutEligibleMonster(t *testing.T) {
	g := newGenerator(t, dice.NewSeededSource(1))
	assert.Panics(t, func() { g.Encounter(0, equipment.Normal) })
}

func TestGenerator_Drop_ByCategory(t *testing.T) {
	g := newGenerator(t, dice.NewSeededSource(3))
	coins := loot.Table{Drops: []loot.Drop{{Category: loot.CategoryCoins, Weight: 1}}}
	it := g.Drop(coins, 5, 0, 0)
	require.NotNil(t, it)
	assert.Equal(t, actor.ItemCoins, it.Kind)
	assert.GreaterOrEqual(t, it.Coins, 6)

	nothing := loot.Table{Drops: []loot.Drop{{Category: loot.CategoryNothing, Weight: 1}}}
	assert.Nil(t, g.Drop(nothing, 5, 3, 0))

	equip := loot.Table{Drops: []loot.Drop{{Category: loot.CategoryEquipment, Weight: 1}}}
	it = g.Drop(equip, 1, 0, 0)
	require.NotNil(t, it)
	require.Equal(t, actor.ItemEquipment, it.Kind)
	assert.NotEmpty(t, it.Equipment.ID)

	enc := loot.Table{Drops: []loot.Drop{{Category: loot.CategoryEncounter, Weight: 1}}}
	it = g.Drop(enc, 2, 0, 0)
	require.NotNil(t, it)
	require.Equal(t, actor.ItemEncounter, it.Kind)
	assert.Equal(t, 2, it.Encounter.Level)
}

func TestGenerator_Coins(t *testing.T) {
	g := newGenerator(t, &dice.FixedSource{Ints: []int{9}})
	// (10 * 2)^1.2 = 36.4...
	assert.Equal(t, 36, g.Coins(2))
}

func TestGenerator_RollCount(t *testing.T) {
	g := newGenerator(t, &dice.FixedSource{Floats: []float64{0.2}})
	assert.Equal(t, 1, g.RollCount(0))
	assert.Equal(t, 3, g.RollCount(2))
	assert.Equal(t, 3, g.RollCount(1.5), "0.2 < 0.5 grants the fractional roll")
	assert.Equal(t, 2, g.RollCount(1.1), "0.2 >= 0.1 denies the fractional roll")
}

func TestGenerator_MonsterDrops_UsesMonsterTable(t *testing.T) {
	g := newGenerator(t, dice.NewSeededSource(11))
	player := actor.NewPlayer("hero")
	enc := &actor.Encounter{ID: "e", MonsterBase: "hoarder", Level: 3, ItemQuantity: 2}
	drops := g.MonsterDrops(enc, player)
	require.Len(t, drops, 3)
	for _, it := range drops {
		assert.Equal(t, actor.ItemCoins, it.Kind)
	}
}

package equipment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arpg/internal/game/damage"
	"github.com/cory-johannsen/arpg/internal/game/dice"
	"github.com/cory-johannsen/arpg/internal/game/equipment"
	"github.com/cory-johannsen/arpg/internal/game/stat"
)

const testBases = `
bases:
  - id: rusted_hatchet
    name: Rusted Hatchet
    kind: weapon
    slot: weapon
    level_requirement: 1
    requirements: {strength: 12, dexterity: 6}
    prefixes: [flatPhysical, flatCold, flatFire, flatLightning]
    suffixes: [dexterity, strength]
    weapon: {class: axe, damage_type: melee, min_damage: 6, max_damage: 11, ticks_per_attack: 3, crit_chance: 0.05}
  - id: crude_bow
    name: Crude Bow
    kind: weapon
    slot: weapon
    level_requirement: 1
    prefixes: [flatPhysical, flatCold]
    suffixes: [dexterity]
    weapon: {class: bow, damage_type: ranged, min_damage: 5, max_damage: 13, ticks_per_attack: 2, crit_chance: 0.05, special: darkBow}
  - id: copper_sword
    name: Copper Sword
    kind: weapon
    slot: weapon
    level_requirement: 5
    weapon: {class: sword, damage_type: melee, min_damage: 7, max_damage: 15, ticks_per_attack: 3, crit_chance: 0.05}
  - id: coral_ring
    name: Coral Ring
    kind: armor
    slot: ring
    level_requirement: 1
    stats: {flatMaxLife: 25}
    prefixes: [flatMaxLife, incItemRarity, flatCold]
    suffixes: [incItemRarity, dexterity, strength]
`

func newCatalog(t testing.TB) *equipment.Catalog {
	bases, err := equipment.LoadBasesFromBytes([]byte(testBases))
	require.NoError(t, err)
	c, err := equipment.NewCatalog(bases)
	require.NoError(t, err)
	return c
}

func TestLoadBasesFromBytes(t *testing.T) {
	bases, err := equipment.LoadBasesFromBytes([]byte(testBases))
	require.NoError(t, err)
	require.Len(t, bases, 4)
	bow := bases[1]
	assert.Equal(t, damage.Ranged, bow.Weapon.DamageType)
	assert.Equal(t, damage.DarkBow, bow.Weapon.Special)
	assert.Equal(t, 25.0, bases[3].Stats[stat.FlatMaxLife])
}

func TestLoadBasesFromBytes_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"armor with weapon stats": `
bases:
  - {id: x, name: X, kind: armor, slot: ring, level_requirement: 1, weapon: {damage_type: melee, min_damage: 1, max_damage: 2, ticks_per_attack: 1}}`,
		"weapon without stats": `
bases:
  - {id: x, name: X, kind: weapon, slot: weapon, level_requirement: 1}`,
		"unknown affix": `
bases:
  - {id: x, name: X, kind: armor, slot: ring, level_requirement: 1, prefixes: [luck]}`,
		"inverted damage": `
bases:
  - {id: x, name: X, kind: weapon, slot: weapon, level_requirement: 1, weapon: {damage_type: melee, min_damage: 5, max_damage: 2, ticks_per_attack: 1}}`,
		"unknown damage type": `
bases:
  - {id: x, name: X, kind: weapon, slot: weapon, level_requirement: 1, weapon: {damage_type: holy, min_damage: 1, max_damage: 2, ticks_per_attack: 1}}`,
		"level zero": `
bases:
  - {id: x, name: X, kind: armor, slot: ring, level_requirement: 0}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := equipment.LoadBasesFromBytes([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestNewCatalog_RejectsDuplicateID(t *testing.T) {
	bases, err := equipment.LoadBasesFromBytes([]byte(testBases))
	require.NoError(t, err)
	_, err = equipment.NewCatalog(append(bases, bases[0]))
	assert.Error(t, err)
}

func TestCatalog_Eligible(t *testing.T) {
	c := newCatalog(t)
	assert.Len(t, c.Eligible(1, equipment.SlotWeapon), 2)
	assert.Len(t, c.Eligible(5, equipment.SlotWeapon), 3)
	assert.Empty(t, c.Eligible(1, equipment.SlotHelmet))
	assert.Equal(t, []equipment.Slot{equipment.SlotWeapon, equipment.SlotRing}, c.SlotsAt(1))
}

func TestGenerate_PanicsWithoutBase(t *testing.T) {
	c := newCatalog(t)
	assert.Panics(t, func() { c.Generate(1, equipment.SlotHelmet, 0, dice.NewSeededSource(1)) })
}

func TestGenerate_RespectsLevelAndSlot(t *testing.T) {
	c := newCatalog(t)
	src := dice.NewSeededSource(5)
	for i := 0; i < 200; i++ {
		e := c.Generate(1, equipment.SlotWeapon, 0, src)
		assert.Equal(t, equipment.SlotWeapon, e.Slot())
		assert.LessOrEqual(t, e.Base.LevelRequirement, 1)
		assert.NotEmpty(t, e.ID)
	}
}

func TestGenerate_AffixesUnique(t *testing.T) {
	c := newCatalog(t)
	src := dice.NewSeededSource(17)
	rapid.Check(t, func(rt *rapid.T) {
		slot := rapid.SampledFrom([]equipment.Slot{equipment.SlotWeapon, equipment.SlotRing}).Draw(rt, "slot")
		level := rapid.IntRange(1, 60).Draw(rt, "level")
		inc := rapid.Float64Range(0, 5).Draw(rt, "inc")
		e := c.Generate(level, slot, inc, src)

		seen := map[stat.Key]bool{}
		prefixes, suffixes := 0, 0
		for _, a := range e.Affixes {
			assert.False(rt, seen[a.Key], "duplicate affix %s", a.Key)
			seen[a.Key] = true
			r := a.Key.ValueRange(level)
			assert.GreaterOrEqual(rt, a.Value, r.Min)
			assert.LessOrEqual(rt, a.Value, r.Max)
			if a.Prefix {
				prefixes++
			} else {
				suffixes++
			}
		}
		assert.LessOrEqual(rt, prefixes, e.Rarity.MaxAffixCount())
		assert.LessOrEqual(rt, suffixes, e.Rarity.MaxAffixCount())
		if e.Rarity == equipment.Normal {
			assert.Empty(rt, e.Affixes)
		}
	})
}

func TestRollRarity_DistributionAtZero(t *testing.T) {
	src := dice.NewSeededSource(2024)
	const trials = 20000
	counts := map[equipment.Rarity]int{}
	for i := 0; i < trials; i++ {
		counts[equipment.RollRarity(src, 0)]++
	}
	assert.InDelta(t, 0.03, float64(counts[equipment.Rare])/trials, 0.01)
	assert.InDelta(t, 0.17, float64(counts[equipment.Magic])/trials, 0.015)
	assert.InDelta(t, 0.80, float64(counts[equipment.Normal])/trials, 0.015)
}

func TestRollRarity_RareWithinBound(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		inc := rapid.Float64Range(0, 10).Draw(rt, "inc")
		seed := rapid.Uint64().Draw(rt, "seed")
		src := dice.NewSeededSource(seed)
		const trials = 2000
		rare := 0
		for i := 0; i < trials; i++ {
			if equipment.RollRarity(src, inc) == equipment.Rare {
				rare++
			}
		}
		bound := equipment.Rare.UpperBound(inc) / 100
		if bound > 1 {
			bound = 1
		}
		assert.LessOrEqual(rt, float64(rare)/trials, bound+0.03)
	})
}

func TestRollRarity_RarePriorityOnOverlap(t *testing.T) {
	src := &dice.FixedSource{Ints: []int{50}}
	// n = 51 is inside both bounds once incRarity is large.
	assert.Equal(t, equipment.Rare, equipment.RollRarity(src, 20))
}

func TestPrice(t *testing.T) {
	c := newCatalog(t)
	bow, ok := c.Base("crude_bow")
	require.True(t, ok)
	ring, ok := c.Base("coral_ring")
	require.True(t, ok)

	w := &equipment.Equipment{Base: bow, Rarity: equipment.Magic}
	assert.Equal(t, 58, w.BuyPrice())
	assert.Equal(t, int(float64(w.BuyPrice())*0.75), w.SellPrice())

	r := &equipment.Equipment{Base: ring, Rarity: equipment.Rare}
	assert.Equal(t, 82, r.BuyPrice())
}

func TestEquipment_StatsMergesBaseAndAffixes(t *testing.T) {
	c := newCatalog(t)
	ring, _ := c.Base("coral_ring")
	e := &equipment.Equipment{
		Base:   ring,
		Rarity: equipment.Magic,
		Affixes: []equipment.Affix{
			{Key: stat.FlatMaxLife, Value: 5, Prefix: true},
			{Key: stat.Dexterity, Value: 3},
		},
	}
	got := e.Stats()
	assert.Equal(t, 30.0, got[stat.FlatMaxLife])
	assert.Equal(t, 3.0, got[stat.Dexterity])
	assert.Nil(t, e.Profile())
	assert.Equal(t, damage.NoSpecial, e.Special())
}

func TestEquipment_WeaponAccessors(t *testing.T) {
	c := newCatalog(t)
	bow, _ := c.Base("crude_bow")
	e := &equipment.Equipment{Base: bow, Rarity: equipment.Normal}
	require.NotNil(t, e.Profile())
	assert.Equal(t, 2, e.TicksPerAttack())
	assert.Equal(t, damage.DarkBow, e.Special())
}

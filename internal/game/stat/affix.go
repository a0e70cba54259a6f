package stat

import "fmt"

// Range is a closed numeric interval.
type Range struct {
	Min float64
	Max float64
}

// scaling describes an affix value range as base + perLevel*level for each bound.
type scaling struct {
	minBase, minPerLevel float64
	maxBase, maxPerLevel float64
}

var affixScaling = map[Key]scaling{
	Armour:           {3, 2, 8, 4},
	PercentArmour:    {0.05, 0, 0.15, 0.01},
	FlatMaxLife:      {5, 3, 15, 5},
	PercentMaxLife:   {0.03, 0, 0.08, 0.005},
	FlatMaxMana:      {5, 2, 12, 4},
	PercentMaxMana:   {0.03, 0, 0.08, 0.005},
	LifeRegen:        {0.1, 0.05, 0.4, 0.1},
	Strength:         {2, 1, 6, 2},
	Dexterity:        {2, 1, 6, 2},
	Intelligence:     {2, 1, 6, 2},
	PercentPhysical:  {0.05, 0.01, 0.15, 0.02},
	FlatPhysical:     {1, 0.5, 3, 1.5},
	FlatCold:         {1, 0.5, 4, 1.5},
	FlatFire:         {1, 0.5, 4, 1.5},
	FlatLightning:    {1, 0.5, 4, 1.5},
	PercentHitChance: {0.01, 0, 0.05, 0},
	IncItemRarity:    {0.05, 0, 0.15, 0.01},
	IncItemQuantity:  {0.05, 0, 0.15, 0.005},
	FireRes:          {0.05, 0, 0.2, 0.002},
	ColdRes:          {0.05, 0, 0.2, 0.002},
	LightningRes:     {0.05, 0, 0.2, 0.002},
}

// ValueRange returns the range an affix of key k rolls within at the given level.
//
// Precondition: level >= 1; k must be a known key.
// Postcondition: result.Min <= result.Max; both bounds are non-decreasing in level.
func (k Key) ValueRange(level int) Range {
	if level < 1 {
		panic(fmt.Sprintf("stat.Key.ValueRange: level must be >= 1, got %d", level))
	}
	s, ok := affixScaling[k]
	if !ok {
		panic(fmt.Sprintf("stat.Key.ValueRange: no range for key %q", k))
	}
	lv := float64(level)
	return Range{
		Min: s.minBase + s.minPerLevel*lv,
		Max: s.maxBase + s.maxPerLevel*lv,
	}
}

package equipment

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/cory-johannsen/arpg/internal/game/damage"
	"github.com/cory-johannsen/arpg/internal/game/dice"
	"github.com/cory-johannsen/arpg/internal/game/stat"
)

// Affix is one rolled stat bonus.
type Affix struct {
	Key    stat.Key `json:"key"`
	Value  float64  `json:"value"`
	Prefix bool     `json:"prefix"`
}

// Equipment is a generated item: a base, a rarity tier and rolled affixes.
//
// Invariant: no two affixes share a Key.
type Equipment struct {
	ID      string  `json:"id"`
	Base    Base    `json:"base"`
	Rarity  Rarity  `json:"rarity"`
	Affixes []Affix `json:"affixes,omitempty"`
}

// Name returns the display name.
func (e *Equipment) Name() string {
	return e.Base.Name
}

// Slot returns the slot this item occupies when equipped.
func (e *Equipment) Slot() Slot {
	return e.Base.Slot
}

// Stats returns the effective stats: base stats summed with rolled affixes.
//
// Postcondition: the returned map is a fresh copy.
func (e *Equipment) Stats() map[stat.Key]float64 {
	out := make(map[stat.Key]float64, len(e.Base.Stats)+len(e.Affixes))
	for k, v := range e.Base.Stats {
		out[k] += v
	}
	for _, a := range e.Affixes {
		out[a.Key] += a.Value
	}
	return out
}

// Profile returns the damage profile of a weapon, or nil for armor.
func (e *Equipment) Profile() *damage.Profile {
	return e.Base.Profile()
}

// TicksPerAttack returns the weapon's attack interval in ticks, or math.MaxInt for armor.
func (e *Equipment) TicksPerAttack() int {
	if e.Base.Kind != KindWeapon {
		return math.MaxInt
	}
	return e.Base.Weapon.TicksPerAttack
}

// Special returns the weapon's special attack, or damage.NoSpecial.
func (e *Equipment) Special() damage.Special {
	if e.Base.Kind != KindWeapon {
		return damage.NoSpecial
	}
	return e.Base.Weapon.Special
}

// BuyPrice returns levelRequirement * 22 * rarity modifier * kind factor, truncated.
func (e *Equipment) BuyPrice() int {
	return int(float64(e.Base.LevelRequirement) * 22 * e.Rarity.PriceModifier() * e.Base.PriceFactor())
}

// SellPrice returns 75% of the buy price, truncated.
func (e *Equipment) SellPrice() int {
	return int(float64(e.BuyPrice()) * 0.75)
}

// Catalog is an immutable, validated set of equipment bases.
type Catalog struct {
	bases []Base
	byID  map[string]Base
}

// NewCatalog validates bases and indexes them by ID.
//
// Postcondition: Returns a Catalog or an error when a base is invalid or an ID repeats.
func NewCatalog(bases []Base) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]Base, len(bases))}
	for i := range bases {
		b := bases[i]
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[b.ID]; dup {
			return nil, fmt.Errorf("equipment base %q: duplicate id", b.ID)
		}
		c.byID[b.ID] = b
		c.bases = append(c.bases, b)
	}
	return c, nil
}

// Base returns the base with the given ID.
func (c *Catalog) Base(id string) (Base, bool) {
	b, ok := c.byID[id]
	return b, ok
}

// Bases returns every base in load order.
func (c *Catalog) Bases() []Base {
	out := make([]Base, len(c.bases))
	copy(out, c.bases)
	return out
}

// Eligible returns the bases for slot whose level requirement is at most level.
func (c *Catalog) Eligible(level int, slot Slot) []Base {
	var out []Base
	for _, b := range c.bases {
		if b.Slot == slot && b.LevelRequirement <= level {
			out = append(out, b)
		}
	}
	return out
}

// SlotsAt returns the slots that have at least one base available at level, in AllSlots order.
func (c *Catalog) SlotsAt(level int) []Slot {
	var out []Slot
	for _, s := range AllSlots {
		if len(c.Eligible(level, s)) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Generate builds a new equipment instance for slot at level.
//
// Precondition: at least one base matches level and slot; a missing base is a
// content error and panics. incRarity >= 0.
// Postcondition: the result has a fresh UUID and no duplicate affix keys.
func (c *Catalog) Generate(level int, slot Slot, incRarity float64, src dice.Source) *Equipment {
	eligible := c.Eligible(level, slot)
	if len(eligible) == 0 {
		panic(fmt.Sprintf("equipment.Catalog.Generate: no base for slot %q at level %d", slot, level))
	}
	base := dice.Pick(src, eligible)
	e := &Equipment{
		ID:     uuid.New().String(),
		Base:   base,
		Rarity: RollRarity(src, incRarity),
	}
	if e.Rarity == Normal {
		return e
	}
	used := make(map[stat.Key]bool)
	maxCount := e.Rarity.MaxAffixCount()
	e.Affixes = append(e.Affixes, rollAffixes(src, base.Prefixes, dice.IntRange(src, 1, maxCount), level, true, used)...)
	e.Affixes = append(e.Affixes, rollAffixes(src, base.Suffixes, dice.IntRange(src, 1, maxCount), level, false, used)...)
	return e
}

// rollAffixes draws up to count distinct keys from pool, skipping keys already in used.
func rollAffixes(src dice.Source, pool []stat.Key, count, level int, prefix bool, used map[stat.Key]bool) []Affix {
	remaining := make([]stat.Key, 0, len(pool))
	for _, k := range pool {
		if !used[k] {
			remaining = append(remaining, k)
		}
	}
	var out []Affix
	for i := 0; i < count && len(remaining) > 0; i++ {
		idx := src.Intn(len(remaining))
		k := remaining[idx]
		remaining = append(remaining[:idx], remaining[idx+1:]...)
		used[k] = true
		r := k.ValueRange(level)
		out = append(out, Affix{Key: k, Value: dice.FloatRange(src, r.Min, r.Max), Prefix: prefix})
	}
	return out
}

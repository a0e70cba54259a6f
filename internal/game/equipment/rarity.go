package equipment

import (
	"fmt"

	"github.com/cory-johannsen/arpg/internal/game/dice"
)

// Rarity is the tier of an equipment instance or encounter.
type Rarity string

const (
	Normal Rarity = "normal"
	Magic  Rarity = "magic"
	Rare   Rarity = "rare"
)

// PriceModifier scales the price of items of this rarity.
func (r Rarity) PriceModifier() float64 {
	switch r {
	case Normal:
		return 1
	case Magic:
		return 2.2
	case Rare:
		return 3.4
	default:
		panic(fmt.Sprintf("equipment.Rarity.PriceModifier: unknown rarity %q", string(r)))
	}
}

// MaxAffixCount is the maximum number of prefixes (and, separately, suffixes).
func (r Rarity) MaxAffixCount() int {
	switch r {
	case Normal:
		return 0
	case Magic:
		return 2
	case Rare:
		return 3
	default:
		panic(fmt.Sprintf("equipment.Rarity.MaxAffixCount: unknown rarity %q", string(r)))
	}
}

// UpperBound returns the inclusive roll ceiling for this tier at the given
// rarity increase. Normal has no bound and returns 0.
func (r Rarity) UpperBound(incRarity float64) float64 {
	switch r {
	case Rare:
		return 3 * (1 + incRarity)
	case Magic:
		return 20 * (1 + incRarity)
	default:
		return 0
	}
}

// RollRarity draws a uniform integer in [1, 100] and maps it to a tier.
// Rare wins where the rare and magic bounds overlap.
//
// Precondition: incRarity >= 0.
func RollRarity(src dice.Source, incRarity float64) Rarity {
	if incRarity < 0 {
		panic("equipment.RollRarity: incRarity must be >= 0")
	}
	n := float64(dice.IntRange(src, 1, 100))
	switch {
	case n <= Rare.UpperBound(incRarity):
		return Rare
	case n <= Magic.UpperBound(incRarity):
		return Magic
	default:
		return Normal
	}
}

// Package food defines the consumable foods actors eat to restore life.
package food

import (
	"fmt"

	"github.com/cory-johannsen/arpg/internal/game/dice"
)

// Kind identifies a food.
type Kind string

const (
	Shrimp        Kind = "shrimp"
	Chicken       Kind = "chicken"
	Sardine       Kind = "sardine"
	Bread         Kind = "bread"
	Herring       Kind = "herring"
	Mackerel      Kind = "mackerel"
	Trout         Kind = "trout"
	Cod           Kind = "cod"
	Salmon        Kind = "salmon"
	Tuna          Kind = "tuna"
	Cake          Kind = "cake"
	Lobster       Kind = "lobster"
	Bass          Kind = "bass"
	ApplePie      Kind = "applePie"
	ChocolateCake Kind = "chocolateCake"
	Pizza         Kind = "pizza"
	Monkfish      Kind = "monkfish"
	DarkCrab      Kind = "darkCrab"
	Anglerfish    Kind = "anglerfish"
)

// MaxLevel is the highest level any food drops at.
const MaxLevel = 100

type def struct {
	name     string
	restore  float64
	minLevel int
	maxLevel int
}

var table = map[Kind]def{
	Shrimp:        {"Shrimp", 10, 1, 5},
	Chicken:       {"Chicken", 100, 4, 10},
	Sardine:       {"Sardine", 200, 9, 15},
	Bread:         {"Bread", 300, 14, 20},
	Herring:       {"Herring", 400, 19, 25},
	Mackerel:      {"Mackerel", 500, 24, 30},
	Trout:         {"Trout", 600, 29, 35},
	Cod:           {"Cod", 700, 34, 40},
	Salmon:        {"Salmon", 800, 39, 45},
	Tuna:          {"Tuna", 900, 44, 50},
	Cake:          {"Cake", 1000, 49, 55},
	Lobster:       {"Lobster", 1100, 54, 60},
	Bass:          {"Bass", 1200, 59, 65},
	ApplePie:      {"Apple Pie", 1300, 64, 70},
	ChocolateCake: {"Chocolate Cake", 1400, 69, 75},
	Pizza:         {"Pizza", 1500, 74, 80},
	Monkfish:      {"Monkfish", 1600, 79, 85},
	DarkCrab:      {"Dark Crab", 1700, 84, 90},
	Anglerfish:    {"Anglerfish", 1800, 89, 100},
}

// All lists every food in ascending restore order.
var All = []Kind{
	Shrimp, Chicken, Sardine, Bread, Herring, Mackerel, Trout, Cod, Salmon, Tuna,
	Cake, Lobster, Bass, ApplePie, ChocolateCake, Pizza, Monkfish, DarkCrab, Anglerfish,
}

func (k Kind) def() def {
	d, ok := table[k]
	if !ok {
		panic(fmt.Sprintf("food.Kind: unknown food %q", string(k)))
	}
	return d
}

// Valid reports whether k is a known food.
func (k Kind) Valid() bool {
	_, ok := table[k]
	return ok
}

// Name returns the display name.
func (k Kind) Name() string { return k.def().name }

// Restore returns the life restored by eating one.
func (k Kind) Restore() float64 { return k.def().restore }

// DropsAt reports whether k can drop at level.
func (k Kind) DropsAt(level int) bool {
	d := k.def()
	return level >= d.minLevel && level <= d.maxLevel
}

// BuyPrice is minimum drop level * 8.
func (k Kind) BuyPrice() int { return k.def().minLevel * 8 }

// SellPrice is minimum drop level * 6.
func (k Kind) SellPrice() int { return k.def().minLevel * 6 }

// AvailableAt returns every food that drops at level, in All order.
func AvailableAt(level int) []Kind {
	var out []Kind
	for _, k := range All {
		if k.DropsAt(level) {
			out = append(out, k)
		}
	}
	return out
}

// Generate picks a random food that drops at level. Levels above MaxLevel are
// treated as MaxLevel.
//
// Precondition: level >= 1.
func Generate(level int, src dice.Source) Kind {
	if level < 1 {
		panic(fmt.Sprintf("food.Generate: level must be >= 1, got %d", level))
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return dice.Pick(src, AvailableAt(level))
}

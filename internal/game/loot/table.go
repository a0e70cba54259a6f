// Package loot resolves weighted loot drops and generates encounters.
package loot

import (
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arpg/internal/game/dice"
)

// Category is the kind of thing a loot roll produces.
type Category string

const (
	CategoryEquipment Category = "equipment"
	CategoryFood      Category = "food"
	CategoryEncounter Category = "encounter"
	CategoryCoins     Category = "coins"
	CategoryNothing   Category = "nothing"
)

func (c Category) valid() bool {
	switch c {
	case CategoryEquipment, CategoryFood, CategoryEncounter, CategoryCoins, CategoryNothing:
		return true
	default:
		return false
	}
}

// Drop is one weighted table entry.
type Drop struct {
	Category Category `yaml:"category" json:"category"`
	Weight   int      `yaml:"weight" json:"weight"`
}

// Table is an ordered set of weighted drops.
type Table struct {
	Drops []Drop `yaml:"drops" json:"drops"`
}

// DefaultTable is the monster loot table used when a monster base defines none.
func DefaultTable() Table {
	return Table{Drops: []Drop{
		{CategoryEquipment, 8},
		{CategoryFood, 24},
		{CategoryEncounter, 4},
		{CategoryCoins, 16},
		{CategoryNothing, 64},
	}}
}

// Validate checks that the table satisfies its invariants.
//
// Postcondition: Returns nil iff the table has at least one entry, every
// category is known and appears once, and every weight is positive.
func (t *Table) Validate() error {
	if len(t.Drops) == 0 {
		return errors.New("loot table: must have at least one drop")
	}
	seen := map[Category]bool{}
	for i, d := range t.Drops {
		if !d.Category.valid() {
			return fmt.Errorf("loot table: drop[%d] has unknown category %q", i, d.Category)
		}
		if seen[d.Category] {
			return fmt.Errorf("loot table: drop[%d] repeats category %q", i, d.Category)
		}
		seen[d.Category] = true
		if d.Weight <= 0 {
			return fmt.Errorf("loot table: drop[%d] weight must be > 0, got %d", i, d.Weight)
		}
	}
	return nil
}

// Inflated returns a copy with every weight, nothing included, multiplied by
// 1 + floor(itemRarity).
//
// Precondition: itemRarity >= 0.
func (t Table) Inflated(itemRarity float64) Table {
	factor := 1 + int(math.Floor(itemRarity))
	out := Table{Drops: make([]Drop, len(t.Drops))}
	for i, d := range t.Drops {
		d.Weight *= factor
		out.Drops[i] = d
	}
	return out
}

// TotalWeight sums every weight.
func (t Table) TotalWeight() int {
	total := 0
	for _, d := range t.Drops {
		total += d.Weight
	}
	return total
}

// Roll inflates the table by itemRarity, draws n in [1, total] and walks the
// cumulative weights in table order.
//
// Precondition: t must have passed Validate; itemRarity >= 0.
func (t Table) Roll(itemRarity float64, src dice.Source) Category {
	inflated := t.Inflated(itemRarity)
	n := dice.IntRange(src, 1, inflated.TotalWeight())
	upper := 0
	for _, d := range inflated.Drops {
		upper += d.Weight
		if n <= upper {
			return d.Category
		}
	}
	panic("loot.Table.Roll: roll exceeded total weight")
}

// LoadTableFromBytes parses and validates a YAML loot table.
func LoadTableFromBytes(data []byte) (Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("parsing loot table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

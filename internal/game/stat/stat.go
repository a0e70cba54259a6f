// Package stat implements the keyed numeric ledger every combat actor carries.
//
// Every derived combat quantity (max life, armour, damage scaling, hit chance,
// loot bonuses) is computed from a Ledger; nothing is hard-coded per actor kind.
package stat

import (
	"fmt"
	"math"
)

// Key identifies one entry in a Ledger.
type Key string

// Known ledger keys. Every Ledger built by New is seeded with all of them.
const (
	Armour           Key = "armour"
	PercentArmour    Key = "percentArmour"
	FlatMaxLife      Key = "flatMaxLife"
	PercentMaxLife   Key = "percentMaxLife"
	FlatMaxMana      Key = "flatMaxMana"
	PercentMaxMana   Key = "percentMaxMana"
	LifeRegen        Key = "lifeRegen"
	Strength         Key = "strength"
	Dexterity        Key = "dexterity"
	Intelligence     Key = "intelligence"
	PercentPhysical  Key = "percentPhysical"
	FlatPhysical     Key = "flatPhysical"
	FlatCold         Key = "flatCold"
	FlatFire         Key = "flatFire"
	FlatLightning    Key = "flatLightning"
	PercentHitChance Key = "percentHitChance"
	IncItemRarity    Key = "incItemRarity"
	IncItemQuantity  Key = "incItemQuantity"
	FireRes          Key = "fireRes"
	ColdRes          Key = "coldRes"
	LightningRes     Key = "lightningRes"
)

// AllKeys lists every known key in a fixed order.
var AllKeys = []Key{
	Armour, PercentArmour, FlatMaxLife, PercentMaxLife, FlatMaxMana, PercentMaxMana,
	LifeRegen, Strength, Dexterity, Intelligence, PercentPhysical, FlatPhysical,
	FlatCold, FlatFire, FlatLightning, PercentHitChance, IncItemRarity, IncItemQuantity,
	FireRes, ColdRes, LightningRes,
}

// IsKnown reports whether k is one of the seeded ledger keys.
func (k Key) IsKnown() bool {
	for _, known := range AllKeys {
		if k == known {
			return true
		}
	}
	return false
}

// Ledger maps stat keys to values.
//
// Invariant: a Ledger built by New or Clone contains every key in AllKeys.
type Ledger map[Key]float64

// New returns a Ledger with every known key seeded at zero, then overlaid with values.
//
// Precondition: every key in values must be known.
// Postcondition: len(result) == len(AllKeys).
func New(values map[Key]float64) Ledger {
	l := make(Ledger, len(AllKeys))
	for _, k := range AllKeys {
		l[k] = 0
	}
	for k, v := range values {
		if !k.IsKnown() {
			panic(fmt.Sprintf("stat.New: unknown key %q", k))
		}
		l[k] = v
	}
	return l
}

// PlayerBase returns the ledger every new player starts with.
//
// Postcondition: MaxLife(result) == 150.
func PlayerBase() Ledger {
	return New(map[Key]float64{
		Armour:           10,
		FlatMaxLife:      140,
		FlatMaxMana:      40,
		Strength:         20,
		Dexterity:        20,
		Intelligence:     20,
		PercentHitChance: 0.95,
		LifeRegen:        0.1,
	})
}

// MonsterBase returns the ledger every monster starts with before its base
// creature stats are merged in.
func MonsterBase() Ledger {
	return New(map[Key]float64{PercentHitChance: 0.9})
}

// Get returns the value for k.
//
// Precondition: k must be present; reading an unseeded key is a programming error.
func (l Ledger) Get(k Key) float64 {
	v, ok := l[k]
	if !ok {
		panic(fmt.Sprintf("stat.Ledger.Get: key %q not seeded", k))
	}
	return v
}

// Clone returns an independent copy of l.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Merge adds every value in delta into l, key by key.
//
// Postcondition: l[k] == old(l[k]) + delta[k] for every k in delta.
func (l Ledger) Merge(delta map[Key]float64) {
	for k, v := range delta {
		l[k] += v
	}
}

// Subtract removes every value in delta from l, key by key.
//
// Postcondition: l[k] == old(l[k]) - delta[k] for every k in delta.
func (l Ledger) Subtract(delta map[Key]float64) {
	for k, v := range delta {
		l[k] -= v
	}
}

// MaxLife returns (flatMaxLife + strength/10*5) * (1 + percentMaxLife).
func (l Ledger) MaxLife() float64 {
	return (l.Get(FlatMaxLife) + l.Get(Strength)/10*5) * (1 + l.Get(PercentMaxLife))
}

// MaxMana returns (flatMaxMana + intelligence/10*5) * (1 + percentMaxMana).
func (l Ledger) MaxMana() float64 {
	return (l.Get(FlatMaxMana) + l.Get(Intelligence)/10*5) * (1 + l.Get(PercentMaxMana))
}

// TotalArmour returns armour * (1 + percentArmour).
func (l Ledger) TotalArmour() float64 {
	return l.Get(Armour) * (1 + l.Get(PercentArmour))
}

// StrengthScaling returns the physical damage multiplier granted by strength.
func (l Ledger) StrengthScaling() float64 {
	return 1 + l.Get(Strength)/10*0.02
}

// Equal reports whether a and b hold identical values for every key in either.
func Equal(a, b Ledger) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || math.Float64bits(v) != math.Float64bits(w) {
			return false
		}
	}
	return true
}

// Package damage implements outgoing damage rolls and incoming mitigation.
package damage

import (
	"fmt"

	"github.com/cory-johannsen/arpg/internal/game/dice"
	"github.com/cory-johannsen/arpg/internal/game/stat"
)

// Type classifies a damage entry.
type Type int

const (
	Melee Type = iota
	Ranged
	Cold
	Fire
	Lightning
)

// String returns the lowercase name of the damage type.
func (t Type) String() string {
	switch t {
	case Melee:
		return "melee"
	case Ranged:
		return "ranged"
	case Cold:
		return "cold"
	case Fire:
		return "fire"
	case Lightning:
		return "lightning"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// IsPhysical reports whether armour mitigates this type.
func (t Type) IsPhysical() bool {
	return t == Melee || t == Ranged
}

// MarshalText encodes the type by name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name produced by MarshalText.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseType resolves a damage type by name.
func ParseType(s string) (Type, error) {
	for _, t := range []Type{Melee, Ranged, Cold, Fire, Lightning} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown damage type %q", s)
}

// Damage is one resolved hit.
type Damage struct {
	Type Type `json:"type"`
	// Raw is the amount before the target's mitigation.
	Raw       float64 `json:"raw"`
	Crit      bool    `json:"crit,omitempty"`
	Missed    bool    `json:"missed,omitempty"`
	Secondary bool    `json:"secondary,omitempty"`
}

// Profile is the weapon data an attack roll needs.
type Profile struct {
	Type       Type
	Min        float64
	Max        float64
	CritChance float64
}

// PerAttack rolls one attack's worth of damage entries for an attacker with the
// given weapon profile and stats.
//
// The primary entry is rolled in this order: base roll within [Min, Max],
// physical scaling, crit (doubles), hit check (a miss zeroes the entry but it
// is still emitted). Secondary elemental entries follow for every positive
// flat elemental stat and skip the crit and hit rolls.
//
// Precondition: stats must be a seeded ledger; src must be non-nil.
// Postcondition: returns nil when w is nil; otherwise result[0] is the primary entry.
func PerAttack(w *Profile, stats stat.Ledger, src dice.Source) []Damage {
	if w == nil {
		return nil
	}
	raw := dice.FloatRange(src, w.Min, w.Max)
	if w.Type.IsPhysical() {
		raw = (raw + stats.Get(stat.FlatPhysical)) * stats.StrengthScaling() * (1 + stats.Get(stat.PercentPhysical))
	}
	primary := Damage{Type: w.Type}
	if src.Float64() < w.CritChance {
		raw *= 2
		primary.Crit = true
	}
	if src.Float64() >= stats.Get(stat.PercentHitChance) {
		raw = 0
		primary.Missed = true
	}
	primary.Raw = raw

	out := []Damage{primary}
	for _, e := range []struct {
		key stat.Key
		typ Type
	}{
		{stat.FlatCold, Cold},
		{stat.FlatFire, Fire},
		{stat.FlatLightning, Lightning},
	} {
		if v := stats.Get(e.key); v > 0 {
			out = append(out, Damage{Type: e.typ, Raw: v, Secondary: true})
		}
	}
	return out
}

// MitigatedFraction returns armour / (armour + 50*raw), the share of a physical
// hit absorbed by armour. A non-positive hit absorbs nothing.
func MitigatedFraction(raw, armour float64) float64 {
	if raw <= 0 || armour <= 0 {
		return 0
	}
	return armour / (armour + 50*raw)
}

// AfterArmour returns d with its Raw amount reduced by armour mitigation.
// Non-physical damage is returned unchanged.
//
// Postcondition: 0 <= result.Raw <= d.Raw for non-negative d.Raw.
func AfterArmour(d Damage, armour float64) Damage {
	if !d.Type.IsPhysical() {
		return d
	}
	d.Raw *= 1 - MitigatedFraction(d.Raw, armour)
	return d
}

// MaxResistance caps elemental resistance.
const MaxResistance = 0.75

// AfterResistance returns d reduced by the target's resistance to its element.
// Physical damage is returned unchanged.
func AfterResistance(d Damage, stats stat.Ledger) Damage {
	var key stat.Key
	switch d.Type {
	case Cold:
		key = stat.ColdRes
	case Fire:
		key = stat.FireRes
	case Lightning:
		key = stat.LightningRes
	default:
		return d
	}
	res := stats.Get(key)
	if res < 0 {
		res = 0
	}
	if res > MaxResistance {
		res = MaxResistance
	}
	d.Raw *= 1 - res
	return d
}

// Mitigate applies every mitigation the defender's stats provide to d.
func Mitigate(d Damage, defender stat.Ledger) Damage {
	if d.Type.IsPhysical() {
		return AfterArmour(d, defender.TotalArmour())
	}
	return AfterResistance(d, defender)
}

// Total sums the Raw amounts of ds.
func Total(ds []Damage) float64 {
	var sum float64
	for _, d := range ds {
		sum += d.Raw
	}
	return sum
}

// PrimaryTotal sums the Raw amounts of the non-secondary entries in ds.
func PrimaryTotal(ds []Damage) float64 {
	var sum float64
	for _, d := range ds {
		if !d.Secondary {
			sum += d.Raw
		}
	}
	return sum
}

package damage

import (
	"fmt"
	"time"
)

// Special identifies a weapon special attack.
type Special string

const (
	// NoSpecial marks a weapon without a special attack.
	NoSpecial Special = ""
	// DarkBow fires two burning arrows.
	DarkBow Special = "darkBow"
)

type specialDef struct {
	cost      float64
	keyframes []time.Duration
	hits      int
	hitType   Type
	scale     float64
}

var specials = map[Special]specialDef{
	DarkBow: {
		cost:      55,
		keyframes: []time.Duration{0, time.Second, 200 * time.Millisecond},
		hits:      2,
		hitType:   Fire,
		scale:     1.5,
	},
}

func (s Special) def() specialDef {
	d, ok := specials[s]
	if !ok {
		panic(fmt.Sprintf("damage.Special: unknown special %q", string(s)))
	}
	return d
}

// Valid reports whether s names a known special attack.
func (s Special) Valid() bool {
	_, ok := specials[s]
	return ok
}

// Cost returns the special resource consumed by the attack.
//
// Precondition: s.Valid().
func (s Special) Cost() float64 {
	return s.def().cost
}

// Delay returns the time between triggering the attack and its damage landing:
// the sum of its animation keyframe offsets.
//
// Precondition: s.Valid().
func (s Special) Delay() time.Duration {
	var total time.Duration
	for _, k := range s.def().keyframes {
		total += k
	}
	return total
}

// Resolve converts one rolled attack into the special's hits. Each hit is
// scaled from the primary (non-secondary) damage of the roll.
//
// Precondition: s.Valid().
// Postcondition: len(result) == number of hits for s.
func (s Special) Resolve(rolled []Damage) []Damage {
	d := s.def()
	amount := PrimaryTotal(rolled) * d.scale
	out := make([]Damage, d.hits)
	for i := range out {
		out[i] = Damage{Type: d.hitType, Raw: amount}
	}
	return out
}

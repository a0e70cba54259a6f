// Package dice provides the randomness abstraction used by the combat
// simulation and the content generators.
package dice

// Source is the randomness provider for every roll in the simulation.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// IntRange returns a uniform int in the closed range [lo, hi].
//
// Precondition: src must be non-nil; hi >= lo.
// Postcondition: lo <= result <= hi.
func IntRange(src Source, lo, hi int) int {
	if hi < lo {
		panic("dice.IntRange: hi must be >= lo")
	}
	return lo + src.Intn(hi-lo+1)
}

// FloatRange returns a uniform float in [lo, hi]. A degenerate range returns lo.
//
// Precondition: src must be non-nil; hi >= lo.
// Postcondition: lo <= result <= hi.
func FloatRange(src Source, lo, hi float64) float64 {
	if hi < lo {
		panic("dice.FloatRange: hi must be >= lo")
	}
	return lo + src.Float64()*(hi-lo)
}

// Pick returns a uniformly chosen element of items.
//
// Precondition: len(items) > 0.
func Pick[T any](src Source, items []T) T {
	if len(items) == 0 {
		panic("dice.Pick: items must not be empty")
	}
	return items[src.Intn(len(items))]
}

package actor

import (
	"math"

	"github.com/cory-johannsen/arpg/internal/game/stat"
)

// ExperiencePerDamage is the experience granted per point of raw damage dealt.
const ExperiencePerDamage = 4

// ExperienceNeeded returns the cumulative experience curve value at level:
// ((level-1) + 300 * 2^(level - 1/6)) / 4.
//
// Precondition: level >= 1.
func ExperienceNeeded(level int) float64 {
	lv := float64(level)
	return ((lv - 1) + 300*math.Pow(2, lv-1.0/6)) / 4
}

// ExperienceToNextLevel returns the experience needed to advance from level to level+1.
func ExperienceToNextLevel(level int) float64 {
	return ExperienceNeeded(level+1) - ExperienceNeeded(level)
}

// GainExperience adds experience for rawDamage dealt and applies every level
// up it earns. Each level grants one talent point and FlatMaxLifePerLevel.
//
// Postcondition: returns the number of levels gained; Experience < ExperienceToNextLevel(Level).
func (a *Actor) GainExperience(rawDamage float64) int {
	if rawDamage <= 0 {
		return 0
	}
	a.Experience += rawDamage * ExperiencePerDamage
	gained := 0
	for a.Experience >= ExperienceToNextLevel(a.Level) {
		a.Experience -= ExperienceToNextLevel(a.Level)
		a.Level++
		a.TalentPoints++
		a.Intrinsic.Merge(map[stat.Key]float64{stat.FlatMaxLife: FlatMaxLifePerLevel})
		gained++
	}
	if gained > 0 {
		a.Refresh()
	}
	return gained
}

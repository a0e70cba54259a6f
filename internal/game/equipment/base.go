// Package equipment defines equipment bases and generates equipment instances
// with rolled rarity and affixes.
package equipment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arpg/internal/game/damage"
	"github.com/cory-johannsen/arpg/internal/game/stat"
)

// Slot is the equipment slot an item occupies. An actor holds at most one item per slot.
type Slot string

const (
	SlotHelmet  Slot = "helmet"
	SlotBody    Slot = "body"
	SlotWeapon  Slot = "weapon"
	SlotRing    Slot = "ring"
	SlotGloves  Slot = "gloves"
	SlotBoots   Slot = "boots"
	SlotOffhand Slot = "offhand"
	SlotAmulet  Slot = "amulet"
	SlotBelt    Slot = "belt"
)

// AllSlots lists every slot in the order effective stats are recomputed.
var AllSlots = []Slot{
	SlotHelmet, SlotBody, SlotWeapon, SlotRing, SlotGloves,
	SlotBoots, SlotOffhand, SlotAmulet, SlotBelt,
}

// Valid reports whether s is a known slot.
func (s Slot) Valid() bool {
	for _, known := range AllSlots {
		if s == known {
			return true
		}
	}
	return false
}

// Kind discriminates the two base variants.
type Kind string

const (
	KindWeapon Kind = "weapon"
	KindArmor  Kind = "armor"
)

// Requirements are the minimum attributes needed to equip an item.
type Requirements struct {
	Strength     float64 `yaml:"strength" json:"strength,omitempty"`
	Dexterity    float64 `yaml:"dexterity" json:"dexterity,omitempty"`
	Intelligence float64 `yaml:"intelligence" json:"intelligence,omitempty"`
}

// WeaponStats carries the fields only weapon bases have.
type WeaponStats struct {
	Class          string         `yaml:"class" json:"class"`
	DamageType     damage.Type    `yaml:"damage_type" json:"damageType"`
	MinDamage      float64        `yaml:"min_damage" json:"minDamage"`
	MaxDamage      float64        `yaml:"max_damage" json:"maxDamage"`
	TicksPerAttack int            `yaml:"ticks_per_attack" json:"ticksPerAttack"`
	CritChance     float64        `yaml:"crit_chance" json:"critChance"`
	Special        damage.Special `yaml:"special" json:"special,omitempty"`
}

// Base is a closed variant over weapon and armor bases. Kind selects the
// variant; Weapon is non-nil exactly when Kind is KindWeapon.
type Base struct {
	ID               string               `yaml:"id" json:"id"`
	Name             string               `yaml:"name" json:"name"`
	Icon             string               `yaml:"icon" json:"icon,omitempty"`
	Kind             Kind                 `yaml:"kind" json:"kind"`
	Slot             Slot                 `yaml:"slot" json:"slot"`
	LevelRequirement int                  `yaml:"level_requirement" json:"levelRequirement"`
	Requirements     Requirements         `yaml:"requirements" json:"requirements"`
	Stats            map[stat.Key]float64 `yaml:"stats" json:"stats,omitempty"`
	Prefixes         []stat.Key           `yaml:"prefixes" json:"prefixes,omitempty"`
	Suffixes         []stat.Key           `yaml:"suffixes" json:"suffixes,omitempty"`
	Weapon           *WeaponStats         `yaml:"weapon" json:"weapon,omitempty"`
}

// Validate checks the base's invariants.
//
// Postcondition: Returns nil iff the base is internally consistent.
func (b *Base) Validate() error {
	var errs []error
	if b.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if b.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !b.Slot.Valid() {
		errs = append(errs, fmt.Errorf("unknown slot %q", b.Slot))
	}
	if b.LevelRequirement < 1 {
		errs = append(errs, fmt.Errorf("level_requirement must be >= 1, got %d", b.LevelRequirement))
	}
	for _, keys := range [][]stat.Key{b.Prefixes, b.Suffixes} {
		for _, k := range keys {
			if !k.IsKnown() {
				errs = append(errs, fmt.Errorf("unknown affix key %q", k))
			}
		}
	}
	for k := range b.Stats {
		if !k.IsKnown() {
			errs = append(errs, fmt.Errorf("unknown stat key %q", k))
		}
	}
	switch b.Kind {
	case KindWeapon:
		if b.Slot != SlotWeapon {
			errs = append(errs, fmt.Errorf("weapon base must use slot %q, got %q", SlotWeapon, b.Slot))
		}
		if b.Weapon == nil {
			errs = append(errs, errors.New("weapon base must define weapon stats"))
			break
		}
		if b.Weapon.MinDamage < 0 || b.Weapon.MinDamage > b.Weapon.MaxDamage {
			errs = append(errs, fmt.Errorf("damage range [%v, %v] is invalid", b.Weapon.MinDamage, b.Weapon.MaxDamage))
		}
		if b.Weapon.TicksPerAttack < 1 {
			errs = append(errs, fmt.Errorf("ticks_per_attack must be >= 1, got %d", b.Weapon.TicksPerAttack))
		}
		if b.Weapon.Special != damage.NoSpecial && !b.Weapon.Special.Valid() {
			errs = append(errs, fmt.Errorf("unknown special %q", b.Weapon.Special))
		}
	case KindArmor:
		if b.Slot == SlotWeapon {
			errs = append(errs, errors.New("armor base must not use the weapon slot"))
		}
		if b.Weapon != nil {
			errs = append(errs, errors.New("armor base must not define weapon stats"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown kind %q", b.Kind))
	}
	if len(errs) > 0 {
		return fmt.Errorf("equipment base %q: %w", b.ID, errors.Join(errs...))
	}
	return nil
}

// PriceFactor returns the kind-specific price multiplier.
func (b *Base) PriceFactor() float64 {
	switch b.Kind {
	case KindWeapon:
		return 1.2
	case KindArmor:
		return 1.1
	default:
		panic(fmt.Sprintf("equipment.Base.PriceFactor: unknown kind %q", b.Kind))
	}
}

// Profile returns the damage profile for weapon bases and nil for armor.
func (b *Base) Profile() *damage.Profile {
	switch b.Kind {
	case KindWeapon:
		return &damage.Profile{
			Type:       b.Weapon.DamageType,
			Min:        b.Weapon.MinDamage,
			Max:        b.Weapon.MaxDamage,
			CritChance: b.Weapon.CritChance,
		}
	default:
		return nil
	}
}

// basesFile is the on-disk layout of a bases YAML document.
type basesFile struct {
	Bases []Base `yaml:"bases"`
}

// LoadBasesFromBytes parses a YAML document holding a "bases" list and validates every entry.
//
// Postcondition: Returns the parsed bases or a non-nil error naming the first invalid base.
func LoadBasesFromBytes(data []byte) ([]Base, error) {
	var f basesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing equipment bases: %w", err)
	}
	for i := range f.Bases {
		if err := f.Bases[i].Validate(); err != nil {
			return nil, err
		}
	}
	return f.Bases, nil
}

// LoadBases reads every *.yaml file in dir and returns the combined bases.
//
// Precondition: dir must be a readable directory.
func LoadBases(dir string) ([]Base, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading equipment dir %q: %w", dir, err)
	}
	var out []Base
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		bases, err := LoadBasesFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		out = append(out, bases...)
	}
	return out, nil
}

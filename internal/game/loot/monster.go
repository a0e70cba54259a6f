package loot

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arpg/internal/game/stat"
)

// MonsterBase defines a creature encounters are built from.
type MonsterBase struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
	// Level is the minimum encounter level this creature appears at.
	Level        int                  `yaml:"level"`
	Life         float64              `yaml:"life"`
	LifePerLevel float64              `yaml:"life_per_level"`
	Stats        map[stat.Key]float64 `yaml:"stats"`
	Loot         *Table               `yaml:"loot"`
}

// Validate checks that the monster base satisfies basic invariants.
func (m *MonsterBase) Validate() error {
	var errs []error
	if m.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if m.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if m.Level < 1 {
		errs = append(errs, fmt.Errorf("level must be >= 1, got %d", m.Level))
	}
	if m.Life <= 0 {
		errs = append(errs, fmt.Errorf("life must be > 0, got %v", m.Life))
	}
	if m.LifePerLevel < 0 {
		errs = append(errs, fmt.Errorf("life_per_level must be >= 0, got %v", m.LifePerLevel))
	}
	for k := range m.Stats {
		if !k.IsKnown() {
			errs = append(errs, fmt.Errorf("unknown stat key %q", k))
		}
	}
	if m.Loot != nil {
		if err := m.Loot.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("monster %q: %w", m.ID, errors.Join(errs...))
	}
	return nil
}

// LootTable returns the monster's own table or DefaultTable.
func (m *MonsterBase) LootTable() Table {
	if m.Loot != nil {
		return *m.Loot
	}
	return DefaultTable()
}

// BaseDamage returns the flat physical damage every monster gains at level:
// 0.0015*level^1.2 + 0.2*level + 6.
func BaseDamage(level int) float64 {
	lv := float64(level)
	return 0.0015*math.Pow(lv, 1.2) + 0.2*lv + 6
}

// StatsAt returns the stat overrides for a monster of this base spawned at level.
//
// Precondition: level >= 1.
func (m *MonsterBase) StatsAt(level int) map[stat.Key]float64 {
	out := make(map[stat.Key]float64, len(m.Stats)+2)
	for k, v := range m.Stats {
		out[k] = v
	}
	out[stat.FlatMaxLife] += m.Life + m.LifePerLevel*float64(level-1)
	out[stat.FlatPhysical] += BaseDamage(level)
	return out
}

type monstersFile struct {
	Monsters []MonsterBase `yaml:"monsters"`
}

// LoadMonstersFromBytes parses a YAML document holding a "monsters" list.
func LoadMonstersFromBytes(data []byte) ([]MonsterBase, error) {
	var f monstersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing monsters: %w", err)
	}
	for i := range f.Monsters {
		if err := f.Monsters[i].Validate(); err != nil {
			return nil, err
		}
	}
	return f.Monsters, nil
}

// LoadMonsters reads every *.yaml file in dir and returns the combined monster bases.
func LoadMonsters(dir string) ([]MonsterBase, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading monster dir %q: %w", dir, err)
	}
	var out []MonsterBase
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		ms, err := LoadMonstersFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		out = append(out, ms...)
	}
	return out, nil
}

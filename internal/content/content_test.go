package content_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arpg/internal/content"
	"github.com/cory-johannsen/arpg/internal/game/dice"
	"github.com/cory-johannsen/arpg/internal/game/equipment"
	"github.com/cory-johannsen/arpg/internal/game/loot"
)

func TestDefault_LoadsEmbeddedTables(t *testing.T) {
	c, err := content.Default()
	require.NoError(t, err)
	assert.Len(t, c.Equipment.Bases(), 17)
	assert.Len(t, c.Monsters, 8)
	assert.Equal(t, loot.DefaultTable(), c.Loot)
	for _, m := range c.Monsters {
		assert.NotNil(t, m.Loot, m.ID)
	}
	bow, ok := c.Equipment.Base("crude_bow")
	require.True(t, ok)
	require.NotNil(t, bow.Weapon)
	assert.True(t, bow.Weapon.Special.Valid())
}

func TestDefault_EveryLevelHasWeaponAndSlots(t *testing.T) {
	c, err := content.Default()
	require.NoError(t, err)
	for level := 1; level <= 100; level++ {
		assert.NotEmpty(t, c.Equipment.Eligible(level, equipment.SlotWeapon), "level %d", level)
		assert.NotEmpty(t, c.Equipment.SlotsAt(level), "level %d", level)
	}
}

func TestDefault_GeneratesEncounters(t *testing.T) {
	c, err := content.Default()
	require.NoError(t, err)
	rapid.Check(t, func(rt *rapid.T) {
		src := dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed"))
		g, err := loot.NewGenerator(c.Equipment, c.Monsters, src, zaptest.NewLogger(t))
		require.NoError(rt, err)
		enc := g.RandomEncounter(rapid.IntRange(1, 100).Draw(rt, "level"), rapid.Float64Range(0, 3).Draw(rt, "rarity"))
		assert.NotNil(rt, enc.Monster.Weapon())
		assert.Positive(rt, enc.Monster.MaxLife())
	})
}

func TestLoad_EmptyDirUsesEmbedded(t *testing.T) {
	c, err := content.Load("")
	require.NoError(t, err)
	assert.Len(t, c.Monsters, 8)
}

func TestLoad_FromDirectory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("gear.yaml", `
bases:
  - id: stick
    name: Stick
    kind: weapon
    slot: weapon
    level_requirement: 1
    weapon: {class: mace, damage_type: melee, min_damage: 1, max_damage: 2, ticks_per_attack: 2}
monsters:
  - {id: slime, name: Slime, level: 1, life: 10}
`)
	write(content.LootFile, "drops:\n  - {category: coins, weight: 1}\n")
	write("notes.txt", "ignored")

	c, err := content.Load(dir)
	require.NoError(t, err)
	assert.Len(t, c.Equipment.Bases(), 1)
	require.Len(t, c.Monsters, 1)
	assert.Equal(t, 1, c.Loot.TotalWeight())
	assert.Equal(t, c.Loot, c.Monsters[0].LootTable())
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := content.Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoadFS_Rejects(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"no monsters": {
			"gear.yaml": {Data: []byte("bases:\n  - {id: s, name: S, kind: armor, slot: ring, level_requirement: 1}\n")},
		},
		"no bases": {
			"m.yaml": {Data: []byte("monsters:\n  - {id: slime, name: Slime, level: 1, life: 10}\n")},
		},
		"bad loot": {
			"gear.yaml": {Data: []byte("bases:\n  - {id: s, name: S, kind: armor, slot: ring, level_requirement: 1}\nmonsters:\n  - {id: slime, name: Slime, level: 1, life: 10}\n")},
			"loot.yaml": {Data: []byte("drops: []\n")},
		},
		"malformed": {
			"gear.yaml": {Data: []byte("bases: [")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := content.LoadFS(fsys)
			assert.Error(t, err)
		})
	}
}

// Package content loads the game's content tables: equipment bases, monster
// bases and the default monster loot table.
//
// The default tables are embedded in the binary; a directory with the same
// layout can be loaded instead.
package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/cory-johannsen/arpg/internal/game/equipment"
	"github.com/cory-johannsen/arpg/internal/game/loot"
)

// LootFile is the file holding the default monster loot table.
const LootFile = "loot.yaml"

//go:embed data/*.yaml
var embedded embed.FS

// Content is the validated set of tables a game is generated from.
type Content struct {
	Equipment *equipment.Catalog
	Monsters  []loot.MonsterBase
	Loot      loot.Table
}

// Default loads the embedded content tables.
//
// Postcondition: Returns an error only if the embedded tables are invalid.
func Default() (*Content, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("opening embedded content: %w", err)
	}
	return LoadFS(sub)
}

// Load reads the content tables from dir. An empty dir selects the embedded tables.
func Load(dir string) (*Content, error) {
	if dir == "" {
		return Default()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("reading content dir %q: %w", dir, err)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads every *.yaml file at the root of fsys. Each file may hold a
// "bases" list, a "monsters" list, or both. LootFile, when present, holds the
// default monster loot table; without it DefaultTable is used.
//
// Postcondition: Returns an error unless at least one equipment base and one
// monster base were loaded and every table validated.
func LoadFS(fsys fs.FS) (*Content, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	c := &Content{Loot: loot.DefaultTable()}
	var bases []equipment.Base
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		name := entry.Name()
		data, err := fs.ReadFile(fsys, path.Clean(name))
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", name, err)
		}
		if name == LootFile {
			if c.Loot, err = loot.LoadTableFromBytes(data); err != nil {
				return nil, fmt.Errorf("loading %q: %w", name, err)
			}
			continue
		}
		bs, err := equipment.LoadBasesFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", name, err)
		}
		bases = append(bases, bs...)
		ms, err := loot.LoadMonstersFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", name, err)
		}
		c.Monsters = append(c.Monsters, ms...)
	}
	if len(bases) == 0 {
		return nil, errors.New("content: no equipment bases loaded")
	}
	if len(c.Monsters) == 0 {
		return nil, errors.New("content: no monster bases loaded")
	}
	if c.Equipment, err = equipment.NewCatalog(bases); err != nil {
		return nil, err
	}
	for i := range c.Monsters {
		if c.Monsters[i].Loot == nil {
			table := c.Loot
			c.Monsters[i].Loot = &table
		}
	}
	return c, nil
}

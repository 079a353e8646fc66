// Package gamedata resolves item identifiers to display names from a local
// TOML data file extracted from the client datacenter.
package gamedata

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// UnknownItemName is returned for identifiers missing from the table.
const UnknownItemName = "Undefined"

type itemEntry struct {
	ID   uint32 `toml:"id"`
	Name string `toml:"name"`
}

type itemFile struct {
	Items []itemEntry `toml:"item"`
}

// ItemTable maps item IDs to display names.
type ItemTable struct {
	names map[uint32]string
}

// Load reads an item table from a TOML file with repeated [[item]] blocks.
func Load(path string) (*ItemTable, error) {
	var f itemFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("gamedata: decode %s: %w", path, err)
	}

	t := &ItemTable{names: make(map[uint32]string, len(f.Items))}
	for _, it := range f.Items {
		t.names[it.ID] = it.Name
	}
	return t, nil
}

// Empty returns a table with no entries; every lookup yields UnknownItemName.
func Empty() *ItemTable {
	return &ItemTable{names: map[uint32]string{}}
}

// Name returns the display name for an item, or UnknownItemName.
func (t *ItemTable) Name(id uint32) string {
	if name, ok := t.names[id]; ok {
		return name
	}
	return UnknownItemName
}

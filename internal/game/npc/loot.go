package npc

import (
	"fmt"

	"github.com/sundered/mud/internal/game/dice"
	"github.com/sundered/mud/internal/game/item"
)

// LootEntry is one possible drop from a defeated NPC.
type LootEntry struct {
	// ItemID is the item definition to spawn.
	ItemID string `yaml:"item"`
	// Chance is the drop probability in percent, 1-100.
	Chance int `yaml:"chance"`
	// Count is how many instances drop when the entry hits. Defaults to 1.
	Count int `yaml:"count,omitempty"`
}

// CoinRange is a uniform currency drop range, inclusive on both ends. The
// zero value never drops coins.
type CoinRange struct {
	Min int `yaml:"min,omitempty"`
	Max int `yaml:"max,omitempty"`
}

// Validate checks the range bounds.
func (r CoinRange) Validate() error {
	if r.Min < 0 || r.Max < 0 {
		return fmt.Errorf("coin range must not be negative")
	}
	if r.Max < r.Min {
		return fmt.Errorf("coin range max %d below min %d", r.Max, r.Min)
	}
	return nil
}

// Roll draws a coin count uniformly from the range.
func (r CoinRange) Roll(src dice.Source) int {
	if r.Max == 0 {
		return 0
	}
	return r.Min + src.Intn(r.Max-r.Min+1)
}

// LootTable is the full set of possible drops. Entries roll independently.
type LootTable []LootEntry

// Validate checks every entry.
func (t LootTable) Validate() error {
	for i, entry := range t {
		if entry.ItemID == "" {
			return fmt.Errorf("loot entry %d: item must not be empty", i)
		}
		if entry.Chance < 1 || entry.Chance > 100 {
			return fmt.Errorf("loot entry %d: chance must be 1-100, got %d", i, entry.Chance)
		}
		if entry.Count < 0 {
			return fmt.Errorf("loot entry %d: count must not be negative", i)
		}
	}
	return nil
}

// Roll generates the drops for one defeat. Each entry rolls percentile dice
// independently against its chance.
//
// Precondition: the table passed Validate and every ItemID exists in catalog.
// Postcondition: Returns zero or more freshly spawned instances.
func (t LootTable) Roll(src dice.Source, catalog *item.Catalog) ([]*item.Instance, error) {
	var drops []*item.Instance
	for _, entry := range t {
		if src.Intn(100)+1 > entry.Chance {
			continue
		}
		count := entry.Count
		if count == 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			inst, err := catalog.Spawn(entry.ItemID)
			if err != nil {
				return nil, fmt.Errorf("rolling loot: %w", err)
			}
			drops = append(drops, inst)
		}
	}
	return drops, nil
}

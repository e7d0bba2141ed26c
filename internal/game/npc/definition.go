package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sundered/mud/internal/game/dice"
	"github.com/sundered/mud/internal/game/item"
)

// Definition is the template an NPC instance is spawned from.
type Definition struct {
	// ID uniquely identifies the definition.
	ID string `yaml:"id"`
	// Name is the display name spawned instances carry.
	Name string `yaml:"name"`
	// MaxHP is the spawned hit point total.
	MaxHP int `yaml:"max_hp"`
	// Abilities maps ability labels ("str", "dex") to flat bonuses.
	Abilities map[string]int `yaml:"abilities,omitempty"`
	// Armor is the defense bonus.
	Armor int `yaml:"armor,omitempty"`
	// Weapon is the item definition ID the NPC spawns wielding. Optional.
	Weapon string `yaml:"weapon,omitempty"`
	// Loot lists the drops rolled when the NPC is defeated.
	Loot LootTable `yaml:"loot,omitempty"`
	// Coins is the currency range rolled alongside the loot table.
	Coins CoinRange `yaml:"coins,omitempty"`

	abilities map[dice.Ability]int
}

// Validate checks the definition and caches the parsed ability map.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("npc definition must have an ID")
	}
	if d.Name == "" {
		return fmt.Errorf("npc %q: name must not be empty", d.ID)
	}
	if d.MaxHP <= 0 {
		return fmt.Errorf("npc %q: max_hp must be positive", d.ID)
	}
	d.abilities = make(map[dice.Ability]int, len(d.Abilities))
	for label, bonus := range d.Abilities {
		ability, err := dice.ParseAbility(label)
		if err != nil {
			return fmt.Errorf("npc %q: %w", d.ID, err)
		}
		d.abilities[ability] = bonus
	}
	if err := d.Loot.Validate(); err != nil {
		return fmt.Errorf("npc %q: %w", d.ID, err)
	}
	if err := d.Coins.Validate(); err != nil {
		return fmt.Errorf("npc %q: %w", d.ID, err)
	}
	return nil
}

// Bestiary holds all loaded NPC definitions and spawns instances from them.
// Safe for concurrent use.
type Bestiary struct {
	log     *zap.Logger
	catalog *item.Catalog

	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewBestiary creates an empty bestiary that spawns weapons from catalog.
//
// Precondition: log and catalog must be non-nil.
func NewBestiary(catalog *item.Catalog, log *zap.Logger) *Bestiary {
	return &Bestiary{
		log:     log,
		catalog: catalog,
		defs:    make(map[string]*Definition),
	}
}

// npcFile is the YAML shape of an NPC definition file.
type npcFile struct {
	NPCs []*Definition `yaml:"npcs"`
}

// LoadDir loads every *.yaml definition file under dir.
func (b *Bestiary) LoadDir(dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("globbing npc dir %s: %w", dir, err)
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading npc file %s: %w", path, err)
		}
		if err := b.LoadBytes(data); err != nil {
			return fmt.Errorf("npc file %s: %w", path, err)
		}
	}
	return nil
}

// LoadBytes parses and registers the definitions in a YAML document. Weapon
// and loot item references are resolved against the catalog at load time so
// a broken reference fails startup, not a fight.
func (b *Bestiary) LoadBytes(data []byte) error {
	var file npcFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing npc YAML: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, def := range file.NPCs {
		if err := def.Validate(); err != nil {
			return err
		}
		if def.Weapon != "" {
			wdef, ok := b.catalog.Lookup(def.Weapon)
			if !ok {
				return fmt.Errorf("npc %q: unknown weapon %q", def.ID, def.Weapon)
			}
			if wdef.Kind != item.KindWeapon {
				return fmt.Errorf("npc %q: item %q is not a weapon", def.ID, def.Weapon)
			}
		}
		for _, entry := range def.Loot {
			if _, ok := b.catalog.Lookup(entry.ItemID); !ok {
				return fmt.Errorf("npc %q: unknown loot item %q", def.ID, entry.ItemID)
			}
		}
		if _, dup := b.defs[def.ID]; dup {
			return fmt.Errorf("duplicate npc definition %q", def.ID)
		}
		b.defs[def.ID] = def
	}
	b.log.Info("npc definitions loaded", zap.Int("count", len(file.NPCs)))
	return nil
}

// Lookup returns the definition with the given ID.
func (b *Bestiary) Lookup(id string) (*Definition, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	def, ok := b.defs[id]
	return def, ok
}

// Spawn creates a fresh NPC from the named definition at location, wielding
// its configured weapon.
//
// Postcondition: Returns a full-health NPC or an error for unknown IDs.
func (b *Bestiary) Spawn(defID, location string) (*NPC, error) {
	def, ok := b.Lookup(defID)
	if !ok {
		return nil, fmt.Errorf("unknown npc definition %q", defID)
	}
	n := newNPC(def, location)
	if def.Weapon != "" {
		weapon, err := b.catalog.Spawn(def.Weapon)
		if err != nil {
			return nil, fmt.Errorf("npc %q: %w", defID, err)
		}
		n.Wield(weapon)
	}
	return n, nil
}

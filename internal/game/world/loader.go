package world

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// zoneFile is the YAML representation of a zone definition.
type zoneFile struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	StartRoom string     `yaml:"start_room"`
	Rooms     []roomFile `yaml:"rooms"`
}

type roomFile struct {
	ID          string     `yaml:"id"`
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Exits       []exitFile `yaml:"exits"`
	AllowCombat bool       `yaml:"allow_combat"`
	AllowPvP    bool       `yaml:"allow_pvp"`
	AllowDeath  bool       `yaml:"allow_death"`
}

type exitFile struct {
	Direction string `yaml:"direction"`
	Target    string `yaml:"target"`
}

// LoadZone reads and validates a single zone definition from a YAML file.
//
// Precondition: path must point to a readable YAML file.
// Postcondition: Returns a validated Zone or an error.
func LoadZone(path string) (*Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading zone file %s: %w", path, err)
	}
	return ParseZone(data)
}

// ParseZone parses and validates a zone definition from YAML bytes.
func ParseZone(data []byte) (*Zone, error) {
	var zf zoneFile
	if err := yaml.Unmarshal(data, &zf); err != nil {
		return nil, fmt.Errorf("parsing zone YAML: %w", err)
	}

	zone := &Zone{
		ID:        zf.ID,
		Name:      zf.Name,
		StartRoom: zf.StartRoom,
		Rooms:     make(map[string]*Room, len(zf.Rooms)),
	}
	for _, rf := range zf.Rooms {
		if _, dup := zone.Rooms[rf.ID]; dup {
			return nil, fmt.Errorf("zone %q: duplicate room ID %q", zf.ID, rf.ID)
		}
		room := &Room{
			ID:          rf.ID,
			ZoneID:      zf.ID,
			Title:       rf.Title,
			Description: rf.Description,
			AllowCombat: rf.AllowCombat,
			AllowPvP:    rf.AllowPvP,
			AllowDeath:  rf.AllowDeath,
		}
		for _, ef := range rf.Exits {
			room.Exits = append(room.Exits, Exit{Direction: ef.Direction, TargetRoom: ef.Target})
		}
		zone.Rooms[rf.ID] = room
	}

	if err := zone.Validate(); err != nil {
		return nil, err
	}
	return zone, nil
}

// LoadZones loads every *.yaml zone file from dir.
//
// Postcondition: Returns one Zone per file, or an error naming the first
// file that failed.
func LoadZones(dir string) ([]*Zone, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("globbing zone dir %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no zone files found in %s", dir)
	}

	zones := make([]*Zone, 0, len(paths))
	for _, path := range paths {
		zone, err := LoadZone(path)
		if err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}
	return zones, nil
}

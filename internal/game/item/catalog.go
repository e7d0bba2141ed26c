package item

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Catalog holds all loaded item definitions, keyed by definition ID.
// Safe for concurrent use.
type Catalog struct {
	log *zap.Logger

	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewCatalog creates an empty item catalog.
//
// Precondition: log must be non-nil.
func NewCatalog(log *zap.Logger) *Catalog {
	return &Catalog{
		log:  log,
		defs: make(map[string]*Definition),
	}
}

// itemFile is the YAML shape of an item definition file.
type itemFile struct {
	Items []*Definition `yaml:"items"`
}

// LoadDir loads every *.yaml definition file under dir into the catalog.
//
// Postcondition: Every definition in the directory is validated and
// resolvable via Lookup, or an error names the first failure.
func (c *Catalog) LoadDir(dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return fmt.Errorf("globbing item dir %s: %w", dir, err)
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading item file %s: %w", path, err)
		}
		if err := c.LoadBytes(data); err != nil {
			return fmt.Errorf("item file %s: %w", path, err)
		}
	}
	return nil
}

// LoadBytes parses and registers the definitions in a YAML document.
func (c *Catalog) LoadBytes(data []byte) error {
	var file itemFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing item YAML: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, def := range file.Items {
		if err := def.Validate(); err != nil {
			return err
		}
		if _, dup := c.defs[def.ID]; dup {
			return fmt.Errorf("duplicate item definition %q", def.ID)
		}
		c.defs[def.ID] = def
	}
	c.log.Info("item definitions loaded", zap.Int("count", len(file.Items)))
	return nil
}

// Lookup returns the definition with the given ID.
func (c *Catalog) Lookup(id string) (*Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.defs[id]
	return def, ok
}

// Spawn stamps a new instance of the definition with the given ID.
//
// Postcondition: Returns a fresh instance, or an error for unknown IDs.
func (c *Catalog) Spawn(id string) (*Instance, error) {
	def, ok := c.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("unknown item definition %q", id)
	}
	return NewInstance(def), nil
}

// Len returns the number of registered definitions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}

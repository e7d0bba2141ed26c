package combat

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrNoLocation is returned when combat is requested without a valid
// location scope. No arena is created.
var ErrNoLocation = errors.New("combat requires a location")

// Registry maps scope keys to live arenas and tracks which arena every
// combatant is enrolled in. Process-wide, never persisted; a restart simply
// loses in-flight fights.
type Registry struct {
	log *zap.Logger
	cfg Config

	mu        sync.Mutex
	arenas    map[string]*Arena
	enrolling map[string]*Arena
}

// NewRegistry creates an empty registry.
//
// Precondition: log, cfg.Unarmed, and cfg.Rolls must be non-nil.
func NewRegistry(cfg Config, log *zap.Logger) *Registry {
	if cfg.Unarmed == nil {
		panic("combat: Config.Unarmed must be set")
	}
	if cfg.Rolls == nil {
		panic("combat: Config.Rolls must be set")
	}
	return &Registry{
		log:       log,
		cfg:       cfg,
		arenas:    make(map[string]*Arena),
		enrolling: make(map[string]*Arena),
	}
}

// GetOrCreate returns the live arena for key, creating one scoped to loc if
// none exists. A stopped arena never comes back: the next call after a stop
// allocates a fresh instance.
//
// Postcondition: Returns a non-stopped arena, or ErrNoLocation when loc is
// nil and no arena exists.
func (r *Registry) GetOrCreate(key string, loc Location) (*Arena, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.arenas[key]; ok {
		return a, nil
	}
	if loc == nil {
		return nil, ErrNoLocation
	}
	a := newArena(key, loc, r.cfg, r, r.log)
	r.arenas[key] = a
	r.log.Info("arena created", zap.String("arena", key))
	return a, nil
}

// Lookup returns the live arena for key, if any.
func (r *Registry) Lookup(key string) (*Arena, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.arenas[key]
	return a, ok
}

// ArenaFor returns the arena the combatant with the given ID is enrolled in.
func (r *Registry) ArenaFor(combatantID string) (*Arena, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.enrolling[combatantID]
	return a, ok
}

// StopAll force-stops every live arena. Used at shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	arenas := make([]*Arena, 0, len(r.arenas))
	for _, a := range r.arenas {
		arenas = append(arenas, a)
	}
	r.mu.Unlock()

	for _, a := range arenas {
		a.Stop()
	}
}

// enroll records that a combatant belongs to arena. A combatant already
// enrolled elsewhere is rejected; combat never moves someone mid-fight.
func (r *Registry) enroll(combatantID string, arena *Arena) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.enrolling[combatantID]; ok && current != arena {
		return ErrAlreadyInCombat
	}
	r.enrolling[combatantID] = arena
	return nil
}

// release clears a combatant's enrollment, but only if it still points at
// arena, so a stale release cannot clobber a newer fight.
func (r *Registry) release(combatantID string, arena *Arena) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.enrolling[combatantID]; ok && current == arena {
		delete(r.enrolling, combatantID)
	}
}

// remove deregisters arena from the key map, but only while it is still the
// registered arena for its key.
func (r *Registry) remove(key string, arena *Arena) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.arenas[key]; ok && current == arena {
		delete(r.arenas, key)
	}
}

// Package registry maps pool identifiers to pool state and owns the
// per-pool locking discipline: one exclusive lock per pool for mutations,
// shared locks for reads, no coordination across distinct pools.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"ammcore/internal/model"
)

var (
	ErrPoolNotFound      = errors.New("pool not found")
	ErrPoolAlreadyExists = errors.New("pool already exists")
)

type entry struct {
	mu   sync.RWMutex
	pool *model.Pool
}

// Registry holds every active pool keyed by canonical pair identifier.
type Registry struct {
	mu    sync.RWMutex
	pools map[string]*entry
}

func New() *Registry {
	return &Registry{pools: make(map[string]*entry)}
}

// Register activates a pool under its identifier. At most one pool may ever
// exist per identifier.
func (r *Registry) Register(pool *model.Pool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pools[pool.ID]; exists {
		return fmt.Errorf("pool %s: %w", pool.ID, ErrPoolAlreadyExists)
	}
	r.pools[pool.ID] = &entry{pool: pool}
	return nil
}

// Exists reports whether an identifier is taken.
func (r *Registry) Exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pools[id]
	return ok
}

func (r *Registry) get(id string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.pools[id]
	if !ok {
		return nil, fmt.Errorf("pool %s: %w", id, ErrPoolNotFound)
	}
	return e, nil
}

// Update runs fn holding the pool's exclusive lock. fn sees and may mutate
// the live pool state; no other mutation or read interleaves with it.
func (r *Registry) Update(id string, fn func(*model.Pool) error) error {
	e, err := r.get(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.pool)
}

// View runs fn holding the pool's shared lock. fn must not mutate the pool.
func (r *Registry) View(id string, fn func(*model.Pool) error) error {
	e, err := r.get(id)
	if err != nil {
		return err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return fn(e.pool)
}

// IDs returns every registered pool identifier in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.pools))
	for id := range r.pools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

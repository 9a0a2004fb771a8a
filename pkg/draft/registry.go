package draft

import (
	"sync"

	"waira/entities"
)

// Registry keeps open drafts in memory, per owner. Callers always work on
// copies and write them back with Put.
type Registry struct {
	mu     sync.Mutex
	drafts map[string]*Draft
}

func NewRegistry() *Registry {
	return &Registry{drafts: map[string]*Draft{}}
}

func (r *Registry) Open(owner, cellID string, kind entities.CellType) (*Draft, error) {
	d, err := New(owner, cellID, kind)
	if err != nil {
		return nil, err
	}
	r.Put(d)
	return d, nil
}

func (r *Registry) Put(d *Draft) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[d.ID] = d.clone()
}

func (r *Registry) Get(owner, id string) (*Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drafts[id]
	if !ok || d.Owner != owner {
		return nil, ErrNotFound
	}
	return d.clone(), nil
}

func (r *Registry) Delete(owner, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.drafts[id]; ok && d.Owner == owner {
		delete(r.drafts, id)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drafts)
}

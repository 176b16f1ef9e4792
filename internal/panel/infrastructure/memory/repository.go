package memory

import (
	"context"
	"sort"
	"sync"

	panel "pvhealth-cloud/internal/panel/domain"
)

// PanelRepository is an in-memory repository for panel aggregates.
type PanelRepository struct {
	mu   sync.RWMutex
	data map[string]*panel.Panel
}

// NewPanelRepository constructs a repository.
func NewPanelRepository() *PanelRepository {
	return &PanelRepository{data: make(map[string]*panel.Panel)}
}

// Get loads a detached copy of a panel.
func (r *PanelRepository) Get(ctx context.Context, panelID string) (*panel.Panel, error) {
	_ = ctx
	if panelID == "" {
		return nil, panel.ErrEmptyPanelID
	}

	r.mu.RLock()
	p := r.data[panelID]
	r.mu.RUnlock()
	if p == nil {
		return nil, panel.ErrPanelNotFound
	}
	return p.Clone(), nil
}

// Save persists a panel aggregate (overwrites existing).
func (r *PanelRepository) Save(ctx context.Context, p *panel.Panel) error {
	_ = ctx
	if p == nil {
		return panel.ErrNilPanel
	}
	if p.ID() == "" {
		return panel.ErrEmptyPanelID
	}

	clone := p.Clone()
	r.mu.Lock()
	r.data[p.ID()] = clone
	r.mu.Unlock()
	return nil
}

// List returns detached copies of all panels ordered by id.
func (r *PanelRepository) List(ctx context.Context) ([]*panel.Panel, error) {
	_ = ctx

	r.mu.RLock()
	out := make([]*panel.Panel, 0, len(r.data))
	for _, p := range r.data {
		out = append(out, p.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

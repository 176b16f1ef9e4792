package panel

import "context"

// Repository loads and persists panel aggregates.
type Repository interface {
	// Get returns a detached copy of a panel, or ErrPanelNotFound.
	Get(ctx context.Context, panelID string) (*Panel, error)
	// Save persists the full aggregate state (overwrites existing).
	Save(ctx context.Context, p *Panel) error
	// List returns detached copies of all panels.
	List(ctx context.Context) ([]*Panel, error)
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	panel "pvhealth-cloud/internal/panel/domain"
)

// PanelRepository is a Postgres implementation of the panel repository.
// Aggregates are split over four tables: panels, panel_specifications,
// panel_tests and panel_profiles. Save rewrites the specification rows and
// appends any log entries not yet persisted.
type PanelRepository struct {
	db *sql.DB
}

// NewPanelRepository constructs a repository.
func NewPanelRepository(db *sql.DB) *PanelRepository {
	return &PanelRepository{db: db}
}

// Get reconstructs a panel aggregate from its persisted rows.
func (r *PanelRepository) Get(ctx context.Context, panelID string) (*panel.Panel, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("panel repo: nil db")
	}
	if panelID == "" {
		return nil, panel.ErrEmptyPanelID
	}

	var modelNumber sql.NullString
	err := r.db.QueryRowContext(ctx, `
SELECT model_number FROM panels WHERE panel_id = $1`, panelID).Scan(&modelNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, panel.ErrPanelNotFound
	}
	if err != nil {
		return nil, err
	}

	specs, err := r.loadSpecifications(ctx, panelID)
	if err != nil {
		return nil, err
	}
	tests, err := r.loadTests(ctx, panelID)
	if err != nil {
		return nil, err
	}
	profiles, err := r.loadProfiles(ctx, panelID)
	if err != nil {
		return nil, err
	}

	return panel.Restore(panelID, modelNumber.String, specs, tests, profiles)
}

// Save persists the full aggregate state in one transaction.
func (r *PanelRepository) Save(ctx context.Context, p *panel.Panel) error {
	if r == nil || r.db == nil {
		return errors.New("panel repo: nil db")
	}
	if p == nil {
		return panel.ErrNilPanel
	}
	if p.ID() == "" {
		return panel.ErrEmptyPanelID
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := saveTx(ctx, tx, p); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func saveTx(ctx context.Context, tx *sql.Tx, p *panel.Panel) error {
	modelNumber := sql.NullString{String: p.ModelNumber(), Valid: p.ModelNumber() != ""}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO panels (panel_id, model_number, created_at)
VALUES ($1, $2, NOW())
ON CONFLICT (panel_id) DO UPDATE SET model_number = EXCLUDED.model_number`,
		p.ID(), modelNumber); err != nil {
		return err
	}

	for key, value := range p.Specifications() {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO panel_specifications (panel_id, spec_key, spec_value, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (panel_id, spec_key) DO UPDATE SET
	spec_value = EXCLUDED.spec_value,
	updated_at = NOW()`, p.ID(), string(key), value); err != nil {
			return err
		}
	}

	// Test and profile logs are append-only; seq preserves call order
	// independently of the measurement timestamps.
	for i, test := range p.Tests() {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO panel_tests (panel_id, seq, measured_at, power_output_w)
VALUES ($1, $2, $3, $4)
ON CONFLICT (panel_id, seq) DO NOTHING`,
			p.ID(), i, test.At, test.PowerOutputW); err != nil {
			return err
		}
	}
	for i, profile := range p.Profiles() {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO panel_profiles (panel_id, seq, degradation, generated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (panel_id, seq) DO NOTHING`,
			p.ID(), i, profile.Degradation, profile.GeneratedAt); err != nil {
			return err
		}
	}
	return nil
}

// List loads every panel aggregate ordered by id.
func (r *PanelRepository) List(ctx context.Context) ([]*panel.Panel, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("panel repo: nil db")
	}

	rows, err := r.db.QueryContext(ctx, `SELECT panel_id FROM panels ORDER BY panel_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*panel.Panel, 0, len(ids))
	for _, id := range ids {
		p, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *PanelRepository) loadSpecifications(ctx context.Context, panelID string) (map[panel.SpecKey]float64, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT spec_key, spec_value FROM panel_specifications WHERE panel_id = $1`, panelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	specs := make(map[panel.SpecKey]float64)
	for rows.Next() {
		var rawKey string
		var value float64
		if err := rows.Scan(&rawKey, &value); err != nil {
			return nil, err
		}
		key, ok := panel.ParseSpecKey(rawKey)
		if !ok {
			// Unknown keys written by a newer schema version are skipped.
			continue
		}
		specs[key] = value
	}
	return specs, rows.Err()
}

func (r *PanelRepository) loadTests(ctx context.Context, panelID string) ([]panel.TestRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT measured_at, power_output_w FROM panel_tests WHERE panel_id = $1 ORDER BY seq`, panelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []panel.TestRecord
	for rows.Next() {
		var at time.Time
		var watts float64
		if err := rows.Scan(&at, &watts); err != nil {
			return nil, err
		}
		tests = append(tests, panel.TestRecord{At: at, PowerOutputW: watts})
	}
	return tests, rows.Err()
}

func (r *PanelRepository) loadProfiles(ctx context.Context, panelID string) ([]panel.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT degradation, generated_at FROM panel_profiles WHERE panel_id = $1 ORDER BY seq`, panelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []panel.Profile
	for rows.Next() {
		var degradation float64
		var at time.Time
		if err := rows.Scan(&degradation, &at); err != nil {
			return nil, err
		}
		profiles = append(profiles, panel.Profile{PanelID: panelID, Degradation: degradation, GeneratedAt: at})
	}
	return profiles, rows.Err()
}

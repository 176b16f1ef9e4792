package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	panel "pvhealth-cloud/internal/panel/domain"
)

// RegisterRequest creates a panel with optional nameplate values.
type RegisterRequest struct {
	PanelID        string             `json:"panel_id"`
	ModelNumber    string             `json:"model_number"`
	Specifications map[string]float64 `json:"specifications"`
}

// RecordTestRequest records one field measurement. Either PowerOutputW or
// the voltage/current pair must be supplied; PowerOutputW wins when both
// are present.
type RecordTestRequest struct {
	MeasuredAt       time.Time `json:"measured_at"`
	PowerOutputW     *float64  `json:"power_output_w"`
	MeasuredVoltageV *float64  `json:"measured_voltage_v"`
	MeasuredCurrentA *float64  `json:"measured_current_a"`
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// PanelService handles panel registration and measurement use cases.
type PanelService struct {
	repo  panel.Repository
	clock Clock
}

// NewPanelService constructs the service.
func NewPanelService(repo panel.Repository, clock Clock) (*PanelService, error) {
	if repo == nil {
		return nil, errors.New("panel service: nil repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &PanelService{repo: repo, clock: clock}, nil
}

// RegisterPanel creates and persists a panel. A fresh opaque id is generated
// when the request does not carry one. Unknown specification keys are
// rejected; value ranges are not validated.
func (s *PanelService) RegisterPanel(ctx context.Context, req RegisterRequest) (*panel.Panel, error) {
	id := req.PanelID
	if id == "" {
		id = NewPanelID()
	}

	specs, err := parseSpecifications(req.Specifications)
	if err != nil {
		return nil, err
	}

	p, err := panel.NewPanel(id, req.ModelNumber)
	if err != nil {
		return nil, err
	}
	p.RecordSpecifications(specs)

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RecordSpecifications merges nameplate values into an existing panel.
func (s *PanelService) RecordSpecifications(ctx context.Context, panelID string, values map[string]float64) (*panel.Panel, error) {
	specs, err := parseSpecifications(values)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.Get(ctx, panelID)
	if err != nil {
		return nil, err
	}
	p.RecordSpecifications(specs)

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RecordTest appends one measurement to the panel's test log. Power output
// is taken verbatim when present, otherwise computed as voltage x current.
func (s *PanelService) RecordTest(ctx context.Context, panelID string, req RecordTestRequest) (panel.TestRecord, error) {
	var powerW float64
	switch {
	case req.PowerOutputW != nil:
		powerW = *req.PowerOutputW
	case req.MeasuredVoltageV != nil && req.MeasuredCurrentA != nil:
		powerW = *req.MeasuredVoltageV * *req.MeasuredCurrentA
	default:
		return panel.TestRecord{}, errors.New("panel service: power_output_w or voltage/current pair required")
	}

	at := req.MeasuredAt
	if at.IsZero() {
		at = s.clock.Now()
	}
	record, err := panel.NewTestRecord(at, powerW)
	if err != nil {
		return panel.TestRecord{}, err
	}

	p, err := s.repo.Get(ctx, panelID)
	if err != nil {
		return panel.TestRecord{}, err
	}
	p.RecordTest(record)

	if err := s.repo.Save(ctx, p); err != nil {
		return panel.TestRecord{}, err
	}
	return record, nil
}

// GetPanel loads a detached panel copy.
func (s *PanelService) GetPanel(ctx context.Context, panelID string) (*panel.Panel, error) {
	return s.repo.Get(ctx, panelID)
}

// ListPanels loads detached copies of all panels.
func (s *PanelService) ListPanels(ctx context.Context) ([]*panel.Panel, error) {
	return s.repo.List(ctx)
}

func parseSpecifications(raw map[string]float64) (map[panel.SpecKey]float64, error) {
	specs := make(map[panel.SpecKey]float64, len(raw))
	for rawKey, value := range raw {
		key, ok := panel.ParseSpecKey(rawKey)
		if !ok {
			return nil, fmt.Errorf("panel service: unknown specification key %q", rawKey)
		}
		specs[key] = value
	}
	return specs, nil
}

// NewPanelID generates a random opaque panel identifier.
func NewPanelID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "panel-" + hex.EncodeToString(buf[:])
	}
	// UUIDv4 formatting (without external dependency).
	buf[6] = (buf[6] & 0x0f) | 0x40
	buf[8] = (buf[8] & 0x3f) | 0x80
	return "panel-" + hex.EncodeToString(buf[:])
}

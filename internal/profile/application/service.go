package application

import (
	"context"
	"errors"
	"time"

	"pvhealth-cloud/internal/degradation"
	panel "pvhealth-cloud/internal/panel/domain"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ProfileService generates degradation profiles for panels.
type ProfileService struct {
	repo      panel.Repository
	estimator *degradation.Estimator
	clock     Clock
}

// NewProfileService constructs the service.
func NewProfileService(repo panel.Repository, estimator *degradation.Estimator, clock Clock) (*ProfileService, error) {
	if repo == nil {
		return nil, errors.New("profile service: nil repository")
	}
	if estimator == nil {
		return nil, errors.New("profile service: nil estimator")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ProfileService{repo: repo, estimator: estimator, clock: clock}, nil
}

// GenerateProfile estimates degradation from the panel's current state and
// appends the resulting profile to the panel's profile log. Each call
// re-reads the panel, so repeated calls always reflect the latest test and
// specifications. On estimator failure nothing is persisted and the error
// propagates untouched.
func (s *ProfileService) GenerateProfile(ctx context.Context, panelID string) (panel.Profile, error) {
	p, err := s.repo.Get(ctx, panelID)
	if err != nil {
		return panel.Profile{}, err
	}

	value, err := s.estimator.Estimate(p)
	if err != nil {
		return panel.Profile{}, err
	}

	profile := panel.Profile{
		PanelID:     p.ID(),
		Degradation: value,
		GeneratedAt: s.clock.Now(),
	}
	p.AppendProfile(profile)

	if err := s.repo.Save(ctx, p); err != nil {
		return panel.Profile{}, err
	}
	return profile, nil
}

// ListProfiles returns the panel's profile history in generation order.
func (s *ProfileService) ListProfiles(ctx context.Context, panelID string) ([]panel.Profile, error) {
	p, err := s.repo.Get(ctx, panelID)
	if err != nil {
		return nil, err
	}
	return p.Profiles(), nil
}

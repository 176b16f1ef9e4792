// Package degradation estimates PV panel performance loss against the
// panel's nameplate rating at a reference irradiance.
package degradation

import (
	"errors"

	panel "pvhealth-cloud/internal/panel/domain"
)

// DefaultReferenceIrradiance is the assumed solar power density (W/m2) when
// computing theoretical rated output.
const DefaultReferenceIrradiance = 1000.0

// Estimator derives a degradation fraction from a panel's latest test record
// and its nameplate specifications. It is a pure function over the panel
// snapshot; it never mutates the panel.
type Estimator struct {
	referenceIrradiance float64
}

// Option configures an estimator.
type Option func(*Estimator)

// WithReferenceIrradiance overrides the reference irradiance (W/m2).
func WithReferenceIrradiance(wPerM2 float64) Option {
	return func(e *Estimator) {
		if wPerM2 > 0 {
			e.referenceIrradiance = wPerM2
		}
	}
}

// NewEstimator constructs an estimator with the default reference irradiance.
func NewEstimator(opts ...Option) (*Estimator, error) {
	e := &Estimator{referenceIrradiance: DefaultReferenceIrradiance}
	for _, opt := range opts {
		opt(e)
	}
	if e.referenceIrradiance <= 0 {
		return nil, errors.New("degradation: non-positive reference irradiance")
	}
	return e, nil
}

// ReferenceIrradiance returns the configured reference irradiance (W/m2).
func (e *Estimator) ReferenceIrradiance() float64 { return e.referenceIrradiance }

// Estimate computes the degradation fraction for a panel.
//
// Preconditions, checked in order, each failing with ErrInsufficientData:
// the test log holds at least one record (the most recently appended one is
// used), the module area is present, and an efficiency source exists. The
// efficiency ratio comes from the rated efficiency percentage divided by 100
// when present, otherwise from ratedPmax / (referenceIrradiance * area). The
// derived value is already a ratio and is used as-is; the two paths agree
// whenever the nameplate values are mutually consistent.
//
// The result is 1 - measured / (ratio * referenceIrradiance * area). It is
// not clamped: a panel outperforming its rating yields a negative fraction.
func (e *Estimator) Estimate(p *panel.Panel) (float64, error) {
	if p == nil {
		return 0, panel.ErrNilPanel
	}

	latest, ok := p.LatestTest()
	if !ok {
		return 0, ErrInsufficientData
	}

	areaM2, ok := p.Specification(panel.SpecModuleAreaM2)
	if !ok {
		return 0, ErrInsufficientData
	}

	ratio, err := e.efficiencyRatio(p, areaM2)
	if err != nil {
		return 0, err
	}

	theoreticalW := ratio * e.referenceIrradiance * areaM2
	return 1 - latest.PowerOutputW/theoreticalW, nil
}

// efficiencyRatio resolves the efficiency divisor input. Direct rated
// efficiency is a percentage; the Pmax fallback is already a unitless ratio
// and intentionally skips the percent conversion.
func (e *Estimator) efficiencyRatio(p *panel.Panel, areaM2 float64) (float64, error) {
	if pct, ok := p.Specification(panel.SpecRatedEfficiencyPct); ok {
		return pct / 100, nil
	}
	if pmaxW, ok := p.Specification(panel.SpecRatedPmaxW); ok {
		return pmaxW / (e.referenceIrradiance * areaM2), nil
	}
	return 0, ErrInsufficientData
}
